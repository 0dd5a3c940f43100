package rules

import (
	"sort"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/telemetry/metrics"
	"veridian-hq/saturn/pkg/template"
)

// fakeSource is an in-memory TemplateSource for engine tests.
type fakeSource struct {
	templates map[string]*template.Template
}

func (f *fakeSource) GetTemplate(id string) (*template.Template, bool) {
	t, ok := f.templates[id]
	return t, ok
}

func newTestEngine(tmpl *template.Template) *Engine {
	source := &fakeSource{templates: map[string]*template.Template{}}
	if tmpl != nil {
		source.templates[tmpl.TemplateID] = tmpl
	}
	return New(source, nil, nil)
}

func fieldEntry(required bool, validators ...template.Validator) *template.FieldEntry {
	return &template.FieldEntry{
		Kind: template.EntryKindField,
		Field: &template.FieldRule{
			Required:   required,
			Validators: validators,
		},
	}
}

func checklistEntry(tasks ...template.ChecklistTask) *template.FieldEntry {
	return &template.FieldEntry{
		Kind: template.EntryKindChecklist,
		Checklist: &template.ChecklistGroup{
			Type:  "checklist",
			Tasks: tasks,
		},
	}
}

func findResult(t *testing.T, result *AuditResult, field string) ValidationResult {
	t.Helper()
	for _, r := range result.Results {
		if r.Field == field {
			return r
		}
	}
	t.Fatalf("no finding for field %q in %v", field, result.Results)
	return ValidationResult{}
}

func TestEvaluateDocument_FailsClosedOnUnknownTemplate(t *testing.T) {
	engine := newTestEngine(nil)

	result := engine.EvaluateDocument("ACME_GONE_V1", nil)

	if result.DocumentOutcome != OutcomeFail {
		t.Errorf("outcome = %s, want FAIL", result.DocumentOutcome)
	}
	if len(result.Results) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Results))
	}
	finding := result.Results[0]
	if finding.ReasonCode != reason.PipelineError {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.PipelineError)
	}
	if finding.Severity != reason.SeverityCritical {
		t.Errorf("severity = %s, want critical", finding.Severity)
	}
}

func TestEvaluateDocument_RequiredFieldMissing(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true),
			"notes":        fieldEntry(false),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", nil)

	serial := findResult(t, result, "serialNumber")
	if serial.Status != StatusFailed {
		t.Errorf("serialNumber status = %s, want failed", serial.Status)
	}
	if serial.ReasonCode != reason.MissingField {
		t.Errorf("serialNumber reasonCode = %s, want %s", serial.ReasonCode, reason.MissingField)
	}

	notes := findResult(t, result, "notes")
	if notes.Status != StatusSkipped {
		t.Errorf("notes status = %s, want skipped (optional field absent)", notes.Status)
	}

	if result.DocumentOutcome != OutcomeFail {
		t.Errorf("outcome = %s, want FAIL (major failure blocks)", result.DocumentOutcome)
	}
}

func TestEvaluateDocument_LowConfidenceWarns(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "serialNumber", Value: "SN-100", Confidence: 0.55},
	})

	finding := findResult(t, result, "serialNumber")
	if finding.Status != StatusWarning {
		t.Errorf("status = %s, want warning", finding.Status)
	}
	if finding.ReasonCode != reason.LowConfidence {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.LowConfidence)
	}
	if result.DocumentOutcome != OutcomePass {
		t.Errorf("outcome = %s, want PASS (warnings never block)", result.DocumentOutcome)
	}
}

func TestEvaluateDocument_ValidatorFailure(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true, template.Validator{
				Kind:    template.ValidatorRegex,
				Pattern: `^SN-\d{4}$`,
			}),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "serialNumber", Value: "bogus", Confidence: 0.99},
	})

	finding := findResult(t, result, "serialNumber")
	if finding.Status != StatusFailed {
		t.Errorf("status = %s, want failed", finding.Status)
	}
	if finding.ReasonCode != reason.InvalidFormat {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.InvalidFormat)
	}
}

func TestEvaluateDocument_KillerQuestionDocumented(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"safetyChecks": checklistEntry(
				template.ChecklistTask{Name: "guardFitted", KillerQuestion: true},
			),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "guardFitted", Value: "no", Confidence: 0.95},
		{Field: "engineerComments", Value: "Guard removed for bearing replacement, reinstated after test.", Confidence: 0.95},
	})

	finding := findResult(t, result, "guardFitted")
	if finding.Status != StatusPassed {
		t.Errorf("status = %s, want passed (documented failure is acceptable)", finding.Status)
	}
	if finding.ReasonCode != reason.Valid {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.Valid)
	}
}

func TestEvaluateDocument_KillerQuestionUndocumented(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"safetyChecks": checklistEntry(
				template.ChecklistTask{Name: "guardFitted", KillerQuestion: true},
			),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "guardFitted", Value: "red", Confidence: 0.95},
		{Field: "engineerComments", Value: "ok", Confidence: 0.95},
	})

	finding := findResult(t, result, "guardFitted")
	if finding.Status != StatusFailed {
		t.Errorf("status = %s, want failed (undocumented killer failure)", finding.Status)
	}
	if finding.Severity != reason.SeverityCritical {
		t.Errorf("severity = %s, want critical", finding.Severity)
	}
	if finding.ReasonCode != reason.IncompleteEvidence {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.IncompleteEvidence)
	}
	if result.DocumentOutcome != OutcomeFail {
		t.Errorf("outcome = %s, want FAIL", result.DocumentOutcome)
	}
}

func TestEvaluateDocument_SummaryConflictsWithKiller(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"safetyChecks": checklistEntry(
				template.ChecklistTask{Name: "guardFitted", KillerQuestion: true},
				template.ChecklistTask{Name: "overallResult", SummaryQuestion: true},
			),
		},
		ValidationRules: []template.ValidationRule{
			{RuleID: template.RuleDocAuditConsistency},
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "guardFitted", Value: "no", Confidence: 0.95},
		{Field: "overallResult", Value: "pass", Confidence: 0.95},
		{Field: "engineerComments", Value: "Guard failed, replacement ordered.", Confidence: 0.95},
	})

	summary := findResult(t, result, "overallResult")
	if summary.ReasonCode != reason.Conflict {
		t.Errorf("summary reasonCode = %s, want %s", summary.ReasonCode, reason.Conflict)
	}
	if summary.Severity != reason.SeverityCritical {
		t.Errorf("summary severity = %s, want critical", summary.Severity)
	}

	consistency := findResult(t, result, template.RuleDocAuditConsistency)
	if consistency.Status != StatusFailed {
		t.Errorf("consistency status = %s, want failed", consistency.Status)
	}

	if result.DocumentationQuality != QualityInconsistent {
		t.Errorf("quality = %s, want inconsistent", result.DocumentationQuality)
	}
	if result.DocumentOutcome != OutcomeFail {
		t.Errorf("outcome = %s, want FAIL", result.DocumentOutcome)
	}
}

func TestEvaluateDocument_ChecklistUnreadableAnswer(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"safetyChecks": checklistEntry(
				template.ChecklistTask{Name: "guardFitted"},
			),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "guardFitted", Value: "maybe??", Confidence: 0.95},
	})

	finding := findResult(t, result, "guardFitted")
	if finding.Status != StatusWarning {
		t.Errorf("status = %s, want warning", finding.Status)
	}
	if finding.ReasonCode != reason.UnreadableField {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.UnreadableField)
	}
}

func TestEvaluateDocument_IfYesFollowUp(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"partsReplaced": {
				Kind: template.EntryKindField,
				Field: &template.FieldRule{
					Required: true,
					DocumentationRule: &template.DocumentationRule{
						IfYes: &template.FollowUpCondition{
							RequiresFollowUp: "partsList",
						},
					},
				},
			},
		},
	}
	engine := newTestEngine(tmpl)

	withEvidence := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "partsReplaced", Value: "yes", Confidence: 0.95},
		{Field: "partsList", Value: "impeller, seal kit", Confidence: 0.95},
	})
	if got := findResult(t, withEvidence, "partsReplaced"); got.Status != StatusPassed {
		t.Errorf("status with evidence = %s, want passed", got.Status)
	}

	withoutEvidence := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "partsReplaced", Value: "yes", Confidence: 0.95},
	})
	got := findResult(t, withoutEvidence, "partsReplaced")
	if got.Status != StatusFailed {
		t.Errorf("status without evidence = %s, want failed", got.Status)
	}
	if got.ReasonCode != reason.IncompleteEvidence {
		t.Errorf("reasonCode = %s, want %s", got.ReasonCode, reason.IncompleteEvidence)
	}
}

func TestEvaluateDocument_CompletenessRequiresSignature(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true),
		},
		ValidationRules: []template.ValidationRule{
			{RuleID: template.RuleDocAuditCompleteness},
		},
	}
	engine := newTestEngine(tmpl)

	unsigned := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "serialNumber", Value: "SN-1001", Confidence: 0.95},
	})
	finding := findResult(t, unsigned, template.RuleDocAuditCompleteness)
	if finding.Status != StatusFailed {
		t.Errorf("completeness status = %s, want failed without signature", finding.Status)
	}
	if finding.ReasonCode != reason.IncompleteEvidence {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.IncompleteEvidence)
	}

	signed := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "serialNumber", Value: "SN-1001", Confidence: 0.95},
		{Field: "engineerSignature", Value: "J. Smith", Confidence: 0.95},
	})
	finding = findResult(t, signed, template.RuleDocAuditCompleteness)
	if finding.Status != StatusPassed {
		t.Errorf("completeness status = %s, want passed with signature", finding.Status)
	}
}

func TestEvaluateDocument_UnknownDocAuditRule(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{},
		ValidationRules: []template.ValidationRule{
			{RuleID: "DOC_AUDIT_FUTURE"},
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", nil)

	finding := findResult(t, result, "DOC_AUDIT_FUTURE")
	if finding.Status != StatusWarning {
		t.Errorf("status = %s, want warning for unrecognized audit rule", finding.Status)
	}
	if finding.ReasonCode != reason.SpecGap {
		t.Errorf("reasonCode = %s, want %s", finding.ReasonCode, reason.SpecGap)
	}
}

func TestEvaluateDocument_SummaryCountersSum(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true),
			"assetTag":     fieldEntry(true),
			"notes":        fieldEntry(false),
			"reading":      fieldEntry(true),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", []ExtractedField{
		{Field: "serialNumber", Value: "SN-1", Confidence: 0.95},
		{Field: "reading", Value: "42 bar", Confidence: 0.40},
	})

	s := result.Summary
	if sum := s.PassedFields + s.FailedFields + s.WarningFields + s.SkippedFields; sum != s.TotalFields {
		t.Errorf("counter sum = %d, want TotalFields = %d", sum, s.TotalFields)
	}
	if s.PassedFields != 1 || s.FailedFields != 1 || s.WarningFields != 1 || s.SkippedFields != 1 {
		t.Errorf("summary = %+v, want one finding of each status", s)
	}
}

func TestEvaluateDocument_NextStepsSortedAndDeduplicated(t *testing.T) {
	tmpl := &template.Template{
		TemplateID: "ACME_PUMP_V1",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": fieldEntry(true),
			"assetTag":     fieldEntry(true),
		},
	}
	engine := newTestEngine(tmpl)

	result := engine.EvaluateDocument("ACME_PUMP_V1", nil)

	if len(result.NextSteps) != 1 {
		t.Fatalf("nextSteps = %v, want a single deduplicated step for two MISSING_FIELD findings", result.NextSteps)
	}
	if !sort.StringsAreSorted(result.NextSteps) {
		t.Errorf("nextSteps not sorted: %v", result.NextSteps)
	}
	if !strings.Contains(result.NextSteps[0], "required fields") {
		t.Errorf("nextSteps[0] = %q, want the missing-field remediation", result.NextSteps[0])
	}
}

func TestIndexFields_HigherConfidenceWins(t *testing.T) {
	fields := indexFields([]ExtractedField{
		{Field: "serialNumber", Value: "SN-A", Confidence: 0.60},
		{Field: "serialNumber", Value: "SN-B", Confidence: 0.90},
		{Field: "serialNumber", Value: "SN-C", Confidence: 0.70},
	})

	got, ok := fields["serialNumber"]
	if !ok {
		t.Fatal("serialNumber missing from index")
	}
	if got.Value != "SN-B" {
		t.Errorf("indexed value = %s, want SN-B (highest confidence)", got.Value)
	}
}

func TestNormalizeTaskStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
	}{
		{"Pass", TaskGreen},
		{"AMBER", TaskOrange},
		{"failed", TaskRed},
		{" n/a ", TaskNA},
		{"Y", TaskYes},
		{"scribble", TaskUnknown},
	}

	for _, tt := range tests {
		if got := NormalizeTaskStatus(tt.in); got != tt.want {
			t.Errorf("NormalizeTaskStatus(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestAggregate_EmptyResults(t *testing.T) {
	result := aggregate("ACME_PUMP_V1", nil)

	if result.ConsistencyScore != 1.0 {
		t.Errorf("consistencyScore = %v, want 1.0 for empty results", result.ConsistencyScore)
	}
	if result.CompletenessScore != 0.0 {
		t.Errorf("completenessScore = %v, want 0.0 for empty results", result.CompletenessScore)
	}
	if result.DocumentOutcome != OutcomePass {
		t.Errorf("outcome = %s, want PASS", result.DocumentOutcome)
	}
}

func TestEvaluateDocument_RecordsMetrics(t *testing.T) {
	m := metrics.New("test")
	source := &fakeSource{templates: map[string]*template.Template{}}
	engine := New(source, &Config{Metrics: m}, nil)

	engine.EvaluateDocument("GHOST_V1", nil)

	if got := testutil.CollectAndCount(m.EvaluationOutcomes); got != 1 {
		t.Errorf("evaluation outcome series = %d, want 1", got)
	}
	if got := testutil.CollectAndCount(m.EvaluationDuration); got != 1 {
		t.Errorf("evaluation duration series = %d, want 1", got)
	}
}
