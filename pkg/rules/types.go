package rules

import (
	"veridian-hq/saturn/pkg/reason"
)

// ExtractedField is one field produced by the external extraction
// stage. The engine consumes these read-only.
type ExtractedField struct {
	// Field is the field name as declared in the template.
	Field string `json:"field"`

	// Value is the extracted raw value.
	Value string `json:"value"`

	// Confidence is the extraction confidence in 0..1.
	Confidence float64 `json:"confidence"`

	// PageNumber is the 1-based page the value was found on. Optional.
	PageNumber int `json:"pageNumber,omitempty"`

	// Source identifies the extraction method. Optional.
	Source string `json:"source,omitempty"`
}

// Status is the outcome of a single field or rule evaluation.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// ValidationResult is one per-field or per-rule finding.
type ValidationResult struct {
	// Field is the field or task name, or the rule ID for
	// document-level rules.
	Field string `json:"field"`

	// Status is the evaluation outcome.
	Status Status `json:"status"`

	// Severity classifies how serious the finding is.
	Severity reason.Severity `json:"severity"`

	// ReasonCode is the canonical outcome explanation.
	ReasonCode reason.Code `json:"reasonCode"`

	// Message is the human-readable finding description.
	Message string `json:"message"`
}

// DocumentOutcome is the overall pass/fail verdict for a document.
type DocumentOutcome string

const (
	OutcomePass DocumentOutcome = "PASS"
	OutcomeFail DocumentOutcome = "FAIL"
)

// Quality classifies the engineer's documentation of the inspection,
// independent of whether the underlying asset passed.
type Quality string

const (
	QualityComplete     Quality = "complete"
	QualityIncomplete   Quality = "incomplete"
	QualityInconsistent Quality = "inconsistent"
)

// Summary holds the per-status finding counters. The counts always sum
// to TotalFields.
type Summary struct {
	TotalFields   int `json:"totalFields"`
	PassedFields  int `json:"passedFields"`
	FailedFields  int `json:"failedFields"`
	WarningFields int `json:"warningFields"`
	SkippedFields int `json:"skippedFields"`
}

// AuditResult is the aggregated outcome of evaluating one document
// against one template.
type AuditResult struct {
	// TemplateID identifies the template evaluated against.
	TemplateID string `json:"templateId"`

	// DocumentOutcome is the overall verdict. Any blocking-severity
	// failure forces FAIL.
	DocumentOutcome DocumentOutcome `json:"documentOutcome"`

	// DocumentationQuality judges the engineer's documentation.
	DocumentationQuality Quality `json:"documentationQuality"`

	// Results holds every finding in evaluation order.
	Results []ValidationResult `json:"results"`

	// Summary holds the status counters.
	Summary Summary `json:"summary"`

	// ConsistencyScore is (total - conflicts) / total, 2 decimals.
	// Defined as 1 when total is zero.
	ConsistencyScore float64 `json:"consistencyScore"`

	// CompletenessScore is passed / total, 2 decimals. Defined as 0
	// when total is zero.
	CompletenessScore float64 `json:"completenessScore"`

	// NextSteps lists remediation actions derived from the findings,
	// lexicographically sorted for reproducible exports.
	NextSteps []string `json:"nextSteps"`

	// EngineVersion is the rules engine algorithm version.
	EngineVersion string `json:"engineVersion"`
}
