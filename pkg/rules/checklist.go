package rules

import (
	"fmt"
	"strings"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/template"
)

// TaskStatus is the fixed vocabulary a checklist task's raw value
// normalizes into.
type TaskStatus string

const (
	TaskGreen   TaskStatus = "green"
	TaskOrange  TaskStatus = "orange"
	TaskRed     TaskStatus = "red"
	TaskYellow  TaskStatus = "yellow"
	TaskYes     TaskStatus = "yes"
	TaskNo      TaskStatus = "no"
	TaskNA      TaskStatus = "na"
	TaskUnknown TaskStatus = "unknown"
)

// statusSynonyms maps raw answers to the fixed status vocabulary,
// case-insensitively.
var statusSynonyms = map[string]TaskStatus{
	"green":          TaskGreen,
	"pass":           TaskGreen,
	"passed":         TaskGreen,
	"ok":             TaskGreen,
	"good":           TaskGreen,
	"orange":         TaskOrange,
	"amber":          TaskOrange,
	"red":            TaskRed,
	"fail":           TaskRed,
	"failed":         TaskRed,
	"yellow":         TaskYellow,
	"caution":        TaskYellow,
	"yes":            TaskYes,
	"y":              TaskYes,
	"true":           TaskYes,
	"no":             TaskNo,
	"n":              TaskNo,
	"false":          TaskNo,
	"na":             TaskNA,
	"n/a":            TaskNA,
	"not applicable": TaskNA,
}

// NormalizeTaskStatus maps a raw task answer into the status
// vocabulary. Unmapped answers normalize to unknown.
func NormalizeTaskStatus(raw string) TaskStatus {
	if status, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return TaskUnknown
}

// Negative reports whether the status is a failing answer.
func (s TaskStatus) Negative() bool {
	return s == TaskNo || s == TaskRed
}

// Affirmative reports whether the status is a passing answer.
func (s TaskStatus) Affirmative() bool {
	return s == TaskYes || s == TaskGreen
}

// docContext carries document-wide state the checklist pass needs,
// currently whether any killer question resolved negative.
type docContext struct {
	anyKillerNegative bool
}

// newDocContext pre-scans all checklist groups so summary/killer
// conflicts are detectable regardless of declaration order.
func newDocContext(tmpl *template.Template, fields map[string]*ExtractedField) *docContext {
	doc := &docContext{}

	for _, entry := range tmpl.FieldRules {
		if entry == nil || entry.Kind != template.EntryKindChecklist || entry.Checklist == nil {
			continue
		}
		for _, task := range entry.Checklist.Tasks {
			if !task.KillerQuestion {
				continue
			}
			if extracted, ok := fields[task.Name]; ok && NormalizeTaskStatus(extracted.Value).Negative() {
				doc.anyKillerNegative = true
			}
		}
	}

	return doc
}

// evaluateChecklist evaluates every task in a checklist group in
// declared order.
func (e *Engine) evaluateChecklist(group *template.ChecklistGroup, doc *docContext, fields map[string]*ExtractedField) []ValidationResult {
	if group == nil {
		return nil
	}

	var results []ValidationResult
	for _, task := range group.Tasks {
		results = append(results, e.evaluateTask(task, doc, fields))
	}
	return results
}

// evaluateTask evaluates one checklist task. The killer-question
// evidence check runs before any ifYes follow-up check: a documented
// failure is acceptable, an undocumented one is a critical finding, and
// the follow-up dependency only applies to answers that were not
// already judged by the killer rule.
func (e *Engine) evaluateTask(task template.ChecklistTask, doc *docContext, fields map[string]*ExtractedField) ValidationResult {
	extracted, present := fields[task.Name]

	if !present || strings.TrimSpace(extracted.Value) == "" {
		return ValidationResult{
			Field:      task.Name,
			Status:     StatusWarning,
			Severity:   reason.SeverityMinor,
			ReasonCode: reason.UnreadableField,
			Message:    fmt.Sprintf("checklist task %q has no readable answer", task.Name),
		}
	}

	status := NormalizeTaskStatus(extracted.Value)

	if status == TaskUnknown {
		return ValidationResult{
			Field:      task.Name,
			Status:     StatusWarning,
			Severity:   reason.SeverityMinor,
			ReasonCode: reason.UnreadableField,
			Message:    fmt.Sprintf("checklist task %q answer %q does not map to a known status", task.Name, extracted.Value),
		}
	}

	// A failed physical check is acceptable if and only if the engineer
	// documented it.
	if task.KillerQuestion && status.Negative() {
		if e.hasSufficientComments(fields) {
			return ValidationResult{
				Field:      task.Name,
				Status:     StatusPassed,
				Severity:   reason.SeverityInfo,
				ReasonCode: reason.Valid,
				Message:    fmt.Sprintf("killer question %q failed but is documented", task.Name),
			}
		}
		return ValidationResult{
			Field:      task.Name,
			Status:     StatusFailed,
			Severity:   reason.SeverityCritical,
			ReasonCode: reason.IncompleteEvidence,
			Message:    fmt.Sprintf("killer question %q failed without engineer comments of at least %d characters", task.Name, e.minCommentLength),
		}
	}

	// Summary and detail must agree: an affirmative summary over a
	// failed killer question is a critical conflict.
	if task.SummaryQuestion && status.Affirmative() && doc.anyKillerNegative {
		return ValidationResult{
			Field:      task.Name,
			Status:     StatusFailed,
			Severity:   reason.SeverityCritical,
			ReasonCode: reason.Conflict,
			Message:    fmt.Sprintf("summary question %q reports pass while a killer question failed", task.Name),
		}
	}

	if task.DocumentationRule != nil && task.DocumentationRule.IfYes != nil && status.Affirmative() {
		if msg, ok := e.checkFollowUp(task.DocumentationRule.IfYes, fields); !ok {
			return ValidationResult{
				Field:      task.Name,
				Status:     StatusFailed,
				Severity:   reason.SeverityMajor,
				ReasonCode: reason.IncompleteEvidence,
				Message:    fmt.Sprintf("checklist task %q: %s", task.Name, msg),
			}
		}
	}

	return ValidationResult{
		Field:      task.Name,
		Status:     StatusPassed,
		Severity:   reason.SeverityInfo,
		ReasonCode: reason.Valid,
		Message:    fmt.Sprintf("checklist task %q answered %s", task.Name, status),
	}
}
