package registry

import "fmt"

// RegistryError describes a registry operation failure.
type RegistryError struct {
	TemplateID string
	Operation  string
	Message    string
}

// Error returns the error message.
func (e *RegistryError) Error() string {
	if e.TemplateID != "" {
		return fmt.Sprintf("registry %s: template %s: %s", e.Operation, e.TemplateID, e.Message)
	}
	return fmt.Sprintf("registry %s: %s", e.Operation, e.Message)
}

// ActivationError carries the complete list of issues blocking a
// template activation, each with a remediation hint.
type ActivationError struct {
	TemplateID string
	Issues     []ActivationIssue
}

// ActivationIssue is a single blocking issue with its fix path.
type ActivationIssue struct {
	// Message describes what blocks activation.
	Message string `json:"message"`

	// FixPath is the human-readable remediation hint.
	FixPath string `json:"fixPath"`
}

// Error returns the error message listing every blocking issue.
func (e *ActivationError) Error() string {
	msg := fmt.Sprintf("template %s cannot be activated: %d blocking issue(s)", e.TemplateID, len(e.Issues))
	for _, issue := range e.Issues {
		msg += fmt.Sprintf("\n  - %s (fix: %s)", issue.Message, issue.FixPath)
	}
	return msg
}
