// Package fixture replays labeled input/expected-outcome cases through
// a validation function and compares the results. It backs both the
// template activation gate and CI regression checks.
package fixture

import (
	"context"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/rules"
)

// Case is one labeled fixture: an input document plus the outcome the
// validation function is expected to produce.
type Case struct {
	// FixtureID identifies the case within its pack.
	FixtureID string `yaml:"fixtureId" json:"fixtureId"`

	// TemplateID and TemplateVersion bind the case to one template
	// version.
	TemplateID      string `yaml:"templateId" json:"templateId"`
	TemplateVersion string `yaml:"templateVersion" json:"templateVersion"`

	// Description explains what the case exercises.
	Description string `yaml:"description" json:"description"`

	// ExpectedOutcome is the expected document outcome (PASS or FAIL).
	ExpectedOutcome string `yaml:"expectedOutcome" json:"expectedOutcome"`

	// ExpectedReasonCodes must all be present in the actual output.
	ExpectedReasonCodes []reason.Code `yaml:"expectedReasonCodes,omitempty" json:"expectedReasonCodes,omitempty"`

	// RequiredEvidenceKeys must all be present in the actual evidence.
	RequiredEvidenceKeys []string `yaml:"requiredEvidenceKeys,omitempty" json:"requiredEvidenceKeys,omitempty"`

	// Required marks cases whose failure blocks activation even under
	// relaxed gating modes.
	Required bool `yaml:"required" json:"required"`

	// Fields are the extracted fields fed to the validation function.
	Fields []rules.ExtractedField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Outcome is what the validation function produced for one case.
type Outcome struct {
	// Outcome is the document outcome (PASS, FAIL, or ERROR).
	Outcome string `json:"outcome"`

	// ReasonCodes lists every reason code observed.
	ReasonCodes []reason.Code `json:"reasonCodes"`

	// EvidenceKeys lists the evidence artifacts produced.
	EvidenceKeys []string `json:"evidenceKeys"`

	// ValidatedFields counts the fields the validator examined.
	ValidatedFields int `json:"validatedFields"`
}

// ValidateFunc is the injected validation function, normally backed by
// the rules engine. It must honor context cancellation.
type ValidateFunc func(ctx context.Context, c Case) (*Outcome, error)
