package template

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// EntryKind discriminates the two field-rule variants.
type EntryKind string

const (
	// EntryKindField is a plain field rule.
	EntryKindField EntryKind = "field"

	// EntryKindChecklist is a group of checklist tasks.
	EntryKindChecklist EntryKind = "checklist"
)

// FieldEntry is the tagged union of the two things a fieldRules entry
// can be: a plain field rule or a checklist group. Exactly one of Field
// and Checklist is non-nil, matching Kind.
type FieldEntry struct {
	Kind      EntryKind       `json:"type"`
	Field     *FieldRule      `json:"field,omitempty"`
	Checklist *ChecklistGroup `json:"checklist,omitempty"`
}

// UnmarshalYAML decodes a field entry by its "type" discriminator.
// A missing type defaults to a plain field rule.
func (e *FieldEntry) UnmarshalYAML(value *yaml.Node) error {
	var probe struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&probe); err != nil {
		return err
	}

	switch EntryKind(probe.Type) {
	case EntryKindChecklist:
		var group ChecklistGroup
		if err := value.Decode(&group); err != nil {
			return err
		}
		e.Kind = EntryKindChecklist
		e.Checklist = &group
		return nil

	case EntryKindField, "":
		var rule FieldRule
		if err := value.Decode(&rule); err != nil {
			return err
		}
		e.Kind = EntryKindField
		e.Field = &rule
		return nil

	default:
		return fmt.Errorf("unknown field entry type %q (expected %q or %q)",
			probe.Type, EntryKindField, EntryKindChecklist)
	}
}

// FieldRule declares validation for a single extracted field.
type FieldRule struct {
	// Required marks the field as mandatory. A missing required field
	// fails with MISSING_FIELD; a missing optional field is skipped.
	Required bool `yaml:"required" json:"required"`

	// Validators are applied in order to the extracted value.
	Validators []Validator `yaml:"validators,omitempty" json:"validators,omitempty"`

	// DocumentationRule declares a conditional follow-up dependency on
	// the field's value. Optional.
	DocumentationRule *DocumentationRule `yaml:"documentationRule,omitempty" json:"documentationRule,omitempty"`
}

// ValidatorKind discriminates the closed set of validator variants.
type ValidatorKind string

const (
	ValidatorRegex     ValidatorKind = "regex"
	ValidatorRequired  ValidatorKind = "required"
	ValidatorMinLength ValidatorKind = "minLength"
)

// Validator is one validation step applied to a field value. The Kind
// field selects the variant; the remaining fields carry its parameters.
type Validator struct {
	Kind ValidatorKind `json:"type"`

	// Pattern is the regular expression for regex validators.
	Pattern string `json:"pattern,omitempty"`

	// Min is the minimum length for minLength validators.
	Min int `json:"min,omitempty"`
}

// UnmarshalYAML decodes a validator by its "type" discriminator and
// rejects unknown kinds.
func (v *Validator) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type    string `yaml:"type"`
		Pattern string `yaml:"pattern"`
		Min     int    `yaml:"min"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch ValidatorKind(raw.Type) {
	case ValidatorRegex, ValidatorRequired, ValidatorMinLength:
		v.Kind = ValidatorKind(raw.Type)
		v.Pattern = raw.Pattern
		v.Min = raw.Min
		return nil
	default:
		return fmt.Errorf("unknown validator type %q (expected regex, required, or minLength)", raw.Type)
	}
}

// DocumentationRule declares a conditional documentation dependency:
// when the owning field or task resolves to an affirmative answer, the
// named follow-up evidence must be present.
type DocumentationRule struct {
	IfYes *FollowUpCondition `yaml:"ifYes,omitempty" json:"ifYes,omitempty"`
}

// FollowUpCondition names the evidence a triggered documentation rule
// demands.
type FollowUpCondition struct {
	// RequiresFollowUp names a field that must be present and non-empty.
	RequiresFollowUp string `yaml:"requiresFollowUp,omitempty" json:"requiresFollowUp,omitempty"`

	// RequiresComments demands a free-text comment field of at least
	// MinCommentLength characters.
	RequiresComments bool `yaml:"requiresComments,omitempty" json:"requiresComments,omitempty"`
}

// ChecklistGroup is a named group of checklist tasks.
type ChecklistGroup struct {
	// Type is always "checklist" in serialized form.
	Type string `yaml:"type" json:"type"`

	// Tasks are the checklist items, evaluated in declared order.
	Tasks []ChecklistTask `yaml:"tasks" json:"tasks"`
}

// ChecklistTask is a single inspection item inside a checklist group.
type ChecklistTask struct {
	// Name is the extracted-field name carrying the task's raw status.
	Name string `yaml:"name" json:"name"`

	// KillerQuestion marks a task whose negative answer, if
	// undocumented, is an automatic critical failure.
	KillerQuestion bool `yaml:"killerQuestion,omitempty" json:"killerQuestion,omitempty"`

	// SummaryQuestion marks a task that summarizes the whole document;
	// an affirmative summary conflicting with a failed killer question
	// is a critical CONFLICT.
	SummaryQuestion bool `yaml:"summaryQuestion,omitempty" json:"summaryQuestion,omitempty"`

	// DocumentationRule declares a conditional follow-up dependency on
	// the task's answer. Optional.
	DocumentationRule *DocumentationRule `yaml:"documentationRule,omitempty" json:"documentationRule,omitempty"`
}
