package template

import (
	"regexp"

	"veridian-hq/saturn/pkg/canonical"
)

var (
	// IDPattern validates template identifiers (e.g., "ACME_PUMP_INSPECTION_V2").
	IDPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)*_V[0-9]+$`)

	// VersionPattern validates semantic version strings (e.g., "1.0.0", "2.1.3-beta.1").
	VersionPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
)

// Template is a versioned schema describing the expected fields,
// validation rules, and selection fingerprint for one document type.
type Template struct {
	// TemplateID is the stable slug, format PREFIX_NAME_V<n>.
	TemplateID string `yaml:"templateId" json:"templateId"`

	// DisplayName is the human-readable template name.
	DisplayName string `yaml:"displayName" json:"displayName"`

	// Version is the template version (semver).
	Version string `yaml:"version" json:"version"`

	// Client is the client this template belongs to.
	Client string `yaml:"client" json:"client"`

	// DocumentType identifies the kind of document (e.g., "job_sheet").
	DocumentType string `yaml:"documentType" json:"documentType"`

	// FieldRules maps field names to field rules or checklist groups.
	FieldRules map[string]*FieldEntry `yaml:"fieldRules" json:"fieldRules"`

	// ValidationRules is the ordered list of document-level rules.
	// Rules whose ID carries the DOC_AUDIT_ prefix are documentation-audit
	// rules evaluated after all field findings.
	ValidationRules []ValidationRule `yaml:"validationRules" json:"validationRules"`

	// Selection carries the token-fingerprint criteria used to recognize
	// this document type from extracted text. Optional.
	Selection *SelectionCriteria `yaml:"selection,omitempty" json:"selection,omitempty"`

	// AssetTypes lists asset types this template applies to. Optional,
	// contributes context-match points during selection.
	AssetTypes []string `yaml:"assetTypes,omitempty" json:"assetTypes,omitempty"`

	// WorkTypes lists work types this template applies to. Optional.
	WorkTypes []string `yaml:"workTypes,omitempty" json:"workTypes,omitempty"`

	// ROIOptional carries region-of-interest hints per page. Optional;
	// regions are validated as non-overlapping at authoring time.
	ROIOptional []ROIRegion `yaml:"roiOptional,omitempty" json:"roiOptional,omitempty"`
}

// ValidationRule is a document-level rule declaration.
type ValidationRule struct {
	// RuleID is the rule identifier (e.g., "DOC_AUDIT_CONSISTENCY").
	RuleID string `yaml:"ruleId" json:"ruleId"`

	// Description is the human-readable rule description.
	Description string `yaml:"description" json:"description"`
}

// DocAuditPrefix marks validation rules evaluated by the documentation
// audit pass of the rules engine.
const DocAuditPrefix = "DOC_AUDIT_"

// Documentation-audit rule identifiers.
const (
	RuleDocAuditConsistency  = "DOC_AUDIT_CONSISTENCY"
	RuleDocAuditCompleteness = "DOC_AUDIT_COMPLETENESS"
)

// Hash computes the hex-encoded SHA-256 hash of the template's
// canonical JSON form. Hashing is key-order independent: two
// semantically identical templates hash identically regardless of how
// their source objects were ordered.
func (t *Template) Hash() (string, error) {
	return canonical.Hash(t)
}

// GetEntry returns the field entry for a field name, or nil.
func (t *Template) GetEntry(field string) *FieldEntry {
	return t.FieldRules[field]
}

// RequiredFields returns the names of all required plain field rules.
func (t *Template) RequiredFields() []string {
	var out []string
	for name, entry := range t.FieldRules {
		if entry != nil && entry.Kind == EntryKindField && entry.Field != nil && entry.Field.Required {
			out = append(out, name)
		}
	}
	return out
}

// ROIRegion is a rectangular region-of-interest hint on one page.
// Coordinates are normalized to the page (0..1).
type ROIRegion struct {
	// Name identifies the region (typically the field it locates).
	Name string `yaml:"name" json:"name"`

	// Page is the 1-based page number the region belongs to.
	Page int `yaml:"page" json:"page"`

	// X and Y are the top-left corner of the region.
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`

	// Width and Height are the region dimensions.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Contains reports whether a point lies inside the region.
// Edges are inclusive.
func (r ROIRegion) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Overlaps reports whether two regions on the same page intersect.
// Regions on different pages never overlap.
func (r ROIRegion) Overlaps(other ROIRegion) bool {
	if r.Page != other.Page {
		return false
	}
	if r.X+r.Width <= other.X || other.X+other.Width <= r.X {
		return false
	}
	if r.Y+r.Height <= other.Y || other.Y+other.Height <= r.Y {
		return false
	}
	return true
}
