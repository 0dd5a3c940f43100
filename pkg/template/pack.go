package template

import "time"

// SpecPack is the unit of template distribution: a versioned bundle of
// templates for one client, with pack-level defaults.
type SpecPack struct {
	// PackVersion is the pack version (semver).
	PackVersion string `yaml:"packVersion" json:"packVersion"`

	// PackID is the stable pack identifier.
	PackID string `yaml:"packId" json:"packId"`

	// DisplayName is the human-readable pack name.
	DisplayName string `yaml:"displayName" json:"displayName"`

	// Client is the client the pack belongs to.
	Client string `yaml:"client" json:"client"`

	// CreatedAt is the pack creation timestamp.
	CreatedAt time.Time `yaml:"createdAt" json:"createdAt"`

	// Defaults carries pack-level evaluation defaults.
	Defaults PackDefaults `yaml:"defaults" json:"defaults"`

	// Templates are the templates shipped in this pack.
	Templates []*Template `yaml:"templates" json:"templates"`
}

// PackDefaults carries pack-level defaults applied to every template in
// the pack unless the template overrides them.
type PackDefaults struct {
	// DateFormat is the expected date layout in extracted fields.
	DateFormat string `yaml:"dateFormat" json:"dateFormat"`

	// Timezone is the IANA timezone documents are authored in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// ReviewQueueTriggers lists reason codes that route a document to
	// human review regardless of outcome.
	ReviewQueueTriggers []string `yaml:"reviewQueueTriggers,omitempty" json:"reviewQueueTriggers,omitempty"`

	// CriticalFields lists fields whose findings are always raised to
	// critical severity.
	CriticalFields []string `yaml:"criticalFields,omitempty" json:"criticalFields,omitempty"`
}

// GetTemplate returns the template with the given ID, or nil.
func (p *SpecPack) GetTemplate(id string) *Template {
	for _, t := range p.Templates {
		if t.TemplateID == id {
			return t
		}
	}
	return nil
}

// TemplateCount returns the number of templates in the pack.
func (p *SpecPack) TemplateCount() int {
	return len(p.Templates)
}
