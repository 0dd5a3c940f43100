package fixture

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"veridian-hq/saturn/pkg/canonical"
)

// Pack is an ordered, hash-stamped collection of fixture cases bound to
// one template version.
type Pack struct {
	// PackID identifies the fixture pack.
	PackID string `yaml:"packId" json:"packId"`

	// TemplateID and TemplateVersion bind the pack to one template
	// version.
	TemplateID      string `yaml:"templateId" json:"templateId"`
	TemplateVersion string `yaml:"templateVersion" json:"templateVersion"`

	// CreatedAt is when the pack was authored.
	CreatedAt time.Time `yaml:"createdAt" json:"createdAt"`

	// Fixtures are the cases, canonicalized by fixture ID.
	Fixtures []Case `yaml:"fixtures" json:"fixtures"`
}

// LoadPack reads and canonicalizes a fixture pack from a YAML file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture pack %s: %w", path, err)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse fixture pack %s: %w", path, err)
	}

	if pack.PackID == "" {
		return nil, fmt.Errorf("fixture pack %s: missing packId", path)
	}
	if pack.TemplateID == "" {
		return nil, fmt.Errorf("fixture pack %s: missing templateId", path)
	}
	if len(pack.Fixtures) == 0 {
		return nil, fmt.Errorf("fixture pack %s: no fixtures", path)
	}

	seen := make(map[string]bool, len(pack.Fixtures))
	for _, c := range pack.Fixtures {
		if c.FixtureID == "" {
			return nil, fmt.Errorf("fixture pack %s: fixture with empty fixtureId", path)
		}
		if seen[c.FixtureID] {
			return nil, fmt.Errorf("fixture pack %s: duplicate fixtureId %q", path, c.FixtureID)
		}
		seen[c.FixtureID] = true
	}

	pack.Canonicalize()
	return &pack, nil
}

// Canonicalize sorts the cases by fixture ID. Pack order and pack hash
// are defined over this canonical order, so authoring order never
// affects either.
func (p *Pack) Canonicalize() {
	sort.Slice(p.Fixtures, func(i, j int) bool {
		return p.Fixtures[i].FixtureID < p.Fixtures[j].FixtureID
	})
}

// Hash computes the SHA-256 of the canonicalized case list. The hash is
// independent of the order cases were supplied in.
func (p *Pack) Hash() (string, error) {
	sorted := make([]Case, len(p.Fixtures))
	copy(sorted, p.Fixtures)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FixtureID < sorted[j].FixtureID
	})
	return canonical.Hash(sorted)
}
