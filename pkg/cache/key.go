package cache

import (
	"veridian-hq/saturn/pkg/canonical"
)

// KeyComponents are the logical inputs a cached pipeline output depends
// on. Identical components, even across process restarts, must produce
// the identical key.
type KeyComponents struct {
	// FileHash is the content hash of the source document.
	FileHash string `json:"fileHash"`

	// TemplateHash is the canonical-JSON hash of the template used.
	TemplateHash string `json:"templateHash"`

	// EngineVersions maps engine names to their algorithm versions, so
	// an engine upgrade naturally invalidates prior entries.
	EngineVersions map[string]string `json:"engineVersions"`
}

// GenerateKey hashes the canonical JSON of the components with SHA-256.
// Map key order never affects the result.
func GenerateKey(components KeyComponents) (string, error) {
	return canonical.Hash(components)
}
