package selector

import (
	"veridian-hq/saturn/pkg/canonical"
)

// TraceVersion identifies the selection artifact envelope format.
const TraceVersion = "1"

// Trace is the audit record produced by every selection call, success
// or stop. It serializes deterministically so two runs over identical
// input produce byte-identical artifacts.
type Trace struct {
	// TraceVersion is the artifact envelope version.
	TraceVersion string `json:"traceVersion"`

	// InputHash is the SHA-256 of the extracted text.
	InputHash string `json:"inputHash"`

	// ExplicitTemplateID is set when scoring was bypassed by an
	// explicit manual selection.
	ExplicitTemplateID string `json:"explicitTemplateId,omitempty"`

	// Candidates holds every scored candidate, sorted by score
	// descending then template ID ascending.
	Candidates []*Score `json:"candidates"`

	// Decision is the policy outcome.
	Decision Decision `json:"decision"`

	// EngineVersion is the selector algorithm version. No timestamp is
	// carried: identical inputs must serialize to identical bytes.
	EngineVersion string `json:"engineVersion"`
}

// MarshalCanonical serializes the trace as canonical JSON with sorted
// object keys, suitable for audit storage and byte comparison.
func (t *Trace) MarshalCanonical() ([]byte, error) {
	return canonical.Marshal(t)
}
