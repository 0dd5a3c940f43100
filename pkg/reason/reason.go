// Package reason defines the canonical reason-code vocabulary and
// severity tiers shared by the rules engine, fixture runner, and
// selection policy. The reason-code set is closed: any code outside it
// appearing in an engine or runner output is itself a defect.
package reason

import (
	"fmt"
	"sort"
)

// Code is a canonical outcome explanation.
type Code string

const (
	Valid              Code = "VALID"
	MissingField       Code = "MISSING_FIELD"
	UnreadableField    Code = "UNREADABLE_FIELD"
	LowConfidence      Code = "LOW_CONFIDENCE"
	InvalidFormat      Code = "INVALID_FORMAT"
	Conflict           Code = "CONFLICT"
	OutOfPolicy        Code = "OUT_OF_POLICY"
	IncompleteEvidence Code = "INCOMPLETE_EVIDENCE"
	OCRFailure         Code = "OCR_FAILURE"
	PipelineError      Code = "PIPELINE_ERROR"
	SpecGap            Code = "SPEC_GAP"
	SecurityRisk       Code = "SECURITY_RISK"
)

// canonicalCodes is the closed set of valid reason codes.
var canonicalCodes = map[Code]bool{
	Valid:              true,
	MissingField:       true,
	UnreadableField:    true,
	LowConfidence:      true,
	InvalidFormat:      true,
	Conflict:           true,
	OutOfPolicy:        true,
	IncompleteEvidence: true,
	OCRFailure:         true,
	PipelineError:      true,
	SpecGap:            true,
	SecurityRisk:       true,
}

// IsCanonical reports whether a code belongs to the closed canonical set.
func IsCanonical(c Code) bool {
	return canonicalCodes[c]
}

// NonCanonical returns every code in the input that is outside the
// canonical set, sorted lexicographically.
func NonCanonical(codes []Code) []Code {
	var out []Code
	for _, c := range codes {
		if !canonicalCodes[c] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AllCodes returns the canonical code set sorted lexicographically.
func AllCodes() []Code {
	out := make([]Code, 0, len(canonicalCodes))
	for c := range canonicalCodes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Severity classifies how serious a single finding is within one
// document evaluation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityInfo     Severity = "info"
)

// Blocking reports whether a failed finding at this severity forces the
// document outcome to FAIL.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityMajor
}

// Tier is a canonical cross-document severity tier used in aggregate
// reporting. S0 is the most severe.
type Tier string

const (
	TierS0 Tier = "S0"
	TierS1 Tier = "S1"
	TierS2 Tier = "S2"
	TierS3 Tier = "S3"
)

// legacyTiers maps legacy free-text severity vocabularies to canonical
// tiers. Ingestion paths must translate explicitly via TranslateLegacyTier;
// ParseTier rejects them.
var legacyTiers = map[string]Tier{
	"critical": TierS0,
	"high":     TierS1,
	"medium":   TierS2,
	"low":      TierS3,
}

// ParseTier parses a canonical tier string. Legacy free-text tiers
// ("critical", "high", ...) are rejected: callers that need to ingest
// legacy data must call TranslateLegacyTier so the translation is an
// explicit, auditable step.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierS0, TierS1, TierS2, TierS3:
		return Tier(s), nil
	}
	if _, ok := legacyTiers[s]; ok {
		return "", fmt.Errorf("legacy severity tier %q: use TranslateLegacyTier to convert explicitly", s)
	}
	return "", fmt.Errorf("unknown severity tier %q (expected S0..S3)", s)
}

// TranslateLegacyTier converts a legacy free-text tier to its canonical
// equivalent. Unknown values are an error, never passed through.
func TranslateLegacyTier(s string) (Tier, error) {
	if t, ok := legacyTiers[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown legacy severity tier %q", s)
}

// TierForSeverity maps a finding severity to its canonical reporting tier.
func TierForSeverity(s Severity) Tier {
	switch s {
	case SeverityCritical:
		return TierS0
	case SeverityMajor:
		return TierS1
	case SeverityMinor:
		return TierS2
	default:
		return TierS3
	}
}
