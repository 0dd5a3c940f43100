package template

// SelectionCriteria is the token/regex fingerprint used to recognize a
// document type from raw extracted text. Pure data, owned by the
// template; scoring semantics live in the selector package.
type SelectionCriteria struct {
	// RequiredTokensAll must all appear in the document text. A single
	// missing token disqualifies the template outright.
	RequiredTokensAll []string `yaml:"requiredTokensAll,omitempty" json:"requiredTokensAll,omitempty"`

	// RequiredTokensAny requires at least one match when non-empty.
	RequiredTokensAny []string `yaml:"requiredTokensAny,omitempty" json:"requiredTokensAny,omitempty"`

	// OptionalTokens contribute score only; they never disqualify.
	OptionalTokens []string `yaml:"optionalTokens,omitempty" json:"optionalTokens,omitempty"`

	// ExcludeTokens disqualify the template when any of them matches.
	ExcludeTokens []string `yaml:"excludeTokens,omitempty" json:"excludeTokens,omitempty"`

	// FormCodeRegex matches the document's printed form code. Optional.
	FormCodeRegex string `yaml:"formCodeRegex,omitempty" json:"formCodeRegex,omitempty"`
}
