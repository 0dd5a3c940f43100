package selector

import (
	"fmt"
	"regexp"

	"veridian-hq/saturn/pkg/template"
)

// Confidence is the band a selection score falls into.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Scoring weights. Disqualification short-circuits: once a template is
// disqualified no partial credit is awarded for other criteria.
const (
	scoreDisqualified    = -1000
	weightRequiredAll    = 30
	weightRequiredAny    = 20
	weightOptional       = 5
	weightFormCode       = 25
	weightClient         = 15
	weightContext        = 10
	weightExcludePenalty = -50
)

// Confidence band thresholds.
const (
	thresholdHigh   = 80
	thresholdMedium = 50
	thresholdLow    = 20
)

// Score is the per-template result of scoring one document.
type Score struct {
	// TemplateID identifies the scored template.
	TemplateID string `json:"templateId"`

	// Score is the accumulated weighted score. Disqualified templates
	// carry -1000.
	Score int `json:"score"`

	// Confidence is the band derived from the score.
	Confidence Confidence `json:"confidenceBand"`

	// Disqualified is true when a mandatory criterion failed.
	Disqualified bool `json:"disqualified"`

	// TokensMatched and TokensUnmatched record which fingerprint
	// tokens did and did not appear in the document text.
	TokensMatched   []string `json:"tokensMatched"`
	TokensUnmatched []string `json:"tokensUnmatched"`

	// FormCodeMatch is true when the template's form-code regex
	// matched the raw text.
	FormCodeMatch bool `json:"formCodeMatch"`

	// ContextMatches lists non-token context criteria that matched
	// (client, asset type, work type).
	ContextMatches []string `json:"contextMatches"`

	// Reasons explains each scoring contribution in human terms.
	Reasons []string `json:"reasons"`
}

// ScoreContext carries the document-side inputs to scoring.
type ScoreContext struct {
	// ExtractedText is the raw document text.
	ExtractedText string

	// NormalizedText is the pre-normalized form of ExtractedText.
	// Computed once per selection call, shared across candidates.
	NormalizedText string

	// Client, AssetType, and WorkType are optional document context.
	Client    string
	AssetType string
	WorkType  string
}

// NewScoreContext builds a scoring context, normalizing the text once.
func NewScoreContext(extractedText, client, assetType, workType string) *ScoreContext {
	return &ScoreContext{
		ExtractedText:  extractedText,
		NormalizedText: NormalizeText(extractedText),
		Client:         client,
		AssetType:      assetType,
		WorkType:       workType,
	}
}

// ScoreTemplate scores one template against a document. Templates
// without selection criteria score zero with low confidence: they can
// only be chosen explicitly, never by fingerprint.
func ScoreTemplate(tmpl *template.Template, ctx *ScoreContext) *Score {
	result := &Score{
		TemplateID:      tmpl.TemplateID,
		TokensMatched:   []string{},
		TokensUnmatched: []string{},
		ContextMatches:  []string{},
		Reasons:         []string{},
	}

	sel := tmpl.Selection
	if sel == nil {
		result.Confidence = ConfidenceLow
		result.Reasons = append(result.Reasons, "no selection criteria declared")
		return result
	}

	// Mandatory criteria first. Any failure disqualifies outright.
	for _, token := range sel.RequiredTokensAll {
		if !ContainsToken(ctx.NormalizedText, token) {
			result.TokensUnmatched = append(result.TokensUnmatched, token)
			result.Disqualified = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("required token %q not found", token))
		}
	}

	if len(sel.RequiredTokensAny) > 0 {
		anyMatched := false
		for _, token := range sel.RequiredTokensAny {
			if ContainsToken(ctx.NormalizedText, token) {
				anyMatched = true
				break
			}
		}
		if !anyMatched {
			result.Disqualified = true
			result.TokensUnmatched = append(result.TokensUnmatched, sel.RequiredTokensAny...)
			result.Reasons = append(result.Reasons, "no requiredTokensAny token found")
		}
	}

	for _, token := range sel.ExcludeTokens {
		if ContainsToken(ctx.NormalizedText, token) {
			result.Disqualified = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("exclude token %q found", token))
		}
	}

	if result.Disqualified {
		result.Score = scoreDisqualified
		result.Confidence = ConfidenceLow
		return result
	}

	score := 0

	for _, token := range sel.RequiredTokensAll {
		// All matched, or we would have disqualified above.
		result.TokensMatched = append(result.TokensMatched, token)
		score += weightRequiredAll
		result.Reasons = append(result.Reasons, fmt.Sprintf("required token %q matched (+%d)", token, weightRequiredAll))
	}

	for _, token := range sel.RequiredTokensAny {
		if ContainsToken(ctx.NormalizedText, token) {
			result.TokensMatched = append(result.TokensMatched, token)
			score += weightRequiredAny
			result.Reasons = append(result.Reasons, fmt.Sprintf("alternative token %q matched (+%d)", token, weightRequiredAny))
		} else {
			result.TokensUnmatched = append(result.TokensUnmatched, token)
		}
	}

	for _, token := range sel.OptionalTokens {
		if ContainsToken(ctx.NormalizedText, token) {
			result.TokensMatched = append(result.TokensMatched, token)
			score += weightOptional
			result.Reasons = append(result.Reasons, fmt.Sprintf("optional token %q matched (+%d)", token, weightOptional))
		} else {
			result.TokensUnmatched = append(result.TokensUnmatched, token)
		}
	}

	if sel.FormCodeRegex != "" {
		// The regex is validated at pack load; a compile failure here
		// simply scores no form-code points.
		if re, err := regexp.Compile(sel.FormCodeRegex); err == nil && re.MatchString(ctx.ExtractedText) {
			result.FormCodeMatch = true
			score += weightFormCode
			result.Reasons = append(result.Reasons, fmt.Sprintf("form code regex matched (+%d)", weightFormCode))
		}
	}

	if ctx.Client != "" && ctx.Client == tmpl.Client {
		score += weightClient
		result.ContextMatches = append(result.ContextMatches, "client")
		result.Reasons = append(result.Reasons, fmt.Sprintf("client matched (+%d)", weightClient))
	}

	if ctx.AssetType != "" && containsString(tmpl.AssetTypes, ctx.AssetType) {
		score += weightContext
		result.ContextMatches = append(result.ContextMatches, "assetType")
		result.Reasons = append(result.Reasons, fmt.Sprintf("asset type matched (+%d)", weightContext))
	}

	if ctx.WorkType != "" && containsString(tmpl.WorkTypes, ctx.WorkType) {
		score += weightContext
		result.ContextMatches = append(result.ContextMatches, "workType")
		result.Reasons = append(result.Reasons, fmt.Sprintf("work type matched (+%d)", weightContext))
	}

	result.Score = score
	result.Confidence = confidenceForScore(score)
	return result
}

// confidenceForScore maps a score to its confidence band.
func confidenceForScore(score int) Confidence {
	switch {
	case score >= thresholdHigh:
		return ConfidenceHigh
	case score >= thresholdMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Viable reports whether the score is high enough to be considered at
// all for auto-processing.
func (s *Score) Viable() bool {
	return !s.Disqualified && s.Score >= thresholdLow
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
