// Package selector chooses the correct template for an unlabeled
// document by scoring active templates against the document's extracted
// text, then applying a confidence-banded safety policy. Every call
// produces an audit trace, including stops: "I don't know which
// template this is" is an expected outcome, not an error.
package selector

import (
	"log/slog"
	"sort"
	"time"

	"veridian-hq/saturn/pkg/canonical"
	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/telemetry/metrics"
	"veridian-hq/saturn/pkg/template"
)

// EngineVersion is the selector algorithm version, carried in traces
// and cache keys. Bump whenever scoring weights, thresholds, or policy
// change.
const EngineVersion = "selector/1.2.0"

// TemplateSource provides the active template set. Satisfied by
// *registry.Registry.
type TemplateSource interface {
	ActiveTemplates() []*template.Template
	GetTemplate(id string) (*template.Template, bool)
}

// Selector scores templates and applies the selection safety policy.
type Selector struct {
	source       TemplateSource
	gapThreshold int
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// Config contains selector configuration.
type Config struct {
	// ReviewGapThreshold is the minimum score gap for a
	// medium-confidence auto-select (default 10).
	ReviewGapThreshold int

	// Metrics receives selection decision counters when set.
	Metrics *metrics.Metrics
}

// New creates a selector over the given template source.
func New(source TemplateSource, config *Config, logger *slog.Logger) *Selector {
	gap := DefaultReviewGapThreshold
	var m *metrics.Metrics
	if config != nil {
		if config.ReviewGapThreshold > 0 {
			gap = config.ReviewGapThreshold
		}
		m = config.Metrics
	}
	if logger == nil {
		logger = slog.Default().With("component", "selector")
	}
	return &Selector{
		source:       source,
		gapThreshold: gap,
		metrics:      m,
		logger:       logger,
	}
}

// Input carries the document-side inputs to a selection call.
type Input struct {
	// ExtractedText is the document's OCR text.
	ExtractedText string

	// Client, AssetType, and WorkType are optional context filters and
	// score contributors.
	Client    string
	AssetType string
	WorkType  string
}

// Result pairs the decision with its full audit trace.
type Result struct {
	Decision Decision
	Trace    *Trace

	// Warnings lists non-fatal conditions, such as an empty client
	// filter falling back to the full template set.
	Warnings []string
}

// SelectTemplate scores all active templates against the document and
// applies the safety policy. Deterministic: identical input and
// template set yield the identical decision and candidate ordering.
func (s *Selector) SelectTemplate(input Input) *Result {
	start := time.Now()
	result := &Result{}

	candidates := s.source.ActiveTemplates()

	// Client filter with explicit fallback. Losing every candidate to
	// the filter is surfaced, never silent.
	if input.Client != "" {
		filtered := make([]*template.Template, 0, len(candidates))
		for _, tmpl := range candidates {
			if tmpl.Client == input.Client {
				filtered = append(filtered, tmpl)
			}
		}
		if len(filtered) == 0 {
			warning := "client filter matched no templates, falling back to full active set"
			result.Warnings = append(result.Warnings, warning)
			s.logger.Warn("client filter matched no templates",
				"client", input.Client,
				"active_count", len(candidates),
			)
		} else {
			candidates = filtered
		}
	}

	ctx := NewScoreContext(input.ExtractedText, input.Client, input.AssetType, input.WorkType)

	scores := make([]*Score, 0, len(candidates))
	for _, tmpl := range candidates {
		scores = append(scores, ScoreTemplate(tmpl, ctx))
	}

	sortScores(scores)

	decision := ApplyPolicy(scores, s.gapThreshold)
	result.Decision = decision
	result.Trace = &Trace{
		TraceVersion:  TraceVersion,
		InputHash:     canonical.HashString(input.ExtractedText),
		Candidates:    scores,
		Decision:      decision,
		EngineVersion: EngineVersion,
	}

	band := "none"
	if len(scores) > 0 && scores[0].Viable() {
		band = string(scores[0].Confidence)
	}
	s.metrics.ObserveSelection(string(decision.Kind), band, time.Since(start))

	s.logger.Info("template selection",
		"decision", string(decision.Kind),
		"template_id", decision.TemplateID,
		"candidates", len(scores),
	)

	return result
}

// SelectTemplateByID bypasses scoring for explicit manual selection.
// The returned trace records the explicit choice with a maximal
// confidence score so downstream audit tooling sees a uniform artifact.
func (s *Selector) SelectTemplateByID(id string) *Result {
	start := time.Now()
	result := &Result{}

	tmpl, ok := s.source.GetTemplate(id)
	if !ok {
		decision := Decision{
			Kind:       DecisionHardStop,
			Reason:     "explicitly requested template is not active",
			ReasonCode: reason.PipelineError,
			FixPath:    "activate the template or correct the requested template ID",
		}
		result.Decision = decision
		result.Trace = &Trace{
			TraceVersion:       TraceVersion,
			ExplicitTemplateID: id,
			Candidates:         []*Score{},
			Decision:           decision,
			EngineVersion:      EngineVersion,
		}
		s.metrics.ObserveSelection(string(decision.Kind), "none", time.Since(start))
		return result
	}

	score := &Score{
		TemplateID:      tmpl.TemplateID,
		Score:           thresholdHigh,
		Confidence:      ConfidenceHigh,
		TokensMatched:   []string{},
		TokensUnmatched: []string{},
		ContextMatches:  []string{},
		Reasons:         []string{"explicit manual selection"},
	}

	decision := Decision{
		Kind:       DecisionAutoSelect,
		TemplateID: tmpl.TemplateID,
		Reason:     "explicit manual selection",
	}

	result.Decision = decision
	result.Trace = &Trace{
		TraceVersion:       TraceVersion,
		ExplicitTemplateID: id,
		Candidates:         []*Score{score},
		Decision:           decision,
		EngineVersion:      EngineVersion,
	}

	s.metrics.ObserveSelection(string(decision.Kind), string(ConfidenceHigh), time.Since(start))

	return result
}

// sortScores orders candidates by score descending, then template ID
// ascending. The tie-break keeps the ordering stable across runs.
func sortScores(scores []*Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].TemplateID < scores[j].TemplateID
	})
}
