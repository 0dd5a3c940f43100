// Package rules evaluates extracted document fields against a
// template's field rules, checklist groups, and documentation-audit
// rules, producing a pass/fail outcome with canonical reason codes.
//
// The engine fails closed: an unknown template never raises an error
// out of EvaluateDocument; it produces a FAIL result with a single
// PIPELINE_ERROR finding.
package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/telemetry/metrics"
	"veridian-hq/saturn/pkg/template"
)

// EngineVersion is the rules engine algorithm version, carried in
// results and cache keys. Bump whenever evaluation semantics change.
const EngineVersion = "rules/1.4.0"

// Default thresholds.
const (
	// DefaultLowConfidenceThreshold is the extraction confidence below
	// which a present field is flagged LOW_CONFIDENCE.
	DefaultLowConfidenceThreshold = 0.70

	// DefaultMinCommentLength is the minimum engineer-comment length
	// accepted as documentation evidence.
	DefaultMinCommentLength = 10
)

// CommentsField is the extracted-field name carrying free-text engineer
// comments, consulted as documentation evidence.
const CommentsField = "engineerComments"

// TemplateSource resolves template definitions. Satisfied by
// *registry.Registry.
type TemplateSource interface {
	GetTemplate(id string) (*template.Template, bool)
}

// Config contains rules engine configuration.
type Config struct {
	// LowConfidenceThreshold flags present fields extracted below this
	// confidence (default 0.70).
	LowConfidenceThreshold float64

	// MinCommentLength is the minimum engineer-comment length accepted
	// as evidence (default 10).
	MinCommentLength int

	// Metrics receives evaluation counters when set.
	Metrics *metrics.Metrics
}

// Engine evaluates documents against template rules.
type Engine struct {
	source              TemplateSource
	confidenceThreshold float64
	minCommentLength    int
	metrics             *metrics.Metrics
	logger              *slog.Logger
}

// New creates a rules engine over the given template source.
func New(source TemplateSource, config *Config, logger *slog.Logger) *Engine {
	threshold := DefaultLowConfidenceThreshold
	minComment := DefaultMinCommentLength
	var m *metrics.Metrics
	if config != nil {
		if config.LowConfidenceThreshold > 0 {
			threshold = config.LowConfidenceThreshold
		}
		if config.MinCommentLength > 0 {
			minComment = config.MinCommentLength
		}
		m = config.Metrics
	}
	if logger == nil {
		logger = slog.Default().With("component", "rules.engine")
	}
	return &Engine{
		source:              source,
		confidenceThreshold: threshold,
		minCommentLength:    minComment,
		metrics:             m,
		logger:              logger,
	}
}

// EvaluateDocument evaluates extracted fields against the named
// template. Field entries are evaluated sorted by name so identical
// input always yields identical finding order.
func (e *Engine) EvaluateDocument(templateID string, fields []ExtractedField) *AuditResult {
	start := time.Now()

	tmpl, ok := e.source.GetTemplate(templateID)
	if !ok {
		e.logger.Warn("evaluation requested for unknown template", "template_id", templateID)
		result := failClosed(templateID, fmt.Sprintf("template %q is not active or does not exist", templateID))
		e.metrics.ObserveEvaluation(string(result.DocumentOutcome), string(result.DocumentationQuality), time.Since(start))
		return result
	}

	fieldMap := indexFields(fields)
	doc := newDocContext(tmpl, fieldMap)

	var results []ValidationResult

	names := make([]string, 0, len(tmpl.FieldRules))
	for name := range tmpl.FieldRules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := tmpl.FieldRules[name]
		if entry == nil {
			continue
		}
		switch entry.Kind {
		case template.EntryKindField:
			results = append(results, e.evaluateFieldRule(name, entry.Field, fieldMap)...)
		case template.EntryKindChecklist:
			results = append(results, e.evaluateChecklist(entry.Checklist, doc, fieldMap)...)
		}
	}

	results = append(results, e.evaluateDocAuditRules(tmpl, results, fieldMap)...)

	result := aggregate(templateID, results)

	e.metrics.ObserveEvaluation(string(result.DocumentOutcome), string(result.DocumentationQuality), time.Since(start))

	e.logger.Info("document evaluated",
		"template_id", templateID,
		"outcome", string(result.DocumentOutcome),
		"quality", string(result.DocumentationQuality),
		"findings", len(results),
	)

	return result
}

// failClosed builds the typed failure result for evaluation paths that
// cannot proceed.
func failClosed(templateID, message string) *AuditResult {
	finding := ValidationResult{
		Field:      "document",
		Status:     StatusFailed,
		Severity:   reason.SeverityCritical,
		ReasonCode: reason.PipelineError,
		Message:    message,
	}
	return aggregate(templateID, []ValidationResult{finding})
}

// indexFields maps extracted fields by name. When the same field is
// extracted twice the higher-confidence extraction wins.
func indexFields(fields []ExtractedField) map[string]*ExtractedField {
	out := make(map[string]*ExtractedField, len(fields))
	for i := range fields {
		f := &fields[i]
		if existing, ok := out[f.Field]; ok && existing.Confidence >= f.Confidence {
			continue
		}
		out[f.Field] = f
	}
	return out
}
