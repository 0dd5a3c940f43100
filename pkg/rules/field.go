package rules

import (
	"fmt"
	"regexp"
	"strings"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/template"
)

// evaluateFieldRule evaluates one plain field rule against the
// extracted fields. Check order: presence, extraction confidence,
// declared validators, then documentation follow-up.
func (e *Engine) evaluateFieldRule(name string, rule *template.FieldRule, fields map[string]*ExtractedField) []ValidationResult {
	if rule == nil {
		return nil
	}

	extracted, present := fields[name]
	if present && strings.TrimSpace(extracted.Value) == "" {
		present = false
	}

	if !present {
		if rule.Required {
			return []ValidationResult{{
				Field:      name,
				Status:     StatusFailed,
				Severity:   reason.SeverityMajor,
				ReasonCode: reason.MissingField,
				Message:    fmt.Sprintf("required field %q is missing", name),
			}}
		}
		return []ValidationResult{{
			Field:      name,
			Status:     StatusSkipped,
			Severity:   reason.SeverityInfo,
			ReasonCode: reason.Valid,
			Message:    fmt.Sprintf("optional field %q not present", name),
		}}
	}

	if extracted.Confidence < e.confidenceThreshold {
		return []ValidationResult{{
			Field:      name,
			Status:     StatusWarning,
			Severity:   reason.SeverityMinor,
			ReasonCode: reason.LowConfidence,
			Message:    fmt.Sprintf("field %q extracted with confidence %.2f below threshold %.2f", name, extracted.Confidence, e.confidenceThreshold),
		}}
	}

	for _, v := range rule.Validators {
		if msg, ok := runValidator(v, extracted.Value); !ok {
			return []ValidationResult{{
				Field:      name,
				Status:     StatusFailed,
				Severity:   reason.SeverityMajor,
				ReasonCode: reason.InvalidFormat,
				Message:    fmt.Sprintf("field %q: %s", name, msg),
			}}
		}
	}

	if rule.DocumentationRule != nil && rule.DocumentationRule.IfYes != nil && isAffirmative(extracted.Value) {
		if msg, ok := e.checkFollowUp(rule.DocumentationRule.IfYes, fields); !ok {
			return []ValidationResult{{
				Field:      name,
				Status:     StatusFailed,
				Severity:   reason.SeverityMajor,
				ReasonCode: reason.IncompleteEvidence,
				Message:    fmt.Sprintf("field %q: %s", name, msg),
			}}
		}
	}

	return []ValidationResult{{
		Field:      name,
		Status:     StatusPassed,
		Severity:   reason.SeverityInfo,
		ReasonCode: reason.Valid,
		Message:    fmt.Sprintf("field %q passed validation", name),
	}}
}

// runValidator applies one declared validator to a field value.
func runValidator(v template.Validator, value string) (string, bool) {
	switch v.Kind {
	case template.ValidatorRequired:
		if strings.TrimSpace(value) == "" {
			return "value is empty", false
		}
	case template.ValidatorMinLength:
		if len(strings.TrimSpace(value)) < v.Min {
			return fmt.Sprintf("value shorter than minimum length %d", v.Min), false
		}
	case template.ValidatorRegex:
		// Pattern validity is enforced at pack load.
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return fmt.Sprintf("invalid pattern %q", v.Pattern), false
		}
		if !re.MatchString(value) {
			return fmt.Sprintf("value does not match pattern %q", v.Pattern), false
		}
	}
	return "", true
}

// checkFollowUp verifies the evidence a triggered ifYes condition
// demands: a named follow-up field, engineer comments, or both.
func (e *Engine) checkFollowUp(cond *template.FollowUpCondition, fields map[string]*ExtractedField) (string, bool) {
	if cond.RequiresFollowUp != "" {
		followUp, ok := fields[cond.RequiresFollowUp]
		if !ok || strings.TrimSpace(followUp.Value) == "" {
			return fmt.Sprintf("follow-up field %q is required but absent", cond.RequiresFollowUp), false
		}
	}
	if cond.RequiresComments {
		if !e.hasSufficientComments(fields) {
			return fmt.Sprintf("comments of at least %d characters are required", e.minCommentLength), false
		}
	}
	return "", true
}

// hasSufficientComments reports whether the engineer-comments field is
// present with at least the minimum evidence length.
func (e *Engine) hasSufficientComments(fields map[string]*ExtractedField) bool {
	comments, ok := fields[CommentsField]
	return ok && len(strings.TrimSpace(comments.Value)) >= e.minCommentLength
}

// isAffirmative reports whether a raw field value reads as a "yes"
// answer for documentation-rule triggering.
func isAffirmative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "green", "pass", "ok":
		return true
	}
	return false
}
