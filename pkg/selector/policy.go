package selector

import (
	"fmt"

	"veridian-hq/saturn/pkg/reason"
)

// DecisionKind is the outcome class of the selection safety policy.
type DecisionKind string

const (
	// DecisionAutoSelect picks a template without human review.
	DecisionAutoSelect DecisionKind = "AUTO_SELECT"

	// DecisionReviewQueue routes the document to human adjudication.
	DecisionReviewQueue DecisionKind = "REVIEW_QUEUE"

	// DecisionHardStop refuses to guess. The caller must not proceed.
	DecisionHardStop DecisionKind = "HARD_STOP"
)

// Decision is the result of applying the safety policy to the ranked
// candidate list. Stops are first-class outcomes, not errors.
type Decision struct {
	// Kind classifies the decision.
	Kind DecisionKind `json:"kind"`

	// TemplateID is set for AUTO_SELECT decisions.
	TemplateID string `json:"templateId,omitempty"`

	// Reason explains the decision in human terms.
	Reason string `json:"reason,omitempty"`

	// ReasonCode is the canonical code for queue/stop decisions.
	ReasonCode reason.Code `json:"reasonCode,omitempty"`

	// FixPath is the remediation hint for HARD_STOP decisions.
	FixPath string `json:"fixPath,omitempty"`
}

// DefaultReviewGapThreshold is the minimum score gap between the top
// candidate and the runner-up for a medium-confidence auto-select.
const DefaultReviewGapThreshold = 10

// ApplyPolicy converts a ranked candidate list into a Decision. The
// candidates must already be sorted by score descending.
//
// HARD_STOP: no viable candidate, or the top candidate's confidence is
// low. REVIEW_QUEUE: medium confidence with the runner-up within the
// gap threshold. AUTO_SELECT: high confidence, or medium with a clear
// gap.
func ApplyPolicy(candidates []*Score, gapThreshold int) Decision {
	if gapThreshold <= 0 {
		gapThreshold = DefaultReviewGapThreshold
	}

	var top *Score
	for _, c := range candidates {
		if c.Viable() {
			top = c
			break
		}
	}

	if top == nil {
		return Decision{
			Kind:       DecisionHardStop,
			Reason:     "no template matched the document with usable confidence",
			ReasonCode: reason.LowConfidence,
			FixPath:    "verify the document type, or register a template whose selection fingerprint matches this form",
		}
	}

	if top.Confidence == ConfidenceLow {
		return Decision{
			Kind:       DecisionHardStop,
			Reason:     fmt.Sprintf("best candidate %s scored %d (low confidence)", top.TemplateID, top.Score),
			ReasonCode: reason.LowConfidence,
			FixPath:    "select the template explicitly, or improve the template's selection fingerprint",
		}
	}

	if top.Confidence == ConfidenceMedium {
		gap := top.Score - runnerUpScore(candidates, top)
		if gap < gapThreshold {
			return Decision{
				Kind:       DecisionReviewQueue,
				Reason:     fmt.Sprintf("candidate %s scored %d with runner-up gap %d below threshold %d", top.TemplateID, top.Score, gap, gapThreshold),
				ReasonCode: reason.Conflict,
			}
		}
	}

	return Decision{
		Kind:       DecisionAutoSelect,
		TemplateID: top.TemplateID,
		Reason:     fmt.Sprintf("candidate %s scored %d (%s confidence)", top.TemplateID, top.Score, top.Confidence),
	}
}

// runnerUpScore returns the score of the best viable candidate other
// than top, or a score far below any threshold when none exists.
func runnerUpScore(candidates []*Score, top *Score) int {
	for _, c := range candidates {
		if c == top {
			continue
		}
		if c.Viable() {
			return c.Score
		}
	}
	return scoreDisqualified
}
