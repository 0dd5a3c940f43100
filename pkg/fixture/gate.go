package fixture

import (
	"fmt"
)

// GateResult is the activation-gate verdict for one pack run.
type GateResult struct {
	// CanActivate is true only when the run is clean end to end.
	CanActivate bool `json:"canActivate"`

	// Reasons lists every blocking condition with its fix path. Empty
	// when CanActivate is true.
	Reasons []GateReason `json:"reasons,omitempty"`
}

// GateReason is one blocking condition with its remediation hint.
type GateReason struct {
	Message string `json:"message"`
	FixPath string `json:"fixPath"`
}

// CheckActivationGate decides whether a fixture run permits template
// activation. The gate is all-or-nothing: one failed case, one
// non-canonical reason code, or one missing evidence key anywhere in
// the run blocks activation. "Mostly passing" is not a gate outcome.
func CheckActivationGate(run *RunResult) *GateResult {
	result := &GateResult{}

	if run == nil {
		result.Reasons = append(result.Reasons, GateReason{
			Message: "no fixture run result available",
			FixPath: "run the template's fixture pack before attempting activation",
		})
		return result
	}

	for _, res := range run.Results {
		switch res.Status {
		case CaseFailed:
			result.Reasons = append(result.Reasons, GateReason{
				Message: fmt.Sprintf("fixture %s failed: expected %s, got %s", res.FixtureID, res.ExpectedOutcome, res.ActualOutcome),
				FixPath: "fix the template rules or correct the fixture expectation, then re-run the pack",
			})
		case CaseError:
			result.Reasons = append(result.Reasons, GateReason{
				Message: fmt.Sprintf("fixture %s errored: %s", res.FixtureID, res.Error),
				FixPath: "resolve the validation error or raise the case time budget, then re-run the pack",
			})
		}

		if len(res.NonCanonicalReasonCodes) > 0 {
			result.Reasons = append(result.Reasons, GateReason{
				Message: fmt.Sprintf("fixture %s produced non-canonical reason codes %v", res.FixtureID, res.NonCanonicalReasonCodes),
				FixPath: "restrict the validator output to the canonical reason-code set",
			})
		}

		if len(res.MissingEvidenceKeys) > 0 {
			result.Reasons = append(result.Reasons, GateReason{
				Message: fmt.Sprintf("fixture %s is missing required evidence keys %v", res.FixtureID, res.MissingEvidenceKeys),
				FixPath: "ensure the validator emits every required evidence artifact",
			})
		}
	}

	result.CanActivate = len(result.Reasons) == 0
	return result
}
