package fixture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/telemetry/metrics"
)

func passingValidate(ctx context.Context, c Case) (*Outcome, error) {
	return &Outcome{
		Outcome:      c.ExpectedOutcome,
		ReasonCodes:  []reason.Code{reason.Valid},
		EvidenceKeys: c.RequiredEvidenceKeys,
	}, nil
}

func testPack(n int) *Pack {
	pack := &Pack{
		PackID:          "PACK_TEST",
		TemplateID:      "ACME_PUMP_V1",
		TemplateVersion: "1.0.0",
	}
	for i := 0; i < n; i++ {
		pack.Fixtures = append(pack.Fixtures, Case{
			FixtureID:       fmt.Sprintf("fx-%03d", i),
			ExpectedOutcome: "PASS",
		})
	}
	pack.Canonicalize()
	return pack
}

func TestPackHash_OrderIndependent(t *testing.T) {
	cases := []Case{
		{FixtureID: "fx-b", ExpectedOutcome: "PASS"},
		{FixtureID: "fx-a", ExpectedOutcome: "FAIL"},
		{FixtureID: "fx-c", ExpectedOutcome: "PASS"},
	}
	reversed := []Case{cases[2], cases[1], cases[0]}

	packA := &Pack{PackID: "P", TemplateID: "T_V1", Fixtures: cases}
	packB := &Pack{PackID: "P", TemplateID: "T_V1", Fixtures: reversed}

	hashA, err := packA.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}
	hashB, err := packB.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}

	if hashA != hashB {
		t.Errorf("hashes differ across authoring order: %s vs %s", hashA, hashB)
	}
}

func TestRunCase_Pass(t *testing.T) {
	runner := NewRunner(nil, nil)
	c := Case{
		FixtureID:            "fx-001",
		ExpectedOutcome:      "PASS",
		ExpectedReasonCodes:  []reason.Code{reason.Valid},
		RequiredEvidenceKeys: []string{"serialNumber"},
	}

	got := runner.RunCase(context.Background(), c, passingValidate)

	if got.Status != CasePassed {
		t.Errorf("status = %s, want passed (error: %s)", got.Status, got.Error)
	}
	if got.ActualOutcome != "PASS" {
		t.Errorf("actualOutcome = %s, want PASS", got.ActualOutcome)
	}
}

func TestRunCase_OutcomeMismatch(t *testing.T) {
	runner := NewRunner(nil, nil)
	c := Case{FixtureID: "fx-001", ExpectedOutcome: "FAIL"}

	got := runner.RunCase(context.Background(), c, func(ctx context.Context, c Case) (*Outcome, error) {
		return &Outcome{Outcome: "PASS"}, nil
	})

	if got.Status != CaseFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}

func TestRunCase_NonCanonicalReasonCodeFails(t *testing.T) {
	runner := NewRunner(nil, nil)
	c := Case{FixtureID: "fx-001", ExpectedOutcome: "PASS"}

	got := runner.RunCase(context.Background(), c, func(ctx context.Context, c Case) (*Outcome, error) {
		return &Outcome{
			Outcome:     "PASS",
			ReasonCodes: []reason.Code{reason.Valid, "MADE_UP_CODE"},
		}, nil
	})

	if got.Status != CaseFailed {
		t.Errorf("status = %s, want failed on non-canonical reason code", got.Status)
	}
	if len(got.NonCanonicalReasonCodes) != 1 || got.NonCanonicalReasonCodes[0] != "MADE_UP_CODE" {
		t.Errorf("nonCanonicalReasonCodes = %v, want [MADE_UP_CODE]", got.NonCanonicalReasonCodes)
	}
}

func TestRunCase_MissingEvidenceFails(t *testing.T) {
	runner := NewRunner(nil, nil)
	c := Case{
		FixtureID:            "fx-001",
		ExpectedOutcome:      "PASS",
		RequiredEvidenceKeys: []string{"serialNumber", "signature"},
	}

	got := runner.RunCase(context.Background(), c, func(ctx context.Context, c Case) (*Outcome, error) {
		return &Outcome{Outcome: "PASS", EvidenceKeys: []string{"serialNumber"}}, nil
	})

	if got.Status != CaseFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if len(got.MissingEvidenceKeys) != 1 || got.MissingEvidenceKeys[0] != "signature" {
		t.Errorf("missingEvidenceKeys = %v, want [signature]", got.MissingEvidenceKeys)
	}
}

func TestRunCase_TimeoutContained(t *testing.T) {
	runner := NewRunner(&Config{CaseTimeout: 50 * time.Millisecond}, nil)
	c := Case{FixtureID: "fx-hang", ExpectedOutcome: "PASS"}

	start := time.Now()
	got := runner.RunCase(context.Background(), c, func(ctx context.Context, c Case) (*Outcome, error) {
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
		return &Outcome{Outcome: "PASS"}, nil
	})
	elapsed := time.Since(start)

	if got.Status != CaseError {
		t.Errorf("status = %s, want error on timeout", got.Status)
	}
	if got.ActualOutcome != OutcomeError {
		t.Errorf("actualOutcome = %s, want %s", got.ActualOutcome, OutcomeError)
	}
	if elapsed > 2*time.Second {
		t.Errorf("RunCase took %s, want prompt return after the 50ms budget", elapsed)
	}
}

func TestRunCase_ValidatorError(t *testing.T) {
	runner := NewRunner(nil, nil)
	c := Case{FixtureID: "fx-001", ExpectedOutcome: "PASS"}

	got := runner.RunCase(context.Background(), c, func(ctx context.Context, c Case) (*Outcome, error) {
		return nil, fmt.Errorf("extraction backend unavailable")
	})

	if got.Status != CaseError {
		t.Errorf("status = %s, want error", got.Status)
	}
	if got.Error == "" {
		t.Error("Error is empty, want the validator error message")
	}
}

func TestRunPack_CanonicalResultOrder(t *testing.T) {
	runner := NewRunner(&Config{MaxConcurrency: 3}, nil)
	pack := testPack(10)

	// Later cases finish first so execution order differs from pack order.
	run, err := runner.RunPack(context.Background(), pack, func(ctx context.Context, c Case) (*Outcome, error) {
		var n int
		fmt.Sscanf(c.FixtureID, "fx-%d", &n)
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		return &Outcome{Outcome: "PASS"}, nil
	})
	if err != nil {
		t.Fatalf("RunPack() error = %v, want nil", err)
	}

	if len(run.Results) != 10 {
		t.Fatalf("results = %d, want 10", len(run.Results))
	}
	for i, res := range run.Results {
		want := fmt.Sprintf("fx-%03d", i)
		if res.FixtureID != want {
			t.Errorf("results[%d].FixtureID = %s, want %s (canonical order)", i, res.FixtureID, want)
		}
	}
	if run.OverallStatus != RunPassed {
		t.Errorf("overallStatus = %s, want passed", run.OverallStatus)
	}
	if run.Passed != 10 {
		t.Errorf("passed = %d, want 10", run.Passed)
	}
}

func TestRunPack_NilPack(t *testing.T) {
	runner := NewRunner(nil, nil)
	if _, err := runner.RunPack(context.Background(), nil, passingValidate); err == nil {
		t.Error("RunPack(nil) error = nil, want error")
	}
}

func TestRunPack_CarriesPackHash(t *testing.T) {
	runner := NewRunner(nil, nil)
	pack := testPack(2)

	wantHash, err := pack.Hash()
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}

	run, err := runner.RunPack(context.Background(), pack, passingValidate)
	if err != nil {
		t.Fatalf("RunPack() error = %v, want nil", err)
	}
	if run.PackHash != wantHash {
		t.Errorf("packHash = %s, want %s", run.PackHash, wantHash)
	}
}

func TestCheckActivationGate_AllOrNothing(t *testing.T) {
	run := &RunResult{
		PackID:        "PACK_TEST",
		OverallStatus: RunFailed,
		Passed:        9,
		Failed:        1,
	}
	for i := 0; i < 9; i++ {
		run.Results = append(run.Results, CaseResult{
			FixtureID: fmt.Sprintf("fx-%03d", i),
			Status:    CasePassed,
		})
	}
	run.Results = append(run.Results, CaseResult{
		FixtureID:       "fx-009",
		Status:          CaseFailed,
		ActualOutcome:   "PASS",
		ExpectedOutcome: "FAIL",
	})

	gate := CheckActivationGate(run)

	if gate.CanActivate {
		t.Error("CanActivate = true with 9/10 passing, want false")
	}
	if len(gate.Reasons) != 1 {
		t.Fatalf("reasons = %d, want 1", len(gate.Reasons))
	}
	if gate.Reasons[0].FixPath == "" {
		t.Error("gate reason has empty fixPath")
	}
}

func TestCheckActivationGate_CleanRunActivates(t *testing.T) {
	run := &RunResult{
		PackID:        "PACK_TEST",
		OverallStatus: RunPassed,
		Results: []CaseResult{
			{FixtureID: "fx-000", Status: CasePassed},
			{FixtureID: "fx-001", Status: CasePassed},
		},
		Passed: 2,
	}

	gate := CheckActivationGate(run)

	if !gate.CanActivate {
		t.Errorf("CanActivate = false for clean run, reasons: %v", gate.Reasons)
	}
}

func TestCheckActivationGate_NonCanonicalCodesBlock(t *testing.T) {
	run := &RunResult{
		Results: []CaseResult{
			{
				FixtureID:               "fx-000",
				Status:                  CaseFailed,
				NonCanonicalReasonCodes: []reason.Code{"WEIRD"},
			},
		},
	}

	gate := CheckActivationGate(run)

	if gate.CanActivate {
		t.Error("CanActivate = true with non-canonical codes, want false")
	}
	// Failed status and non-canonical codes are separate blocking reasons.
	if len(gate.Reasons) != 2 {
		t.Errorf("reasons = %d, want 2", len(gate.Reasons))
	}
}

func TestCheckActivationGate_NilRun(t *testing.T) {
	gate := CheckActivationGate(nil)
	if gate.CanActivate {
		t.Error("CanActivate = true for nil run, want false")
	}
}

func TestRunPack_PackBudgetContained(t *testing.T) {
	runner := NewRunner(&Config{
		CaseTimeout:    10 * time.Second,
		PackTimeout:    100 * time.Millisecond,
		MaxConcurrency: 2,
	}, nil)
	pack := testPack(6)

	slow := func(ctx context.Context, c Case) (*Outcome, error) {
		select {
		case <-time.After(time.Second):
			return passingValidate(ctx, c)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	start := time.Now()
	run, err := runner.RunPack(context.Background(), pack, slow)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("RunPack() error = %v, want nil", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("pack run took %s, want the pack budget to cut it well under the 6s serial worst case", elapsed)
	}
	if run.Errors == 0 {
		t.Error("errors = 0, want at least one case reported over the pack time budget")
	}
	if run.OverallStatus != RunFailed {
		t.Errorf("overallStatus = %s, want failed", run.OverallStatus)
	}
	if got := len(run.Results); got != 6 {
		t.Errorf("results = %d, want every case accounted for", got)
	}
}

func TestRunPack_RecordsMetrics(t *testing.T) {
	m := metrics.New("test")
	runner := NewRunner(&Config{Metrics: m}, nil)

	run, err := runner.RunPack(context.Background(), testPack(3), passingValidate)
	if err != nil {
		t.Fatalf("RunPack() error = %v, want nil", err)
	}
	if run.OverallStatus != RunPassed {
		t.Fatalf("overallStatus = %s, want passed", run.OverallStatus)
	}

	if got := testutil.ToFloat64(m.FixtureRuns.WithLabelValues("passed")); got != 1 {
		t.Errorf("fixture runs counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FixtureCaseResults.WithLabelValues("passed")); got != 3 {
		t.Errorf("fixture case counter = %v, want 3", got)
	}
}
