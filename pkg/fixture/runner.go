package fixture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/telemetry/metrics"
)

// CaseStatus classifies one fixture result.
type CaseStatus string

const (
	CasePassed CaseStatus = "passed"
	CaseFailed CaseStatus = "failed"
	CaseError  CaseStatus = "error"
)

// OutcomeError is the actual outcome recorded when the validation
// function timed out or returned an error.
const OutcomeError = "ERROR"

// CaseResult is the outcome of running one fixture case. Failure
// classes land in typed fields so tooling can react to each
// differently.
type CaseResult struct {
	// FixtureID identifies the case.
	FixtureID string `json:"fixtureId"`

	// Status is the result classification.
	Status CaseStatus `json:"status"`

	// ActualOutcome is what the validation function produced, or ERROR.
	ActualOutcome string `json:"actualOutcome"`

	// ExpectedOutcome echoes the case expectation.
	ExpectedOutcome string `json:"expectedOutcome"`

	// MissingReasonCodes lists expected reason codes absent from the
	// actual output.
	MissingReasonCodes []reason.Code `json:"missingReasonCodes,omitempty"`

	// NonCanonicalReasonCodes lists actual reason codes outside the
	// canonical closed set. Their presence is itself a defect.
	NonCanonicalReasonCodes []reason.Code `json:"nonCanonicalReasonCodes,omitempty"`

	// MissingEvidenceKeys lists required evidence keys absent from the
	// actual output.
	MissingEvidenceKeys []string `json:"missingEvidenceKeys,omitempty"`

	// Error describes a timeout or validator error.
	Error string `json:"error,omitempty"`

	// Duration is the case wall-clock run time.
	Duration time.Duration `json:"duration"`
}

// RunStatus is the overall pack run classification.
type RunStatus string

const (
	RunPassed RunStatus = "passed"
	RunFailed RunStatus = "failed"
)

// RunResult aggregates a full pack run. Results are ordered by the
// pack's canonical case order regardless of execution interleaving;
// ordering is a correctness property for diffable reports.
type RunResult struct {
	// PackID identifies the pack that ran.
	PackID string `json:"packId"`

	// PackHash is the pack's content hash at run time.
	PackHash string `json:"packHash"`

	// OverallStatus is failed if any case failed or errored.
	OverallStatus RunStatus `json:"overallStatus"`

	// Results holds one entry per case, in canonical case order.
	Results []CaseResult `json:"results"`

	// Passed, Failed, and Errors are the case counts by status.
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`

	// Duration is the total pack wall-clock run time.
	Duration time.Duration `json:"duration"`
}

// Config contains runner budgets.
type Config struct {
	// CaseTimeout bounds each individual case (default 5s).
	CaseTimeout time.Duration

	// PackTimeout bounds the whole pack run regardless of per-case
	// budgets (default 60s).
	PackTimeout time.Duration

	// MaxConcurrency bounds parallel case execution (default 4).
	MaxConcurrency int

	// Metrics receives run and case counters when set.
	Metrics *metrics.Metrics
}

// Default budgets.
const (
	DefaultCaseTimeout    = 5 * time.Second
	DefaultPackTimeout    = 60 * time.Second
	DefaultMaxConcurrency = 4
)

// Runner executes fixture packs against an injected validation
// function under per-case and pack-level time budgets.
type Runner struct {
	caseTimeout    time.Duration
	packTimeout    time.Duration
	maxConcurrency int
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewRunner creates a fixture runner.
func NewRunner(config *Config, logger *slog.Logger) *Runner {
	caseTimeout := DefaultCaseTimeout
	packTimeout := DefaultPackTimeout
	concurrency := DefaultMaxConcurrency
	var m *metrics.Metrics
	if config != nil {
		if config.CaseTimeout > 0 {
			caseTimeout = config.CaseTimeout
		}
		if config.PackTimeout > 0 {
			packTimeout = config.PackTimeout
		}
		if config.MaxConcurrency > 0 {
			concurrency = config.MaxConcurrency
		}
		m = config.Metrics
	}
	if logger == nil {
		logger = slog.Default().With("component", "fixture.runner")
	}
	return &Runner{
		caseTimeout:    caseTimeout,
		packTimeout:    packTimeout,
		maxConcurrency: concurrency,
		metrics:        m,
		logger:         logger,
	}
}

// RunCase runs one fixture case under the per-case time budget. A
// timeout or validator error is mapped to a typed error result, never
// propagated as a Go error.
func (r *Runner) RunCase(ctx context.Context, c Case, validate ValidateFunc) CaseResult {
	start := time.Now()

	caseCtx, cancel := context.WithTimeout(ctx, r.caseTimeout)
	defer cancel()

	type validateReply struct {
		outcome *Outcome
		err     error
	}
	replyCh := make(chan validateReply, 1)

	go func() {
		outcome, err := validate(caseCtx, c)
		replyCh <- validateReply{outcome: outcome, err: err}
	}()

	var outcome *Outcome
	var validateErr error

	select {
	case reply := <-replyCh:
		outcome = reply.outcome
		validateErr = reply.err
	case <-caseCtx.Done():
		// A late reply is ignored; the buffered channel lets the
		// goroutine exit without leaking.
		validateErr = fmt.Errorf("case exceeded time budget %s: %w", r.caseTimeout, caseCtx.Err())
	}

	duration := time.Since(start)

	if validateErr != nil || outcome == nil {
		msg := "validation function returned no outcome"
		if validateErr != nil {
			msg = validateErr.Error()
		}
		return CaseResult{
			FixtureID:       c.FixtureID,
			Status:          CaseError,
			ActualOutcome:   OutcomeError,
			ExpectedOutcome: c.ExpectedOutcome,
			Error:           msg,
			Duration:        duration,
		}
	}

	return compareOutcome(c, outcome, duration)
}

// compareOutcome applies the pass/fail logic: outcome match, expected
// reason codes present, no non-canonical reason codes, required
// evidence present.
func compareOutcome(c Case, outcome *Outcome, duration time.Duration) CaseResult {
	result := CaseResult{
		FixtureID:       c.FixtureID,
		ActualOutcome:   outcome.Outcome,
		ExpectedOutcome: c.ExpectedOutcome,
		Duration:        duration,
	}

	actualCodes := make(map[reason.Code]bool, len(outcome.ReasonCodes))
	for _, code := range outcome.ReasonCodes {
		actualCodes[code] = true
	}
	for _, expected := range c.ExpectedReasonCodes {
		if !actualCodes[expected] {
			result.MissingReasonCodes = append(result.MissingReasonCodes, expected)
		}
	}

	result.NonCanonicalReasonCodes = reason.NonCanonical(outcome.ReasonCodes)

	actualEvidence := make(map[string]bool, len(outcome.EvidenceKeys))
	for _, key := range outcome.EvidenceKeys {
		actualEvidence[key] = true
	}
	for _, required := range c.RequiredEvidenceKeys {
		if !actualEvidence[required] {
			result.MissingEvidenceKeys = append(result.MissingEvidenceKeys, required)
		}
	}

	if outcome.Outcome == c.ExpectedOutcome &&
		len(result.MissingReasonCodes) == 0 &&
		len(result.NonCanonicalReasonCodes) == 0 &&
		len(result.MissingEvidenceKeys) == 0 {
		result.Status = CasePassed
	} else {
		result.Status = CaseFailed
	}

	return result
}

// RunPack executes every case in the pack with bounded parallelism
// under the pack-level time budget. Each result lands at its case's
// canonical index, so output order matches pack order regardless of
// which worker finished first.
func (r *Runner) RunPack(ctx context.Context, pack *Pack, validate ValidateFunc) (*RunResult, error) {
	if pack == nil {
		return nil, fmt.Errorf("fixture pack cannot be nil")
	}

	start := time.Now()

	packHash, err := pack.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash fixture pack %s: %w", pack.PackID, err)
	}

	packCtx, cancel := context.WithTimeout(ctx, r.packTimeout)
	defer cancel()

	results := make([]CaseResult, len(pack.Fixtures))

	sem := make(chan struct{}, r.maxConcurrency)
	var wg sync.WaitGroup

	for i := range pack.Fixtures {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-packCtx.Done():
				results[idx] = CaseResult{
					FixtureID:       pack.Fixtures[idx].FixtureID,
					Status:          CaseError,
					ActualOutcome:   OutcomeError,
					ExpectedOutcome: pack.Fixtures[idx].ExpectedOutcome,
					Error:           fmt.Sprintf("pack time budget %s exhausted before case started", r.packTimeout),
				}
				return
			}

			results[idx] = r.RunCase(packCtx, pack.Fixtures[idx], validate)
		}(i)
	}

	wg.Wait()

	run := &RunResult{
		PackID:   pack.PackID,
		PackHash: packHash,
		Results:  results,
		Duration: time.Since(start),
	}

	for _, res := range results {
		switch res.Status {
		case CasePassed:
			run.Passed++
		case CaseFailed:
			run.Failed++
		case CaseError:
			run.Errors++
		}
	}

	if run.Failed > 0 || run.Errors > 0 {
		run.OverallStatus = RunFailed
	} else {
		run.OverallStatus = RunPassed
	}

	r.metrics.ObserveFixtureRun(string(run.OverallStatus))
	for _, res := range results {
		r.metrics.ObserveFixtureCase(string(res.Status))
	}

	r.logger.Info("fixture pack run complete",
		"pack_id", pack.PackID,
		"status", string(run.OverallStatus),
		"passed", run.Passed,
		"failed", run.Failed,
		"errors", run.Errors,
		"duration_ms", run.Duration.Milliseconds(),
	)

	return run, nil
}
