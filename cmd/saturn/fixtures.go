package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/cli"
	"veridian-hq/saturn/pkg/fixture"
	"veridian-hq/saturn/pkg/reason"
	"veridian-hq/saturn/pkg/rules"
	"veridian-hq/saturn/pkg/telemetry/metrics"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Run fixture packs and check activation gates",
	Long:  `Replay fixture packs through the rules engine and evaluate results.`,
}

var (
	fixturesPackFile     string
	fixturesOutputFormat string
)

var fixturesRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fixture pack",
	Long: `Run every case in a fixture pack through the rules engine under the
configured time budgets and report per-case results in the pack's
canonical case order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := runFixturePack()
		if err != nil {
			return err
		}

		if fixturesOutputFormat == string(cli.FormatJSON) {
			if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, run); err != nil {
				return cli.NewCommandError("fixtures run", err)
			}
		} else {
			printRunResult(run)
		}

		if run.OverallStatus != fixture.RunPassed {
			os.Exit(1)
		}
		return nil
	},
}

var fixturesGateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check the activation gate for a fixture pack",
	Long: `Run a fixture pack and evaluate the all-or-nothing activation gate.
Any failed case, non-canonical reason code, or missing evidence key
anywhere in the run blocks activation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := runFixturePack()
		if err != nil {
			return err
		}

		gate := fixture.CheckActivationGate(run)

		if fixturesOutputFormat == string(cli.FormatJSON) {
			if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, gate); err != nil {
				return cli.NewCommandError("fixtures gate", err)
			}
		} else if gate.CanActivate {
			fmt.Printf("activation gate OPEN: %d/%d cases passed\n", run.Passed, len(run.Results))
		} else {
			fmt.Printf("activation gate BLOCKED: %d issue(s)\n", len(gate.Reasons))
			for _, r := range gate.Reasons {
				fmt.Printf("  - %s\n    fix: %s\n", r.Message, r.FixPath)
			}
		}

		if !gate.CanActivate {
			os.Exit(1)
		}
		return nil
	},
}

// runFixturePack loads the pack and replays it through the rules
// engine.
func runFixturePack() (*fixture.RunResult, error) {
	if fixturesPackFile == "" {
		return nil, cli.NewCommandError("fixtures", fmt.Errorf("--pack is required"))
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, cli.NewCommandError("fixtures", err)
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, cli.NewCommandError("fixtures", err)
	}

	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, cli.NewCommandError("fixtures", err)
	}

	pack, err := fixture.LoadPack(fixturesPackFile)
	if err != nil {
		return nil, cli.NewCommandError("fixtures", err)
	}

	m := metrics.New(cfg.Telemetry.Metrics.Namespace)

	engine := rules.New(reg, &rules.Config{
		LowConfidenceThreshold: cfg.Rules.LowConfidenceThreshold,
		MinCommentLength:       cfg.Rules.MinCommentLength,
		Metrics:                m,
	}, logger.With("component", "rules.engine"))

	runner := fixture.NewRunner(&fixture.Config{
		CaseTimeout:    cfg.Fixtures.CaseTimeout,
		PackTimeout:    cfg.Fixtures.PackTimeout,
		MaxConcurrency: cfg.Fixtures.MaxConcurrency,
		Metrics:        m,
	}, logger.With("component", "fixture.runner"))

	run, err := runner.RunPack(context.Background(), pack, engineValidate(engine))
	if err != nil {
		return nil, cli.NewCommandError("fixtures", err)
	}
	return run, nil
}

// engineValidate adapts the rules engine to the fixture runner's
// validation function. Evidence keys are the names of fields the
// evaluation produced findings for.
func engineValidate(engine *rules.Engine) fixture.ValidateFunc {
	return func(ctx context.Context, c fixture.Case) (*fixture.Outcome, error) {
		result := engine.EvaluateDocument(c.TemplateID, c.Fields)

		codes := make(map[reason.Code]bool)
		keys := make(map[string]bool)
		for _, r := range result.Results {
			codes[r.ReasonCode] = true
			keys[r.Field] = true
		}

		outcome := &fixture.Outcome{
			Outcome:         string(result.DocumentOutcome),
			ValidatedFields: result.Summary.TotalFields,
		}
		for code := range codes {
			outcome.ReasonCodes = append(outcome.ReasonCodes, code)
		}
		sort.Slice(outcome.ReasonCodes, func(i, j int) bool {
			return outcome.ReasonCodes[i] < outcome.ReasonCodes[j]
		})
		for key := range keys {
			outcome.EvidenceKeys = append(outcome.EvidenceKeys, key)
		}
		sort.Strings(outcome.EvidenceKeys)

		return outcome, nil
	}
}

// printRunResult prints a human-readable run summary.
func printRunResult(run *fixture.RunResult) {
	fmt.Printf("pack %s (%s): %s\n", run.PackID, run.PackHash[:12], run.OverallStatus)
	fmt.Printf("passed %d, failed %d, errors %d, duration %s\n\n",
		run.Passed, run.Failed, run.Errors, run.Duration)

	for _, res := range run.Results {
		fmt.Printf("  %-30s %-7s expected=%s actual=%s (%s)\n",
			res.FixtureID, res.Status, res.ExpectedOutcome, res.ActualOutcome, res.Duration)
		if len(res.MissingReasonCodes) > 0 {
			fmt.Printf("    missing reason codes: %v\n", res.MissingReasonCodes)
		}
		if len(res.NonCanonicalReasonCodes) > 0 {
			fmt.Printf("    non-canonical reason codes: %v\n", res.NonCanonicalReasonCodes)
		}
		if len(res.MissingEvidenceKeys) > 0 {
			fmt.Printf("    missing evidence keys: %v\n", res.MissingEvidenceKeys)
		}
		if res.Error != "" {
			fmt.Printf("    error: %s\n", res.Error)
		}
	}
}

func init() {
	fixturesCmd.PersistentFlags().StringVarP(&fixturesPackFile, "pack", "p", "", "fixture pack YAML file")
	fixturesCmd.PersistentFlags().StringVarP(&fixturesOutputFormat, "output", "o", "text", "output format (text, json)")

	fixturesCmd.AddCommand(fixturesRunCmd)
	fixturesCmd.AddCommand(fixturesGateCmd)
	rootCmd.AddCommand(fixturesCmd)
}
