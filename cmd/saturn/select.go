package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/audit"
	"veridian-hq/saturn/pkg/cli"
	"veridian-hq/saturn/pkg/selector"
	"veridian-hq/saturn/pkg/telemetry/metrics"
)

var (
	selectTextFile   string
	selectClient     string
	selectAssetType  string
	selectWorkType   string
	selectTemplateID string
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select a template for a document",
	Long: `Score all active templates against a document's extracted text and
apply the selection safety policy. The full selection trace is printed
as deterministic JSON.

With --template-id, scoring is bypassed for explicit manual selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return cli.NewCommandError("select", err)
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return cli.NewCommandError("select", err)
		}

		reg, err := buildRegistry(cfg, logger)
		if err != nil {
			return cli.NewCommandError("select", err)
		}

		sel := selector.New(reg, &selector.Config{
			ReviewGapThreshold: cfg.Selector.ReviewGapThreshold,
			Metrics:            metrics.New(cfg.Telemetry.Metrics.Namespace),
		}, logger.With("component", "selector"))

		var result *selector.Result
		if selectTemplateID != "" {
			result = sel.SelectTemplateByID(selectTemplateID)
		} else {
			if selectTextFile == "" {
				return cli.NewCommandError("select", fmt.Errorf("--text-file or --template-id is required"))
			}
			text, err := os.ReadFile(selectTextFile)
			if err != nil {
				return cli.NewCommandError("select", fmt.Errorf("read text file: %w", err))
			}
			result = sel.SelectTemplate(selector.Input{
				ExtractedText: string(text),
				Client:        selectClient,
				AssetType:     selectAssetType,
				WorkType:      selectWorkType,
			})
		}

		for _, warning := range result.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
		}

		artifact, err := result.Trace.MarshalCanonical()
		if err != nil {
			return cli.NewCommandError("select", fmt.Errorf("serialize trace: %w", err))
		}
		fmt.Println(string(artifact))

		// Selection traces are the audit trail for why a template was
		// or wasn't chosen; persist them when a durable backend is
		// configured.
		if cfg.Audit.Backend == "sqlite" {
			store, err := buildAuditStorage(cfg, logger)
			if err != nil {
				return cli.NewCommandError("select", err)
			}
			defer store.Close()

			recorder := audit.NewRecorder(store, nil, logger.With("component", "audit.recorder"))
			recorder.Record(audit.NewRecord(
				audit.KindSelection,
				result.Decision.TemplateID,
				result.Trace.InputHash,
				string(result.Decision.Kind),
				artifact,
			))
			recorder.Close()
		}

		if result.Decision.Kind == selector.DecisionHardStop {
			os.Exit(2)
		}
		return nil
	},
}

func init() {
	selectCmd.Flags().StringVar(&selectTextFile, "text-file", "", "file containing the document's extracted text")
	selectCmd.Flags().StringVar(&selectClient, "client", "", "client context filter")
	selectCmd.Flags().StringVar(&selectAssetType, "asset-type", "", "asset type context")
	selectCmd.Flags().StringVar(&selectWorkType, "work-type", "", "work type context")
	selectCmd.Flags().StringVar(&selectTemplateID, "template-id", "", "explicit template ID (bypasses scoring)")

	rootCmd.AddCommand(selectCmd)
}
