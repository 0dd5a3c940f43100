package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/audit"
	"veridian-hq/saturn/pkg/audit/retention"
	"veridian-hq/saturn/pkg/audit/storage"
	"veridian-hq/saturn/pkg/cli"
	"veridian-hq/saturn/pkg/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and maintain stored audit records",
	Long:  `List, inspect, and prune persisted selection and evaluation artifacts.`,
}

var (
	auditKind         string
	auditTemplateID   string
	auditLimit        int
	auditOutputFormat string
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, store, err := openAuditStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context(), audit.Query{
			Kind:       audit.RecordKind(auditKind),
			TemplateID: auditTemplateID,
			Limit:      auditLimit,
		})
		if err != nil {
			return cli.NewCommandError("audit list", err)
		}

		if auditOutputFormat == string(cli.FormatJSON) {
			return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, records)
		}

		fmt.Printf("%d record(s)\n\n", len(records))
		for _, r := range records {
			fmt.Printf("  %s  %-12s %-40s %-12s %s\n",
				r.ID, r.Kind, r.TemplateID, r.Outcome, r.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var auditGetCmd = &cobra.Command{
	Use:   "get <record-id>",
	Short: "Print one audit record with its payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, store, err := openAuditStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		record, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return cli.NewCommandError("audit get", err)
		}

		fmt.Printf("id:          %s\n", record.ID)
		fmt.Printf("kind:        %s\n", record.Kind)
		fmt.Printf("template:    %s\n", record.TemplateID)
		fmt.Printf("input hash:  %s\n", record.InputHash)
		fmt.Printf("outcome:     %s\n", record.Outcome)
		fmt.Printf("created at:  %s\n", record.CreatedAt.Format(time.RFC3339))
		fmt.Printf("payload:\n%s\n", record.Payload)
		return nil
	},
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audit records past the retention age",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, store, err := openAuditStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		pruner := retention.NewPruner(store, &retention.Config{
			MaxAge:   cfg.Audit.Retention.MaxAge,
			Schedule: cfg.Audit.Retention.Schedule,
		}, logger.With("component", "audit.retention"))

		deleted, err := pruner.Prune(cmd.Context())
		if err != nil {
			return cli.NewCommandError("audit prune", err)
		}
		fmt.Printf("deleted %d record(s)\n", deleted)
		return nil
	},
}

// openAuditStorage opens the configured audit backend.
func openAuditStorage() (*config.Config, *slog.Logger, audit.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, cli.NewCommandError("audit", err)
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, nil, cli.NewCommandError("audit", err)
	}

	store, err := buildAuditStorage(cfg, logger)
	if err != nil {
		return nil, nil, nil, cli.NewCommandError("audit", err)
	}
	return cfg, logger, store, nil
}

// buildAuditStorage creates the audit backend named in configuration.
func buildAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Audit.SQLite.Path,
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			WALMode:      true,
			BusyTimeout:  cfg.Audit.SQLite.BusyTimeout,
		}, logger.With("component", "audit.storage.sqlite"))
	default:
		return storage.NewMemoryStorage(), nil
	}
}

func init() {
	auditCmd.PersistentFlags().StringVarP(&auditOutputFormat, "output", "o", "text", "output format (text, json)")
	auditListCmd.Flags().StringVar(&auditKind, "kind", "", "filter by record kind (selection, evaluation, fixture_run)")
	auditListCmd.Flags().StringVar(&auditTemplateID, "template-id", "", "filter by template ID")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum records to return")

	auditCmd.AddCommand(auditListCmd)
	auditCmd.AddCommand(auditGetCmd)
	auditCmd.AddCommand(auditPruneCmd)
	rootCmd.AddCommand(auditCmd)
}
