package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veridian-hq/saturn/pkg/cli"
	"veridian-hq/saturn/pkg/template/registry"
	"veridian-hq/saturn/pkg/template/validator"
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Manage template spec packs",
	Long:  `Validate and load template spec packs.`,
}

var (
	packValidateFile string
	packOutputFormat string
)

var packValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a spec pack file",
	Long: `Validate a spec pack file against the structural schema.

All problems are reported in one pass, never just the first. The exit
code is non-zero when the pack has any structural error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if packValidateFile == "" {
			return cli.NewCommandError("pack validate", fmt.Errorf("--file is required"))
		}

		loader := registry.NewPackLoader(nil)
		pack, err := loader.LoadFromFile(packValidateFile)
		if err != nil {
			return cli.NewCommandError("pack validate", err)
		}

		v := validator.NewStructuralValidator()
		if err := v.ValidatePack(pack); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		fmt.Printf("pack %s is valid (%d templates)\n", pack.PackID, pack.TemplateCount())
		return nil
	},
}

var packLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load spec packs and list registrations",
	Long: `Load every spec pack under the configured pack directory into a
registry and print the resulting registrations with their lifecycle
status and content hash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return cli.NewCommandError("pack load", err)
		}
		logger, err := buildLogger(cfg)
		if err != nil {
			return cli.NewCommandError("pack load", err)
		}

		reg, err := buildRegistry(cfg, logger)
		if err != nil {
			return cli.NewCommandError("pack load", err)
		}

		registrations := reg.ListRegistrations()

		if packOutputFormat == string(cli.FormatJSON) {
			type regView struct {
				TemplateID  string   `json:"templateId"`
				PackID      string   `json:"packId"`
				PackVersion string   `json:"packVersion"`
				Status      string   `json:"status"`
				Hash        string   `json:"hash"`
				Errors      []string `json:"errors,omitempty"`
			}
			views := make([]regView, 0, len(registrations))
			for _, r := range registrations {
				views = append(views, regView{
					TemplateID:  r.Template.TemplateID,
					PackID:      r.PackID,
					PackVersion: r.PackVersion,
					Status:      string(r.Status),
					Hash:        r.Hash,
					Errors:      r.ValidationErrors,
				})
			}
			return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, views)
		}

		fmt.Printf("registry version %s, %d registration(s)\n\n", reg.Version(), len(registrations))
		for _, r := range registrations {
			fmt.Printf("  %-40s %-10s %s (pack %s@%s)\n",
				r.Template.TemplateID, r.Status, r.Hash[:12], r.PackID, r.PackVersion)
			for _, e := range r.ValidationErrors {
				fmt.Printf("    ! %s\n", e)
			}
		}
		return nil
	},
}

func init() {
	packValidateCmd.Flags().StringVarP(&packValidateFile, "file", "f", "", "spec pack file to validate")
	packLoadCmd.Flags().StringVarP(&packOutputFormat, "output", "o", "text", "output format (text, json)")

	packCmd.AddCommand(packValidateCmd)
	packCmd.AddCommand(packLoadCmd)
	rootCmd.AddCommand(packCmd)
}
