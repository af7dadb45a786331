package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"budgetlens/internal/cli"
	"budgetlens/internal/core"
	apphttp "budgetlens/internal/http"
)

var (
	analyzeAsOf string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <plan-id>",
	Short: "Evaluate a plan and print its report",
	Long: `Evaluates one plan and prints the health score, every insight and the
top recommendations.

Example:
  budgetlens analyze home --as-of 2025-04-16`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the plans in the ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.Bootstrap(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Reports.PlanIDs(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeAsOf, "as-of", "", "evaluation date (YYYY-MM-DD), default today")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var asOf time.Time
	if analyzeAsOf != "" {
		d, err := core.ParseDate(analyzeAsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of %q: %w", analyzeAsOf, err)
		}
		asOf = d.Time
	}

	app, err := cli.Bootstrap(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer app.Close()

	r, err := app.Reports.Generate(cmd.Context(), args[0], asOf)
	if err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(apphttp.NewReportResponse(r))
	}
	return printReport(cmd.OutOrStdout(), r)
}
