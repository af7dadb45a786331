package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"budgetlens/internal/insight"
	"budgetlens/internal/report"
	"budgetlens/internal/scoring"
)

// printReport renders a report for the terminal.
func printReport(w io.Writer, r *report.AnalysisReport) error {
	fmt.Fprintf(w, "Plan %s  report %s\n", r.PlanID, r.ID)
	fmt.Fprintf(w, "Health score: %.1f (%s)\n", r.OverallHealthScore, r.HealthBand())
	if r.Summary != "" {
		fmt.Fprintln(w, r.Summary)
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))

	if r.IsEmpty() {
		fmt.Fprintln(w, "No insights.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "IMPACT\tCONF\tTYPE\tTITLE")
		for _, in := range r.Insights() {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", impactLabel(in), scoring.Confidence(in.Impact), in.Type, in.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.TopRecommendations) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, "Recommendations:")
		for i, rec := range r.TopRecommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}
	return nil
}

func impactLabel(in insight.Insight) string {
	if in.Impact == "" {
		return "-"
	}
	return string(in.Impact)
}
