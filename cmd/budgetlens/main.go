// Command budgetlens analyzes budget plans from the configured ledger and
// serves the reports over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetlens/internal/cli"
	"budgetlens/internal/config"
	"budgetlens/internal/log"
)

var (
	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "budgetlens",
	Short: "Budget analytics and insight engine",
	Long: `budgetlens reads budget plans and transactions from a ledger
(memory, sqlite or Google Sheets), runs the analyzers and reports a
health score, insights and recommendations.

Configuration comes from the environment; a .env file in the working
directory is loaded first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()
		logger = cli.SetupLogger()
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, plansCmd, seedCmd, migrateCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
