package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"budgetlens/internal/ledger/memory"
	"budgetlens/internal/log"
	"budgetlens/internal/storage"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load plans and transaction history from a YAML seed into SQLite",
	Long: `Upserts every plan of the seed file into the SQLite database at
SQLITE_DB_PATH and imports its transactions as history. Transactions
already present are skipped, so seeding twice is harmless.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQLite migrations and print the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
			return err
		}
		version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%v)\n", version, dirty)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed YAML file (default SEED_FILE)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	if path == "" {
		return errors.New("no seed file: pass --file or set SEED_FILE")
	}

	seed, err := memory.LoadSeed(path)
	if err != nil {
		return err
	}
	plans, err := seed.ToPlans()
	if err != nil {
		return err
	}
	txs, err := seed.ToTransactions()
	if err != nil {
		return err
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := cmd.Context()
	for _, p := range plans {
		if err := repo.SavePlan(ctx, p); err != nil {
			return fmt.Errorf("save plan %s: %w", p.ID, err)
		}
	}
	imported, err := repo.ImportTransactions(ctx, txs)
	if err != nil {
		return err
	}

	logger.Info("Seed loaded",
		log.FieldOperation, log.OpSeed,
		"path", path,
		"plans", len(plans),
		"transactions_imported", imported,
		"transactions_skipped", len(txs)-imported)
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d plans, imported %d of %d transactions into %s\n",
		len(plans), imported, len(txs), cfg.SQLiteDBPath)
	return nil
}
