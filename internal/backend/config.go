package backend

import (
	"errors"
	"fmt"
	"strings"

	"budgetlens/internal/config"
)

// FromAppConfig picks the ledger settings out of the application config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type %q, want one of %s",
			appConfig.DataBackend, strings.Join(GetBackendTypeStrings(), ", "))
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:         appConfig.GoogleSpreadsheetID,
		GoogleBudgetSheetName:       appConfig.GoogleBudgetSheetName,
		GoogleTransactionsSheetName: appConfig.GoogleTransactionsSheetName,

		SeedFile: appConfig.SeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleBudgetSheetName == "" || c.GoogleTransactionsSheetName == "" {
			return errors.New("Google budget and transactions sheet names are required for sheets backend")
		}
	case MemoryBackend:
		// A missing seed file starts an empty store
	}

	return nil
}

// GetBackendTypes lists the supported ledgers in preference order.
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
