package backend

import (
	"fmt"

	"gagyebu/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	bt := BackendType(appConfig.DataBackend)
	if !bt.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type: bt,

		SQLiteDBPath:   appConfig.SQLiteDBPath,
		LedgerFilePath: appConfig.LedgerFilePath,
		PostgresURL:    appConfig.PostgresURL,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case FileBackend:
		if c.LedgerFilePath == "" {
			return fmt.Errorf("ledger file path is required for file backend")
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres backend")
		}
	}
	return nil
}
