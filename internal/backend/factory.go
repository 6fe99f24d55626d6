package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/sheets"
	gsheet "gagyebu/internal/sheets/google"
	sheetmem "gagyebu/internal/sheets/memory"
	"gagyebu/internal/storage/file"
	"gagyebu/internal/storage/memory"
	"gagyebu/internal/storage/postgres"
	"gagyebu/internal/storage/sqlite"
)

type DefaultFactory struct {
	logger *slog.Logger
}

var _ Factory = (*DefaultFactory)(nil)

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		f.logger.Info("Initialized memory backend", "component", "backend")
		return &BackendResult{Store: memory.New()}, nil

	case FileBackend:
		store, err := file.NewStore(config.LedgerFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger file: %w", err)
		}
		f.logger.Info("Initialized file backend", "path", config.LedgerFilePath, "component", "backend")
		return &BackendResult{Store: store}, nil

	case SQLiteBackend:
		store, err := sqlite.NewStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath, "component", "backend")
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	case PostgresBackend:
		store, err := postgres.NewStore(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		f.logger.Info("Initialized Postgres backend", "component", "backend")
		return &BackendResult{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

// CreateMirror returns the Google Sheets mirror when a spreadsheet is
// configured, otherwise an in-memory one.
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error) {
	if config.GoogleSpreadsheetID == "" {
		f.logger.Warn("No spreadsheet configured, mirroring in memory only", "component", "backend")
		return sheetmem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	return client, nil
}
