// Package backend opens the configured key-value store and spreadsheet mirror.
package backend

import (
	"context"

	"gagyebu/internal/storage"
)

// CleanupFunc releases whatever the backend holds open.
type CleanupFunc func() error

// BackendResult is an opened store plus its cleanup.
type BackendResult struct {
	Store   storage.KV
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Config holds what each backend type needs.
type Config struct {
	Type BackendType

	SQLiteDBPath   string
	LedgerFilePath string
	PostgresURL    string

	// Spreadsheet mirror; empty SpreadsheetID selects the in-memory mirror.
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}
