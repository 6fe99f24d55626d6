// Package storage defines the key-value port the ledger persists through.
//
// A KV behaves like browser local storage: string keys, opaque string values,
// last write wins, and a way to list every key. Implementations live in the
// subpackages (memory, file, sqlite, postgres) and must be safe for
// concurrent use.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

type (
	// KV is a persistent, process-wide key-value store.
	KV interface {
		// Get returns the value for key. ok is false when the key is absent.
		Get(ctx context.Context, key string) (value string, ok bool, err error)
		// Set stores value under key, replacing anything stored before.
		Set(ctx context.Context, key, value string) error
		// Keys lists every stored key. Order is unspecified.
		Keys(ctx context.Context) ([]string, error)
	}

	// Closer is implemented by stores holding external resources.
	Closer interface {
		Close() error
	}
)
