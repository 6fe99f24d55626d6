package sheets

import (
	"context"

	"gagyebu/internal/core"
)

// Ports for outbound adapters.
type (
	// Mirror keeps a copy of date buckets outside the store. ReplaceBucket
	// must leave exactly items as the rows for date, so replaying the same
	// bucket twice is harmless.
	Mirror interface {
		ReplaceBucket(ctx context.Context, date core.Date, items []core.Transaction) error
	}

	// BucketReader reads back what a Mirror holds for one date.
	BucketReader interface {
		ReadBucket(ctx context.Context, date core.Date) ([]core.Transaction, error)
	}
)
