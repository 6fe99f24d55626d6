package memory

import (
	"context"
	"slices"
	"sync"

	"gagyebu/internal/core"
	ports "gagyebu/internal/sheets"
)

// Mirror is an in-process stand-in for the spreadsheet, used when no
// spreadsheet is configured and in tests.
type Mirror struct {
	mu      sync.Mutex
	buckets map[string][]core.Transaction
	writes  int
}

var (
	_ ports.Mirror       = (*Mirror)(nil)
	_ ports.BucketReader = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{buckets: make(map[string][]core.Transaction)}
}

func (m *Mirror) ReplaceBucket(_ context.Context, date core.Date, items []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if len(items) == 0 {
		delete(m.buckets, date.String())
		return nil
	}
	m.buckets[date.String()] = slices.Clone(items)
	return nil
}

func (m *Mirror) ReadBucket(_ context.Context, date core.Date) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := slices.Clone(m.buckets[date.String()])
	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// Writes counts ReplaceBucket calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
