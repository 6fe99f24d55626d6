// Package ledger stores transactions in per-date buckets on top of a storage.KV.
//
// Each bucket is a JSON array under "ledger-YYYY-MM-DD". A missing key, an
// empty array and an unreadable value all load as an empty bucket.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/storage"
)

// Repository loads and saves date buckets. Mutations run load-modify-save
// under a mutex so two requests cannot interleave on the same process.
type Repository struct {
	kv     storage.KV
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the clock used to derive transaction ids.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger used for recoverable read problems.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

func NewRepository(kv storage.KV, opts ...Option) *Repository {
	r := &Repository{
		kv:     kv,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load returns the bucket for date in insertion order. Never nil.
func (r *Repository) Load(ctx context.Context, date core.Date) ([]core.Transaction, error) {
	key := Key(date)
	raw, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return []core.Transaction{}, nil
	}

	var items []core.Transaction
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.logger.WarnContext(ctx, "Malformed ledger bucket treated as empty",
			"key", key, "error", err, "component", "ledger")
		return []core.Transaction{}, nil
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// Save replaces the bucket for date with items.
func (r *Repository) Save(ctx context.Context, date core.Date, items []core.Transaction) error {
	if items == nil {
		items = []core.Transaction{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode bucket %s: %w", date, err)
	}
	if err := r.kv.Set(ctx, Key(date), string(data)); err != nil {
		return fmt.Errorf("save %s: %w", Key(date), err)
	}
	return nil
}

// Add validates tx, assigns it an id unique within the bucket and appends it.
// Any id set by the caller is overwritten.
func (r *Repository) Add(ctx context.Context, date core.Date, tx core.Transaction) (core.Transaction, error) {
	if err := date.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.Load(ctx, date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = r.nextID(items)
	items = append(items, tx)
	if err := r.Save(ctx, date, items); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// Remove drops the transaction with id from the bucket. Unknown ids are a no-op.
func (r *Repository) Remove(ctx context.Context, date core.Date, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.Load(ctx, date)
	if err != nil {
		return err
	}
	n := len(items)
	kept := slices.DeleteFunc(items, func(t core.Transaction) bool { return t.ID == id })
	if len(kept) == n {
		return nil
	}
	return r.Save(ctx, date, kept)
}

// Ping checks that the underlying store answers.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.kv.Keys(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

// Dates lists every date that has a bucket key, oldest first.
func (r *Repository) Dates(ctx context.Context) ([]core.Date, error) {
	keys, err := r.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	dates := make([]core.Date, 0, len(keys))
	for _, k := range keys {
		if d, ok := ParseKey(k); ok {
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, func(a, b core.Date) int { return a.Compare(b.Time) })
	return dates, nil
}

// MonthDates lists bucket dates that fall in year/month.
func (r *Repository) MonthDates(ctx context.Context, year int, month time.Month) ([]core.Date, error) {
	all, err := r.Dates(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, d := range all {
		if d.SameMonth(year, month) {
			out = append(out, d)
		}
	}
	return out, nil
}

// nextID derives an id from the clock in milliseconds, bumped past the
// largest id already in the bucket.
func (r *Repository) nextID(items []core.Transaction) int64 {
	id := r.now().UnixMilli()
	for _, it := range items {
		if it.ID >= id {
			id = it.ID + 1
		}
	}
	return id
}
