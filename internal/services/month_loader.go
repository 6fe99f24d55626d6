package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

// DefaultConcurrency bounds parallel bucket loads when none is configured.
const DefaultConcurrency = 8

type dayBucket struct {
	Date  core.Date
	Items []core.Transaction
}

// loadMonth loads every bucket of the month concurrently. The result is in
// ascending date order regardless of which load finished first.
func loadMonth(ctx context.Context, repo *ledger.Repository, c core.MonthCursor, limit int) ([]dayBucket, error) {
	dates, err := repo.MonthDates(ctx, c.Year, c.Month)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.Key(), err)
	}
	if limit < 1 {
		limit = DefaultConcurrency
	}

	slots := make([]dayBucket, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range dates {
		g.Go(func() error {
			items, err := repo.Load(gctx, d)
			if err != nil {
				return err
			}
			slots[i] = dayBucket{Date: d, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}
