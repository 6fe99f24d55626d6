// Package worker copies changed date buckets to the spreadsheet mirror.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/sheets"
)

// MirrorWorker reloads a bucket from the store and replaces its rows in the
// mirror. It never trusts message contents beyond the date.
type MirrorWorker struct {
	repo   *ledger.Repository
	mirror sheets.Mirror
}

func NewMirrorWorker(repo *ledger.Repository, mirror sheets.Mirror) *MirrorWorker {
	return &MirrorWorker{repo: repo, mirror: mirror}
}

// HandleBucketChanged processes one BucketChanged message. A message with a
// bad date is dropped without error so it is not requeued forever.
func (w *MirrorWorker) HandleBucketChanged(ctx context.Context, msg *amqp.BucketChangedMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		slog.WarnContext(ctx, "Dropping bucket change with invalid date",
			"date", msg.Date, "component", "mirror_worker")
		return nil
	}
	items, err := w.repo.Load(ctx, date)
	if err != nil {
		return fmt.Errorf("load bucket %s: %w", date, err)
	}
	// An empty bucket for a change that reported items means this process
	// is not reading the store the publisher wrote to. Mirroring it would
	// erase the rows; a later message carries the real state.
	if len(items) == 0 && msg.Count > 0 {
		slog.WarnContext(ctx, "Skipping bucket change not visible in store",
			"date", msg.Date, "count", msg.Count, "component", "mirror_worker")
		return nil
	}
	if err := w.mirror.ReplaceBucket(ctx, date, items); err != nil {
		return fmt.Errorf("mirror bucket %s: %w", date, err)
	}
	slog.InfoContext(ctx, "Processed bucket change",
		"date", msg.Date, "count", msg.Count, "published_at", msg.Timestamp, "component", "mirror_worker")
	return nil
}

// ResyncAll mirrors every bucket in the store, oldest first. It recovers
// from messages lost while the worker was down. When the mirror can be read
// back, buckets it already holds unchanged are skipped. Individual failures
// are logged and counted; the first one is returned after all dates were tried.
func (w *MirrorWorker) ResyncAll(ctx context.Context) error {
	dates, err := w.repo.Dates(ctx)
	if err != nil {
		return fmt.Errorf("list dates for resync: %w", err)
	}

	var (
		firstErr error
		synced   int
		skipped  int
	)
	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed, err := w.syncBucket(ctx, d)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to mirror bucket during resync",
				"date", d.String(), "error", err, "component", "mirror_worker")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !changed {
			skipped++
		}
		synced++
	}

	slog.InfoContext(ctx, "Resync completed",
		"total", len(dates), "synced", synced, "unchanged", skipped,
		"errors", len(dates)-synced, "component", "mirror_worker")
	return firstErr
}

// syncBucket reports whether the mirror had to be rewritten.
func (w *MirrorWorker) syncBucket(ctx context.Context, date core.Date) (bool, error) {
	items, err := w.repo.Load(ctx, date)
	if err != nil {
		return false, fmt.Errorf("load bucket %s: %w", date, err)
	}
	if reader, ok := w.mirror.(sheets.BucketReader); ok {
		current, err := reader.ReadBucket(ctx, date)
		if err != nil {
			slog.WarnContext(ctx, "Mirror read failed, rewriting bucket",
				"date", date.String(), "error", err, "component", "mirror_worker")
		} else if slices.Equal(current, items) {
			return false, nil
		}
	}
	if err := w.mirror.ReplaceBucket(ctx, date, items); err != nil {
		return false, fmt.Errorf("mirror bucket %s: %w", date, err)
	}
	return true, nil
}
