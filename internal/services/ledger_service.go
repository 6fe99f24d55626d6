package services

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/amqp"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

// Publisher announces bucket changes. *amqp.Client satisfies it.
type Publisher interface {
	PublishBucketChanged(ctx context.Context, msg *amqp.BucketChangedMessage) error
	Close() error
}

// MonthInvalidator is told when a month's buckets change.
type MonthInvalidator interface {
	InvalidateMonth(cursor core.MonthCursor)
}

// DayView is everything the editor renders for one date.
type DayView struct {
	Date   core.Date
	Items  []core.Transaction
	Totals core.Totals
}

// LedgerService orchestrates edits to date buckets: the repository write
// first, then cache invalidation and the change event.
type LedgerService struct {
	repo        *ledger.Repository
	publisher   Publisher
	invalidates []MonthInvalidator
}

// NewLedgerService wires the service. publisher may be nil when AMQP is off.
func NewLedgerService(repo *ledger.Repository, publisher Publisher, invalidates ...MonthInvalidator) *LedgerService {
	return &LedgerService{
		repo:        repo,
		publisher:   publisher,
		invalidates: invalidates,
	}
}

// Day loads the bucket for date together with its sums.
func (s *LedgerService) Day(ctx context.Context, date core.Date) (DayView, error) {
	items, err := s.repo.Load(ctx, date)
	if err != nil {
		return DayView{}, err
	}
	return DayView{Date: date, Items: items, Totals: core.Sums(items)}, nil
}

// Add stores tx under date and returns the refreshed day.
func (s *LedgerService) Add(ctx context.Context, date core.Date, tx core.Transaction) (DayView, error) {
	stored, err := s.repo.Add(ctx, date, tx)
	if err != nil {
		return DayView{}, fmt.Errorf("add transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction added",
		"date", date.String(),
		"id", stored.ID,
		"type", stored.Type,
		"category", stored.Category,
		"component", "ledger_service")
	return s.afterChange(ctx, date)
}

// Remove deletes id from date's bucket and returns the refreshed day.
// Unknown ids leave the bucket as it was.
func (s *LedgerService) Remove(ctx context.Context, date core.Date, id int64) (DayView, error) {
	if err := date.Validate(); err != nil {
		return DayView{}, err
	}
	if err := s.repo.Remove(ctx, date, id); err != nil {
		return DayView{}, fmt.Errorf("remove transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction removed", "date", date.String(), "id", id, "component", "ledger_service")
	return s.afterChange(ctx, date)
}

// ApplyBucketChanged drops cached months for a change announced by any
// writer on the shared store, including other processes such as ledgerctl.
// Messages with a bad date are ignored.
func (s *LedgerService) ApplyBucketChanged(ctx context.Context, msg *amqp.BucketChangedMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		slog.WarnContext(ctx, "Ignoring bucket change with invalid date",
			"date", msg.Date, "component", "ledger_service")
		return nil
	}
	s.invalidate(date)
	slog.DebugContext(ctx, "Cached month invalidated by bucket change",
		"date", msg.Date, "count", msg.Count, "component", "ledger_service")
	return nil
}

func (s *LedgerService) invalidate(date core.Date) {
	cursor := core.CursorOf(date.Time)
	for _, inv := range s.invalidates {
		inv.InvalidateMonth(cursor)
	}
}

func (s *LedgerService) afterChange(ctx context.Context, date core.Date) (DayView, error) {
	s.invalidate(date)

	view, err := s.Day(ctx, date)
	if err != nil {
		return DayView{}, err
	}

	// The write already succeeded locally; a failed publish is only logged.
	if err := s.publish(ctx, date, len(view.Items)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish bucket change",
			"date", date.String(), "error", err, "component", "ledger_service")
	}
	return view, nil
}

func (s *LedgerService) publish(ctx context.Context, date core.Date, count int) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishBucketChanged(ctx, amqp.NewBucketChangedMessage(date.String(), count))
}

// Ping checks the store.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Close closes the publisher. The store is owned by whoever opened it.
func (s *LedgerService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close amqp: %w", err)
	}
	return nil
}
