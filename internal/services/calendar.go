package services

import (
	"context"
	"log/slog"

	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

// Weekdays heads the calendar grid, Sunday first.
var Weekdays = []string{"일", "월", "화", "수", "목", "금", "토"}

// DayCell is one day in the month grid.
type DayCell struct {
	Date       core.Date
	Day        int
	Today      bool
	Totals     core.Totals
	HasSummary bool
}

// MonthGrid is the calendar for one month: Leading blank cells, then one cell per day.
type MonthGrid struct {
	Cursor  core.MonthCursor
	Prev    core.MonthCursor
	Next    core.MonthCursor
	Leading int
	Days    []DayCell
}

// CalendarService builds month grids. Per-day totals are cached per month
// and dropped by InvalidateMonth.
type CalendarService struct {
	repo        *ledger.Repository
	cache       cache.Cache[[]core.Totals]
	concurrency int
}

func NewCalendarService(repo *ledger.Repository, c cache.Cache[[]core.Totals], concurrency int) *CalendarService {
	return &CalendarService{repo: repo, cache: c, concurrency: concurrency}
}

// Month builds the grid for cursor, marking today's cell.
func (s *CalendarService) Month(ctx context.Context, cursor core.MonthCursor, today core.Date) (MonthGrid, error) {
	daily, err := s.dailyTotals(ctx, cursor)
	if err != nil {
		return MonthGrid{}, err
	}

	grid := MonthGrid{
		Cursor:  cursor,
		Prev:    cursor.Previous(),
		Next:    cursor.Next(),
		Leading: cursor.LeadingBlanks(),
		Days:    make([]DayCell, len(daily)),
	}
	for i, t := range daily {
		d := core.NewDate(cursor.Year, cursor.Month, i+1)
		grid.Days[i] = DayCell{
			Date:       d,
			Day:        i + 1,
			Today:      d.Equal(today.Time),
			Totals:     t,
			HasSummary: t.HasActivity(),
		}
	}
	return grid, nil
}

// dailyTotals returns one Totals per day of the month, index 0 = day 1.
func (s *CalendarService) dailyTotals(ctx context.Context, cursor core.MonthCursor) ([]core.Totals, error) {
	key := cursor.Key()
	if s.cache != nil {
		if t, ok := s.cache.Get(key); ok {
			return t, nil
		}
	}

	buckets, err := loadMonth(ctx, s.repo, cursor, s.concurrency)
	if err != nil {
		return nil, err
	}
	daily := make([]core.Totals, cursor.DaysIn())
	for _, b := range buckets {
		daily[b.Date.Day()-1] = core.Sums(b.Items)
	}

	if s.cache != nil {
		s.cache.Set(key, daily)
	}
	slog.DebugContext(ctx, "Calendar month loaded", "month", key, "buckets", len(buckets), "component", "calendar")
	return daily, nil
}

// InvalidateMonth drops the cached totals for cursor.
func (s *CalendarService) InvalidateMonth(cursor core.MonthCursor) {
	if s.cache != nil {
		s.cache.Delete(cursor.Key())
	}
}
