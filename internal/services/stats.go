package services

import (
	"context"
	"log/slog"

	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

// ChartTitle is shown above the category pie chart.
const ChartTitle = "카테고리별 지출 분포"

// Palette colors chart slices in order, wrapping around when exhausted.
var Palette = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f1c40f", "#9b59b6",
	"#34495e", "#1abc9c", "#f39c12", "#d35400", "#c0392b",
}

// Chart is the payload consumed by the pie chart.
type Chart struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
	Title  string    `json:"title"`
}

type MonthStats struct {
	Cursor     core.MonthCursor
	Totals     core.Totals
	Categories []core.CategoryAmount
	Chart      Chart
}

// StatsService aggregates one month of buckets.
type StatsService struct {
	repo        *ledger.Repository
	cache       cache.Cache[MonthStats]
	concurrency int
}

func NewStatsService(repo *ledger.Repository, c cache.Cache[MonthStats], concurrency int) *StatsService {
	return &StatsService{repo: repo, cache: c, concurrency: concurrency}
}

// Month returns totals and the category breakdown for cursor. Buckets from
// other months never contribute.
func (s *StatsService) Month(ctx context.Context, cursor core.MonthCursor) (MonthStats, error) {
	key := cursor.Key()
	if s.cache != nil {
		if st, ok := s.cache.Get(key); ok {
			return st, nil
		}
	}

	buckets, err := loadMonth(ctx, s.repo, cursor, s.concurrency)
	if err != nil {
		return MonthStats{}, err
	}

	var (
		totals core.Totals
		cats   core.CategoryTotals
	)
	for _, b := range buckets {
		totals = totals.Add(core.Sums(b.Items))
		cats.Merge(core.ByCategory(b.Items))
	}
	sorted := cats.Sorted()

	st := MonthStats{
		Cursor:     cursor,
		Totals:     totals,
		Categories: sorted,
		Chart:      BuildChart(sorted),
	}
	if s.cache != nil {
		s.cache.Set(key, st)
	}
	slog.DebugContext(ctx, "Month stats computed",
		"month", key, "buckets", len(buckets), "categories", len(sorted), "component", "stats")
	return st, nil
}

// InvalidateMonth drops the cached stats for cursor.
func (s *StatsService) InvalidateMonth(cursor core.MonthCursor) {
	if s.cache != nil {
		s.cache.Delete(cursor.Key())
	}
}

// BuildChart maps sorted categories onto labels, values and palette colors.
func BuildChart(cats []core.CategoryAmount) Chart {
	c := Chart{
		Labels: make([]string, len(cats)),
		Values: make([]float64, len(cats)),
		Colors: make([]string, len(cats)),
		Title:  ChartTitle,
	}
	for i, ca := range cats {
		c.Labels[i] = ca.Name
		c.Values[i] = ca.Amount.InexactFloat64()
		c.Colors[i] = Palette[i%len(Palette)]
	}
	return c
}
