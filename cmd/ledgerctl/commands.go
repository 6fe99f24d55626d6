package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

// app is bound into every command's Run.
type app struct {
	ctx    context.Context
	repo   *ledger.Repository
	ledger *services.LedgerService
	stats  *services.StatsService
	events *applog.StructuredLogger
	out    io.Writer
}

func newApp(ctx context.Context, repo *ledger.Repository, publisher services.Publisher, concurrency int, logger *applog.Logger, out io.Writer) *app {
	return &app{
		ctx:    ctx,
		repo:   repo,
		ledger: services.NewLedgerService(repo, publisher),
		stats:  services.NewStatsService(repo, nil, concurrency),
		events: applog.NewStructuredLogger(logger),
		out:    out,
	}
}

type addCmd struct {
	Date        string `required:"" help:"Date of the transaction (YYYY-MM-DD)."`
	Type        string `default:"expense" help:"income or expense."`
	Category    string `default:"식비" help:"Category name."`
	Description string `required:"" help:"What the transaction was for."`
	Amount      string `required:"" help:"Positive amount; thousands separators are accepted."`
}

func (c *addCmd) Run(a *app) error {
	date, err := core.ParseDate(c.Date)
	if err != nil {
		return fmt.Errorf("date %q: %w", c.Date, err)
	}
	txType, err := core.ParseTransactionType(c.Type)
	if err != nil {
		return fmt.Errorf("type %q: %w", c.Type, err)
	}
	amount, err := core.ParseAmount(c.Amount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", c.Amount, err)
	}

	day, err := a.ledger.Add(a.ctx, date, core.Transaction{
		Type:        txType,
		Category:    strings.TrimSpace(c.Category),
		Description: strings.TrimSpace(c.Description),
		Amount:      amount,
	})
	if err != nil {
		return err
	}
	stored := day.Items[len(day.Items)-1]
	a.events.LogTransactionAdded(a.ctx, date.String(), stored.ID, string(stored.Type), stored.Category, stored.Amount)

	fmt.Fprintf(a.out, "added %d\n", stored.ID)
	return printDay(a.out, day)
}

type listCmd struct {
	Date string `required:"" help:"Date to show (YYYY-MM-DD)."`
}

func (c *listCmd) Run(a *app) error {
	date, err := core.ParseDate(c.Date)
	if err != nil {
		return fmt.Errorf("date %q: %w", c.Date, err)
	}
	day, err := a.ledger.Day(a.ctx, date)
	if err != nil {
		return err
	}
	return printDay(a.out, day)
}

type rmCmd struct {
	Date string `required:"" help:"Date of the transaction (YYYY-MM-DD)."`
	ID   int64  `required:"" help:"Transaction id as shown by list."`
}

func (c *rmCmd) Run(a *app) error {
	date, err := core.ParseDate(c.Date)
	if err != nil {
		return fmt.Errorf("date %q: %w", c.Date, err)
	}
	day, err := a.ledger.Remove(a.ctx, date, c.ID)
	if err != nil {
		return err
	}
	return printDay(a.out, day)
}

type statsCmd struct {
	Month string `required:"" help:"Month to summarise (YYYY-MM)."`
}

func (c *statsCmd) Run(a *app) error {
	t, err := time.Parse("2006-01", strings.TrimSpace(c.Month))
	if err != nil {
		return fmt.Errorf("month %q: expected YYYY-MM", c.Month)
	}
	st, err := a.stats.Month(a.ctx, core.CursorOf(t))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, st.Cursor.Label())
	printTotals(a.out, st.Totals)
	if len(st.Categories) == 0 {
		fmt.Fprintln(a.out, "이번 달 지출 내역이 없습니다.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, ca := range st.Categories {
		fmt.Fprintf(tw, "%s\t%s\n", ca.Name, core.FormatAmount(ca.Amount))
	}
	return tw.Flush()
}

type datesCmd struct{}

func (c *datesCmd) Run(a *app) error {
	dates, err := a.repo.Dates(a.ctx)
	if err != nil {
		return err
	}
	for _, d := range dates {
		fmt.Fprintln(a.out, d.String())
	}
	return nil
}

func printDay(out io.Writer, day services.DayView) error {
	fmt.Fprintf(out, "%s 내역\n", day.Date)
	if len(day.Items) == 0 {
		fmt.Fprintln(out, "등록된 내역이 없습니다.")
	} else {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, tx := range day.Items {
			sign := "+"
			if tx.Type == core.Expense {
				sign = "-"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", tx.ID, tx.Category, tx.Description,
				core.FormatSigned(sign, decimal.NewFromFloat(tx.Amount)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	printTotals(out, day.Totals)
	return nil
}

func printTotals(out io.Writer, t core.Totals) {
	fmt.Fprintf(out, "수입 %s  지출 %s  합계 %s\n",
		core.FormatSigned("+", t.Income),
		core.FormatSigned("-", t.Expense),
		core.FormatAmount(t.Net))
}
