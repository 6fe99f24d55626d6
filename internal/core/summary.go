package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Totals holds income, expense and net for a scope (a day or a month).
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryTotals maps category to summed expense and remembers the order in
// which categories were first seen. The zero value is ready to use.
type CategoryTotals struct {
	order []string
	sums  map[string]decimal.Decimal
}

// Sums adds up income and expense amounts. Net is income minus expense.
func Sums(items []Transaction) Totals {
	var t Totals
	for _, it := range items {
		amt := decimal.NewFromFloat(it.Amount)
		switch it.Type {
		case Income:
			t.Income = t.Income.Add(amt)
		case Expense:
			t.Expense = t.Expense.Add(amt)
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// Add returns the elementwise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Income:  t.Income.Add(o.Income),
		Expense: t.Expense.Add(o.Expense),
		Net:     t.Net.Add(o.Net),
	}
}

// Equal compares numerically, so 1.0 and 1 are equal.
func (t Totals) Equal(o Totals) bool {
	return t.Income.Equal(o.Income) && t.Expense.Equal(o.Expense) && t.Net.Equal(o.Net)
}

// HasActivity reports whether any income or expense was recorded.
func (t Totals) HasActivity() bool {
	return !t.Income.IsZero() || !t.Expense.IsZero()
}

// NetPositive is true for a zero or positive net.
func (t Totals) NetPositive() bool {
	return !t.Net.IsNegative()
}

// ByCategory sums expense amounts per category. Income is ignored.
func ByCategory(items []Transaction) CategoryTotals {
	var c CategoryTotals
	for _, it := range items {
		if it.Type != Expense {
			continue
		}
		c.add(it.Category, decimal.NewFromFloat(it.Amount))
	}
	return c
}

func (c *CategoryTotals) add(name string, amt decimal.Decimal) {
	if c.sums == nil {
		c.sums = make(map[string]decimal.Decimal)
	}
	cur, ok := c.sums[name]
	if !ok {
		c.order = append(c.order, name)
	}
	c.sums[name] = cur.Add(amt)
}

// Merge folds o into c, appending categories c has not seen yet in o's order.
func (c *CategoryTotals) Merge(o CategoryTotals) {
	for _, name := range o.order {
		c.add(name, o.sums[name])
	}
}

// Get returns the summed expense for name, and false when the category is absent.
func (c CategoryTotals) Get(name string) (decimal.Decimal, bool) {
	if v, ok := c.sums[name]; ok && !v.IsZero() {
		return v, true
	}
	return decimal.Zero, false
}

// Len counts categories with a nonzero sum.
func (c CategoryTotals) Len() int {
	return len(c.entries())
}

func (c CategoryTotals) entries() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c.order))
	for _, name := range c.order {
		amt := c.sums[name]
		if amt.IsZero() {
			continue
		}
		out = append(out, CategoryAmount{Name: name, Amount: amt})
	}
	return out
}

// Sorted lists categories by amount, largest first. Equal amounts keep
// first-seen order.
func (c CategoryTotals) Sorted() []CategoryAmount {
	out := c.entries()
	slices.SortStableFunc(out, func(a, b CategoryAmount) int {
		return b.Amount.Cmp(a.Amount)
	})
	return out
}
