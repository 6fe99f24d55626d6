package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSumsEmpty(t *testing.T) {
	got := Sums(nil)
	if !got.Equal(Totals{}) {
		t.Fatalf("Sums(nil) = %+v, want zeros", got)
	}
	if got.HasActivity() {
		t.Fatalf("empty totals should have no activity")
	}
	if !got.NetPositive() {
		t.Fatalf("zero net counts as positive")
	}
}

func TestSumsScenario(t *testing.T) {
	items := []Transaction{
		{ID: 1, Type: Income, Category: "식비", Description: "salary", Amount: 1000},
		{ID: 2, Type: Expense, Category: "식비", Description: "lunch", Amount: 20},
	}
	got := Sums(items)
	want := Totals{Income: dec("1000"), Expense: dec("20"), Net: dec("980")}
	if !got.Equal(want) {
		t.Fatalf("Sums = %v/%v/%v, want 1000/20/980", got.Income, got.Expense, got.Net)
	}

	cats := ByCategory(items)
	if cats.Len() != 1 {
		t.Fatalf("expected one category, got %d", cats.Len())
	}
	if v, ok := cats.Get("식비"); !ok || !v.Equal(dec("20")) {
		t.Fatalf("식비 = %v (ok=%v), want 20", v, ok)
	}
}

func TestSumsIsAdditive(t *testing.T) {
	a := []Transaction{
		{Type: Income, Amount: 0.1},
		{Type: Expense, Amount: 0.2},
		{Type: Income, Amount: 1234.567},
	}
	b := []Transaction{
		{Type: Expense, Amount: 0.3},
		{Type: Income, Amount: 0.7},
	}
	whole := Sums(append(append([]Transaction{}, a...), b...))
	parts := Sums(a).Add(Sums(b))
	if !whole.Equal(parts) {
		t.Fatalf("Sums(A++B)=%+v, Sums(A)+Sums(B)=%+v", whole, parts)
	}
	if !whole.Expense.Equal(dec("0.5")) {
		t.Fatalf("expense = %v, want exactly 0.5", whole.Expense)
	}
}

func TestByCategoryIgnoresIncomeAndZero(t *testing.T) {
	items := []Transaction{
		{Type: Income, Category: "급여", Amount: 3000},
		{Type: Expense, Category: "교통", Amount: 10},
		{Type: Income, Category: "교통", Amount: 50},
	}
	cats := ByCategory(items)
	if _, ok := cats.Get("급여"); ok {
		t.Fatalf("income-only category must be absent")
	}
	if v, _ := cats.Get("교통"); !v.Equal(dec("10")) {
		t.Fatalf("교통 = %v, want 10", v)
	}

	var empty CategoryTotals
	if empty.Len() != 0 || len(empty.Sorted()) != 0 {
		t.Fatalf("zero value should be empty")
	}
}

func TestSortedIsStableOnTies(t *testing.T) {
	items := []Transaction{
		{Type: Expense, Category: "문화", Amount: 10},
		{Type: Expense, Category: "식비", Amount: 30},
		{Type: Expense, Category: "교통", Amount: 10},
		{Type: Expense, Category: "쇼핑", Amount: 10},
		{Type: Expense, Category: "문화", Amount: 5},
	}
	got := ByCategory(items).Sorted()
	want := []string{"식비", "문화", "교통", "쇼핑"}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d = %s, want %s (all: %+v)", i, got[i].Name, name, got)
		}
	}
}

func TestMergeKeepsFirstSeenOrder(t *testing.T) {
	day1 := ByCategory([]Transaction{{Type: Expense, Category: "교통", Amount: 5}})
	day2 := ByCategory([]Transaction{
		{Type: Expense, Category: "식비", Amount: 5},
		{Type: Expense, Category: "교통", Amount: 5},
	})
	var month CategoryTotals
	month.Merge(day1)
	month.Merge(day2)
	got := month.Sorted()
	if got[0].Name != "교통" || !got[0].Amount.Equal(dec("10")) {
		t.Fatalf("unexpected first entry %+v", got[0])
	}
	if got[1].Name != "식비" {
		t.Fatalf("unexpected second entry %+v", got[1])
	}
}

func TestMonthCursorWraps(t *testing.T) {
	c := MonthCursor{Year: 2024, Month: time.January}
	if p := c.Previous(); p != (MonthCursor{Year: 2023, Month: time.December}) {
		t.Fatalf("Previous = %+v", p)
	}
	c = MonthCursor{Year: 2023, Month: time.December}
	if n := c.Next(); n != (MonthCursor{Year: 2024, Month: time.January}) {
		t.Fatalf("Next = %+v", n)
	}
	c = MonthCursor{Year: 2024, Month: time.May}
	if c.Next().Previous() != c {
		t.Fatalf("Next then Previous should be identity")
	}
}

func TestMonthCursorGrid(t *testing.T) {
	may := MonthCursor{Year: 2024, Month: time.May}
	if may.DaysIn() != 31 || may.LeadingBlanks() != 3 {
		t.Fatalf("May 2024: days=%d blanks=%d", may.DaysIn(), may.LeadingBlanks())
	}
	feb := MonthCursor{Year: 2024, Month: time.February}
	if feb.DaysIn() != 29 || feb.LeadingBlanks() != 4 {
		t.Fatalf("Feb 2024: days=%d blanks=%d", feb.DaysIn(), feb.LeadingBlanks())
	}
	if may.Label() != "2024년 5월" || may.Key() != "2024-05" {
		t.Fatalf("label=%q key=%q", may.Label(), may.Key())
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1000", "1,000원"},
		{"20", "20원"},
		{"1234.5", "1,234.5원"},
		{"0", "0원"},
		{"-980", "-980원"},
	}
	for _, tc := range cases {
		if got := FormatAmount(dec(tc.in)); got != tc.want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if got := FormatSigned("-", dec("20")); got != "-20원" {
		t.Fatalf("FormatSigned = %q", got)
	}
}
