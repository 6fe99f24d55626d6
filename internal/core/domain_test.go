package core

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-05-01", true},
		{" 2024-12-31 ", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-01", false},
		{"2024/05/01", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error, got %v", tc.in, d)
		}
		if tc.ok && d.String() != strings.TrimSpace(tc.in) {
			t.Fatalf("%q round-tripped to %q", tc.in, d.String())
		}
	}
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	// 2024-04-30 20:00 UTC is already May 1st in Seoul.
	ts := time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC).In(loc)
	if got := DateOf(ts).String(); got != "2024-05-01" {
		t.Fatalf("DateOf = %s, want 2024-05-01", got)
	}
}

func TestParseTransactionType(t *testing.T) {
	for _, in := range []string{"income", "EXPENSE", " expense "} {
		if _, err := ParseTransactionType(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	for _, in := range []string{"", "transfer", "수입"} {
		if _, err := ParseTransactionType(in); err != ErrInvalidType {
			t.Fatalf("%q expected ErrInvalidType, got %v", in, err)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: 1, Type: Expense, Category: "식비", Description: "lunch", Amount: 20}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Type: "gift", Description: "a", Amount: 1}, ErrInvalidType},
		{Transaction{Type: Income, Description: "  ", Amount: 1}, ErrEmptyDescription},
		{Transaction{Type: Income, Description: strings.Repeat("가", 201), Amount: 1}, ErrDescriptionTooLong},
		{Transaction{Type: Income, Description: "a", Amount: 0}, ErrInvalidAmount},
		{Transaction{Type: Income, Description: "a", Amount: -5}, ErrInvalidAmount},
		{Transaction{Type: Income, Description: "a", Amount: math.NaN()}, ErrInvalidAmount},
		{Transaction{Type: Income, Description: "a", Amount: math.Inf(1)}, ErrInvalidAmount},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); err != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1000", 1000, true},
		{" 20 ", 20, true},
		{"1,250.5", 1250.5, true},
		{"0.01", 0.01, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
