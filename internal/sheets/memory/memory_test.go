package memory

import (
	"context"
	"testing"
	"time"

	"gagyebu/internal/core"
)

func TestMirrorReplaceBucket(t *testing.T) {
	ctx := context.Background()
	m := New()
	d := core.NewDate(2024, time.May, 1)
	items := []core.Transaction{{ID: 1, Type: core.Expense, Category: "식비", Description: "점심", Amount: 20}}

	if err := m.ReplaceBucket(ctx, d, items); err != nil {
		t.Fatal(err)
	}
	items[0].Amount = 999 // caller mutation must not leak in

	got, _ := m.ReadBucket(ctx, d)
	if len(got) != 1 || got[0].Amount != 20 {
		t.Fatalf("ReadBucket = %+v", got)
	}

	if err := m.ReplaceBucket(ctx, d, nil); err != nil {
		t.Fatal(err)
	}
	got, _ = m.ReadBucket(ctx, d)
	if got == nil || len(got) != 0 {
		t.Fatalf("emptied bucket should read as empty slice, got %#v", got)
	}
	if m.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", m.Writes())
	}
}
