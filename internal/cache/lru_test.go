package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("2024-04", 1)
	c.Set("2024-05", 2)

	// Touch 2024-04 so 2024-05 becomes the oldest.
	if _, ok := c.Get("2024-04"); !ok {
		t.Fatal("expected hit for 2024-04")
	}
	c.Set("2024-06", 3)

	if _, ok := c.Get("2024-05"); ok {
		t.Error("2024-05 should have been evicted")
	}
	if v, ok := c.Get("2024-04"); !ok || v != 1 {
		t.Errorf("Get(2024-04) = %d, %v; want 1, true", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	now = now.Add(30 * time.Second)
	c.Set("b", "z")

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Errorf("Get(b) = %q, %v; want z, true", v, ok)
	}

	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after sweep, want 0", c.Size())
	}
}

func TestLRUClearAndDelete(t *testing.T) {
	c := NewLRUCache[int](5, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be gone")
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() = %d after Clear, want 0", c.Size())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestJanitorSweep(t *testing.T) {
	c := NewLRUCache[int](5, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(2 * time.Minute)

	j := NewJanitor(nil)
	j.Register(c)
	if n := j.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}

	j.Start(time.Millisecond)
	j.Stop()
}
