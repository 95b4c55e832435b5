package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLookupMissThenHit(t *testing.T) {
	c := New(4)

	if _, ok := c.Lookup("fp"); ok {
		t.Fatal("lookup hit on empty cache")
	}

	c.Store("fp", "value", time.Minute)
	v, ok := c.Lookup("fp")
	if !ok {
		t.Fatal("lookup missed stored entry")
	}
	if v.(string) != "value" {
		t.Errorf("value = %v, want %q", v, "value")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestExpiredEntryIsAbsent(t *testing.T) {
	c := New(4)
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return current })

	c.Store("fp", "value", 10*time.Minute)

	current = current.Add(10*time.Minute - time.Second)
	if _, ok := c.Lookup("fp"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	current = current.Add(2 * time.Second)
	if _, ok := c.Lookup("fp"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d after lazy expiry, want 0", c.Len())
	}
}

func TestCapacityEvictsOldestInserted(t *testing.T) {
	c := New(3)

	for i := 0; i < 3; i++ {
		c.Store(fmt.Sprintf("fp-%d", i), i, time.Minute)
	}

	// Touch fp-0 so LRU would keep it; insertion-order eviction must not.
	if _, ok := c.Lookup("fp-0"); !ok {
		t.Fatal("fp-0 missing before eviction")
	}

	c.Store("fp-3", 3, time.Minute)

	if _, ok := c.Lookup("fp-0"); ok {
		t.Error("oldest-inserted entry survived eviction")
	}
	for _, fp := range []string{"fp-1", "fp-2", "fp-3"} {
		if _, ok := c.Lookup(fp); !ok {
			t.Errorf("%s missing after eviction", fp)
		}
	}
	if c.Len() != 3 {
		t.Errorf("len = %d, want 3", c.Len())
	}
}

func TestOverwriteKeepsInsertionPosition(t *testing.T) {
	c := New(2)

	c.Store("fp-a", "a1", time.Minute)
	c.Store("fp-b", "b1", time.Minute)
	c.Store("fp-a", "a2", time.Minute) // overwrite, still oldest

	c.Store("fp-c", "c1", time.Minute)

	if _, ok := c.Lookup("fp-a"); ok {
		t.Error("overwritten oldest entry survived eviction")
	}
	if v, ok := c.Lookup("fp-b"); !ok || v.(string) != "b1" {
		t.Errorf("fp-b = %v %v, want b1 true", v, ok)
	}
}

func TestReStoreAfterExpiryCountsAsNewInsertion(t *testing.T) {
	c := New(2)
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return current })

	c.Store("fp-a", "a1", time.Minute)
	c.Store("fp-b", "b1", time.Hour)

	// fp-a expires and is lazily removed; its re-store is now the newest
	// insertion, making fp-b the oldest live entry.
	current = current.Add(2 * time.Minute)
	if _, ok := c.Lookup("fp-a"); ok {
		t.Fatal("fp-a survived past its TTL")
	}
	c.Store("fp-a", "a2", time.Hour)

	c.Store("fp-c", "c1", time.Hour)

	if _, ok := c.Lookup("fp-b"); ok {
		t.Error("fp-b survived eviction despite being oldest-inserted")
	}
	if v, ok := c.Lookup("fp-a"); !ok || v.(string) != "a2" {
		t.Errorf("fp-a = %v %v, want a2 true (newest insertion evicted)", v, ok)
	}
	if _, ok := c.Lookup("fp-c"); !ok {
		t.Error("fp-c missing after eviction")
	}
}

func TestExpiryReleasesOrderSlots(t *testing.T) {
	c := New(4)
	current := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return current })

	// Expire-then-re-store churn of one fingerprint must not accumulate
	// insertion-order slots.
	for i := 0; i < 1000; i++ {
		c.Store("fp", i, time.Minute)
		current = current.Add(2 * time.Minute)
		if _, ok := c.Lookup("fp"); ok {
			t.Fatal("entry survived past its TTL")
		}
	}

	if len(c.order) != 0 {
		t.Errorf("order slots = %d for %d live entries, want 0", len(c.order), c.Len())
	}
}

func TestStoreRejectsNilAndZeroTTL(t *testing.T) {
	c := New(2)
	c.Store("fp", nil, time.Minute)
	c.Store("fp", "v", 0)
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0", c.Len())
	}
}
