package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/thing"
)

var weightTypeID = uuid.MustParse("3d34d87e-7fc1-4153-800f-f56592cb0d17")
var medicationTypeID = uuid.MustParse("30cafccc-047d-4288-94ef-643571f7919d")

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testItem(t *testing.T, typeID uuid.UUID, effective time.Time, tags ...string) *thing.Thing {
	t.Helper()
	item := thing.New(typeID)
	item.Key = thing.NewKey()
	item.EffectiveDate = effective
	item.Tags = tags
	item.SetRawTypeXML("payload", "<payload><v>1</v></payload>")
	return item
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	item := testItem(t, weightTypeID, time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC), "fitness")
	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := c.Get(ctx, item.Key.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Key.ID != item.Key.ID || got.Key.VersionStamp != item.Key.VersionStamp {
		t.Errorf("key lost: %+v", got.Key)
	}
	if got.TypeID != weightTypeID {
		t.Errorf("TypeID = %s", got.TypeID)
	}
	if got.RawTypeXML() != item.RawTypeXML() {
		t.Errorf("payload lost: %q", got.RawTypeXML())
	}
	if len(got.Tags) != 1 || got.Tags[0] != "fitness" {
		t.Errorf("Tags = %v", got.Tags)
	}
}

func TestPutRequiresKey(t *testing.T) {
	c := openTestCache(t)
	item := thing.New(weightTypeID)
	if err := c.Put(context.Background(), item); err == nil {
		t.Error("expected error for keyless item")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	item := testItem(t, weightTypeID, time.Now(), "old-tag")
	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	item.Tags = []string{"new-tag"}
	item.Key.VersionStamp = uuid.New()
	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := c.Get(ctx, item.Key.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Key.VersionStamp != item.Key.VersionStamp {
		t.Errorf("version not updated")
	}
	if len(got.Tags) != 1 || got.Tags[0] != "new-tag" {
		t.Errorf("Tags = %v", got.Tags)
	}

	n, err := c.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d", n)
	}
}

func TestGetMemoizesParsedItems(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	item := testItem(t, weightTypeID, time.Now(), "fitness")
	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	first, err := c.Get(ctx, item.Key.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := c.Get(ctx, item.Key.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first != second {
		t.Error("repeat Get within the TTL must return the memoized item")
	}

	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	third, err := c.Get(ctx, item.Key.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if third == first {
		t.Error("Put must drop the memoized item")
	}
}

func TestGetMissing(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.Get(context.Background(), uuid.New()); err == nil {
		t.Error("expected not-found error")
	}
}

func TestDelete(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	item := testItem(t, weightTypeID, time.Now(), "x")
	if err := c.Put(ctx, item); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := c.Delete(ctx, item.Key.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, item.Key.ID); err == nil {
		t.Error("expected not-found after delete")
	}
	if err := c.Delete(ctx, item.Key.ID); err == nil {
		t.Error("expected not-found for double delete")
	}
}

func TestSearch(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	w1 := testItem(t, weightTypeID, day(1), "fitness")
	w2 := testItem(t, weightTypeID, day(10), "fitness", "morning")
	w3 := testItem(t, weightTypeID, day(20))
	m1 := testItem(t, medicationTypeID, day(5), "fitness")
	for _, item := range []*thing.Thing{w1, w2, w3, m1} {
		if err := c.Put(ctx, item); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	t.Run("by type", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{TypeID: weightTypeID})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("got %d items", len(items))
		}
		// Newest effective date first.
		if !items[0].EffectiveDate.Equal(day(20)) {
			t.Errorf("order wrong: %v", items[0].EffectiveDate)
		}
	})

	t.Run("by tag", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{Tags: []string{"fitness"}})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 3 {
			t.Errorf("got %d items", len(items))
		}
	})

	t.Run("by multiple tags", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{Tags: []string{"fitness", "morning"}})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 1 || items[0].Key.ID != w2.Key.ID {
			t.Errorf("got %d items", len(items))
		}
	})

	t.Run("by date window", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{After: day(2), Before: day(15)})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("got %d items", len(items))
		}
	})

	t.Run("combined", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{TypeID: weightTypeID, Tags: []string{"fitness"}, After: day(5)})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 1 || items[0].Key.ID != w2.Key.ID {
			t.Errorf("unexpected result set: %d items", len(items))
		}
	})

	t.Run("limit", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{Limit: 2})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 2 {
			t.Errorf("got %d items", len(items))
		}
	})

	t.Run("no match", func(t *testing.T) {
		items, err := c.Search(ctx, Filter{Tags: []string{"no-such-tag"}})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("got %d items", len(items))
		}
	})
}

func TestDriverIdentity(t *testing.T) {
	if DriverName() == "" || DriverType() == "" {
		t.Error("driver identity must be set")
	}
}
