package testrepo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sprite-ai/testscope/internal/logger"
	"github.com/sprite-ai/testscope/internal/model"
)

var sample = []model.TestCase{
	{ID: 1, Title: "Verify webform submit", SectionPath: []string{"Forms", "Webform"}, Reference: "QA-1", Priority: 2, CustomFields: map[string]any{"custom_steps": "Click"}},
	{ID: 2, Title: "Login", SectionPath: []string{"Auth"}},
}

func openCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache", "inventory.db"), time.Hour)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, 1, 2); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	if err := c.Put(ctx, 1, 2, sample); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(ctx, 1, 2)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(sample, got); diff != "" {
		t.Errorf("cached inventory (-want +got):\n%s", diff)
	}
	if _, ok, _ := c.Get(ctx, 1, 3); ok {
		t.Error("other suite should miss")
	}

	if err := c.Invalidate(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, 1, 2); ok {
		t.Error("invalidated entry still served")
	}
}

func TestCacheExpires(t *testing.T) {
	c := openCache(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if err := c.Put(ctx, 1, 2, sample); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)
	if _, ok, err := c.Get(ctx, 1, 2); ok || err != nil {
		t.Errorf("expired entry: ok=%v err=%v", ok, err)
	}
}

func TestOpenCacheRejectsZeroTTL(t *testing.T) {
	if _, err := OpenCache(filepath.Join(t.TempDir(), "c.db"), 0); err == nil {
		t.Error("expected error")
	}
}

type fakeSource struct {
	calls int
	cases []model.TestCase
	err   error
}

func (f *fakeSource) FetchInventory(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error) {
	f.calls++
	return f.cases, f.err
}

func TestCachedSource(t *testing.T) {
	live := &fakeSource{cases: sample}
	src := &CachedSource{Live: live, Cache: openCache(t), Logger: logger.Nop()}
	ctx := context.Background()

	for range 3 {
		got, err := src.FetchInventory(ctx, 1, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(sample) {
			t.Fatalf("got %d cases", len(got))
		}
	}
	if live.calls != 1 {
		t.Errorf("live fetched %d times, want 1", live.calls)
	}
}

func TestCachedSourcePropagatesLiveErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &CachedSource{Live: &fakeSource{err: boom}, Cache: openCache(t), Logger: logger.Nop()}
	if _, err := src.FetchInventory(context.Background(), 1, 2); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
