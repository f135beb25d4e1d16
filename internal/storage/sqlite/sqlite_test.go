package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func snapshot(source string, at time.Time, words ...string) *model.Result {
	r := model.NewResult(source)
	r.CrawlTime = at
	for i, w := range words {
		r.AddItem(model.Item{
			Word:      w,
			Heat:      (i + 1) * 1000,
			Rank:      i + 1,
			URL:       "https://example.com/" + w,
			Category:  "热",
			Tags:      []string{"tag1", "tag2"},
			CreatedAt: at,
		})
	}
	return r
}

func TestSaveAndRecentSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := s.SaveSnapshot(ctx, snapshot("web", now, "第一", "second"))
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a non-empty snapshot ID")
	}

	results, err := s.RecentSnapshots(ctx, "web", 10)
	if err != nil {
		t.Fatalf("Failed to query snapshots: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(results))
	}

	got := results[0]
	if got.Source != "web" || got.Total != 2 {
		t.Errorf("Snapshot metadata mismatch: source=%q total=%d", got.Source, got.Total)
	}
	if got.Items[0].Word != "第一" || got.Items[1].Word != "second" {
		t.Errorf("Items out of order: %v", got.Items)
	}
	if got.Items[0].Heat != 1000 || got.Items[0].Rank != 1 {
		t.Errorf("Item fields lost: %+v", got.Items[0])
	}
	if len(got.Items[0].Tags) != 2 || got.Items[0].Tags[0] != "tag1" {
		t.Errorf("Tags not round-tripped: %v", got.Items[0].Tags)
	}
}

func TestRecentSnapshots_OrderingAndFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := s.SaveSnapshot(ctx, snapshot("web", base.Add(time.Duration(i)*time.Hour), "w")); err != nil {
			t.Fatalf("Failed to save snapshot %d: %v", i, err)
		}
	}
	if _, err := s.SaveSnapshot(ctx, snapshot("api", base, "other")); err != nil {
		t.Fatalf("Failed to save api snapshot: %v", err)
	}

	results, err := s.RecentSnapshots(ctx, "web", 2)
	if err != nil {
		t.Fatalf("Failed to query snapshots: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(results))
	}
	if !results[0].CrawlTime.After(results[1].CrawlTime) {
		t.Errorf("Expected newest first ordering")
	}
	for _, r := range results {
		if r.Source != "web" {
			t.Errorf("Expected only web snapshots, got %q", r.Source)
		}
	}
}

func TestRecentSnapshots_Empty(t *testing.T) {
	s := openTestStore(t)

	results, err := s.RecentSnapshots(context.Background(), "web", 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no snapshots, got %d", len(results))
	}
}
