package jsondir

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
)

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
			Tags:      []string{"tag"},
			CreatedAt: at,
		})
	}
	return r
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	at := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	original := snapshot("web", at, "第一", "second", "third")

	if err := WriteFile(path, original); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if loaded.Total != original.Total {
		t.Fatalf("expected total %d, got %d", original.Total, loaded.Total)
	}
	if !loaded.CrawlTime.Equal(original.CrawlTime) || loaded.Source != original.Source {
		t.Errorf("snapshot metadata mismatch: %v %q", loaded.CrawlTime, loaded.Source)
	}

	for i, want := range original.Items {
		got := loaded.Items[i]
		if got.Word != want.Word || got.Heat != want.Heat || got.Rank != want.Rank ||
			got.URL != want.URL || got.Category != want.Category {
			t.Errorf("item %d mismatch: got %+v want %+v", i, got, want)
		}
		if len(got.Tags) != len(want.Tags) {
			t.Errorf("item %d tags mismatch: %v vs %v", i, got.Tags, want.Tags)
		}
	}
}

func TestReadFile_EnforcesTotalInvariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lying.json")

	r := snapshot("web", time.Now().UTC(), "a", "b")
	r.Total = 99 // the file may lie; the loader must not
	if err := WriteFile(path, r); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if loaded.Total != 2 {
		t.Errorf("expected recomputed total 2, got %d", loaded.Total)
	}
}

func TestStore_RecentSnapshots(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveSnapshot(ctx, snapshot("web", base.Add(time.Duration(i)*time.Hour), "w")); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}
	if _, err := store.SaveSnapshot(ctx, snapshot("api", base, "other")); err != nil {
		t.Fatalf("save api snapshot failed: %v", err)
	}

	recent, err := store.RecentSnapshots(ctx, "web", 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(recent))
	}
	if !recent[0].CrawlTime.After(recent[1].CrawlTime) {
		t.Errorf("expected newest first ordering")
	}
	for _, r := range recent {
		if r.Source != "web" {
			t.Errorf("expected only web snapshots, got %q", r.Source)
		}
	}
}

func TestStore_RecentSnapshotsEmptyDir(t *testing.T) {
	store, _ := New(t.TempDir())
	recent, err := store.RecentSnapshots(context.Background(), "web", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("expected no snapshots, got %d", len(recent))
	}
}
