package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
)

func TestPostgresStore(t *testing.T) {
	// Only run this test if HOTWATCH_TEST_PG_DSN is set
	dsn := os.Getenv("HOTWATCH_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres store test: HOTWATCH_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create Postgres store: %v", err)
	}
	defer s.Close()

	now := time.Now().UTC()
	r := model.NewResult("web")
	r.CrawlTime = now
	r.AddItem(model.Item{
		Word:      "热搜词",
		Heat:      12000,
		Rank:      1,
		URL:       "https://example.com/1",
		Category:  "新",
		Tags:      []string{"a", "b"},
		CreatedAt: now,
	})
	r.AddItem(model.Item{Word: "second", Heat: 500, Rank: 2, CreatedAt: now})

	id, err := s.SaveSnapshot(ctx, r)
	if err != nil {
		t.Fatalf("Failed to save snapshot: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a non-empty snapshot ID")
	}

	results, err := s.RecentSnapshots(ctx, "web", 1)
	if err != nil {
		t.Fatalf("Failed to query snapshots: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(results))
	}

	got := results[0]
	if got.Total != 2 {
		t.Errorf("Expected total 2, got %d", got.Total)
	}
	if got.Items[0].Word != "热搜词" || got.Items[0].Heat != 12000 {
		t.Errorf("First item mismatch: %+v", got.Items[0])
	}
	if len(got.Items[0].Tags) != 2 {
		t.Errorf("Tags not round-tripped: %v", got.Items[0].Tags)
	}
	if len(got.Items[1].Tags) != 0 {
		t.Errorf("Expected empty tags, got %v", got.Items[1].Tags)
	}
}
