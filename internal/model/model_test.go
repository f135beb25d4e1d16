package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestResult_AddItemRecomputesTotal(t *testing.T) {
	r := NewResult("test")
	if r.Total != 0 {
		t.Fatalf("expected empty result total 0, got %d", r.Total)
	}

	for i := 1; i <= 5; i++ {
		r.AddItem(Item{Word: "term", Rank: i, CreatedAt: time.Now()})
		if r.Total != i {
			t.Errorf("after %d appends expected total %d, got %d", i, i, r.Total)
		}
		if r.Total != len(r.Items) {
			t.Errorf("total %d diverged from item count %d", r.Total, len(r.Items))
		}
	}
}

func TestResult_TopN(t *testing.T) {
	r := NewResult("test")
	for i := 1; i <= 3; i++ {
		r.AddItem(Item{Word: "w", Rank: i})
	}

	if got := len(r.TopN(2)); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
	if got := len(r.TopN(10)); got != 3 {
		t.Errorf("expected all 3 items when n exceeds count, got %d", got)
	}
	if top := r.TopN(1); top[0].Rank != 1 {
		t.Errorf("expected rank 1 first, got %d", top[0].Rank)
	}
}

func TestResult_FilterByCategory(t *testing.T) {
	r := NewResult("test")
	r.AddItem(Item{Word: "a", Rank: 1, Category: "ent"})
	r.AddItem(Item{Word: "b", Rank: 2, Category: "news"})
	r.AddItem(Item{Word: "c", Rank: 3, Category: "ent"})

	ent := r.FilterByCategory("ent")
	if len(ent) != 2 {
		t.Fatalf("expected 2 ent items, got %d", len(ent))
	}
	if ent[0].Word != "a" || ent[1].Word != "c" {
		t.Errorf("expected insertion order preserved, got %q %q", ent[0].Word, ent[1].Word)
	}
	if got := r.FilterByCategory("sports"); len(got) != 0 {
		t.Errorf("expected no sports items, got %d", len(got))
	}
}

func TestResult_JSONFieldNames(t *testing.T) {
	r := NewResult("xiaohongshu")
	r.AddItem(Item{Word: "词条", Heat: 12000, Rank: 1, URL: "https://example.com", Tags: []string{"tag"}, CreatedAt: time.Now()})

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"items", "total", "crawl_time", "source"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected top-level key %q", key)
		}
	}

	items := m["items"].([]any)
	item := items[0].(map[string]any)
	for _, key := range []string{"word", "heat", "rank", "url", "tags", "created_at"} {
		if _, ok := item[key]; !ok {
			t.Errorf("expected item key %q", key)
		}
	}
}
