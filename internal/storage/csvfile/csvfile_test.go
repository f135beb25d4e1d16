package csvfile

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
)

func TestWrite(t *testing.T) {
	at := time.Date(2026, 8, 27, 12, 30, 45, 0, time.UTC)
	r := model.NewResult("web")
	r.AddItem(model.Item{
		Word:      "热搜词",
		Heat:      12000,
		Rank:      1,
		URL:       "https://example.com/1",
		Category:  "新",
		Tags:      []string{"a", "b"},
		CreatedAt: at,
	})
	r.AddItem(model.Item{Word: "second", Heat: 0, Rank: 2, CreatedAt: at})

	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}

	wantHeader := []string{"排名", "热搜词条", "热度", "分类", "标签", "链接", "创建时间"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header column %d: expected %q, got %q", i, col, records[0][i])
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "热搜词" || row[2] != "12000" {
		t.Errorf("unexpected first row: %v", row)
	}
	if row[4] != "a,b" {
		t.Errorf("expected comma-joined tags, got %q", row[4])
	}
	if row[6] != "2026-08-27 12:30:45" {
		t.Errorf("unexpected timestamp format: %q", row[6])
	}

	if records[2][4] != "" {
		t.Errorf("expected empty tags column, got %q", records[2][4])
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	r := model.NewResult("web")
	r.AddItem(model.Item{Word: "w", Rank: 1, CreatedAt: time.Now()})

	if err := WriteFile(path, r); err != nil {
		t.Fatalf("write file failed: %v", err)
	}
}
