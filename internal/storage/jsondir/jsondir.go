// Package jsondir stores trending snapshots as one JSON file per crawl in
// a flat directory. The file format is the interchange format consumers
// read, so round-tripping a snapshot must reproduce it exactly.
package jsondir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is a directory of snapshot files.
type Store struct {
	dir string
}

// New creates the directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsondir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// SaveSnapshot writes the snapshot to a timestamped file and returns its
// path.
func (s *Store) SaveSnapshot(ctx context.Context, result *model.Result) (string, error) {
	name := fmt.Sprintf("hot_search_%s_%s.json", result.Source, result.CrawlTime.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)
	if err := WriteFile(path, result); err != nil {
		return "", err
	}
	return path, nil
}

// RecentSnapshots loads every snapshot for the source and returns the
// newest limit of them, newest first.
func (s *Store) RecentSnapshots(ctx context.Context, source string, limit int) ([]*model.Result, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("jsondir: %w", err)
	}

	var results []*model.Result
	for _, path := range paths {
		r, err := ReadFile(path)
		if err != nil {
			// A corrupt file shouldn't hide the rest of the history.
			continue
		}
		if source != "" && r.Source != source {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CrawlTime.After(results[j].CrawlTime)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Close is a no-op; files are closed after each write.
func (s *Store) Close() error {
	return nil
}

// WriteFile writes a snapshot as indented JSON.
func WriteFile(path string, result *model.Result) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("jsondir: marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("jsondir: %w", err)
	}
	return nil
}

// ReadFile loads a snapshot, rebuilding it item by item so the Total
// invariant is enforced regardless of what the file claims.
func ReadFile(path string) (*model.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsondir: %w", err)
	}

	var raw model.Result
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("jsondir: decode %s: %w", filepath.Base(path), err)
	}

	result := &model.Result{
		Items:     []model.Item{},
		CrawlTime: raw.CrawlTime,
		Source:    raw.Source,
	}
	for _, item := range raw.Items {
		result.AddItem(item)
	}
	return result, nil
}
