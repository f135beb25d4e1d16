// Package sqlite keeps snapshot history in an embedded SQLite database,
// suitable for single-host deployments where no database server exists.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/internal/storage"
)

// ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	total INTEGER NOT NULL,
	crawl_time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_items (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id),
	position INTEGER NOT NULL,
	word TEXT NOT NULL,
	heat INTEGER NOT NULL,
	rank INTEGER NOT NULL,
	url TEXT,
	category TEXT,
	tags TEXT,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_source_time ON snapshots(source, crawl_time);
`

// New opens (creating if needed) a SQLite-backed snapshot store.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, result *model.Result) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, total, crawl_time) VALUES (?, ?, ?, ?)`,
		id, result.Source, result.Total, result.CrawlTime,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}

	for i, item := range result.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_items (snapshot_id, position, word, heat, rank, url, category, tags, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, item.Word, item.Heat, item.Rank, item.URL, item.Category,
			strings.Join(item.Tags, ","), item.CreatedAt,
		)
		if err != nil {
			return "", fmt.Errorf("sqlite: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}
	return id, nil
}

func (s *Store) RecentSnapshots(ctx context.Context, source string, limit int) ([]*model.Result, error) {
	query := `SELECT id, source, crawl_time FROM snapshots WHERE 1=1`
	args := []any{}

	if source != "" {
		query += ` AND source = ?`
		args = append(args, source)
	}

	query += ` ORDER BY crawl_time DESC`

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	type header struct {
		id        string
		source    string
		crawlTime time.Time
	}

	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.source, &h.crawlTime); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	var results []*model.Result
	for _, h := range headers {
		r := model.NewResult(h.source)
		r.CrawlTime = h.crawlTime

		items, err := s.snapshotItems(ctx, h.id)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			r.AddItem(item)
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Store) snapshotItems(ctx context.Context, snapshotID string) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, heat, rank, url, category, tags, created_at
		 FROM snapshot_items WHERE snapshot_id = ? ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var tags string
		if err := rows.Scan(&item.Word, &item.Heat, &item.Rank, &item.URL,
			&item.Category, &tags, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		item.Tags = splitTags(tags)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return items, nil
}

func splitTags(tags string) []string {
	if tags == "" {
		return []string{}
	}
	return strings.Split(tags, ",")
}

func (s *Store) Close() error {
	return s.db.Close()
}
