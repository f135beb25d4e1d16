// Package postgres keeps snapshot history in PostgreSQL for deployments
// where crawl history is shared between hosts.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/internal/storage"
)

// ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

type Store struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	total INTEGER NOT NULL,
	crawl_time TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_items (
	snapshot_id TEXT NOT NULL REFERENCES snapshots(id),
	position INTEGER NOT NULL,
	word TEXT NOT NULL,
	heat BIGINT NOT NULL,
	rank INTEGER NOT NULL,
	url TEXT,
	category TEXT,
	tags TEXT[],
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_source_time ON snapshots(source, crawl_time);
`

// New connects to Postgres and ensures the snapshot schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, result *model.Result) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New().String()

	_, err = tx.Exec(ctx,
		`INSERT INTO snapshots (id, source, total, crawl_time) VALUES ($1, $2, $3, $4)`,
		id, result.Source, result.Total, result.CrawlTime,
	)
	if err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}

	for i, item := range result.Items {
		_, err = tx.Exec(ctx,
			`INSERT INTO snapshot_items (snapshot_id, position, word, heat, rank, url, category, tags, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, i, item.Word, item.Heat, item.Rank, item.URL, item.Category,
			item.Tags, item.CreatedAt,
		)
		if err != nil {
			return "", fmt.Errorf("postgres: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	return id, nil
}

func (s *Store) RecentSnapshots(ctx context.Context, source string, limit int) ([]*model.Result, error) {
	query := `SELECT id, source, crawl_time FROM snapshots WHERE 1=1`
	args := []any{}
	paramCount := 1

	if source != "" {
		query += fmt.Sprintf(` AND source = $%d`, paramCount)
		args = append(args, source)
		paramCount++
	}

	query += ` ORDER BY crawl_time DESC`

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, limit)
		paramCount++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
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
			return nil, fmt.Errorf("postgres: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
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
	rows, err := s.pool.Query(ctx,
		`SELECT word, heat, rank, url, category, tags, created_at
		 FROM snapshot_items WHERE snapshot_id = $1 ORDER BY position`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.Word, &item.Heat, &item.Rank, &item.URL,
			&item.Category, &item.Tags, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if item.Tags == nil {
			item.Tags = []string{}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return items, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
