// Package storage persists trending snapshots. Snapshot history is what
// makes trend comparison across runs possible; file exports (JSON, CSV)
// are the interchange formats consumers read.
package storage

import (
	"context"

	"github.com/FranksOps/hotwatch/internal/model"
)

// Store keeps a history of trending snapshots.
type Store interface {
	// SaveSnapshot persists one snapshot and returns its storage ID.
	SaveSnapshot(ctx context.Context, result *model.Result) (string, error)
	// RecentSnapshots returns up to limit snapshots for the source,
	// newest first, items in rank order.
	RecentSnapshots(ctx context.Context, source string, limit int) ([]*model.Result, error)
	Close() error
}
