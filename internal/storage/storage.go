package storage

import (
	"context"

	"poolScope/internal/model"
)

// SnapshotSink persists pool snapshots.
type SnapshotSink interface {
	PutPoolSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error
}
