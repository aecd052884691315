package storage

import (
	"context"
)

// SnapshotUnit is a single still frame to be persisted
type SnapshotUnit struct {
	Bucket  string
	Name    string
	Payload []byte
}

// SnapshotStorage persists still-frame JPEG snapshots taken from the live
// stream. Implementations must be safe for concurrent use.
type SnapshotStorage interface {
	Type() StorageType
	MakeBucket(string) error
	SaveSnapshot(context.Context, SnapshotUnit) (string, error)
}
