// Package store persists table snapshots with optimistic concurrency. A
// snapshot is the encoded game state; every successful write bumps the
// version by one and a write against a stale version is rejected with
// errcode.ErrVersionConflict.
package store

import (
	"context"
	"time"
)

// Record is one stored table snapshot.
type Record struct {
	TableID   string
	Version   int64
	Data      []byte
	UpdatedAt time.Time
}

// Store is the storage collaborator of the table service.
type Store interface {
	// Create inserts a new table at version 1.
	Create(ctx context.Context, tableID string, data []byte) (Record, error)
	// Read returns the latest snapshot.
	Read(ctx context.Context, tableID string) (Record, error)
	// Write replaces the snapshot if its version still equals expectedVersion.
	Write(ctx context.Context, tableID string, expectedVersion int64, data []byte) (Record, error)
	// List returns every table id in ascending order.
	List(ctx context.Context) ([]string, error)
}
