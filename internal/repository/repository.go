// Package repository defines the data access interfaces for netcanvas.
//
// Topologies are persisted as named snapshots: the JSON document the codec
// produces plus a few summary columns. The SQLite implementation lives in
// the sqlite subpackage.
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a snapshot name does not exist
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved topology document
type Snapshot struct {
	Name      string    `json:"name"`
	Document  []byte    `json:"-"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotStore persists named topology snapshots
type SnapshotStore interface {
	// SaveSnapshot inserts or replaces the snapshot with the same name
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, name string) (*Snapshot, error)
	// ListSnapshots returns summaries without documents, most recent first
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	DeleteSnapshot(ctx context.Context, name string) error

	// Close releases resources
	Close() error
}
