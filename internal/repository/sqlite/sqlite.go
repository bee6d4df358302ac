package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"netcanvas/internal/repository"
)

// Repository implements repository.SnapshotStore using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.SnapshotStore = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		document BLOB NOT NULL,
		node_count INTEGER NOT NULL DEFAULT 0,
		edge_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_updated ON snapshots(updated_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveSnapshot inserts or replaces a snapshot. CreatedAt is preserved on
// replace; both timestamps are written back into snap.
func (r *Repository) SaveSnapshot(ctx context.Context, snap *repository.Snapshot) error {
	name := strings.TrimSpace(snap.Name)
	if name == "" {
		return errors.New("snapshot name is required")
	}

	now := formatTimestamp(r.now())
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, document, node_count, edge_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			updated_at = excluded.updated_at
	`, name, snap.Document, snap.NodeCount, snap.EdgeCount, now, now)
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", name, err)
	}

	saved, err := r.GetSnapshot(ctx, name)
	if err != nil {
		return err
	}
	snap.Name = saved.Name
	snap.CreatedAt = saved.CreatedAt
	snap.UpdatedAt = saved.UpdatedAt
	return nil
}

// GetSnapshot retrieves a snapshot with its document
func (r *Repository) GetSnapshot(ctx context.Context, name string) (*repository.Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, document, node_count, edge_count, created_at, updated_at
		FROM snapshots WHERE name = ?
	`, name)

	var (
		snap             repository.Snapshot
		created, updated string
	)
	err := row.Scan(&snap.Name, &snap.Document, &snap.NodeCount, &snap.EdgeCount, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %s: %w", name, err)
	}

	if snap.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if snap.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListSnapshots returns every snapshot without its document, most recently
// updated first
func (r *Repository) ListSnapshots(ctx context.Context) ([]repository.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, node_count, edge_count, created_at, updated_at
		FROM snapshots
		ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]repository.Snapshot, 0)
	for rows.Next() {
		var (
			snap             repository.Snapshot
			created, updated string
		)
		if err := rows.Scan(&snap.Name, &snap.NodeCount, &snap.EdgeCount, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		if snap.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

// DeleteSnapshot removes a snapshot
func (r *Repository) DeleteSnapshot(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, name)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
