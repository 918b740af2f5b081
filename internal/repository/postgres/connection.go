package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// ConnectionRepo stores provider connections and their sync state.
type ConnectionRepo struct{ db *sql.DB }

// NewConnectionRepo creates a Postgres-backed connection repository.
func NewConnectionRepo(db *sql.DB) *ConnectionRepo { return &ConnectionRepo{db: db} }

const connectionColumns = `
	id, workspace_id, provider, api_key, is_active,
	sync_status, sync_error, sync_progress, last_sync_at, last_full_sync_at,
	created_at, updated_at`

// Get returns the connection for one (workspace, provider) pair, or nil when
// the workspace never connected that provider.
func (r *ConnectionRepo) Get(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+connectionColumns+`
		FROM api_connections
		WHERE workspace_id = $1 AND provider = $2
	`, workspaceID, provider)

	c, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return c, nil
}

// ListActive returns every active connection across workspaces, oldest
// last_sync_at first so the scheduler refreshes the stalest ones first.
func (r *ConnectionRepo) ListActive(ctx context.Context) ([]domain.APIConnection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+connectionColumns+`
		FROM api_connections
		WHERE is_active = true
		ORDER BY last_sync_at ASC NULLS FIRST
	`)
	if err != nil {
		return nil, fmt.Errorf("list active connections: %w", err)
	}
	defer rows.Close()

	var out []domain.APIConnection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateStatus moves a connection through the sync lifecycle.
func (r *ConnectionRepo) UpdateStatus(ctx context.Context, id string, status domain.SyncStatus, syncErr string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_connections
		SET sync_status = $2, sync_error = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, syncErr)
	if err != nil {
		return fmt.Errorf("update sync status: %w", err)
	}
	return nil
}

// UpdateProgress persists the resumable cursor. A nil progress clears it.
func (r *ConnectionRepo) UpdateProgress(ctx context.Context, id string, p *domain.SyncProgress) error {
	var payload interface{}
	if p != nil {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode sync progress: %w", err)
		}
		payload = data
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE api_connections
		SET sync_progress = $2, updated_at = NOW()
		WHERE id = $1
	`, id, payload)
	if err != nil {
		return fmt.Errorf("update sync progress: %w", err)
	}
	return nil
}

// MarkSynced stamps a completed run. A full run also moves last_full_sync_at.
func (r *ConnectionRepo) MarkSynced(ctx context.Context, id string, full bool, at time.Time) error {
	q := `UPDATE api_connections SET last_sync_at = $2, updated_at = NOW() WHERE id = $1`
	if full {
		q = `UPDATE api_connections SET last_sync_at = $2, last_full_sync_at = $2, updated_at = NOW() WHERE id = $1`
	}
	if _, err := r.db.ExecContext(ctx, q, id, at); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

func scanConnection(row interface{ Scan(...interface{}) error }) (*domain.APIConnection, error) {
	var c domain.APIConnection
	var progress []byte
	var lastSync, lastFull sql.NullTime

	err := row.Scan(
		&c.ID, &c.WorkspaceID, &c.Provider, &c.APIKey, &c.IsActive,
		&c.SyncStatus, &c.SyncError, &progress, &lastSync, &lastFull,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(progress) > 0 {
		var p domain.SyncProgress
		if err := json.Unmarshal(progress, &p); err != nil {
			return nil, fmt.Errorf("decode sync progress: %w", err)
		}
		c.SyncProgress = &p
	}
	if lastSync.Valid {
		t := lastSync.Time
		c.LastSyncAt = &t
	}
	if lastFull.Valid {
		t := lastFull.Time
		c.LastFullSyncAt = &t
	}
	return &c, nil
}
