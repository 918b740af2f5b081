package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// EventRepo is the append-only webhook event log.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed webhook event repository.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// Insert records an event and reports whether this delivery was the first.
// Providers redeliver on timeouts; the (provider, event_id) constraint makes
// the second delivery a clean no-op and the caller skips all processing.
func (r *EventRepo) Insert(ctx context.Context, e *domain.WebhookEvent) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, provider, event_type, event_id, payload, processed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (provider, event_id) DO NOTHING
	`, e.ID, e.Provider, e.EventType, e.EventID, []byte(e.Payload), e.Processed)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// MarkProcessed stamps an event after its side effects committed.
func (r *EventRepo) MarkProcessed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events
		SET processed = true, processed_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
