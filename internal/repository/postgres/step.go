package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// StepRepo stores campaign sequence steps.
type StepRepo struct{ db *sql.DB }

// NewStepRepo creates a Postgres-backed sequence step repository.
func NewStepRepo(db *sql.DB) *StepRepo { return &StepRepo{db: db} }

// Replace swaps a campaign's steps for the freshly fetched set in one
// transaction. Providers renumber steps on edit, so merging in place would
// leave orphans; full replacement mirrors the provider exactly.
func (r *StepRepo) Replace(ctx context.Context, campaignID string, steps []domain.SequenceStep) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace steps: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sequence_steps WHERE campaign_id = $1`, campaignID,
	); err != nil {
		return fmt.Errorf("clear steps: %w", err)
	}

	for _, s := range steps {
		variables, err := json.Marshal(s.Variables)
		if err != nil {
			return fmt.Errorf("encode step variables: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sequence_steps
				(campaign_id, step_number, name, subject, body, body_preview, delay_days, variables)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (campaign_id, step_number) DO UPDATE SET
				name = EXCLUDED.name,
				subject = EXCLUDED.subject,
				body = EXCLUDED.body,
				body_preview = EXCLUDED.body_preview,
				delay_days = EXCLUDED.delay_days,
				variables = EXCLUDED.variables,
				updated_at = NOW()
		`, campaignID, s.StepNumber, s.Name, s.Subject, s.Body, s.BodyPreview, s.DelayDays, variables); err != nil {
			return fmt.Errorf("insert step %d: %w", s.StepNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace steps: %w", err)
	}
	return nil
}

// ListByCampaign returns a campaign's steps in cadence order.
func (r *StepRepo) ListByCampaign(ctx context.Context, campaignID string) ([]domain.SequenceStep, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, campaign_id, step_number, name, subject, body, body_preview,
		       delay_days, variables, created_at, updated_at
		FROM sequence_steps
		WHERE campaign_id = $1
		ORDER BY step_number
	`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []domain.SequenceStep
	for rows.Next() {
		var s domain.SequenceStep
		var variables []byte
		if err := rows.Scan(
			&s.ID, &s.CampaignID, &s.StepNumber, &s.Name, &s.Subject, &s.Body,
			&s.BodyPreview, &s.DelayDays, &variables, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		if len(variables) > 0 {
			if err := json.Unmarshal(variables, &s.Variables); err != nil {
				return nil, fmt.Errorf("decode step variables: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
