package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/domain"
)

func TestEventInsertFirstDelivery(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO webhook_events").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepo(db)
	e := &domain.WebhookEvent{
		Provider:  domain.ProviderSmartlead,
		EventType: domain.EventOpened,
		EventID:   "evt-777",
		Payload:   json.RawMessage(`{"event":"EMAIL_OPEN"}`),
	}
	first, err := repo.Insert(context.Background(), e)
	require.NoError(t, err)
	assert.True(t, first)
	assert.NotEmpty(t, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventInsertDuplicateIsNoop(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	// ON CONFLICT DO NOTHING reports zero rows on redelivery.
	mock.ExpectExec("INSERT INTO webhook_events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEventRepo(db)
	e := &domain.WebhookEvent{
		Provider:  domain.ProviderSmartlead,
		EventType: domain.EventOpened,
		EventID:   "evt-777",
		Payload:   json.RawMessage(`{}`),
	}
	first, err := repo.Insert(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, first)
}

func TestEventMarkProcessed(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE webhook_events").
		WithArgs("evt-id").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepo(db)
	require.NoError(t, repo.MarkProcessed(context.Background(), "evt-id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
