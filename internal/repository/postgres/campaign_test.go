package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/domain"
)

func TestCampaignUpsertReportsInsert(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO campaigns`).
		WithArgs("ws-1", "smartlead", "42", "Outreach Q1", "active", &created).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("c-1", true))

	repo := NewCampaignRepo(db)
	id, inserted, err := repo.Upsert(context.Background(), &domain.Campaign{
		WorkspaceID:       "ws-1",
		Provider:          domain.ProviderSmartlead,
		PlatformID:        "42",
		Name:              "Outreach Q1",
		Status:            domain.CampaignActive,
		PlatformCreatedAt: &created,
	})

	require.NoError(t, err)
	assert.Equal(t, "c-1", id)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignResolveByPlatformID(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	cols := []string{
		"id", "workspace_id", "provider", "platform_id", "name", "status",
		"total_sent", "total_opened", "total_clicked", "total_replied", "total_bounced",
		"positive_replies", "meetings", "platform_created_at", "last_synced_at",
		"created_at", "updated_at",
	}
	mock.ExpectQuery(`SELECT id, workspace_id, provider, platform_id`).
		WithArgs("smartlead", "42").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"c-1", "ws-1", "smartlead", "42", "Outreach Q1", "active",
			int64(1000), int64(300), int64(40), int64(25), int64(5),
			int64(3), int64(1), now, now,
			now, now,
		))

	repo := NewCampaignRepo(db)
	c, err := repo.ResolveByPlatformID(context.Background(), domain.ProviderSmartlead, "42")

	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "ws-1", c.WorkspaceID)
	assert.Equal(t, int64(1000), c.TotalSent)
	require.NotNil(t, c.PlatformCreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Webhooks routinely arrive for campaigns that were never synced; the miss
// is a nil, not an error.
func TestCampaignResolveMissReturnsNil(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, workspace_id, provider, platform_id`).
		WithArgs("smartlead", "999").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewCampaignRepo(db)
	c, err := repo.ResolveByPlatformID(context.Background(), domain.ProviderSmartlead, "999")

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCampaignIncrementMetricUsesFunction(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(`SELECT increment_campaign_metric\(\$1, \$2, \$3\)`).
		WithArgs("c-1", "total_sent", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCampaignRepo(db)
	require.NoError(t, repo.IncrementMetric(context.Background(), "c-1", "total_sent", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignDeleteByProvider(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM campaigns WHERE workspace_id = \$1 AND provider = \$2`).
		WithArgs("ws-1", "replyio").
		WillReturnResult(sqlmock.NewResult(0, 7))

	repo := NewCampaignRepo(db)
	n, err := repo.DeleteByProvider(context.Background(), "ws-1", domain.ProviderReplyIO)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
