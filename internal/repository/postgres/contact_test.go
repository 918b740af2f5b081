package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthloop/outreach-sync/internal/domain"
)

var contactCols = []string{"id", "company_id", "first_name", "last_name", "email_status", "do_not_email"}

func TestContactUpsertCorporateCreatesCompany(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO companies").
		WithArgs("ws-1", "acme.com", "Acme").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("company-1"))
	mock.ExpectQuery("INSERT INTO contacts").
		WithArgs("ws-1", "company-1", "jane@acme.com", "Jane", "Doe").
		WillReturnRows(sqlmock.NewRows(contactCols).
			AddRow("contact-1", "company-1", "Jane", "Doe", "active", false))

	repo := NewContactRepo(db)
	c, err := repo.Upsert(context.Background(), "ws-1", "Jane@Acme.com ", "Jane", "Doe")
	require.NoError(t, err)

	assert.Equal(t, "contact-1", c.ID)
	assert.Equal(t, "jane@acme.com", c.Email)
	require.NotNil(t, c.CompanyID)
	assert.Equal(t, "company-1", *c.CompanyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactUpsertPersonalDomainSkipsCompany(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO contacts").
		WithArgs("ws-1", nil, "jane@gmail.com", "Jane", "").
		WillReturnRows(sqlmock.NewRows(contactCols).
			AddRow("contact-2", nil, "Jane", "", "active", false))

	repo := NewContactRepo(db)
	c, err := repo.Upsert(context.Background(), "ws-1", "jane@gmail.com", "Jane", "")
	require.NoError(t, err)

	assert.Nil(t, c.CompanyID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactUpsertRejectsEmptyEmail(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewContactRepo(db)
	_, err := repo.Upsert(context.Background(), "ws-1", "   ", "Jane", "Doe")
	assert.Error(t, err)
}

func TestCompanyNameFromDomain(t *testing.T) {
	assert.Equal(t, "Acme", companyNameFromDomain("acme.com"))
	assert.Equal(t, "Acme Corp", companyNameFromDomain("acme-corp.io"))
	assert.Equal(t, "Big Data", companyNameFromDomain("big_data.co.uk"))
}

func TestContactSetEmailStatus(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec("UPDATE contacts SET email_status").
		WithArgs("contact-1", domain.EmailStatusBounced).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewContactRepo(db)
	require.NoError(t, repo.SetEmailStatus(context.Background(), "contact-1", domain.EmailStatusBounced))
	assert.NoError(t, mock.ExpectationsWereMet())
}
