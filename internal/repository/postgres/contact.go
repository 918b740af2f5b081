package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/growthloop/outreach-sync/internal/domain"
)

// ContactRepo stores contacts and the companies derived from their domains.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Upsert finds or creates the contact for (workspace, email), backfilling
// names that arrive on later events. Corporate addresses hang off a company
// row keyed by their domain; consumer mailbox domains never create one.
func (r *ContactRepo) Upsert(ctx context.Context, workspaceID, email, firstName, lastName string) (*domain.Contact, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("upsert contact: empty email")
	}

	var companyID interface{}
	if d := domain.EmailDomain(email); d != "" && !domain.IsPersonalEmailDomain(d) {
		id, err := r.ensureCompany(ctx, workspaceID, d)
		if err != nil {
			return nil, err
		}
		companyID = id
	}

	c := &domain.Contact{WorkspaceID: workspaceID, Email: email}
	var company sql.NullString
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contacts (workspace_id, company_id, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, email) DO UPDATE SET
			first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), contacts.first_name),
			last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), contacts.last_name),
			company_id = COALESCE(contacts.company_id, EXCLUDED.company_id),
			updated_at = NOW()
		RETURNING id, company_id, first_name, last_name, email_status, do_not_email
	`, workspaceID, companyID, email, firstName, lastName).Scan(
		&c.ID, &company, &c.FirstName, &c.LastName, &c.EmailStatus, &c.DoNotEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	if company.Valid {
		c.CompanyID = &company.String
	}
	return c, nil
}

// SetEmailStatus moves a contact's deliverability state.
func (r *ContactRepo) SetEmailStatus(ctx context.Context, contactID string, status domain.ContactEmailStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET email_status = $2, updated_at = NOW() WHERE id = $1
	`, contactID, status)
	if err != nil {
		return fmt.Errorf("set email status: %w", err)
	}
	return nil
}

// SetDoNotEmail flags a contact after an unsubscribe. The flag is never
// cleared automatically.
func (r *ContactRepo) SetDoNotEmail(ctx context.Context, contactID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET do_not_email = true, updated_at = NOW() WHERE id = $1
	`, contactID)
	if err != nil {
		return fmt.Errorf("set do not email: %w", err)
	}
	return nil
}

// ensureCompany returns the company id for (workspace, domain), creating it
// on first sight. The no-op DO UPDATE keeps RETURNING working on conflict.
func (r *ContactRepo) ensureCompany(ctx context.Context, workspaceID, emailDomain string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO companies (workspace_id, domain, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (workspace_id, domain) DO UPDATE SET domain = EXCLUDED.domain
		RETURNING id
	`, workspaceID, emailDomain, companyNameFromDomain(emailDomain)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ensure company: %w", err)
	}
	return id, nil
}

// companyNameFromDomain derives a display name from the first domain label:
// "acme-corp.com" becomes "Acme Corp".
func companyNameFromDomain(emailDomain string) string {
	label, _, _ := strings.Cut(emailDomain, ".")
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
