// Package contactsearch answers "does this email exist on our outreach
// accounts" by querying every connected provider live, in parallel. It asks
// the providers rather than the local store because the question usually
// precedes the first sync that would have captured the contact.
package contactsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/asaskevich/govalidator"
	"golang.org/x/sync/errgroup"

	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/logger"
)

var (
	// ErrInvalidEmail is returned when the search term is not an email
	// address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNoConnections is returned when the workspace has no active
	// provider connection to search against.
	ErrNoConnections = errors.New("workspace has no active connections")
)

// ConnectionSource supplies the workspace's provider credentials.
type ConnectionSource interface {
	Get(ctx context.Context, workspaceID string, provider domain.Provider) (*domain.APIConnection, error)
}

// Finders maps providers to their live-lookup clients.
type Finders map[domain.Provider]outreach.ContactFinder

// Result is the merged answer across providers. Matches holds one entry per
// queried provider, in stable provider order, found or not.
type Result struct {
	Email   string                  `json:"email"`
	Found   bool                    `json:"found"`
	FoundIn []domain.Provider       `json:"found_in,omitempty"`
	Matches []outreach.ContactMatch `json:"results"`
}

// Service fans a contact lookup out to the connected providers.
type Service struct {
	connections ConnectionSource
	finders     Finders
}

// NewService wires the search.
func NewService(connections ConnectionSource, finders Finders) *Service {
	return &Service{connections: connections, finders: finders}
}

// Search queries every connected provider for the email concurrently. A
// provider failure degrades to "not found" on that provider instead of
// failing the whole search; one platform being down should not hide the
// other's answer.
func (s *Service) Search(ctx context.Context, workspaceID, email string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !govalidator.IsEmail(email) {
		return nil, ErrInvalidEmail
	}

	type lookup struct {
		provider domain.Provider
		finder   outreach.ContactFinder
		apiKey   string
	}
	var lookups []lookup
	for _, p := range domain.AllProviders {
		finder := s.finders[p]
		if finder == nil {
			continue
		}
		conn, err := s.connections.Get(ctx, workspaceID, p)
		if err != nil {
			return nil, fmt.Errorf("loading %s connection: %w", p, err)
		}
		if conn == nil || !conn.IsActive || conn.APIKey == "" {
			continue
		}
		lookups = append(lookups, lookup{provider: p, finder: finder, apiKey: conn.APIKey})
	}
	if len(lookups) == 0 {
		return nil, ErrNoConnections
	}

	matches := make([]outreach.ContactMatch, len(lookups))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lookups {
		g.Go(func() error {
			m, err := l.finder.FindContact(gctx, l.apiKey, email)
			if err != nil {
				logger.Warn("contact lookup failed",
					"provider", string(l.provider), "error", err.Error())
				matches[i] = outreach.ContactMatch{Provider: l.provider}
				return nil
			}
			if m == nil {
				m = &outreach.ContactMatch{}
			}
			m.Provider = l.provider
			matches[i] = *m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Email: email, Matches: matches}
	for _, m := range matches {
		if m.Found {
			res.Found = true
			res.FoundIn = append(res.FoundIn, m.Provider)
		}
	}
	return res, nil
}
