package api

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/growthloop/outreach-sync/internal/config"
)

// ErrUnauthorized covers every bearer-credential failure. Handlers translate
// it to 401 without echoing which check failed.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticator validates the bearer credentials accepted on the sync and
// search routes. Three credentials exist: the service role key (internal
// callers: self-continuations and the worker), the anon key (public clients),
// and HS256 JWTs signed with the shared secret.
type Authenticator struct {
	serviceKey string
	anonKey    string
	jwtSecret  []byte
}

// NewAuthenticator builds an authenticator from the auth config. With no
// credentials configured at all, every request is accepted; that mode exists
// for local development against the stub API only.
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	a := &Authenticator{
		serviceKey: cfg.ServiceRoleKey,
		anonKey:    cfg.AnonKey,
	}
	if cfg.JWTSecret != "" {
		a.jwtSecret = []byte(cfg.JWTSecret)
	}
	return a
}

func (a *Authenticator) enabled() bool {
	return a.serviceKey != "" || a.anonKey != "" || len(a.jwtSecret) > 0
}

// Authorize checks the Authorization header. internalOnly restricts the
// request to the service role key; continuations set it so a leaked anon key
// can never drive internal batch traffic.
func (a *Authenticator) Authorize(r *http.Request, internalOnly bool) error {
	if !a.enabled() {
		return nil
	}

	token := bearerToken(r)
	if token == "" {
		return fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	if a.serviceKey != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(a.serviceKey)) == 1 {
		return nil
	}
	if internalOnly {
		return fmt.Errorf("%w: internal continuations require the service key", ErrUnauthorized)
	}

	if a.anonKey != "" &&
		subtle.ConstantTimeCompare([]byte(token), []byte(a.anonKey)) == 1 {
		return nil
	}

	if len(a.jwtSecret) > 0 {
		_, err := jwt.Parse(token,
			func(t *jwt.Token) (interface{}, error) { return a.jwtSecret, nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: invalid bearer token", ErrUnauthorized)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
