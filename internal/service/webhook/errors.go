package webhook

import (
	"errors"
	"fmt"
)

// ErrBadSignature is returned when a configured secret is present but the
// request signature is missing, malformed, or does not match the body.
// Handlers translate it to 401.
var ErrBadSignature = errors.New("webhook signature mismatch")

// ValidationError describes a payload that parsed as JSON but failed the
// structural checks. Handlers translate it to 400. Field and Reason are safe
// to echo back to the caller; they never contain payload content.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid webhook payload: %s %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a payload validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
