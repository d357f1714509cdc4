package payment

import (
	"errors"
	"fmt"
)

// Rejection kinds. Match them with errors.Is.
var (
	ErrMalformedPayload        = errors.New("malformed payload")
	ErrAuthenticationFailed    = errors.New("authentication failed")
	ErrVerificationUnavailable = errors.New("external verification unavailable")
	ErrUnknownProvider         = errors.New("unknown provider")
)

// RejectionError explains why a callback was not accepted. Expected and
// Received are kept for forensic logging and never sent back to the gateway.
type RejectionError struct {
	Kind     error
	Provider string
	Reason   string
	Expected string
	Received string
	Err      error
}

func (e *RejectionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Provider, e.Kind, e.Reason)
}

// Is matches the rejection kind. An unavailable verification counts as an
// authentication failure.
func (e *RejectionError) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return e.Kind == ErrVerificationUnavailable && target == ErrAuthenticationFailed
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// KindName returns a stable label for a rejection, used in logs and the
// callback log table.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrVerificationUnavailable):
		return "verification_unavailable"
	case errors.Is(err, ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, ErrUnknownProvider):
		return "unknown_provider"
	default:
		return "internal"
	}
}
