// Package identity verifies identities asserted by external providers:
// Firebase ID tokens and the Google and LinkedIn OAuth flows.
package identity

import "errors"

// Identity is a verified external account.
type Identity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

var (
	// ErrInvalidToken is returned for tokens that fail verification.
	ErrInvalidToken = errors.New("identity: invalid token")
	// ErrNotConfigured is returned when a provider has no credentials.
	ErrNotConfigured = errors.New("identity: provider not configured")
)
