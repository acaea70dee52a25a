// Package authorizer defines the optional authentication gate in front of
// the serving boundary. Identity only personalizes answers; it never affects
// retrieval or generation.
package authorizer

import "context"

// Identity describes an authenticated caller.
type Identity struct {
	Subject   string
	GivenName string
}

// Provider verifies a bearer token and returns the caller's identity.
type Provider interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
