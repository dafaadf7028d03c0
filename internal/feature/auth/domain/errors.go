// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

// Domain errors for authentication operations.
var (
	// ErrUnauthenticated indicates that the request carries no valid session.
	// It is returned by the current-identity accessor when upstream session
	// verification did not attach a user.
	ErrUnauthenticated = errors.New("unauthenticated")
)
