// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account of the chat application.
type User struct {
	// ID is the store-generated identifier (Mongo ObjectID hex or UUID for SQL stores).
	ID string

	// Email is the login key. It is unique across all users.
	Email string

	// FullName is the display name shown to other users.
	FullName string

	// Password is the bcrypt digest of the user's password.
	// It never holds plaintext once the user has been persisted.
	Password string

	// ProfilePic is the public URL of the uploaded avatar. Empty until the first update.
	ProfilePic string

	CreatedAt time.Time
	UpdatedAt time.Time
}
