// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordTooLong is returned when a password exceeds MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrProfilePicRequired is returned when an update-profile request carries no image.
	ErrProfilePicRequired = errors.New("profile picture is required")

	// ErrInvalidImage is returned when the submitted profile picture cannot be decoded,
	// is not an image, or exceeds the size limit.
	ErrInvalidImage = errors.New("invalid image")
)
