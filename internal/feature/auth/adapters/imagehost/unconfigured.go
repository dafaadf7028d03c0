package imagehost

import (
	"context"
	"errors"

	"chat_backend/internal/feature/auth/usecase"
)

// ErrNotConfigured is returned by Unconfigured for every upload.
var ErrNotConfigured = errors.New("image host is not configured")

// Unconfigured is used when no bucket is set so the rest of the API still runs.
type Unconfigured struct{}

var _ usecase.ImageUploader = Unconfigured{}

// Upload always fails with ErrNotConfigured.
func (Unconfigured) Upload(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
