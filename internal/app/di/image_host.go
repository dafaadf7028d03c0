package di

import (
	"context"
	"log/slog"
	"time"

	"chat_backend/internal/feature/auth/adapters/imagehost"
	"chat_backend/internal/feature/auth/usecase"
	"chat_backend/internal/platform/config"
	infrahttp "chat_backend/internal/platform/http"
	"chat_backend/internal/shared/ratelimiter"
)

// imageHostTimeout bounds both the S3 upload and fetching a remote image.
const imageHostTimeout = 15 * time.Second

// NewImageUploader creates the S3 image host with its HTTP client and upload throttle.
// Without a bucket it returns imagehost.Unconfigured so the rest of the API still serves.
func NewImageUploader(ctx context.Context, cfg *config.Config) (usecase.ImageUploader, error) {
	if cfg.ImageHost.Bucket == "" {
		slog.Warn("S3_BUCKET is not set; profile picture uploads are disabled")
		return imagehost.Unconfigured{}, nil
	}

	s3Client := infrahttp.NewHTTPClient(imageHostTimeout)
	// S3_ENDPOINTはMinIOなど内部アドレスの場合があるため、ガード付きクライアントはURL取得のみに使用
	fetchClient := infrahttp.NewPublicHTTPClient(imageHostTimeout)
	limiter := ratelimiter.NewRateLimiter(cfg.UploadsPerMinute, time.Minute)
	return imagehost.NewS3ImageHost(ctx, cfg.ImageHost, s3Client, fetchClient, limiter)
}
