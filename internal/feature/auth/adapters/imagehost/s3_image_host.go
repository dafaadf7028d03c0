// Package imagehost uploads profile pictures to S3-compatible object storage.
package imagehost

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"chat_backend/internal/feature/auth/usecase"
	platformhttp "chat_backend/internal/platform/http"
	"chat_backend/internal/shared/ratelimiter"
)

// DefaultMaxBytes is the largest profile picture accepted when Config.MaxBytes is unset.
const DefaultMaxBytes = 5 << 20

// allowedTypes are the raster formats served back as profile pictures.
// SVG is excluded since it can carry script.
var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// Config holds the object storage settings.
type Config struct {
	Endpoint        string // empty for AWS, set for MinIO/R2
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string // base URL the bucket is served from
	UsePathStyle    bool
	KeyPrefix       string
	MaxBytes        int64
}

// objectPutter is the subset of *s3.Client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageHost implements usecase.ImageUploader on top of S3.
type S3ImageHost struct {
	client        objectPutter
	fetchClient   *http.Client
	limiter       ratelimiter.Limiter
	bucket        string
	publicBaseURL string
	keyPrefix     string
	maxBytes      int64
	now           func() time.Time
}

// Compile-time check to ensure S3ImageHost implements ImageUploader.
var _ usecase.ImageUploader = (*S3ImageHost)(nil)

// NewS3ImageHost builds an S3 client from cfg. s3Client carries the SDK calls;
// fetchClient downloads images given by URL and must refuse internal addresses
// (see platformhttp.NewPublicHTTPClient).
func NewS3ImageHost(ctx context.Context, cfg Config, s3Client, fetchClient *http.Client, limiter ratelimiter.Limiter) (*S3ImageHost, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(s3Client),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3ImageHost(client, fetchClient, limiter, cfg), nil
}

func newS3ImageHost(client objectPutter, fetchClient *http.Client, limiter ratelimiter.Limiter, cfg Config) *S3ImageHost {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix == "" {
		prefix = "avatars"
	}
	return &S3ImageHost{
		client:        client,
		fetchClient:   fetchClient,
		limiter:       limiter,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		keyPrefix:     prefix,
		maxBytes:      maxBytes,
		now:           time.Now,
	}
}

// Upload stores the image given as a base64 data URI or http(s) URL and
// returns its public URL. Anything that is not a decodable image within the
// size limit yields usecase.ErrInvalidImage.
func (h *S3ImageHost) Upload(ctx context.Context, image string) (string, error) {
	data, err := h.load(ctx, image)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !allowedTypes[mt.String()] {
		return "", fmt.Errorf("%w: detected %s", usecase.ErrInvalidImage, mt.String())
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("upload throttled: %w", err)
		}
	}

	key := h.objectKey(mt.Extension())
	_, err = h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(h.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mt.String()),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return h.publicBaseURL + "/" + key, nil
}

// objectKey returns <prefix>/<yyyy>/<mm>/<uuid><ext>.
func (h *S3ImageHost) objectKey(ext string) string {
	d := h.now().UTC()
	return fmt.Sprintf("%s/%04d/%02d/%s%s", h.keyPrefix, d.Year(), d.Month(), uuid.NewString(), ext)
}

func (h *S3ImageHost) load(ctx context.Context, image string) ([]byte, error) {
	image = strings.TrimSpace(image)
	switch {
	case strings.HasPrefix(image, "data:"):
		return h.decodeDataURI(image)
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return h.fetch(ctx, image)
	default:
		return nil, fmt.Errorf("%w: unsupported source", usecase.ErrInvalidImage)
	}
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func (h *S3ImageHost) decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URI must be base64 encoded", usecase.ErrInvalidImage)
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > h.maxBytes+2 {
		return nil, fmt.Errorf("%w: exceeds %d bytes", usecase.ErrInvalidImage, h.maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidImage, err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", usecase.ErrInvalidImage, h.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", usecase.ErrInvalidImage)
	}
	return data, nil
}

// fetch downloads a remote image. Unreachable hosts are dependency failures.
// Internal addresses, non-2xx answers and oversized bodies are invalid images.
func (h *S3ImageHost) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidImage, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidImage, err)
	}

	resp, err := h.fetchClient.Do(req)
	if err != nil {
		if errors.Is(err, platformhttp.ErrBlockedAddress) {
			return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidImage, err)
		}
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: remote returned %d", usecase.ErrInvalidImage, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > h.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", usecase.ErrInvalidImage, h.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", usecase.ErrInvalidImage)
	}
	return data, nil
}
