package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrRateLimited = errors.New("upload rate limit exceeded")
)

const (
	signedURLTTL = 5 * time.Minute

	uploadWindow       = time.Minute
	uploadsPerWindow   = 10
	maxObjectKeySuffix = 64
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// RateWindow is the redis-backed fixed window used to throttle uploads per
// creator.
type RateWindow interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Service struct {
	storage ObjectStorage
	rate    RateWindow
}

type Upload struct {
	ObjectKey string
	URL       string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{storage: storage}
}

func (s *Service) AttachRateLimit(rate RateWindow) {
	s.rate = rate
}

// Upload stores a content object and returns its key plus a short-lived
// signed URL. The caller persists the key on the content item; moderation
// and buyer access re-sign on demand.
func (s *Service) Upload(ctx context.Context, ownerID int64, fileName, contentType string, body io.Reader, size int64) (Upload, error) {
	if ownerID <= 0 || body == nil || size <= 0 {
		return Upload{}, ErrValidation
	}
	if s.storage == nil {
		return Upload{}, fmt.Errorf("media dependencies are not configured")
	}

	if s.rate != nil {
		count, _, err := s.rate.IncrementWindow(ctx, fmt.Sprintf("uploads:%d", ownerID), uploadWindow)
		if err == nil && count > uploadsPerWindow {
			return Upload{}, ErrRateLimited
		}
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Upload{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(ownerID, fileName)
	if err != nil {
		return Upload{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Upload{}, fmt.Errorf("put object: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Upload{}, fmt.Errorf("presign object url: %w", err)
	}

	return Upload{ObjectKey: objectKey, URL: url}, nil
}

// SignGet returns a fresh signed URL for an already-stored object.
func (s *Service) SignGet(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", ErrValidation
	}
	if s.storage == nil {
		return "", fmt.Errorf("media dependencies are not configured")
	}
	if ttl <= 0 {
		ttl = signedURLTTL
	}

	url, err := s.storage.PresignGet(ctx, objectKey, ttl)
	if err != nil {
		return "", fmt.Errorf("presign object url: %w", err)
	}

	return url, nil
}

func buildObjectKey(ownerID int64, fileName string) (string, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if len(ext) > 8 {
		ext = ""
	}

	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	base = sanitizeKeyPart(base)
	if len(base) > maxObjectKeySuffix {
		base = base[:maxObjectKeySuffix]
	}
	if base == "" {
		base = "object"
	}

	return fmt.Sprintf("content/%d/%s-%s%s", ownerID, uuid.NewString(), base, ext), nil
}

func sanitizeKeyPart(part string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(part) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
