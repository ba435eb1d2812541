package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	listingapp "github.com/estate/listings/internal/application/listing"
)

// StubObjectStorage hands out URLs without talking to any backend. It lets
// the admin upload flow run in development when no bucket is configured.
type StubObjectStorage struct {
	BaseURL string
	now     func() time.Time
}

// NewStubObjectStorage creates a stub rooted at baseURL, or at
// http://localhost:9000/floor-plans when baseURL is empty
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = defaultEndpoint + "/floor-plans"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateUploadURL returns a fake upload URL carrying the expiry
func (s *StubObjectStorage) GenerateUploadURL(
	_ context.Context,
	key, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := s.now().Add(expiresIn)
	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("expires", expiresAt.UTC().Format(time.RFC3339))
	return s.BaseURL + "/upload/" + key + "?" + q.Encode(), expiresAt, nil
}

// PublicURL returns BaseURL/key
func (s *StubObjectStorage) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

var _ listingapp.ObjectStorage = (*StubObjectStorage)(nil)
