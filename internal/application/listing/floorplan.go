package listing

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estate/listings/internal/domain/shared"
)

// ObjectStorage presigns direct uploads and maps stored keys to the URL
// listings link to.
type ObjectStorage interface {
	GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	PublicURL(key string) string
}

// ErrUploadsDisabled is returned when no object storage is configured.
var ErrUploadsDisabled = shared.NewDomainError("UNAVAILABLE", "Floor plan uploads are not configured")

// floorPlanTypes maps accepted image content types to the stored extension.
// Only raster formats: the bucket serves uploads inline from the public URL.
var floorPlanTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

const floorPlanPrefix = "floor-plans/"

// UploadTicket is what the admin client needs to PUT a floor plan image and
// then reference it from the form's floor plan field.
type UploadTicket struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FloorPlanUploadURL reserves a fresh object key for filename and presigns
// an upload for it. The original file name only contributes a readable
// slug; the key is always unique.
func (s *Service) FloorPlanUploadURL(ctx context.Context, filename, contentType string) (*UploadTicket, error) {
	if s.storage == nil {
		return nil, ErrUploadsDisabled
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := floorPlanTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("unsupported floor plan content type %q", contentType))
	}

	key := floorPlanPrefix + uuid.NewString() + slug(filename) + ext
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, 0)
	if err != nil {
		s.logger.Error("Failed to presign floor plan upload", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("presign floor plan: %w", err)
	}

	return &UploadTicket{
		Key:       key,
		UploadURL: uploadURL,
		PublicURL: s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// slug keeps ASCII letters, digits and dashes of the base name, prefixed
// with a dash, or returns "" when nothing usable remains.
func slug(filename string) string {
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteByte('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		return ""
	}
	return "-" + out
}
