package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/RMahshie/roomtreat/internal/measurement"
)

// Backends accepted by STORAGE_BACKEND.
const (
	BackendNone  = "none"
	BackendS3    = "s3"
	BackendMinIO = "minio"
)

// DownloadURLExpiry is how long a presigned measurement download stays valid.
const DownloadURLExpiry = 24 * time.Hour

// ErrObjectNotFound is returned when the key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore archives raw measurement uploads
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Config holds the settings shared by the S3 and MinIO backends
type Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New builds the backend named by kind. BackendNone returns a nil store.
func New(ctx context.Context, kind string, cfg Config) (ObjectStore, error) {
	switch strings.ToLower(kind) {
	case "", BackendNone:
		return nil, nil
	case BackendS3:
		return NewS3Store(ctx, cfg)
	case BackendMinIO:
		return NewMinIOStore(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage backend %q", kind)
}

// MeasurementKey is the object key for a raw upload.
func MeasurementKey(id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("measurements/%s%s", id, ext)
}

// ContentTypeFor maps a measurement format to the archived content type.
func ContentTypeFor(f measurement.Format) string {
	switch f {
	case measurement.FormatText, measurement.FormatFRD:
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// validateContentType validates that the content type is one measurements are archived with
func validateContentType(contentType string) error {
	switch contentType {
	case "text/plain", "text/csv", "application/octet-stream":
		return nil
	}
	return fmt.Errorf("invalid content type: %s. Supported types: text/plain, text/csv, application/octet-stream", contentType)
}
