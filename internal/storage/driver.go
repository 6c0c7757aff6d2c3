// Package storage stores uploaded images on local disk or an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Andessonreis/corre-aqui-dash/internal/config"
)

// Driver is implemented by every storage backend
type Driver interface {
	// Name identifies the backend (local, s3, r2)
	Name() string

	// Upload writes the content at key and returns the public URL
	Upload(ctx context.Context, file io.Reader, key string) (publicURL string, err error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error

	// PublicURL returns the URL clients use to fetch key
	PublicURL(key string) string

	// Exists checks if key is stored
	Exists(ctx context.Context, key string) (bool, error)

	// Open returns a reader for the object
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// NewDriver creates the backend selected in configuration
func NewDriver(cfg *config.StorageConfig) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		uploadsPath := cfg.UploadsPath
		if uploadsPath == "" {
			uploadsPath = "./uploads"
		}
		return NewLocalStorage(uploadsPath), nil

	case "s3":
		return NewS3Storage(cfg)

	case "r2":
		return NewR2Storage(cfg)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// cleanKey normalizes a key and rejects traversal outside the root
func cleanKey(key string) (string, error) {
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return cleaned, nil
}

// ContentType returns the MIME type for an image key
func ContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
