// Package storage stores uploaded resumes and returns the URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/hirehub-dev/hirehub/backend/internal/config"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedURL string, err error)
}

// New builds the uploader selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.Storage.Driver {
	case "local":
		return NewLocalUploader(cfg.Storage.LocalDir, cfg.Storage.PublicPrefix)
	case "gcs":
		return NewGCSUploader(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPublicRead)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
