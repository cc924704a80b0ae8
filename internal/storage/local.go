package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalUploader writes objects below dir. They are expected to be served
// under publicPrefix, see handler's /uploads route.
type LocalUploader struct {
	dir          string
	publicPrefix string
}

func NewLocalUploader(dir string, publicPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalUploader{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (u *LocalUploader) Dir() string { return u.dir }

func (u *LocalUploader) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	clean := path.Clean("/" + objectName)
	if clean == "/" {
		return "", errors.New("empty object name")
	}

	dst := filepath.Join(u.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return u.publicPrefix + clean, nil
}
