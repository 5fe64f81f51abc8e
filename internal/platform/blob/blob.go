package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "biolink/internal/pkg/errors"
	"biolink/internal/platform/config"
)

// Uploader stores an object and returns the URL it is publicly served from.
type Uploader interface {
	Upload(ctx context.Context, objectPath string, data []byte) (string, error)
}

// LocalUploader writes objects below BaseDir; the server exposes that directory at PublicBaseURL.
type LocalUploader struct {
	baseDir       string
	publicBaseURL string
}

func NewLocalUploader(cfg config.BlobConfig) *LocalUploader {
	return &LocalUploader{
		baseDir:       cfg.BaseDir,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (u *LocalUploader) BaseDir() string {
	return u.baseDir
}

func (u *LocalUploader) Upload(ctx context.Context, objectPath string, data []byte) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", fmt.Errorf("%w: object path %q", apperrors.ErrInvalidInput, objectPath)
	}

	full := filepath.Join(u.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("%w: create upload directory: %w", apperrors.ErrUpstream, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("%w: write object: %w", apperrors.ErrUpstream, err)
	}

	return u.publicBaseURL + clean, nil
}
