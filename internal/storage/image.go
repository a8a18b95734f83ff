package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ImageStore persists uploaded product images and returns the public location
// stored on the product record.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes the image at a location previously returned by Save.
	// Missing images are not an error.
	Delete(ctx context.Context, location string) error
}

type localImageStore struct {
	dir       string
	urlPrefix string
}

// NewLocalImageStore writes images under dir and serves them from urlPrefix.
func NewLocalImageStore(dir, urlPrefix string) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localImageStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *localImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	f, err := os.Create(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return s.urlPrefix + "/" + filepath.Base(name), nil
}

func (s *localImageStore) Delete(ctx context.Context, location string) error {
	if !strings.HasPrefix(location, s.urlPrefix+"/") {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, path.Base(location)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}
