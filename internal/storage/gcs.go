package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsObjectPrefix = "products/"

type gcsImageStore struct {
	client *gcs.Client
	bucket string
}

func NewGCSImageStore(client *gcs.Client, bucket string) ImageStore {
	return &gcsImageStore{client: client, bucket: bucket}
}

func (s *gcsImageStore) publicURL(object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object)
}

func (s *gcsImageStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	object := gcsObjectPrefix + path.Base(name)

	w := s.client.Bucket(s.bucket).Object(object).
		If(gcs.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload image to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gcs upload: %w", err)
	}

	return s.publicURL(object), nil
}

func (s *gcsImageStore) Delete(ctx context.Context, location string) error {
	prefix := s.publicURL(gcsObjectPrefix)
	if !strings.HasPrefix(location, prefix) {
		return nil
	}

	object := gcsObjectPrefix + path.Base(location)
	err := s.client.Bucket(s.bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs image: %w", err)
	}
	return nil
}
