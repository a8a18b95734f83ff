package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "products")

	store, err := NewLocalImageStore(dir, "/uploads/products/")
	require.NoError(t, err)

	location, err := store.Save(ctx, "product-1.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/product-1.png", location)

	data, err := os.ReadFile(filepath.Join(dir, "product-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	require.NoError(t, store.Delete(ctx, location))
	assert.NoFileExists(t, filepath.Join(dir, "product-1.png"))

	// already gone
	require.NoError(t, store.Delete(ctx, location))
}

func TestLocalImageStore_IgnoresForeignLocations(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewLocalImageStore(dir, "/uploads/products")
	require.NoError(t, err)

	keep := filepath.Join(dir, "keep.png")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))

	require.NoError(t, store.Delete(ctx, "https://cdn.example.com/keep.png"))
	assert.FileExists(t, keep)
}

func TestLocalImageStore_SaveStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "/uploads/products")
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "../../evil.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/evil.png", location)
	assert.FileExists(t, filepath.Join(dir, "evil.png"))
}
