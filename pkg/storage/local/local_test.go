package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/lostfound-backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutWritesBelowRoot(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "items/2026/03/a.jpg", "image/jpeg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "items/2026/03/a.jpg", ref)

	got, err := os.ReadFile(filepath.Join(store.Root(), "items", "2026", "03", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(got))
	require.NoError(t, store.Ping(context.Background()))
}

func TestPutRejectsTraversal(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.jpg", "image/jpeg", []byte("x"))
	assert.True(t, errors.Is(err, storage.ErrInvalidKey))
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.Put(ctx, "items/b.jpg", "image/jpeg", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "items/b.jpg"))
	require.NoError(t, store.Delete(ctx, "items/b.jpg"))

	_, err = os.Stat(filepath.Join(store.Root(), "items", "b.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
