package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *MatrixStore {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewMatrixStore(db)
	require.NoError(t, err)
	return store
}

func TestMatrixStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	m, err := tensor.New(3, 2, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "latents", m))

	got, err := store.Get(ctx, "latents")
	require.NoError(t, err)
	assert.True(t, m.Equal(got))

	// Overwrite with a smaller matrix.
	small, err := tensor.New(1, 1, []float32{9})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "latents", small))
	got, err = store.Get(ctx, "latents")
	require.NoError(t, err)
	assert.True(t, small.Equal(got))
}

func TestMatrixStore_NotFound(t *testing.T) {
	store := newStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatrixNotFound)
}

func TestMatrixStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m, _ := tensor.New(1, 2, []float32{1, 2})

	require.NoError(t, store.Put(ctx, "b", m))
	require.NoError(t, store.Put(ctx, "a", m))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, store.Delete(ctx, "a"))
	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestMatrixStore_EmptyName(t *testing.T) {
	store := newStore(t)
	m, _ := tensor.New(0, 0, nil)
	assert.Error(t, store.Put(context.Background(), "", m))
}

func TestLoadMatrix_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vae.sqlite")

	db, err := Open(path)
	require.NoError(t, err)
	store, err := NewMatrixStore(db)
	require.NoError(t, err)
	m, _ := tensor.New(2, 2, []float32{1, 2, 3, 4})
	require.NoError(t, store.Put(ctx, "vae", m))
	require.NoError(t, db.Close())

	got, err := LoadMatrix(ctx, path)
	require.NoError(t, err)
	assert.True(t, m.Equal(got))
}

func TestNewMatrixStore_NilDB(t *testing.T) {
	_, err := NewMatrixStore(nil)
	assert.Error(t, err)
}

func TestIsDatabase(t *testing.T) {
	assert.True(t, IsDatabase("x/latents.sqlite"))
	assert.True(t, IsDatabase("x/latents.DB"))
	assert.False(t, IsDatabase("x/latents.npy"))
	assert.Equal(t, "latents", MatrixName("/a/b/latents.sqlite"))
}
