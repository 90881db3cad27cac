package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetThenGet(t *testing.T) {
	t.Parallel()
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "camps", []byte(`[]`)))

	v, ok, err := s.Get(ctx, "camps")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), v)
}

func TestGet_Absent(t *testing.T) {
	t.Parallel()
	s := openMemory(t)

	v, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	t.Parallel()
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("old")))
	require.NoError(t, s.Set(ctx, "k", []byte("new")))

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestDeleteAndKeys(t *testing.T) {
	t.Parallel()
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "b", []byte{1}))
	require.NoError(t, s.Set(ctx, "a", []byte{2}))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestOpen_FilePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshot.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "registrations", []byte(`[{"id":"r1"}]`)))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v, ok, err := s.Get(ctx, "registrations")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"r1"}]`, string(v))
}
