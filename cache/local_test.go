package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalBackendCompDBRoundTrip(t *testing.T) {
	b, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = b.GetCompDB(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.PutCompDB(ctx, "foo.json", []byte("{}")))
	data, err := b.GetCompDB(ctx, "foo.json")
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestLocalBackendObjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLocalBackend(dir)
	require.NoError(t, err)
	ctx := context.Background()

	src := filepath.Join(dir, "src.o")
	require.NoError(t, os.WriteFile(src, []byte("object bytes"), 0o644))
	require.NoError(t, b.PutObject(ctx, "foo.o", src))

	dst := filepath.Join(dir, "dst.o")
	require.NoError(t, b.GetObject(ctx, "foo.o", dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "object bytes", string(data))
}
