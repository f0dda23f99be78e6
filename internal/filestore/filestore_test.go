package filestore

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FS, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewFS(fs, "/uploads")
	require.NoError(t, err)
	return store, fs
}

func TestFS_PutExistsDelete(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "Jane-Doe_42.pdf", strings.NewReader("resume")))

	ok, err := store.Exists(ctx, "Jane-Doe_42.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := afero.ReadFile(fs, "/uploads/Jane-Doe_42.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resume", string(data))

	require.NoError(t, store.Delete(ctx, "Jane-Doe_42.pdf"))
	ok, err = store.Exists(ctx, "Jane-Doe_42.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFS_PutOverwrites(t *testing.T) {
	store, fs := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.pdf", strings.NewReader("first")))
	require.NoError(t, store.Put(ctx, "a.pdf", strings.NewReader("second")))

	data, err := afero.ReadFile(fs, "/uploads/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := afero.ReadDir(fs, "/uploads")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFS_DeleteMissingKey(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.Delete(context.Background(), "missing.pdf"))
}

func TestFS_RejectsPathKeys(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../etc/passwd", `a\b.pdf`, "dir/file.pdf"} {
		err := store.Put(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
