package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newFSStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystem(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFilesystemPutGetHead(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "runs/prop-1/a.json", strings.NewReader(`{"ok":true}`), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"property_id": "prop-1"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(11), info.Size)
	require.NotEmpty(t, info.ETag)

	got, rc, err := store.Get(ctx, "runs/prop-1/a.json")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, string(body))
	require.Equal(t, "application/json", got.ContentType)
	require.Equal(t, "prop-1", got.Metadata["property_id"])
	require.Equal(t, info.ETag, got.ETag)

	head, err := store.Head(ctx, "runs/prop-1/a.json")
	require.NoError(t, err)
	require.Equal(t, info.Size, head.Size)
}

func TestFilesystemPutIsCreateOnly(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a.txt", strings.NewReader("one"), PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "a.txt", strings.NewReader("two"), PutOptions{})
	require.ErrorContains(t, err, "already exists")
}

func TestFilesystemRejectsTraversalKeys(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	for _, key := range []string{"", "  ", "../escape", "a/../../b", "/etc/passwd"} {
		_, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{})
		require.Error(t, err, "key %q", key)
	}
}

func TestFilesystemListFiltersByPrefix(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	for _, key := range []string{"runs/prop-1/b.json", "runs/prop-1/a.json", "runs/prop-2/c.json"} {
		_, err := store.Put(ctx, key, strings.NewReader("{}"), PutOptions{})
		require.NoError(t, err)
	}

	infos, err := store.List(ctx, "runs/prop-1/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "runs/prop-1/a.json", infos[0].Key)
	require.Equal(t, "runs/prop-1/b.json", infos[1].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestFilesystemDelete(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "a.txt", strings.NewReader("x"), PutOptions{})
	require.NoError(t, err)

	removed, err := store.Delete(ctx, "a.txt")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Delete(ctx, "a.txt")
	require.NoError(t, err)
	require.False(t, removed)

	_, err = store.Head(ctx, "a.txt")
	require.Error(t, err)
}

func TestFilesystemPresignGetOnly(t *testing.T) {
	store := newFSStore(t)
	ctx := context.Background()

	url, err := store.PresignURL(ctx, "a.txt", SignedURLOptions{})
	require.NoError(t, err)
	require.Equal(t, "http://local.blob/a.txt", url)

	_, err = store.PresignURL(ctx, "a.txt", SignedURLOptions{Method: "PUT"})
	require.ErrorIs(t, err, ErrUnsupported)
}
