package s3fs_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/johannesboyne/s3fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStat(t *testing.T) {
	backend := newBackend(t, "tree", treeKeys...)
	fsys := s3fs.New("", backend)
	ctx := context.Background()

	for _, tc := range []struct {
		path string
		dir  bool
		name string
		size int64
	}{
		{path: "/tree", dir: true, name: "tree"},
		{path: "/tree/folder", dir: true, name: "folder"},
		{path: "/tree/folder/", dir: true, name: "folder"},
		{path: "/tree/folder/subfolder2", dir: true, name: "subfolder2"},
		{path: "/tree/folder/subfolder1/file1.1", name: "file1.1", size: int64(len("content of folder/subfolder1/file1.1"))},
	} {
		t.Run(tc.path, func(t *testing.T) {
			info, err := fsys.Stat(ctx, mustPath(t, fsys, tc.path))
			require.NoError(t, err)
			assert.Equal(t, tc.dir, info.IsDir())
			assert.Equal(t, tc.name, info.Name())
			assert.Equal(t, tc.size, info.Size())
			assert.Equal(t, tc.path, info.Path().String())
			if tc.dir {
				assert.Equal(t, fs.ModeDir|0755, info.Mode())
				assert.Nil(t, info.Sys())
			} else {
				assert.Equal(t, defaultDate, info.ModTime())
				require.IsType(t, &s3fs.ObjectInfo{}, info.Sys())
			}
		})
	}

	for _, raw := range []string{"/tree/nope", "/tree/folder/subfolder1/file1.1/", "/tree/folder/subfolder"} {
		_, err := fsys.Stat(ctx, mustPath(t, fsys, raw))
		assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrNotFound), raw)
	}

	_, err := fsys.Stat(ctx, mustPath(t, fsys, "/nope"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrNoSuchContainer))

	_, err = fsys.Stat(ctx, mustPath(t, fsys, "/nope/file"))
	assert.True(t, s3fs.IsNotFound(err))

	_, err = fsys.Stat(ctx, mustPath(t, fsys, "relative"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrIllegalState))
}

func TestStatReadOnly(t *testing.T) {
	backend := newBackend(t, "tree", treeKeys...)
	fsys := s3fs.New("", backend, s3fs.WithReadOnly())
	ctx := context.Background()
	assert.True(t, fsys.IsReadOnly())

	dir, err := fsys.Stat(ctx, mustPath(t, fsys, "/tree/folder"))
	require.NoError(t, err)
	assert.Equal(t, fs.ModeDir|0555, dir.Mode())

	file, err := fsys.Stat(ctx, mustPath(t, fsys, "/tree/folder/subfolder1/file1.1"))
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0444), file.Mode())
}

func TestStatCache(t *testing.T) {
	backend := newBackend(t, "tree", treeKeys...)
	fsys := s3fs.New("", backend, s3fs.WithStatCache(10))
	ctx := context.Background()
	file := mustPath(t, fsys, "/tree/folder/subfolder1/file1.1")

	first, err := fsys.Stat(ctx, file)
	require.NoError(t, err)
	second, err := fsys.Stat(ctx, file)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, backend.MetadataCalls())

	// Failures are not cached.
	missing := mustPath(t, fsys, "/tree/missing")
	_, err = fsys.Stat(ctx, missing)
	assert.Error(t, err)
	_, err = fsys.Stat(ctx, missing)
	assert.Error(t, err)
	assert.Equal(t, 3, backend.MetadataCalls())
}

func TestStatCacheForget(t *testing.T) {
	backend := newBackend(t, "tree", treeKeys...)
	fsys := s3fs.New("", backend, s3fs.WithStatCache(10))
	ctx := context.Background()
	file := mustPath(t, fsys, "/tree/folder/subfolder1/file1.1")
	dir := mustPath(t, fsys, "/tree/folder/subfolder1")

	_, err := fsys.Stat(ctx, file)
	require.NoError(t, err)
	_, err = fsys.Stat(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.MetadataCalls())

	require.NoError(t, backend.DeleteObject("tree", "folder/subfolder1/file1.1"))

	// Stale until forgotten.
	_, err = fsys.Stat(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.MetadataCalls())

	fsys.Forget(file)

	_, err = fsys.Stat(ctx, file)
	assert.True(t, s3fs.IsNotFound(err))

	info, err := fsys.Stat(ctx, dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, 4, backend.MetadataCalls(), "ancestors are dropped too")
}

func TestReadDir(t *testing.T) {
	backend := newBackend(t, "tree", append(treeKeys, "folder/zfile", "folder/afile")...)
	fsys := s3fs.New("", backend, s3fs.WithPageSize(1))
	ctx := context.Background()

	entries, err := fsys.ReadDir(ctx, mustPath(t, fsys, "/tree/folder"))
	require.NoError(t, err)

	var names []string
	var dirs []bool
	for _, entry := range entries {
		names = append(names, entry.Name())
		dirs = append(dirs, entry.IsDir())
	}
	assert.Equal(t, []string{"subfolder1", "subfolder2", "afile", "zfile"}, names)
	assert.Equal(t, []bool{true, true, false, false}, dirs)
	assert.Equal(t, "/tree/folder/subfolder1/", entries[0].Path().String())
	assert.Equal(t, fs.ModeDir, entries[0].Type())
	assert.Equal(t, fs.FileMode(0), entries[2].Type())

	info, err := entries[3].Info()
	require.NoError(t, err)
	assert.EqualValues(t, len("content of folder/zfile"), info.Size())

	// One page per entry, plus the marker.
	assert.Equal(t, 5, backend.ListCalls())
}

func TestReadDirEmptyAndMissing(t *testing.T) {
	backend := newBackend(t, "tree", "folder/")
	fsys := s3fs.New("", backend)
	ctx := context.Background()

	entries, err := fsys.ReadDir(ctx, mustPath(t, fsys, "/tree/folder"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = fsys.ReadDir(ctx, mustPath(t, fsys, "/tree/other"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrNotFound))

	_, err = fsys.ReadDir(ctx, mustPath(t, fsys, "/nope"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrNoSuchContainer))
}

func TestFileSystemClose(t *testing.T) {
	fsys := s3fs.New("endpoint", newBackend(t, "tree", treeKeys...))
	assert.True(t, fsys.IsOpen())
	require.NoError(t, fsys.Close())
	require.NoError(t, fsys.Close())
	assert.False(t, fsys.IsOpen())

	_, err := fsys.Stat(context.Background(), mustPath(t, fsys, "/tree"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrFileSystemClosed))
	_, err = fsys.ReadDir(context.Background(), mustPath(t, fsys, "/tree"))
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrFileSystemClosed))

	// Paths can still be built and compared on a closed filesystem.
	_, err = fsys.Path("/tree/folder")
	assert.NoError(t, err)
}
