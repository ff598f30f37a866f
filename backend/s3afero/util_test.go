package s3afero

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/johannesboyne/s3fs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFsPathCreate(t *testing.T) {
	t.Run("default-fails", func(t *testing.T) {
		d := filepath.Join(t.TempDir(), "fs")
		_, err := FsPath(d, 0)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("create", func(t *testing.T) {
		d := filepath.Join(t.TempDir(), "fs")
		_, err := FsPath(d, FsPathCreate)
		require.NoError(t, err)
		_, err = os.Stat(d)
		assert.NoError(t, err)
	})

	t.Run("create-nested-fails", func(t *testing.T) {
		d := filepath.Join(t.TempDir(), "fs", "nup")
		_, err := FsPath(d, FsPathCreate)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("create-all", func(t *testing.T) {
		d := filepath.Join(t.TempDir(), "fs", "yep")
		_, err := FsPath(d, FsPathCreateAll)
		require.NoError(t, err)
		_, err = os.Stat(d)
		assert.NoError(t, err)
	})

	t.Run("not-a-dir", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(f, nil, 0600))
		_, err := FsPath(f, 0)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := FsPath("", FsPathCreateAll)
		assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrIllegalArgument))
	})

	t.Run("root", func(t *testing.T) {
		_, err := FsPath(string(filepath.Separator), 0)
		assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrIllegalArgument))
	})
}

func TestNewBasePathFs(t *testing.T) {
	source := afero.NewMemMapFs()

	_, err := NewBasePathFs(source, "/srv/store", 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	fs, err := NewBasePathFs(source, "/srv/store", FsPathCreateAll)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "file", []byte("x"), 0o600))

	exists, err := afero.Exists(source, "/srv/store/file")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = NewBasePathFs(source, "/srv/store", 0)
	assert.NoError(t, err)
}

func TestEnsureNoOsFs(t *testing.T) {
	_, err := SingleBucket("test", afero.NewOsFs())
	assert.True(t, s3fs.HasErrorCode(err, s3fs.ErrIllegalArgument))

	_, err = MultiBucket(afero.NewOsFs())
	assert.Error(t, err)

	_, err = MultiBucket(afero.NewMemMapFs(), MultiWithMetaFs(afero.NewOsFs()))
	assert.Error(t, err)

	base, err := NewBasePathFs(afero.NewMemMapFs(), "/root/fs", FsPathCreateAll)
	require.NoError(t, err)
	_, err = SingleBucket("test", base)
	assert.NoError(t, err)
}

func TestValidateKey(t *testing.T) {
	for _, key := range []string{"a", "a/b", "a/b/", "a.b/c..d"} {
		assert.NoError(t, validateKey(key), key)
	}
	for _, key := range []string{"", "/", "/a", "a//b", "a/./b", "../a", `a\b`} {
		assert.Error(t, validateKey(key), key)
	}
}
