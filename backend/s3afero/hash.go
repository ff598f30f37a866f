package s3afero

import (
	"crypto/md5"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

func hashFile(fs afero.Fs, key string) (hash []byte, err error) {
	f, err := fs.Open(filepath.FromSlash(key))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
