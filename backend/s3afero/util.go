package s3afero

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/johannesboyne/s3fs"
	"github.com/spf13/afero"
)

// FsFlags say what FsPath and NewBasePathFs do when the directory is missing.
// Without flags a missing directory is an error.
type FsFlags int

const (
	// FsPathCreate creates the directory but not its parents.
	FsPathCreate FsFlags = 1 << iota

	// FsPathCreateAll creates the directory and any missing parents.
	FsPathCreateAll
)

func (f FsFlags) create(fs afero.Fs, dir string, missing error) error {
	switch {
	case f&FsPathCreateAll != 0:
		return fs.MkdirAll(dir, 0o700)
	case f&FsPathCreate != 0:
		return fs.Mkdir(dir, 0o700)
	default:
		return missing
	}
}

// ensureNoOsFs refuses a bare afero.OsFs. The backends remove whole
// directories below their root, so they must be given a filesystem confined
// to the store's own directory.
func ensureNoOsFs(name string, fs afero.Fs) error {
	if _, ok := fs.(*afero.OsFs); ok {
		return s3fs.ErrorMessage(s3fs.ErrIllegalArgument,
			fmt.Sprintf("s3afero: %s is an unconfined afero.OsFs; use FsPath or afero.NewBasePathFs", name))
	}
	return nil
}

// NewBasePathFs confines source to dir, creating dir first if flags say so.
func NewBasePathFs(source afero.Fs, dir string, flags FsFlags) (afero.Fs, error) {
	exists, err := afero.DirExists(source, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := flags.create(source, dir, &os.PathError{Op: "stat", Path: dir, Err: os.ErrNotExist}); err != nil {
			return nil, err
		}
	}
	return afero.NewBasePathFs(source, dir), nil
}

// FsPath returns the local directory dir as an afero.Fs for the backends.
// The root of the filesystem is never accepted.
func FsPath(dir string, flags FsFlags) (afero.Fs, error) {
	if dir == "" {
		return nil, s3fs.ErrorMessage(s3fs.ErrIllegalArgument, "s3afero: no directory given")
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if filepath.Dir(dir) == dir {
		return nil, s3fs.ResourceError(s3fs.ErrIllegalArgument, dir)
	}

	osFs := afero.NewOsFs()
	stat, err := osFs.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := flags.create(osFs, dir, err); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case !stat.IsDir():
		return nil, s3fs.ErrorMessage(s3fs.ErrIllegalArgument, fmt.Sprintf("s3afero: %s is not a directory", dir))
	}

	return afero.NewBasePathFs(osFs, dir), nil
}
