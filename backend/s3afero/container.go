package s3afero

import (
	"context"
	"crypto/md5"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/johannesboyne/s3fs"
	"github.com/spf13/afero"
)

// container serves the keys of one S3 container out of an afero.Fs rooted at
// the container's directory. Files are objects; every directory is also
// reported as a zero-length marker object whose key ends with "/".
type container struct {
	name string
	fs   afero.Fs
	etags *etagCache
}

func (c *container) list(ctx context.Context, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var objects []s3fs.ObjectInfo
	var err error

	dir, part, ok := s3fs.PrefixFromRequest(req).FilePrefix()
	if ok {
		objects, err = c.readDir(dir, part)
	} else {
		objects, err = c.walk()
	}
	if err != nil {
		return nil, err
	}

	slices.SortFunc(objects, func(a, b s3fs.ObjectInfo) int { return strings.Compare(a.Key, b.Key) })
	return s3fs.NewListCollector(req).AddSorted(objects), nil
}

// readDir lists a single directory, which is all a "/"-delimited listing
// can return. Subdirectories only need their marker to become a common
// prefix.
func (c *container) readDir(dir, part string) (objects []s3fs.ObjectInfo, err error) {
	dirPath := filepath.FromSlash(dir)

	stat, err := c.fs.Stat(dirPath)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	} else if !stat.IsDir() {
		return nil, nil
	}

	entries, err := afero.ReadDir(c.fs, dirPath)
	if err != nil {
		return nil, err
	}

	if dir != "" && part == "" {
		objects = append(objects, markerInfo(dir+"/", stat))
	}

	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), part) {
			continue
		}

		// Expected use of 'path'; see the "Path handling" subheading in doc.go:
		key := path.Join(dir, entry.Name())

		if entry.IsDir() {
			objects = append(objects, markerInfo(key+"/", entry))
			continue
		}
		info, err := c.objectInfo(key, entry)
		if err != nil {
			return nil, err
		}
		objects = append(objects, info)
	}
	return objects, nil
}

// walk lists every key in the container.
func (c *container) walk() (objects []s3fs.ObjectInfo, err error) {
	err = afero.Walk(c.fs, "", func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		key := strings.Trim(filepath.ToSlash(file), "/")
		if key == "" {
			return nil
		}
		if info.IsDir() {
			objects = append(objects, markerInfo(key+"/", info))
			return nil
		}
		obj, err := c.objectInfo(key, info)
		if err != nil {
			return err
		}
		objects = append(objects, obj)
		return nil
	})
	return objects, err
}

func (c *container) stat(ctx context.Context, key string) (*s3fs.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(key, "/")
	if name == "" {
		return nil, s3fs.KeyNotFound(key)
	}

	stat, err := c.fs.Stat(filepath.FromSlash(name))
	if os.IsNotExist(err) {
		return nil, s3fs.KeyNotFound(key)
	} else if err != nil {
		return nil, err
	}

	if isMarker(key) != stat.IsDir() {
		return nil, s3fs.KeyNotFound(key)
	}
	if stat.IsDir() {
		info := markerInfo(key, stat)
		return &info, nil
	}

	info, err := c.objectInfo(key, stat)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *container) objectInfo(key string, stat os.FileInfo) (s3fs.ObjectInfo, error) {
	etag, err := c.etags.etag(c.name, key, c.fs, stat)
	if err != nil {
		return s3fs.ObjectInfo{}, err
	}
	return s3fs.ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		LastModified: stat.ModTime(),
		ETag:         etag,
	}, nil
}

func (c *container) put(key string, input io.Reader, size int64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if isMarker(key) {
		if size != 0 {
			return s3fs.ErrorMessage(s3fs.ErrIllegalArgument, "directory markers must be empty")
		}
		return c.fs.MkdirAll(filepath.FromSlash(strings.TrimSuffix(key, "/")), 0777)
	}

	objectFilePath := filepath.FromSlash(key)
	objectDir := filepath.Dir(objectFilePath)

	if objectDir != "." {
		if err := c.fs.MkdirAll(objectDir, 0777); err != nil {
			return err
		}
	}

	f, err := c.fs.Create(objectFilePath)
	if err != nil {
		return err
	}

	var closed bool
	defer func() {
		// MemMapFs updates the mtime on a double close.
		if !closed {
			f.Close()
		}
	}()

	hasher := md5.New()
	w := io.MultiWriter(f, hasher)
	n, err := io.Copy(w, input)
	if err != nil {
		return err
	} else if n != size {
		return s3fs.ErrIncompleteBody
	}

	// Some filesystems don't update the mtime until after close, so close
	// before the stat.
	if err := f.Close(); err != nil {
		return err
	}
	closed = true

	stat, err := c.fs.Stat(objectFilePath)
	if err != nil {
		return err
	}

	return c.etags.store(c.name, key, stat, hasher.Sum(nil))
}

func (c *container) delete(key string) error {
	name := filepath.FromSlash(strings.TrimSuffix(key, "/"))

	// S3 does not report an error when deleting a key that does not exist.
	stat, err := c.fs.Stat(name)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	} else if isMarker(key) != stat.IsDir() {
		return nil
	}

	if err := c.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.etags.forget(c.name, key)
}

func isMarker(key string) bool {
	return strings.HasSuffix(key, "/")
}

func markerInfo(key string, stat os.FileInfo) s3fs.ObjectInfo {
	return s3fs.ObjectInfo{Key: key, LastModified: stat.ModTime()}
}

// validateKey rejects keys that have no file on the other side of the afero
// boundary: empty segments, "." and "..", and backslashes.
func validateKey(key string) error {
	name := strings.TrimSuffix(key, "/")
	if name == "" || strings.ContainsRune(name, '\\') {
		return s3fs.ResourceError(s3fs.ErrInvalidPath, key)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return s3fs.ResourceError(s3fs.ErrInvalidPath, key)
		}
	}
	return nil
}
