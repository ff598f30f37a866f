package s3fs

import (
	"io/fs"
	"time"
)

// FileInfo implements fs.FileInfo for an object or a synthetic directory.
//
// Synthetic directories have no size and no modification time; Sys returns
// nil for them.
type FileInfo struct {
	path     Path
	object   *ObjectInfo
	dir      bool
	readOnly bool
}

var _ fs.FileInfo = (*FileInfo)(nil)

func newFileInfo(p Path, obj *ObjectInfo, readOnly bool) *FileInfo {
	return &FileInfo{path: p, object: obj, readOnly: readOnly}
}

func newDirInfo(p Path, readOnly bool) *FileInfo {
	return &FileInfo{path: p, dir: true, readOnly: readOnly}
}

// Path returns the path the info was produced for.
func (fi *FileInfo) Path() Path { return fi.path }

// Name returns the last segment of the path, or the container name for a
// container root.
func (fi *FileInfo) Name() string {
	return fi.path.FileName().String()
}

func (fi *FileInfo) Size() int64 {
	if fi.object == nil {
		return 0
	}
	return fi.object.Size
}

// Mode reports permission bits derived from the filesystem's read-only flag;
// object stores have no finer-grained permissions to report.
func (fi *FileInfo) Mode() fs.FileMode {
	switch {
	case fi.dir && fi.readOnly:
		return fs.ModeDir | 0555
	case fi.dir:
		return fs.ModeDir | 0755
	case fi.readOnly:
		return 0444
	default:
		return 0644
	}
}

func (fi *FileInfo) ModTime() time.Time {
	if fi.object == nil {
		return time.Time{}
	}
	return fi.object.LastModified
}

func (fi *FileInfo) IsDir() bool { return fi.dir }

// Sys returns the underlying *ObjectInfo, or nil for a directory.
func (fi *FileInfo) Sys() any {
	if fi.object == nil {
		return nil
	}
	return fi.object
}

// DirEntry implements fs.DirEntry for the results of FileSystem.ReadDir.
type DirEntry struct {
	info *FileInfo
}

var _ fs.DirEntry = (*DirEntry)(nil)

func (e *DirEntry) Name() string { return e.info.Name() }

func (e *DirEntry) IsDir() bool { return e.info.IsDir() }

func (e *DirEntry) Type() fs.FileMode { return e.info.Mode().Type() }

// Info never fails; the listing already carried everything it reports.
func (e *DirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// Path returns the absolute path of the entry.
func (e *DirEntry) Path() Path { return e.info.path }
