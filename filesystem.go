package s3fs

import (
	"context"
	"net/url"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// FileSystem presents the containers of one object store endpoint as a
// tree of paths. It holds no open resources itself; Close only marks it
// closed and removes it from the Registry that opened it.
type FileSystem struct {
	endpoint string
	client   ObjectStoreClient

	log           Logger
	timeSource    TimeSource
	readOnly      bool
	pageSize      int
	statCacheSize int
	statCache     *lru.Cache

	mu      sync.RWMutex
	closed  bool
	onClose func(fs *FileSystem)
}

// New creates a FileSystem for the store at endpoint. The endpoint is the
// authority of the store's URIs ("host" or "host:port") and may be empty.
func New(endpoint string, client ObjectStoreClient, opts ...Option) *FileSystem {
	fs := &FileSystem{
		endpoint:   endpoint,
		client:     client,
		log:        DiscardLog(),
		timeSource: DefaultTimeSource(),
		pageSize:   DefaultPageSize,
	}
	for _, opt := range opts {
		opt(fs)
	}

	if fs.statCacheSize > 0 {
		cache, err := lru.New(fs.statCacheSize)
		if err != nil {
			fs.log.Print(LogWarn, "stat cache disabled:", err)
		} else {
			fs.statCache = cache
		}
	}
	return fs
}

func (fs *FileSystem) Endpoint() string { return fs.endpoint }

func (fs *FileSystem) IsReadOnly() bool { return fs.readOnly }

// Client returns the ObjectStoreClient the filesystem lists through.
func (fs *FileSystem) Client() ObjectStoreClient { return fs.client }

// Path parses raw against the filesystem. Absolute paths start with '/'
// followed by a container name.
func (fs *FileSystem) Path(raw string) (Path, error) {
	return parsePath(fs, raw)
}

// PathFromURI parses an "s3://endpoint/container/key" URI. The URI's host
// must match the filesystem's endpoint.
func (fs *FileSystem) PathFromURI(u *url.URL) (Path, error) {
	if u == nil || u.Scheme != Scheme {
		return Path{}, ResourceError(ErrInvalidPath, uriString(u))
	}
	if u.Host != fs.endpoint {
		return Path{}, ResourceError(ErrInvalidPath, uriString(u))
	}
	if !strings.HasPrefix(u.Path, separator) {
		return Path{}, ResourceError(ErrInvalidPath, uriString(u))
	}
	return parsePath(fs, u.Path)
}

func uriString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func (fs *FileSystem) IsOpen() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return !fs.closed
}

// Close marks the filesystem closed. Closing twice is not an error.
func (fs *FileSystem) Close() error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	onClose := fs.onClose
	fs.mu.Unlock()

	if fs.statCache != nil {
		fs.statCache.Purge()
	}
	if onClose != nil {
		onClose(fs)
	}
	return nil
}

func (fs *FileSystem) checkOpen() error {
	if !fs.IsOpen() {
		return ResourceError(ErrFileSystemClosed, fs.endpoint)
	}
	return nil
}

func (fs *FileSystem) checkPath(p Path) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	if !p.IsAbsolute() {
		return ResourceError(ErrIllegalState, p.String())
	}
	return nil
}

// Walk walks the tree below root with a Walker configured from the
// filesystem's options; opts are applied on top.
func (fs *FileSystem) Walk(ctx context.Context, root Path, v Visitor, opts ...WalkOption) error {
	if err := fs.checkOpen(); err != nil {
		return err
	}
	opts = append([]WalkOption{withFileSystem(fs)}, opts...)
	return NewWalker(fs.client, opts...).Walk(ctx, root, v)
}

// Stat reports on exactly p, without looking below it.
//
// A container root exists if the container does. A path in directory form
// exists if any key starts with its prefix. A path in file form is an
// object if one is stored at its key, or a directory if keys exist below
// it. Anything else is reported as ErrNotFound.
func (fs *FileSystem) Stat(ctx context.Context, p Path) (*FileInfo, error) {
	if err := fs.checkPath(p); err != nil {
		return nil, err
	}

	if fs.statCache != nil {
		if v, ok := fs.statCache.Get(p); ok {
			return v.(*FileInfo), nil
		}
	}

	info, err := fs.stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if fs.statCache != nil {
		fs.statCache.Add(p, info)
	}
	return info, nil
}

// Forget drops p and its ancestors, in both file and directory form, from
// the stat cache. Call it after writing to the store below p.
func (fs *FileSystem) Forget(p Path) {
	if fs.statCache == nil || !p.IsAbsolute() {
		return
	}
	for {
		key := p.Key()
		fs.statCache.Remove(p.withKey(key))
		if key != "" {
			fs.statCache.Remove(p.withKey(key + separator))
		}
		parent, ok := p.Parent()
		if !ok {
			return
		}
		p = parent
	}
}

func (fs *FileSystem) stat(ctx context.Context, p Path) (*FileInfo, error) {
	if p.IsRoot() {
		ok, err := fs.client.ContainerExists(ctx, p.Container())
		if err != nil {
			return nil, BackendError("container "+p.Container(), err)
		} else if !ok {
			return nil, ContainerNotFound(p.Container())
		}
		return newDirInfo(p, fs.readOnly), nil
	}

	if !p.IsDirectory() {
		obj, err := fs.client.ObjectMetadata(ctx, p.Container(), p.Key())
		if err == nil {
			return newFileInfo(p, obj, fs.readOnly), nil
		} else if !HasErrorCode(err, ErrNotFound) {
			return nil, BackendError("metadata "+p.String(), err)
		}
	}

	page, err := fs.client.ListEntries(ctx, p.Container(), ListRequest{Prefix: p.Prefix(), MaxKeys: 1})
	if err != nil {
		return nil, BackendError("list "+p.String(), err)
	}
	if page.IsEmpty() {
		return nil, KeyNotFound(p.String())
	}
	return newDirInfo(p, fs.readOnly), nil
}

// ReadDir lists the direct children of dir: subdirectories in ascending
// order, then files in ascending order. A directory marker object at dir's
// own prefix is not an entry.
func (fs *FileSystem) ReadDir(ctx context.Context, dir Path) ([]*DirEntry, error) {
	if err := fs.checkPath(dir); err != nil {
		return nil, err
	}

	pg := &pager{client: fs.client, container: dir.Container(), pageSize: fs.pageSize, log: fs.log}
	listing, err := pg.level(ctx, dir.Prefix())
	if err != nil {
		return nil, err
	}
	if listing.isEmpty() && !dir.IsRoot() {
		return nil, KeyNotFound(dir.String())
	}

	entries := make([]*DirEntry, 0, len(listing.dirs)+len(listing.files))
	for _, prefix := range listing.dirs {
		entries = append(entries, &DirEntry{info: newDirInfo(dir.withKey(prefix), fs.readOnly)})
	}
	for i := range listing.files {
		obj := &listing.files[i]
		entries = append(entries, &DirEntry{info: newFileInfo(dir.withKey(obj.Key), obj, fs.readOnly)})
	}
	return entries, nil
}
