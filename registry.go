package s3fs

import (
	"net/url"
	"sort"
	"sync"
)

// Registry tracks the open filesystems of a program, one per endpoint, and
// resolves s3:// URIs to them.
//
// The zero value is not usable; create one with NewRegistry. Registry is
// safe for concurrent use.
type Registry struct {
	mu          sync.Mutex
	filesystems map[string]*FileSystem
}

func NewRegistry() *Registry {
	return &Registry{filesystems: map[string]*FileSystem{}}
}

// Open creates and registers a filesystem for endpoint. It fails with
// ErrFileSystemExists if one is already open there.
func (r *Registry) Open(endpoint string, client ObjectStoreClient, opts ...Option) (*FileSystem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.filesystems[endpoint]; ok {
		return nil, ResourceError(ErrFileSystemExists, endpoint)
	}

	fs := New(endpoint, client, opts...)
	fs.onClose = r.remove
	r.filesystems[endpoint] = fs
	return fs, nil
}

func (r *Registry) remove(fs *FileSystem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.filesystems[fs.endpoint] == fs {
		delete(r.filesystems, fs.endpoint)
	}
}

// Get returns the open filesystem for endpoint.
func (r *Registry) Get(endpoint string) (*FileSystem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fs, ok := r.filesystems[endpoint]
	return fs, ok
}

// Lookup returns the open filesystem the URI's host refers to.
func (r *Registry) Lookup(u *url.URL) (*FileSystem, error) {
	if u == nil || u.Scheme != Scheme {
		return nil, ResourceError(ErrInvalidPath, uriString(u))
	}
	fs, ok := r.Get(u.Host)
	if !ok {
		return nil, ResourceError(ErrFileSystemClosed, u.Host)
	}
	return fs, nil
}

// Path resolves an "s3://endpoint/container/key" URI to a path of the open
// filesystem for endpoint.
func (r *Registry) Path(u *url.URL) (Path, error) {
	fs, err := r.Lookup(u)
	if err != nil {
		return Path{}, err
	}
	return fs.PathFromURI(u)
}

// Endpoints returns the endpoints of all open filesystems, sorted.
func (r *Registry) Endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.filesystems))
	for endpoint := range r.filesystems {
		out = append(out, endpoint)
	}
	sort.Strings(out)
	return out
}

// Close closes and unregisters the filesystem for endpoint, if any.
func (r *Registry) Close(endpoint string) error {
	fs, ok := r.Get(endpoint)
	if !ok {
		return nil
	}
	return fs.Close()
}

func (r *Registry) CloseAll() error {
	for _, endpoint := range r.Endpoints() {
		if err := r.Close(endpoint); err != nil {
			return err
		}
	}
	return nil
}
