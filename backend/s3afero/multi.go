package s3afero

import (
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/johannesboyne/s3fs"
	"github.com/spf13/afero"
)

// MultiBucketBackend is an s3fs.ObjectStoreClient that keeps each bucket in
// a top-level directory of the "buckets" directory of an afero.Fs.
type MultiBucketBackend struct {
	lock     sync.RWMutex
	baseFs   afero.Fs
	bucketFs afero.Fs
	etags    *etagCache
}

var _ s3fs.ObjectStoreClient = &MultiBucketBackend{}

func MultiBucket(fs afero.Fs, opts ...MultiOption) (*MultiBucketBackend, error) {
	if err := ensureNoOsFs("fs", fs); err != nil {
		return nil, err
	}

	if err := fs.MkdirAll("buckets", 0700); err != nil {
		return nil, err
	}

	b := &MultiBucketBackend{
		baseFs:   fs,
		bucketFs: afero.NewBasePathFs(fs, "buckets"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.etags == nil {
		b.etags = newETagCache(afero.NewBasePathFs(fs, "metadata"))
	}

	return b, nil
}

// ListBuckets returns the bucket names, sorted.
func (db *MultiBucketBackend) ListBuckets() ([]string, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	dirEntries, err := afero.ReadDir(db.bucketFs, "")
	if err != nil {
		return nil, err
	}

	var buckets = make([]string, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() || validBucketName(dirEntry.Name()) != nil {
			continue
		}
		buckets = append(buckets, dirEntry.Name())
	}

	sort.Strings(buckets)
	return buckets, nil
}

func (db *MultiBucketBackend) CreateBucket(name string) error {
	if err := validBucketName(name); err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	if exists, err := afero.DirExists(db.bucketFs, name); err != nil {
		return err
	} else if exists {
		return s3fs.ResourceError(s3fs.ErrContainerAlreadyExists, name)
	}
	return db.bucketFs.Mkdir(name, 0700)
}

func (db *MultiBucketBackend) DeleteBucket(name string) error {
	if err := validBucketName(name); err != nil {
		return s3fs.ContainerNotFound(name)
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	entries, err := afero.ReadDir(db.bucketFs, name)
	if os.IsNotExist(err) {
		return s3fs.ContainerNotFound(name)
	} else if err != nil {
		return err
	}

	if len(entries) > 0 {
		// This check is slightly racy. If another process changes the
		// filesystem between this check and the call to Remove, the bucket
		// may be deleted even though there are items in it.
		return s3fs.ErrorMessage(s3fs.ErrIllegalState, "s3afero: bucket "+name+" is not empty")
	}

	if err := db.bucketFs.RemoveAll(name); err != nil {
		return err
	}
	return db.etags.dropContainer(name)
}

// container checks the bucket exists. Callers must hold the lock.
func (db *MultiBucketBackend) container(bucket string) (*container, error) {
	if validBucketName(bucket) != nil {
		return nil, s3fs.ContainerNotFound(bucket)
	}

	// Another slightly racy check:
	exists, err := afero.DirExists(db.bucketFs, bucket)
	if err != nil {
		return nil, err
	} else if !exists {
		return nil, s3fs.ContainerNotFound(bucket)
	}

	return &container{
		name: bucket,
		fs:    afero.NewBasePathFs(db.bucketFs, bucket),
		etags: db.etags,
	}, nil
}

func (db *MultiBucketBackend) ListEntries(ctx context.Context, bucket string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	c, err := db.container(bucket)
	if err != nil {
		return nil, err
	}
	return c.list(ctx, req)
}

func (db *MultiBucketBackend) ObjectMetadata(ctx context.Context, bucket, key string) (*s3fs.ObjectInfo, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	c, err := db.container(bucket)
	if err != nil {
		return nil, err
	}
	return c.stat(ctx, key)
}

func (db *MultiBucketBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := db.ObjectMetadata(ctx, bucket, key)
	if s3fs.HasErrorCode(err, s3fs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (db *MultiBucketBackend) ContainerExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	db.lock.RLock()
	defer db.lock.RUnlock()

	_, err := db.container(bucket)
	if s3fs.HasErrorCode(err, s3fs.ErrNoSuchContainer) {
		return false, nil
	}
	return err == nil, err
}

func (db *MultiBucketBackend) PutObject(bucket, key string, input io.Reader, size int64) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	c, err := db.container(bucket)
	if err != nil {
		return err
	}
	return c.put(key, input, size)
}

func (db *MultiBucketBackend) DeleteObject(bucket, key string) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	c, err := db.container(bucket)
	if err != nil {
		return err
	}
	return c.delete(key)
}

// validBucketName accepts names that map onto exactly one directory.
func validBucketName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return s3fs.ResourceError(s3fs.ErrIllegalArgument, name)
	}
	return nil
}
