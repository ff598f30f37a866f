package s3afero

import (
	"context"
	"io"
	"sync"

	"github.com/johannesboyne/s3fs"
	"github.com/spf13/afero"
)

// SingleBucketBackend is an s3fs.ObjectStoreClient that allows you to treat
// an existing filesystem as an S3 bucket directly. It does not support
// multiple buckets.
//
// The ETag of each file is cached in a second afero.Fs. Unless one is passed
// with SingleWithMetaFs, afero.NewMemMapFs() is used and the cache will not
// persist between restarts.
type SingleBucketBackend struct {
	lock  sync.RWMutex
	fs    afero.Fs
	etags *etagCache
	name  string
}

var _ s3fs.ObjectStoreClient = &SingleBucketBackend{}

func SingleBucket(name string, fs afero.Fs, opts ...SingleOption) (*SingleBucketBackend, error) {
	if err := ensureNoOsFs("fs", fs); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, s3fs.ErrorMessage(s3fs.ErrIllegalArgument, "s3afero: bucket name must not be empty")
	}

	b := &SingleBucketBackend{
		name: name,
		fs:   fs,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.etags == nil {
		b.etags = newETagCache(afero.NewMemMapFs())
	}

	return b, nil
}

func (db *SingleBucketBackend) container(bucket string) (*container, error) {
	if bucket != db.name {
		return nil, s3fs.ContainerNotFound(bucket)
	}
	return &container{name: db.name, fs: db.fs, etags: db.etags}, nil
}

func (db *SingleBucketBackend) ListEntries(ctx context.Context, bucket string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	c, err := db.container(bucket)
	if err != nil {
		return nil, err
	}

	db.lock.RLock()
	defer db.lock.RUnlock()
	return c.list(ctx, req)
}

func (db *SingleBucketBackend) ObjectMetadata(ctx context.Context, bucket, key string) (*s3fs.ObjectInfo, error) {
	c, err := db.container(bucket)
	if err != nil {
		return nil, err
	}

	db.lock.RLock()
	defer db.lock.RUnlock()
	return c.stat(ctx, key)
}

func (db *SingleBucketBackend) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := db.ObjectMetadata(ctx, bucket, key)
	if s3fs.HasErrorCode(err, s3fs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (db *SingleBucketBackend) ContainerExists(ctx context.Context, bucket string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bucket == db.name, nil
}

func (db *SingleBucketBackend) PutObject(bucket, key string, input io.Reader, size int64) error {
	c, err := db.container(bucket)
	if err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()
	return c.put(key, input, size)
}

func (db *SingleBucketBackend) DeleteObject(bucket, key string) error {
	c, err := db.container(bucket)
	if err != nil {
		return err
	}

	db.lock.Lock()
	defer db.lock.Unlock()
	return c.delete(key)
}
