package s3mem

import (
	"context"
	"crypto/md5"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/johannesboyne/s3fs"
)

// Backend is an in-memory object store. Keys of a bucket are kept in a
// skiplist so listings are served in order without sorting.
//
// Backend counts the calls made to it through s3fs.ObjectStoreClient, which
// makes it useful for asserting how many round trips a walk would cost
// against a real store.
type Backend struct {
	buckets    map[string]*bucket
	timeSource s3fs.TimeSource
	lock       sync.Mutex

	listCalls     atomic.Int64
	metadataCalls atomic.Int64
}

var _ s3fs.ObjectStoreClient = &Backend{}

type Option func(b *Backend)

func WithTimeSource(timeSource s3fs.TimeSource) Option {
	return func(b *Backend) { b.timeSource = timeSource }
}

func New(opts ...Option) *Backend {
	b := &Backend{
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.timeSource == nil {
		b.timeSource = s3fs.DefaultTimeSource()
	}
	return b
}

// ListCalls returns the number of ListEntries calls made so far.
func (db *Backend) ListCalls() int { return int(db.listCalls.Load()) }

// MetadataCalls returns the number of ObjectExists and ObjectMetadata calls
// made so far.
func (db *Backend) MetadataCalls() int { return int(db.metadataCalls.Load()) }

func (db *Backend) ResetCalls() {
	db.listCalls.Store(0)
	db.metadataCalls.Store(0)
}

func (db *Backend) ListBuckets() []string {
	db.lock.Lock()
	defer db.lock.Unlock()

	var buckets = make([]string, 0, len(db.buckets))
	for name := range db.buckets {
		buckets = append(buckets, name)
	}
	sort.Strings(buckets)
	return buckets
}

func (db *Backend) CreateBucket(name string) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if db.buckets[name] != nil {
		return s3fs.ResourceError(s3fs.ErrContainerAlreadyExists, name)
	}

	db.buckets[name] = newBucket(name, db.timeSource.Now())
	return nil
}

func (db *Backend) PutObject(bucketName, objectName string, input io.Reader, size int64) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	bucket := db.buckets[bucketName]
	if bucket == nil {
		return s3fs.ContainerNotFound(bucketName)
	}

	bts, err := s3fs.ReadAll(input, size)
	if err != nil {
		return err
	}

	hash := md5.Sum(bts)

	bucket.put(&bucketItem{
		name:         objectName,
		data:         bts,
		hash:         hash[:],
		lastModified: db.timeSource.Now(),
	})

	return nil
}

// GetObject returns a copy of the stored bytes.
func (db *Backend) GetObject(bucketName, objectName string) ([]byte, error) {
	db.lock.Lock()
	defer db.lock.Unlock()

	bucket := db.buckets[bucketName]
	if bucket == nil {
		return nil, s3fs.ContainerNotFound(bucketName)
	}

	obj := bucket.get(objectName)
	if obj == nil {
		return nil, s3fs.KeyNotFound(objectName)
	}
	return append([]byte(nil), obj.data...), nil
}

// DeleteObject removes a key. Like S3, deleting a key that does not exist
// is not an error.
func (db *Backend) DeleteObject(bucketName, objectName string) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	bucket := db.buckets[bucketName]
	if bucket == nil {
		return s3fs.ContainerNotFound(bucketName)
	}
	bucket.rm(objectName)
	return nil
}

func (db *Backend) ListEntries(ctx context.Context, container string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	db.listCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	bucket := db.buckets[container]
	if bucket == nil {
		return nil, s3fs.ContainerNotFound(container)
	}
	return bucket.list(req), nil
}

func (db *Backend) ObjectExists(ctx context.Context, container, key string) (bool, error) {
	_, err := db.ObjectMetadata(ctx, container, key)
	if s3fs.HasErrorCode(err, s3fs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (db *Backend) ObjectMetadata(ctx context.Context, container, key string) (*s3fs.ObjectInfo, error) {
	db.metadataCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db.lock.Lock()
	defer db.lock.Unlock()

	bucket := db.buckets[container]
	if bucket == nil {
		return nil, s3fs.ContainerNotFound(container)
	}

	obj := bucket.get(key)
	if obj == nil {
		return nil, s3fs.KeyNotFound(key)
	}
	info := obj.info()
	return &info, nil
}

func (db *Backend) ContainerExists(ctx context.Context, container string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	db.lock.Lock()
	defer db.lock.Unlock()
	return db.buckets[container] != nil, nil
}
