package s3bolt

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/johannesboyne/s3fs"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/mgo.v2/bson"
)

// Backend stores containers and objects in a bolt database. Keys are kept
// in bolt's B+tree order, so listings are served by seeking a cursor.
type Backend struct {
	bolt           *bolt.DB
	timeSource     s3fs.TimeSource
	metaBucketName []byte
}

var _ s3fs.ObjectStoreClient = &Backend{}

type Option func(b *Backend)

func WithTimeSource(timeSource s3fs.TimeSource) Option {
	return func(b *Backend) { b.timeSource = timeSource }
}

func NewFile(file string, opts ...Option) (*Backend, error) {
	if file == "" {
		return nil, fmt.Errorf("s3bolt: invalid bolt file name")
	}
	db, err := bolt.Open(file, 0600, nil)
	if err != nil {
		return nil, err
	}
	return New(db, opts...), nil
}

func New(bolt *bolt.DB, opts ...Option) *Backend {
	b := &Backend{
		bolt:           bolt,
		metaBucketName: []byte("_meta"), // Underscore guarantees no overlap with legal S3 bucket names
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.timeSource == nil {
		b.timeSource = s3fs.DefaultTimeSource()
	}
	return b
}

func (db *Backend) Close() error {
	return db.bolt.Close()
}

// metaBucket returns a utility that manages access to the metadata bucket.
// The returned struct is valid only for the lifetime of the bolt.Tx.
func (db *Backend) metaBucket(tx *bolt.Tx) (*metaBucket, error) {
	var bucket *bolt.Bucket
	var err error

	if tx.Writable() {
		bucket, err = tx.CreateBucketIfNotExists(db.metaBucketName)
		if err != nil {
			return nil, err
		}
	} else {
		bucket = tx.Bucket(db.metaBucketName)
		if bucket == nil {
			return nil, nil
		}
	}

	return &metaBucket{
		Tx:       tx,
		bucket:   bucket,
		metaName: db.metaBucketName,
	}, nil
}

// ListBuckets returns the container names, sorted.
func (db *Backend) ListBuckets() ([]string, error) {
	var buckets []string

	err := db.bolt.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if bytes.Equal(name, db.metaBucketName) {
				return nil
			}
			buckets = append(buckets, string(name))
			return nil
		})
	})

	sort.Strings(buckets)
	return buckets, err
}

func (db *Backend) CreateBucket(name string) error {
	nameBts := []byte(name)
	if bytes.Equal(nameBts, db.metaBucketName) {
		return s3fs.ResourceError(s3fs.ErrIllegalArgument, name)
	}

	return db.bolt.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(nameBts) != nil {
			return s3fs.ResourceError(s3fs.ErrContainerAlreadyExists, name)
		}

		metaBucket, err := db.metaBucket(tx)
		if err != nil {
			return err
		}
		if err := metaBucket.createS3Bucket(name, db.now()); err != nil {
			return err
		}

		_, err = tx.CreateBucket(nameBts)
		return err
	})
}

func (db *Backend) PutObject(bucketName, objectName string, input io.Reader, size int64) error {
	bts, err := s3fs.ReadAll(input, size)
	if err != nil {
		return err
	}
	hash := md5.Sum(bts)

	data, err := bson.Marshal(&boltObject{
		Name:         objectName,
		LastModified: db.now(),
		Size:         size,
		Hash:         hash[:],
		Data:         bts,
	})
	if err != nil {
		return err
	}

	return db.bolt.Update(func(tx *bolt.Tx) error {
		b := db.bucket(tx, bucketName)
		if b == nil {
			return s3fs.ContainerNotFound(bucketName)
		}
		return b.Put([]byte(objectName), data)
	})
}

func (db *Backend) GetObject(bucketName, objectName string) ([]byte, error) {
	var obj boltObject

	err := db.bolt.View(func(tx *bolt.Tx) error {
		b := db.bucket(tx, bucketName)
		if b == nil {
			return s3fs.ContainerNotFound(bucketName)
		}
		v := b.Get([]byte(objectName))
		if v == nil {
			return s3fs.KeyNotFound(objectName)
		}
		if err := bson.Unmarshal(v, &obj); err != nil {
			return fmt.Errorf("s3bolt: could not unmarshal object at %q/%q: %v", bucketName, objectName, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj.Data, nil
}

func (db *Backend) DeleteObject(bucketName, objectName string) error {
	return db.bolt.Update(func(tx *bolt.Tx) error {
		b := db.bucket(tx, bucketName)
		if b == nil {
			return s3fs.ContainerNotFound(bucketName)
		}
		if err := b.Delete([]byte(objectName)); err != nil {
			return fmt.Errorf("s3bolt: delete failed for object %q in bucket %q", objectName, bucketName)
		}
		return nil
	})
}

func (db *Backend) ListEntries(ctx context.Context, container string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := s3fs.NewListCollector(req)

	err := db.bolt.View(func(tx *bolt.Tx) error {
		b := db.bucket(tx, container)
		if b == nil {
			return s3fs.ContainerNotFound(container)
		}

		cur := b.Cursor()
		for k, v := cur.Seek([]byte(c.Start())); k != nil; k, v = cur.Next() {
			obj, err := header(v)
			if err != nil {
				return fmt.Errorf("s3bolt: could not unmarshal object at %q/%q: %v", container, k, err)
			}
			if !c.Add(obj.info()) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.Result(), nil
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
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var info s3fs.ObjectInfo
	err := db.bolt.View(func(tx *bolt.Tx) error {
		b := db.bucket(tx, container)
		if b == nil {
			return s3fs.ContainerNotFound(container)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return s3fs.KeyNotFound(key)
		}
		obj, err := header(v)
		if err != nil {
			return fmt.Errorf("s3bolt: could not unmarshal object at %q/%q: %v", container, key, err)
		}
		info = obj.info()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (db *Backend) ContainerExists(ctx context.Context, container string) (exists bool, err error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err = db.bolt.View(func(tx *bolt.Tx) error {
		b := db.bucket(tx, container)
		exists = b != nil
		return nil
	})
	return exists, err
}

// now is the time stored with new records. bson keeps milliseconds only.
func (db *Backend) now() time.Time {
	return db.timeSource.Now().UTC().Truncate(time.Millisecond)
}

// CreationDate returns when a container was created.
func (db *Backend) CreationDate(container string) (created time.Time, found bool, err error) {
	err = db.bolt.View(func(tx *bolt.Tx) error {
		metaBucket, err := db.metaBucket(tx)
		if err != nil || metaBucket == nil {
			return err
		}
		bb, err := metaBucket.s3Bucket(container)
		if err != nil || bb == nil {
			return err
		}
		created, found = bb.CreationDate.UTC(), true
		return nil
	})
	return created, found, err
}

// bucket returns the bolt bucket holding a container's objects, or nil. The
// metadata bucket is never a container.
func (db *Backend) bucket(tx *bolt.Tx, container string) *bolt.Bucket {
	if container == string(db.metaBucketName) {
		return nil
	}
	return tx.Bucket([]byte(container))
}
