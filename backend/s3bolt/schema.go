package s3bolt

// The schema for the bolt database is described in here. External users of the
// database should consider this an internal implementation detail, subject to
// change without notice or version number changes.
//
// Every container is a bolt bucket named after it, holding one bson-encoded
// boltObject per key. Container metadata lives in the "_meta" bucket.

import (
	"encoding/hex"
	"time"

	"github.com/johannesboyne/s3fs"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/mgo.v2/bson"
)

// Times are decoded in the local zone by bson; readers convert them back to
// UTC.
type boltBucket struct {
	CreationDate time.Time
}

type boltObject struct {
	Name         string
	LastModified time.Time
	Size         int64
	Hash         []byte
	Data         []byte `bson:",omitempty"`
}

func (b *boltObject) info() s3fs.ObjectInfo {
	return s3fs.ObjectInfo{
		Key:          b.Name,
		Size:         b.Size,
		LastModified: b.LastModified.UTC(),
		ETag:         `"` + hex.EncodeToString(b.Hash) + `"`,
	}
}

// header decodes an object record without its data.
func header(v []byte) (*boltObject, error) {
	var obj struct {
		Name         string
		LastModified time.Time
		Size         int64
		Hash         []byte
	}
	if err := bson.Unmarshal(v, &obj); err != nil {
		return nil, err
	}
	return &boltObject{
		Name:         obj.Name,
		LastModified: obj.LastModified.UTC(),
		Size:         obj.Size,
		Hash:         obj.Hash,
	}, nil
}

func bucketMetaKey(name string) []byte {
	return []byte("bucket/" + name)
}

type metaBucket struct {
	*bolt.Tx
	metaName []byte
	bucket   *bolt.Bucket
}

func (mb *metaBucket) createS3Bucket(bucket string, at time.Time) error {
	bb := &boltBucket{
		CreationDate: at,
	}
	data, err := bson.Marshal(bb)
	if err != nil {
		return err
	}
	if err := mb.bucket.Put(bucketMetaKey(bucket), data); err != nil {
		return err
	}
	return nil
}

func (mb *metaBucket) s3Bucket(bucket string) (*boltBucket, error) {
	bts := mb.bucket.Get(bucketMetaKey(bucket))
	if bts == nil {
		return nil, nil
	}

	var bb boltBucket
	if err := bson.Unmarshal(bts, &bb); err != nil {
		return nil, err
	}
	return &bb, nil
}
