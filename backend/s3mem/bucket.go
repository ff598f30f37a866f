package s3mem

import (
	"encoding/hex"
	"time"

	"github.com/johannesboyne/s3fs"
	"github.com/ryszard/goskiplist/skiplist"
)

type bucketItem struct {
	name         string
	lastModified time.Time
	data         []byte
	hash         []byte
}

func (bi *bucketItem) info() s3fs.ObjectInfo {
	return s3fs.ObjectInfo{
		Key:          bi.name,
		Size:         int64(len(bi.data)),
		LastModified: bi.lastModified,
		ETag:         `"` + hex.EncodeToString(bi.hash) + `"`,
	}
}

type bucket struct {
	name         string
	creationDate time.Time

	// objects maps key to *bucketItem, in key order.
	objects *skiplist.SkipList
}

func newBucket(name string, at time.Time) *bucket {
	return &bucket{
		name:         name,
		creationDate: at,
		objects:      skiplist.NewStringMap(),
	}
}

func (b *bucket) get(name string) *bucketItem {
	v, ok := b.objects.Get(name)
	if !ok {
		return nil
	}
	return v.(*bucketItem)
}

func (b *bucket) put(item *bucketItem) {
	b.objects.Set(item.name, item)
}

func (b *bucket) rm(name string) {
	b.objects.Delete(name)
}

func (b *bucket) list(req s3fs.ListRequest) *s3fs.ListResult {
	c := s3fs.NewListCollector(req)

	it := b.objects.Seek(c.Start())
	if it == nil {
		return c.Result()
	}
	defer it.Close()

	for ok := true; ok; ok = it.Next() {
		if !c.Add(it.Value().(*bucketItem).info()) {
			break
		}
	}
	return c.Result()
}
