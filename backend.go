package s3fs

import (
	"context"
	"time"
)

// DefaultPageSize is the largest number of keys a single S3 ListObjects call
// returns.
const DefaultPageSize = 1000

// ObjectInfo describes a single stored object, as returned in the leaf
// entries of a listing or by a metadata lookup.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ListRequest is one page request against a container.
type ListRequest struct {
	Prefix string

	// Delimiter, when not empty, groups keys sharing a prefix up to the next
	// delimiter into ListResult.CommonPrefixes.
	Delimiter string

	// ContinuationToken resumes a listing from a previous
	// ListResult.NextContinuationToken. It is opaque to callers.
	ContinuationToken string

	// MaxKeys limits the number of keys and common prefixes combined. If
	// MaxKeys is <= 0, the backend's default is used.
	MaxKeys int
}

// ListResult is one page of a listing.
type ListResult struct {
	// CommonPrefixes are the synthetic subdirectories, including the
	// trailing delimiter, in ascending order.
	CommonPrefixes []string

	// Objects are the keys directly under the prefix, in ascending order.
	Objects []ObjectInfo

	// NextContinuationToken is empty when the listing is exhausted.
	NextContinuationToken string
}

func (r *ListResult) IsEmpty() bool {
	return len(r.CommonPrefixes) == 0 && len(r.Objects) == 0
}

func (r *ListResult) IsTruncated() bool {
	return r.NextContinuationToken != ""
}

// ObjectStoreClient provides the set of operations the path layer and the
// tree walker need from an object store.
//
// Retry and backoff policy, if any, belongs to the implementation; callers
// in this package never retry.
type ObjectStoreClient interface {
	// ListEntries returns one page of keys under req.Prefix. Results must be
	// grouped by exactly one delimiter level and returned in ascending key
	// order.
	//
	// ListEntries must return an ErrNoSuchContainer error if the container
	// does not exist. See ContainerNotFound() for a convenient way to create
	// one.
	ListEntries(ctx context.Context, container string, req ListRequest) (*ListResult, error)

	// ObjectExists reports whether an object is stored at exactly key.
	ObjectExists(ctx context.Context, container, key string) (bool, error)

	// ObjectMetadata must return an ErrNotFound error if the object does not
	// exist. See KeyNotFound() for a convenient way to create one.
	ObjectMetadata(ctx context.Context, container, key string) (*ObjectInfo, error)

	// ContainerExists should return a boolean indicating the container
	// existence, or an error if the backend was unable to determine it.
	ContainerExists(ctx context.Context, container string) (bool, error)
}
