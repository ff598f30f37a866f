package s3afero

import (
	"github.com/spf13/afero"
)

type MultiOption func(b *MultiBucketBackend) error

// MultiWithMetaFs stores the ETag cache in fs instead of the "metadata"
// directory of the backend's own filesystem.
func MultiWithMetaFs(fs afero.Fs) MultiOption {
	return func(b *MultiBucketBackend) error {
		if err := ensureNoOsFs("MultiWithMetaFs", fs); err != nil {
			return err
		}
		b.etags = newETagCache(fs)
		return nil
	}
}

type SingleOption func(b *SingleBucketBackend) error

// SingleWithMetaFs stores the ETag cache in fs. Without it, the cache lives
// in memory and is rebuilt after every restart.
//
// It is STRONGLY recommended that fs is not contained within the bucket's
// own directory, as its files would be listed as objects.
func SingleWithMetaFs(fs afero.Fs) SingleOption {
	return func(b *SingleBucketBackend) error {
		if err := ensureNoOsFs("SingleWithMetaFs", fs); err != nil {
			return err
		}
		b.etags = newETagCache(fs)
		return nil
	}
}
