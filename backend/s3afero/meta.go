package s3afero

import (
	"encoding/hex"
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// etagCache keeps the MD5 of each object file in a side filesystem. An entry
// is valid while the file still has the size and mtime recorded with it.
type etagCache struct {
	fs afero.Fs
}

type etagEntry struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
	MD5     []byte    `json:"md5"`
}

func (e *etagEntry) matches(stat os.FileInfo) bool {
	return len(e.MD5) > 0 && e.Size == stat.Size() && e.ModTime.Equal(stat.ModTime())
}

func newETagCache(fs afero.Fs) *etagCache {
	return &etagCache{fs: fs}
}

var flattenKey = strings.NewReplacer("/", "_", `\`, "_")

// entryFile is where the entry for key lives. Keys are flattened into one
// directory per container, with a hash of the key to keep names distinct.
func entryFile(container, key string) string {
	sum := fnv.New128a()
	sum.Write([]byte(key))
	return filepath.Join(container, flattenKey.Replace(key)+"-"+hex.EncodeToString(sum.Sum(nil)))
}

// etag returns the quoted ETag of key, hashing its file in objects when the
// cached entry is missing or stale.
func (ec *etagCache) etag(container, key string, objects afero.Fs, stat os.FileInfo) (string, error) {
	entry, err := ec.read(container, key)
	if err != nil {
		return "", err
	}

	if entry == nil || !entry.matches(stat) {
		sum, err := hashFile(objects, key)
		if err != nil {
			return "", err
		}
		if err := ec.store(container, key, stat, sum); err != nil {
			return "", err
		}
		return quoteETag(sum), nil
	}
	return quoteETag(entry.MD5), nil
}

func (ec *etagCache) read(container, key string) (*etagEntry, error) {
	data, err := afero.ReadFile(ec.fs, entryFile(container, key))
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var entry etagEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A damaged entry is rebuilt from the file.
		return nil, nil
	}
	return &entry, nil
}

// store records sum as the MD5 of key's file as it is described by stat.
func (ec *etagCache) store(container, key string, stat os.FileInfo, sum []byte) error {
	data, err := json.Marshal(&etagEntry{
		Key:     key,
		Size:    stat.Size(),
		ModTime: stat.ModTime(),
		MD5:     sum,
	})
	if err != nil {
		return err
	}

	file := entryFile(container, key)
	if err := ec.fs.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return err
	}
	return afero.WriteFile(ec.fs, file, data, 0o600)
}

func (ec *etagCache) forget(container, key string) error {
	if err := ec.fs.Remove(entryFile(container, key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (ec *etagCache) dropContainer(container string) error {
	if err := ec.fs.RemoveAll(container); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func quoteETag(sum []byte) string {
	return `"` + hex.EncodeToString(sum) + `"`
}
