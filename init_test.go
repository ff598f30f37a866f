package s3fs_test

// Initialisation file for tests in the 's3fs_test' package. Tests that walk
// a real backend go in this package, which avoids the import cycle between
// s3fs and the backends.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/backend/s3mem"
)

var defaultDate = time.Date(2019, 1, 1, 12, 0, 0, 0, time.UTC)

func newBackend(t *testing.T, bucket string, keys ...string) *s3mem.Backend {
	t.Helper()
	b := s3mem.New(s3mem.WithTimeSource(s3fs.FixedTimeSource(defaultDate)))
	if err := b.CreateBucket(bucket); err != nil {
		t.Fatal(err)
	}
	for _, key := range keys {
		body := ""
		if !strings.HasSuffix(key, "/") {
			body = "content of " + key
		}
		if err := b.PutObject(bucket, key, strings.NewReader(body), int64(len(body))); err != nil {
			t.Fatal(err)
		}
	}
	b.ResetCalls()
	return b
}

// treeKeys is a small tree with directory markers for 'folder/' and
// 'folder/subfolder1/', but not for 'folder/subfolder2/'.
var treeKeys = []string{
	"folder/",
	"folder/subfolder1/",
	"folder/subfolder1/file1.1",
	"folder/subfolder1/file1.2",
	"folder/subfolder1/file1.3",
	"folder/subfolder1/file1.4",
	"folder/subfolder2/file2.1",
	"folder/subfolder2/file2.2",
	"folder/subfolder2/file2.3",
	"folder/subfolder2/file2.4",
}

// largeKeys returns 21 subfolders of 50 files each, without markers.
func largeKeys() []string {
	var keys []string
	for i := 0; i < 21; i++ {
		for j := 0; j < 50; j++ {
			keys = append(keys, fmt.Sprintf("folder/subfolder%02d/file%02d", i, j))
		}
	}
	return keys
}

func mustPath(t *testing.T, fs *s3fs.FileSystem, raw string) s3fs.Path {
	t.Helper()
	p, err := fs.Path(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// recorder is a Visitor that logs every callback as a string and answers
// with the VisitResult configured for that string, Continue by default.
type recorder struct {
	entries []string
	errs    []error
	results map[string]s3fs.VisitResult
	files   map[string]*s3fs.FileInfo
	hook    func(entry string)
}

var _ s3fs.Visitor = &recorder{}

func (r *recorder) add(entry string) s3fs.VisitResult {
	r.entries = append(r.entries, entry)
	if r.hook != nil {
		r.hook(entry)
	}
	return r.results[entry]
}

func (r *recorder) EnterDirectory(dir s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
	return r.add("enter " + dir.String())
}

func (r *recorder) VisitFile(file s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
	if r.files == nil {
		r.files = map[string]*s3fs.FileInfo{}
	}
	r.files[file.String()] = info
	return r.add("file " + file.String())
}

func (r *recorder) VisitFileFailed(file s3fs.Path, err error) s3fs.VisitResult {
	r.errs = append(r.errs, err)
	return r.add("failed " + file.String())
}

func (r *recorder) LeaveDirectory(dir s3fs.Path, err error) s3fs.VisitResult {
	return r.add("leave " + dir.String())
}

var errBroken = errors.New("broken")

// failingClient fails every listing of one prefix.
type failingClient struct {
	*s3mem.Backend
	prefix string
}

func (c *failingClient) ListEntries(ctx context.Context, container string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	if req.Prefix == c.prefix {
		return nil, errBroken
	}
	return c.Backend.ListEntries(ctx, container, req)
}
