package s3fs

// Initialisation file for tests in the 's3fs' package. Internal tests, unit
// tests that use struct internals, etc go in this package.

import (
	"io"
	"log"
	"testing"
)

type TT struct {
	*testing.T
}

func (t TT) OK(err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func (t TT) OKAll(vs ...interface{}) {
	t.Helper()
	for _, v := range vs {
		if err, ok := v.(error); ok && err != nil {
			t.Fatal(err)
		}
	}
}

// testFS is a filesystem for path tests; none of them touch the client.
func testFS() *FileSystem {
	return New("endpoint", nil)
}

func mustPath(t *testing.T, fs *FileSystem, raw string) Path {
	t.Helper()
	p, err := fs.Path(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func init() {
	// Tests that may cause log output that merits inspection belong in
	// s3fs_test.
	log.SetOutput(io.Discard)
}
