package s3fs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOpen(t *testing.T) {
	tt := TT{t}
	r := NewRegistry()

	fs, err := r.Open("endpoint", nil, WithReadOnly())
	tt.OK(err)
	assert.True(t, fs.IsReadOnly())
	assert.Equal(t, "endpoint", fs.Endpoint())

	_, err = r.Open("endpoint", nil)
	assert.True(t, HasErrorCode(err, ErrFileSystemExists))

	got, ok := r.Get("endpoint")
	assert.True(t, ok)
	assert.Same(t, fs, got)

	_, ok = r.Get("other")
	assert.False(t, ok)
}

func TestRegistryPath(t *testing.T) {
	tt := TT{t}
	r := NewRegistry()
	fs, err := r.Open("localhost:9000", nil)
	tt.OK(err)

	u, err := url.Parse("s3://localhost:9000/bucket/path/to/file")
	tt.OK(err)

	p, err := r.Path(u)
	tt.OK(err)
	assert.Equal(t, mustPath(t, fs, "/bucket/path/to/file"), p)
	assert.Equal(t, u.String(), p.ToURI().String())

	u, _ = url.Parse("s3://elsewhere/bucket")
	_, err = r.Path(u)
	assert.True(t, HasErrorCode(err, ErrFileSystemClosed))

	u, _ = url.Parse("file:///bucket")
	_, err = r.Lookup(u)
	assert.True(t, HasErrorCode(err, ErrInvalidPath))
}

func TestRegistryClose(t *testing.T) {
	tt := TT{t}
	r := NewRegistry()

	fsA, err := r.Open("a", nil)
	tt.OK(err)
	fsB, err := r.Open("b", nil)
	tt.OK(err)
	assert.Equal(t, []string{"a", "b"}, r.Endpoints())

	// Closing the filesystem directly unregisters it.
	tt.OK(fsA.Close())
	assert.False(t, fsA.IsOpen())
	assert.Equal(t, []string{"b"}, r.Endpoints())

	// So the endpoint can be opened again.
	fsA2, err := r.Open("a", nil)
	tt.OK(err)
	assert.NotSame(t, fsA, fsA2)

	// Closing a stale filesystem leaves its replacement alone.
	tt.OK(fsA.Close())
	assert.Equal(t, []string{"a", "b"}, r.Endpoints())

	tt.OK(r.Close("b"))
	assert.False(t, fsB.IsOpen())
	tt.OK(r.Close("b"))

	tt.OK(r.CloseAll())
	assert.False(t, fsA2.IsOpen())
	assert.Empty(t, r.Endpoints())
}
