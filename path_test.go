package s3fs

import (
	"net/url"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathParse(t *testing.T) {
	fs := testFS()

	for _, tc := range []struct {
		in        string
		absolute  bool
		container string
		key       string
		dir       bool
		str       string
	}{
		{in: "/bucket", absolute: true, container: "bucket", key: "", dir: true, str: "/bucket"},
		{in: "/bucket/", absolute: true, container: "bucket", key: "", dir: true, str: "/bucket"},
		{in: "/bucket/path/to/file", absolute: true, container: "bucket", key: "path/to/file", str: "/bucket/path/to/file"},
		{in: "/bucket/path/to/file/", absolute: true, container: "bucket", key: "path/to/file", dir: true, str: "/bucket/path/to/file/"},
		{in: "//bucket//path//file", absolute: true, container: "bucket", key: "path/file", str: "/bucket/path/file"},
		{in: "path/to/file", key: "path/to/file", str: "path/to/file"},
		{in: "path/to/dir/", key: "path/to/dir", dir: true, str: "path/to/dir/"},
		{in: "", key: "", dir: true, str: ""},
		{in: "bla", key: "bla", str: "bla"},
		{in: "/bucket/a/../b", absolute: true, container: "bucket", key: "a/../b", str: "/bucket/a/../b"},
	} {
		t.Run("", func(t *testing.T) {
			p := mustPath(t, fs, tc.in)
			assert.Equal(t, tc.absolute, p.IsAbsolute())
			assert.Equal(t, tc.container, p.Container())
			assert.Equal(t, tc.key, p.Key())
			assert.Equal(t, tc.dir, p.IsDirectory())
			assert.Equal(t, tc.str, p.String())
			assert.Same(t, fs, p.FileSystem())
		})
	}
}

func TestPathParseInvalid(t *testing.T) {
	fs := testFS()
	for _, in := range []string{"/", "//", "///"} {
		_, err := fs.Path(in)
		assert.True(t, HasErrorCode(err, ErrInvalidPath), in)
	}
}

func TestPathStringRoundTrip(t *testing.T) {
	fs := testFS()
	for _, in := range []string{"/bucket", "/bucket/a", "/bucket/a/b/", "a/b", "a/b/", ""} {
		p := mustPath(t, fs, in)
		assert.Equal(t, p, mustPath(t, fs, p.String()), in)
	}
}

func TestPathPrefix(t *testing.T) {
	fs := testFS()
	assert.Equal(t, "", mustPath(t, fs, "/bucket").Prefix())
	assert.Equal(t, "path/to/file/", mustPath(t, fs, "/bucket/path/to/file").Prefix())
	assert.Equal(t, "path/to/dir/", mustPath(t, fs, "/bucket/path/to/dir/").Prefix())
}

func TestPathParent(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		in     string
		parent string
		ok     bool
	}{
		{in: "/bucket/path/to/file", parent: "/bucket/path/to/", ok: true},
		{in: "/bucket/path/to/file/", parent: "/bucket/path/to/", ok: true},
		{in: "/bucket/file", parent: "/bucket", ok: true},
		{in: "/bucket/", ok: false},
		{in: "/bucket", ok: false},
		{in: "dir/file", parent: "dir/", ok: true},
		{in: "bla", ok: false},
		{in: "", ok: false},
	} {
		t.Run("", func(t *testing.T) {
			parent, ok := p(tc.in).Parent()
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, p(tc.parent), parent)
				assert.True(t, parent.IsDirectory())
			}
		})
	}

	parent, _ := p("dir/file").Parent()
	assert.Equal(t, "dir", parent.Key())
}

func TestPathRoot(t *testing.T) {
	fs := testFS()

	root, ok := mustPath(t, fs, "/bucketA/dir/file").Root()
	assert.True(t, ok)
	assert.Equal(t, mustPath(t, fs, "/bucketA"), root)
	assert.True(t, root.IsRoot())

	_, ok = mustPath(t, fs, "dir/file").Root()
	assert.False(t, ok)
}

func TestPathFileName(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	assert.Equal(t, p("file"), p("/bucketA/file").FileName())
	assert.Equal(t, p("another-file"), p("/bucketA/dir/another-file").FileName())

	parent, _ := p("/bucketA/dir/another-file").Parent()
	assert.Equal(t, p("dir"), parent.FileName())

	assert.Equal(t, "bucket", p("/bucket").FileName().String())
	assert.Equal(t, "file", p("/buckname/dir/file").FileName().String())
	assert.Equal(t, "file", p("dir/file").FileName().String())
	assert.Equal(t, "", p("").FileName().String())
	assert.False(t, p("/bucket/dir/").FileName().IsAbsolute())
}

func TestPathNames(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }
	file := p("/bucket/path/to/file")

	assert.Equal(t, 3, file.NameCount())
	assert.Equal(t, 0, p("/bucket/").NameCount())
	assert.Equal(t, 0, p("").NameCount())

	for idx, expected := range []string{"path/", "to/", "file"} {
		name, err := file.Name(idx)
		require.NoError(t, err)
		assert.Equal(t, p(expected), name)
	}

	_, err := file.Name(3)
	assert.True(t, HasErrorCode(err, ErrIllegalArgument))
	_, err = file.Name(-1)
	assert.True(t, HasErrorCode(err, ErrIllegalArgument))

	var names []Path
	for name := range file.Names() {
		names = append(names, name)
	}
	assert.Equal(t, []Path{p("path/"), p("to/"), p("file")}, names)

	// The sequence is restartable.
	var again int
	for range file.Names() {
		again++
	}
	assert.Equal(t, 3, again)

	// And stops when asked to.
	var first []Path
	for name := range file.Names() {
		first = append(first, name)
		break
	}
	assert.Equal(t, []Path{p("path/")}, first)

	dir := p("/bucket/path/to/")
	last, err := dir.Name(1)
	require.NoError(t, err)
	assert.Equal(t, p("to/"), last)
}

func TestPathSubpath(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }
	file := p("/bucket/path/to/file")

	for _, tc := range []struct {
		begin, end int
		out        string
	}{
		{0, 1, "path/"},
		{0, 2, "path/to/"},
		{0, 3, "path/to/file"},
		{1, 2, "to/"},
		{1, 3, "to/file"},
		{2, 3, "file"},
	} {
		t.Run("", func(t *testing.T) {
			sub, err := file.Subpath(tc.begin, tc.end)
			require.NoError(t, err)
			assert.Equal(t, p(tc.out), sub)
		})
	}

	for _, tc := range [][2]int{{-1, 1}, {0, 0}, {2, 1}, {0, 4}, {3, 4}} {
		_, err := file.Subpath(tc[0], tc[1])
		assert.True(t, HasErrorCode(err, ErrIllegalArgument), tc)
	}
}

func TestPathResolve(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		base, other, out string
	}{
		{"/bucket/path/to/dir/", "child/xyz", "/bucket/path/to/dir/child/xyz"},
		{"/bucket/path/to/dir", "child/xyz", "/bucket/path/to/dir/child/xyz"},
		{"/bucket/path/to/file", "", "/bucket/path/to/file"},
		{"path/to/file", "child/xyz", "path/to/file/child/xyz"},
		{"path/to/file", "", "path/to/file"},
		{"/bucket/path/to/file", "/bucket2/other/child", "/bucket2/other/child"},
		{"/bucket", "child", "/bucket/child"},
		{"", "child/", "child/"},
	} {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, p(tc.out), p(tc.base).Resolve(p(tc.other)))

			resolved, err := p(tc.base).ResolveString(tc.other)
			require.NoError(t, err)
			assert.Equal(t, p(tc.out), resolved)
		})
	}

	_, err := p("/bucket").ResolveString("/")
	assert.True(t, HasErrorCode(err, ErrInvalidPath))
}

func TestPathResolveSibling(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		base, other, out string
	}{
		{"/bucket/path/to/file", "other/child", "/bucket/path/to/other/child"},
		{"/bucket/path/to/file", "/bucket2/other/child", "/bucket2/other/child"},
		{"/bucket/path/to/file", "", "/bucket/path/to/"},

		{"/bucket", "other/child", "other/child"},
		{"/bucket", "/bucket2/other/child", "/bucket2/other/child"},
		{"/bucket", "", ""},

		{"", "other/child", "other/child"},
		{"", "/bucket2/other/child", "/bucket2/other/child"},
		{"", "", ""},

		{"path/to/file", "other/child", "path/to/other/child"},
		{"path/to/file", "/bucket2/other/child", "/bucket2/other/child"},
		{"path/to/file", "", "path/to/"},
	} {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, p(tc.out), p(tc.base).ResolveSibling(p(tc.other)))

			resolved, err := p(tc.base).ResolveSiblingString(tc.other)
			require.NoError(t, err)
			assert.Equal(t, p(tc.out), resolved)
		})
	}
}

func TestPathRelativize(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		base, other, out string
	}{
		{"/bucket/path/to/file", "/bucket/path/to/file/hello", "hello"},
		{"/bucket/path/to/", "/bucket/path/to/file/hello", "file/hello"},
		{"/bucket/path/to/", "/bucket/path/to/", ""},
		{"/bucket", "/bucket/a/b/", "a/b/"},
		{"a", "a/b/c", "b/c"},
		{"", "a/b", "a/b"},
		{"/bucket/a/x", "/bucket/a/x/", ""},
		{"/bucket/a/", "/bucket/a", ""},
		{"a", "a/", ""},
	} {
		t.Run("", func(t *testing.T) {
			rel, err := p(tc.base).Relativize(p(tc.other))
			require.NoError(t, err)
			assert.Equal(t, p(tc.out), rel)

			// Resolving the result against the base gives the other path
			// back. An empty result resolves to the base itself, so paths
			// differing only in directory form do not round-trip.
			if tc.out != "" {
				assert.Equal(t, p(tc.other), p(tc.base).Resolve(rel))
			} else {
				assert.Equal(t, p(tc.base), p(tc.base).Resolve(rel))
			}
		})
	}

	for _, tc := range [][2]string{
		{"/bucket/a", "/bucket2/a/b"},
		{"/bucket/a", "a/b"},
		{"/bucket/a/b", "/bucket/a"},
		{"/bucket/a/b", "/bucket/a/c"},
		{"/bucket/file", "/bucket/file1"},
	} {
		_, err := p(tc[0]).Relativize(p(tc[1]))
		assert.True(t, HasErrorCode(err, ErrIllegalRelativize), tc)
	}

	_, err := p("/bucket/a").Relativize(mustPath(t, testFS(), "/bucket/a/b"))
	assert.True(t, HasErrorCode(err, ErrIllegalRelativize))
}

func TestPathStartsWith(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		path, other string
		out         bool
	}{
		{"/bucket/file1", "/bucket", true},
		{"/bucket/file1", "", false},
		{"file1", "", false},
		{"", "", true},
		{"/bucket", "/bucket", true},
		{"/bucket/file1", "file1", false},
		{"/bucket/file1", "bucket", false},
		{"/bucket/file1", "/bucket/file1/file2", false},
		{"/bucket/file1/file2", "/bucket/file1", true},
		{"/bucket/file1/file2", "/bucket/file1/../", false},
		{"/bucket/file1", "/bucket/file", false},
		{"/bucket/file1", "/bucket2", false},
		{"file/file1", "file", true},
		{"/bucket/hello", "/bucket/hello", true},
		{"subkey1/hello", "subkey1/hello", true},
	} {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tc.out, p(tc.path).StartsWith(p(tc.other)))
			assert.Equal(t, tc.out, p(tc.path).StartsWithString(tc.other))
		})
	}

	assert.False(t, p("/bucket/file1/file2").StartsWith(p("/bucket/file1/../").Normalize()))
	assert.False(t, p("/bucket/hello").StartsWith(mustPath(t, testFS(), "/bucket")))
	assert.False(t, p("/bucket/hello").StartsWithString("/"))
}

func TestPathEndsWith(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	for _, tc := range []struct {
		path, other string
		out         bool
	}{
		{"/bucket/file1", "file1", true},
		{"/bucket/file1", "/bucket/file1", true},
		{"file/file1", "file1", true},
		{"file/file1", "/bucket", false},
		{"", "/bucket", false},
		{"", "", true},
		{"/bucket/file1", "", false},
		{"file1", "", false},
		{"/bucket/dir/dir/file1", "fail/dir/file1", false},
		{"/bucket/dir/dir/file1", "dir/file1", true},
		{"/bucket/file1", "/bucket2/file1", false},
		{"/bucket/a/file1", "/bucket/file1", false},
		{"/bucket/file11", "file1", false},
	} {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tc.out, p(tc.path).EndsWith(p(tc.other)))
			assert.Equal(t, tc.out, p(tc.path).EndsWithString(tc.other))
		})
	}

	assert.False(t, p("/bucket/file1").EndsWith(mustPath(t, testFS(), "/bucket/file1")))
}

func TestPathCompare(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	assert.Equal(t, 0, p("file1").Compare(p("file1")))
	assert.Equal(t, 0, p("/path/file1").Compare(p("/path/file1")))
	assert.Equal(t, -1, p("/A/file1").Compare(p("/B/file1")))
	assert.Equal(t, 1, p("/B/file1").Compare(p("/A/file1")))
	assert.Greater(t, p("/AA/file1").Compare(p("/A/file1")), 0)
	assert.Less(t, p("a").Compare(p("aa")), 0)
	assert.Greater(t, p("ab").Compare(p("aa")), 0)

	paths := []Path{p("/b/x"), p("/a/z"), p("/a/y")}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Compare(paths[j]) < 0 })
	assert.Equal(t, []Path{p("/a/y"), p("/a/z"), p("/b/x")}, paths)
}

func TestPathEqual(t *testing.T) {
	fs := testFS()
	p := func(raw string) Path { return mustPath(t, fs, raw) }

	assert.True(t, p("/bucketA/dir/file").Equal(p("/bucketA/dir/file")))
	assert.False(t, p("/bucketA/dir/file").Equal(p("/bucketA/dir/file2")))
	assert.False(t, p("/c/dir/file").Equal(mustPath(t, testFS(), "/c/dir/file")))
	assert.False(t, p("/c/dir/file").Equal(Path{}))

	m := map[Path]string{}
	m[p("/bucket/a")] = "a"
	m[p("/bucket/a")] = "b"
	assert.Len(t, m, 1)
	assert.Equal(t, "b", m[p("/bucket/a")])
}

func TestPathToURI(t *testing.T) {
	fs := testFS()
	p := mustPath(t, fs, "/bucket/path/to/file")

	uri := p.ToURI()
	require.NotNil(t, uri)
	assert.Equal(t, "s3", uri.Scheme)
	assert.Equal(t, "endpoint", uri.Host)
	assert.Equal(t, "/bucket/path/to/file", uri.Path)
	assert.Equal(t, "s3://endpoint/bucket/path/to/file", uri.String())

	back, err := fs.PathFromURI(uri)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	root := mustPath(t, fs, "/bucket")
	back, err = fs.PathFromURI(root.ToURI())
	require.NoError(t, err)
	assert.Equal(t, root, back)

	assert.Nil(t, mustPath(t, fs, "bla").ToURI())

	for _, raw := range []string{"http://endpoint/bucket/a", "s3://other/bucket/a", "s3://endpoint/", "s3://endpoint"} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		_, err = fs.PathFromURI(u)
		assert.True(t, HasErrorCode(err, ErrInvalidPath), raw)
	}
}

func TestPathUnsupported(t *testing.T) {
	fs := testFS()
	p := mustPath(t, fs, "file1")

	assert.True(t, HasErrorCode(p.Watch(), ErrUnsupportedOperation))
	_, err := p.ToRealPath()
	assert.True(t, HasErrorCode(err, ErrUnsupportedOperation))
	_, err = p.LocalPath()
	assert.True(t, HasErrorCode(err, ErrUnsupportedOperation))
}

func TestPathToAbsolutePath(t *testing.T) {
	fs := testFS()

	_, err := mustPath(t, fs, "file1").ToAbsolutePath()
	assert.True(t, HasErrorCode(err, ErrIllegalState))

	abs := mustPath(t, fs, "/file1")
	other, err := abs.ToAbsolutePath()
	require.NoError(t, err)
	assert.Equal(t, abs, other)
}

func TestPathNormalize(t *testing.T) {
	fs := testFS()
	p := mustPath(t, fs, "/bucket/a/./../b")
	assert.Equal(t, p, p.Normalize())
	assert.Equal(t, "a/./../b", p.Normalize().Key())
}
