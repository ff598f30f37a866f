package s3fs

import (
	"fmt"
	"iter"
	"net/url"
	"strings"
)

// Scheme is the URI scheme of object store paths.
const Scheme = "s3"

const separator = "/"

// Path locates an object, or a synthetic directory, in an object store that
// has no real directories: a container (bucket) name plus a '/' separated
// key.
//
// Absolute paths are written "/container/key/with/segments" and always carry
// a container; relative paths ("key/with/segments") never do. A key that
// ends with '/' is in directory form. Paths are never normalized: "." and
// ".." are ordinary names.
//
// Path is an immutable, comparable value and may be used as a map key. Two
// paths are only equal if they belong to the same *FileSystem.
type Path struct {
	fs        *FileSystem
	absolute  bool
	container string

	// key has no leading separator, and keeps a trailing separator if the
	// path was given in directory form.
	key string
}

func parsePath(fs *FileSystem, raw string) (Path, error) {
	absolute := strings.HasPrefix(raw, separator)
	segments := splitSegments(raw)

	p := Path{fs: fs, absolute: absolute}
	if absolute {
		if len(segments) == 0 {
			return Path{}, ResourceError(ErrInvalidPath, raw)
		}
		p.container, segments = segments[0], segments[1:]
	}
	p.key = joinSegments(segments, strings.HasSuffix(raw, separator))
	return p, nil
}

// splitSegments splits on the separator, dropping empty segments.
func splitSegments(s string) []string {
	var segments []string
	for _, seg := range strings.Split(s, separator) {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func joinSegments(segments []string, dirForm bool) string {
	if len(segments) == 0 {
		return ""
	}
	key := strings.Join(segments, separator)
	if dirForm {
		key += separator
	}
	return key
}

func (p Path) withKey(key string) Path {
	return Path{fs: p.fs, absolute: p.absolute, container: p.container, key: key}
}

func (p Path) relative(key string) Path {
	return Path{fs: p.fs, key: key}
}

func (p Path) segments() []string { return splitSegments(p.key) }

// FileSystem returns the filesystem the path was created against.
func (p Path) FileSystem() *FileSystem { return p.fs }

func (p Path) IsAbsolute() bool { return p.absolute }

// Container returns the bucket name, or "" for a relative path.
func (p Path) Container() string { return p.container }

// Key returns the object key: no leading separator, no trailing separator.
func (p Path) Key() string { return strings.TrimSuffix(p.key, separator) }

// Prefix returns the key as a listing prefix: "" for a container root,
// otherwise the key with exactly one trailing separator.
func (p Path) Prefix() string {
	if p.key == "" {
		return ""
	}
	return p.Key() + separator
}

// IsDirectory reports whether the path is in directory form: its key is
// empty or ends with the separator. It says nothing about existence.
func (p Path) IsDirectory() bool {
	return p.key == "" || strings.HasSuffix(p.key, separator)
}

// IsRoot reports whether p is a bare container, "/container".
func (p Path) IsRoot() bool { return p.absolute && p.key == "" }

// IsEmpty reports whether p is the empty relative path.
func (p Path) IsEmpty() bool { return !p.absolute && p.key == "" }

func (p Path) String() string {
	if !p.absolute {
		return p.key
	}
	if p.key == "" {
		return separator + p.container
	}
	return separator + p.container + separator + p.key
}

// Equal reports whether both paths belong to the same filesystem and have
// the same container and key. It is equivalent to p == other.
func (p Path) Equal(other Path) bool {
	return p == other
}

// Compare orders paths by container, then key, as plain strings. It is a
// sort key, not a traversal order.
func (p Path) Compare(other Path) int {
	if c := strings.Compare(p.container, other.container); c != 0 {
		return c
	}
	return strings.Compare(p.key, other.key)
}

// Root returns the container root of an absolute path.
func (p Path) Root() (Path, bool) {
	if !p.absolute {
		return Path{}, false
	}
	return p.withKey(""), true
}

// Parent strips the last segment, returning the parent in directory form.
// A container root and a relative path of a single segment have no parent.
func (p Path) Parent() (Path, bool) {
	segments := p.segments()
	if p.absolute {
		if len(segments) == 0 {
			return Path{}, false
		}
	} else if len(segments) <= 1 {
		return Path{}, false
	}
	return p.withKey(joinSegments(segments[:len(segments)-1], true)), true
}

// FileName returns the last segment as a relative path, without a trailing
// separator. The file name of a container root is the container name.
func (p Path) FileName() Path {
	segments := p.segments()
	if len(segments) == 0 {
		if p.absolute {
			return p.relative(p.container)
		}
		return p.relative("")
	}
	return p.relative(segments[len(segments)-1])
}

// NameCount returns the number of key segments; the container is not a name.
func (p Path) NameCount() int { return len(p.segments()) }

// Name returns the segment at index as a relative path. Directory segments
// keep their trailing separator.
func (p Path) Name(index int) (Path, error) {
	segments := p.segments()
	if index < 0 || index >= len(segments) {
		return Path{}, ResourceError(ErrIllegalArgument, fmt.Sprintf("name index %d of %q", index, p.String()))
	}
	return p.relative(p.joinSub(segments, index, index+1)), nil
}

// Subpath returns the relative path made of the segments [begin, end).
func (p Path) Subpath(begin, end int) (Path, error) {
	segments := p.segments()
	if begin < 0 || begin >= len(segments) || end <= begin || end > len(segments) {
		return Path{}, ResourceError(ErrIllegalArgument, fmt.Sprintf("subpath [%d, %d) of %q", begin, end, p.String()))
	}
	return p.relative(p.joinSub(segments, begin, end)), nil
}

// joinSub joins segments[begin:end]; the result is in directory form unless
// it ends with the path's final, file-form segment.
func (p Path) joinSub(segments []string, begin, end int) string {
	dirForm := end < len(segments) || p.IsDirectory()
	return joinSegments(segments[begin:end], dirForm)
}

// Names yields every segment as a single-segment relative path, in order.
// The sequence may be iterated any number of times.
func (p Path) Names() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		segments := p.segments()
		for i := range segments {
			if !yield(p.relative(p.joinSub(segments, i, i+1))) {
				return
			}
		}
	}
}

// Resolve appends other to p. An absolute other replaces p; an empty other
// returns p unchanged, even when p is in file form.
func (p Path) Resolve(other Path) Path {
	if other.absolute {
		return other
	}
	if other.key == "" {
		return p
	}
	base := p.key
	if base != "" && !strings.HasSuffix(base, separator) {
		base += separator
	}
	return p.withKey(base + other.key)
}

func (p Path) ResolveString(other string) (Path, error) {
	o, err := parsePath(p.fs, other)
	if err != nil {
		return Path{}, err
	}
	return p.Resolve(o), nil
}

// ResolveSibling resolves other against the parent of p. When p has no
// parent the result is other itself.
func (p Path) ResolveSibling(other Path) Path {
	parent, ok := p.Parent()
	if !ok {
		return other
	}
	return parent.Resolve(other)
}

func (p Path) ResolveSiblingString(other string) (Path, error) {
	o, err := parsePath(p.fs, other)
	if err != nil {
		return Path{}, err
	}
	return p.ResolveSibling(o), nil
}

// Relativize returns the part of other that follows p. p must be a segment
// prefix of other, with the same absoluteness and container; no ".."
// segments are ever produced.
func (p Path) Relativize(other Path) (Path, error) {
	if p.fs != other.fs || p.absolute != other.absolute || p.container != other.container {
		return Path{}, ResourceError(ErrIllegalRelativize, fmt.Sprintf("%s against %s", other.String(), p.String()))
	}

	base, segments := p.segments(), other.segments()
	if !hasSegmentPrefix(segments, base) {
		return Path{}, ResourceError(ErrIllegalRelativize, fmt.Sprintf("%s against %s", other.String(), p.String()))
	}

	rest := segments[len(base):]
	return p.relative(joinSegments(rest, other.IsDirectory())), nil
}

// StartsWith compares segments, not characters: "/b/file1" does not start
// with "/b/file". The empty path only starts with itself, and paths of other
// filesystems never match.
func (p Path) StartsWith(other Path) bool {
	if p.fs != other.fs || p.absolute != other.absolute {
		return false
	}
	if other.IsEmpty() {
		return p.IsEmpty()
	}
	if p.container != other.container {
		return false
	}
	return hasSegmentPrefix(p.segments(), other.segments())
}

func (p Path) StartsWithString(other string) bool {
	o, err := parsePath(p.fs, other)
	if err != nil {
		return false
	}
	return p.StartsWith(o)
}

// EndsWith compares segments. An absolute other must match p entirely; a
// relative other must match p's trailing segments.
func (p Path) EndsWith(other Path) bool {
	if p.fs != other.fs {
		return false
	}
	if other.IsEmpty() {
		return p.IsEmpty()
	}

	segments, suffix := p.segments(), other.segments()
	if other.absolute {
		return p.absolute && p.container == other.container && equalSegments(segments, suffix)
	}
	if len(suffix) > len(segments) {
		return false
	}
	return equalSegments(segments[len(segments)-len(suffix):], suffix)
}

func (p Path) EndsWithString(other string) bool {
	o, err := parsePath(p.fs, other)
	if err != nil {
		return false
	}
	return p.EndsWith(o)
}

// Normalize returns p unchanged; "." and ".." have no special meaning in
// object keys.
func (p Path) Normalize() Path { return p }

// ToAbsolutePath returns p if it is absolute. There is no current container,
// so a relative path cannot be made absolute.
func (p Path) ToAbsolutePath() (Path, error) {
	if !p.absolute {
		return Path{}, ResourceError(ErrIllegalState, p.String())
	}
	return p, nil
}

// ToURI returns "s3://<endpoint>/container/key", or nil for a relative path.
func (p Path) ToURI() *url.URL {
	if !p.absolute {
		return nil
	}
	var host string
	if p.fs != nil {
		host = p.fs.endpoint
	}
	return &url.URL{Scheme: Scheme, Host: host, Path: p.String()}
}

// Watch always fails: object stores have no change notification primitive.
func (p Path) Watch(events ...string) error {
	return ResourceError(ErrUnsupportedOperation, "watch "+p.String())
}

// ToRealPath always fails: there is no canonical form beyond the path itself.
func (p Path) ToRealPath() (Path, error) {
	return Path{}, ResourceError(ErrUnsupportedOperation, "real path "+p.String())
}

// LocalPath always fails: object store paths have no local file mapping.
func (p Path) LocalPath() (string, error) {
	return "", ResourceError(ErrUnsupportedOperation, "local path "+p.String())
}

func hasSegmentPrefix(segments, prefix []string) bool {
	if len(prefix) > len(segments) {
		return false
	}
	return equalSegments(segments[:len(prefix)], prefix)
}

func equalSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
