package s3fs

import (
	"strings"
)

// Prefix groups a flat key space into one level of hierarchy the way an S3
// ListObjects call does with its 'prefix' and 'delimiter' parameters. It is
// a convenience for backend implementers like s3mem, s3bolt and s3afero,
// which operate on a full, ordered list of keys.
type Prefix struct {
	HasPrefix bool
	Prefix    string

	HasDelimiter bool
	Delimiter    string
}

func NewPrefix(prefix, delim *string) (p Prefix) {
	if prefix != nil {
		p.HasPrefix, p.Prefix = true, *prefix
	}
	if delim != nil {
		p.HasDelimiter, p.Delimiter = true, *delim
	}
	return p
}

// PrefixFromRequest converts the prefix and delimiter of a ListRequest; empty
// strings are treated as absent, as S3 does.
func PrefixFromRequest(req ListRequest) Prefix {
	return Prefix{
		HasPrefix:    req.Prefix != "",
		Prefix:       req.Prefix,
		HasDelimiter: req.Delimiter != "",
		Delimiter:    req.Delimiter,
	}
}

// PrefixMatch describes how a key relates to a Prefix.
type PrefixMatch struct {
	// Input key passed to Prefix.Match.
	Key string

	// CommonPrefix is true when the key contains the delimiter after the
	// prefix; MatchedPart is then the common prefix up to and including the
	// delimiter. Otherwise MatchedPart is the whole key.
	CommonPrefix bool

	MatchedPart string
}

// Match reports whether key falls under the prefix, filling match if it is
// not nil.
func (p Prefix) Match(key string, match *PrefixMatch) (ok bool) {
	if p.HasPrefix && !strings.HasPrefix(key, p.Prefix) {
		return false
	}

	result := PrefixMatch{Key: key, MatchedPart: key}

	if p.HasDelimiter && p.Delimiter != "" {
		rest := key[len(p.Prefix):]
		if idx := strings.Index(rest, p.Delimiter); idx >= 0 {
			result.CommonPrefix = true
			result.MatchedPart = key[:len(p.Prefix)+idx+len(p.Delimiter)]
		}
	}

	if match != nil {
		*match = result
	}
	return true
}

// FilePrefix splits a '/'-delimited prefix into the directory part and the
// partial name that follows it, for backends that can list a real directory
// instead of scanning every key.
//
//	"foo/bar"  -> "foo",     "bar"
//	"foo/bar/" -> "foo/bar", ""
//	"foo"      -> "",        "foo"
//
// ok is false if the delimiter is anything other than "/".
func (p Prefix) FilePrefix() (path, remaining string, ok bool) {
	if !p.HasDelimiter || p.Delimiter != "/" {
		return "", "", false
	}

	idx := strings.LastIndexByte(p.Prefix, '/')
	if idx < 0 {
		return "", p.Prefix, true
	}
	return strings.Trim(p.Prefix[:idx], "/"), p.Prefix[idx+1:], true
}

func (p Prefix) String() string {
	if p.HasDelimiter {
		return "prefix:" + p.Prefix + ", delim:" + p.Delimiter
	}
	return "prefix:" + p.Prefix
}
