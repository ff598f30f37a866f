package s3test

import (
	"net/http"
	"strings"
)

// routeBase dispatches path-style requests.
//
// URLs are assumed to break down into two common path segments, in the
// following format:
//
//	/<bucket>/<object>
//
// The object keeps any trailing "/", so directory markers can be addressed.
func (s *Server) routeBase(w http.ResponseWriter, r *http.Request) error {
	var (
		path   = strings.TrimPrefix(r.URL.Path, "/")
		parts  = strings.SplitN(path, "/", 2)
		bucket = parts[0]
		object = ""
	)

	if len(parts) == 2 {
		object = parts[1]
	}

	if bucket != "" && object != "" {
		return s.routeObject(bucket, object, w, r)

	} else if bucket != "" {
		return s.routeBucket(bucket, w, r)
	}

	return ErrNotImplemented
}

// routeObject handles URLs that contain both a bucket path segment and an
// object path segment.
func (s *Server) routeObject(bucket, object string, w http.ResponseWriter, r *http.Request) error {
	switch r.Method {
	case http.MethodHead:
		return s.headObject(bucket, object, w, r)
	default:
		return ErrMethodNotAllowed
	}
}

// routeBucket handles URLs that contain only a bucket path segment.
func (s *Server) routeBucket(bucket string, w http.ResponseWriter, r *http.Request) error {
	switch r.Method {
	case http.MethodGet:
		return s.listObjects(bucket, w, r)
	case http.MethodHead:
		return s.headBucket(bucket, w, r)
	default:
		return ErrMethodNotAllowed
	}
}
