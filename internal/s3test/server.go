// Package s3test serves the read-only subset of the S3 REST API that
// backend/s3client calls (ListObjectsV2, HeadObject and HeadBucket) from an
// s3fs.ObjectStoreClient, so the SDK client can be tested against an
// httptest.Server.
package s3test

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/johannesboyne/s3fs"
)

const DefaultRegion = "us-east-1"

type Server struct {
	storage s3fs.ObjectStoreClient
	region  string
	log     s3fs.Logger

	requests atomic.Int64
}

type Option func(s *Server)

// WithRegion sets the region reported in the X-Amz-Bucket-Region header.
func WithRegion(region string) Option {
	return func(s *Server) { s.region = region }
}

func WithLogger(logger s3fs.Logger) Option {
	return func(s *Server) { s.log = logger }
}

func New(storage s3fs.ObjectStoreClient, options ...Option) *Server {
	s := &Server{
		storage: storage,
		region:  DefaultRegion,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.log == nil {
		s.log = s3fs.DiscardLog()
	}
	return s
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int {
	return int(s.requests.Load())
}

func (s *Server) Server() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		requestID := uuid.NewString()
		w.Header().Set("x-amz-request-id", requestID)
		s.log.Print(s3fs.LogInfo, r.Method, r.URL.String(), requestID)

		if err := s.routeBase(w, r); err != nil {
			s.httpError(w, r, err, requestID)
		}
	})
}

func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	resp := ensureErrorResult(err, requestID)
	if resp.Code == ErrInternal {
		s.log.Print(s3fs.LogErr, err)
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(resp.status())
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(resp.status())
	io.WriteString(w, xml.Header)
	if err := xmlEncoder(w).Encode(resp); err != nil {
		s.log.Print(s3fs.LogErr, err)
	}
}

func (s *Server) listObjects(bucket string, w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	if query.Get("list-type") != "2" {
		return ErrNotImplemented
	}

	maxKeys, err := parseClampedInt(query.Get("max-keys"), s3fs.DefaultPageSize, 0, s3fs.DefaultPageSize)
	if err != nil {
		return ErrInvalidArgument
	}

	req := s3fs.ListRequest{
		Prefix:            query.Get("prefix"),
		Delimiter:         query.Get("delimiter"),
		ContinuationToken: query.Get("continuation-token"),
		MaxKeys:           int(maxKeys),
	}
	page, err := s.storage.ListEntries(r.Context(), bucket, req)
	if err != nil {
		return err
	}

	out := newListBucketResult(bucket, req, page)
	w.Header().Set("Content-Type", "application/xml")
	io.WriteString(w, xml.Header)
	return xmlEncoder(w).Encode(out)
}

func (s *Server) headBucket(bucket string, w http.ResponseWriter, r *http.Request) error {
	exists, err := s.storage.ContainerExists(r.Context(), bucket)
	if err != nil {
		return err
	} else if !exists {
		return s3fs.ContainerNotFound(bucket)
	}
	w.Header().Set("X-Amz-Bucket-Region", s.region)
	return nil
}

func (s *Server) headObject(bucket, object string, w http.ResponseWriter, r *http.Request) error {
	info, err := s.storage.ObjectMetadata(r.Context(), bucket, object)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Last-Modified", formatHeaderTime(info.LastModified))
	if info.ETag != "" {
		w.Header().Set("ETag", info.ETag)
	}
	return nil
}

func xmlEncoder(w io.Writer) *xml.Encoder {
	xe := xml.NewEncoder(w)
	xe.Indent("", "  ")
	return xe
}

// parseClampedInt parses an optional query parameter, clamping it between
// min and max.
func parseClampedInt(in string, defaultValue, min, max int64) (int64, error) {
	var v int64
	if in == "" {
		v = defaultValue
	} else {
		var err error
		v, err = strconv.ParseInt(in, 10, 0)
		if err != nil {
			return defaultValue, err
		}
	}

	if v < min {
		v = min
	} else if v > max {
		v = max
	}

	return v, nil
}
