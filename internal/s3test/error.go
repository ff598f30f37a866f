package s3test

import (
	"encoding/xml"
	"errors"
	"net/http"

	"github.com/johannesboyne/s3fs"
)

// Error codes the server reports on top of the ones from package s3fs.
const (
	ErrInternal         s3fs.ErrorCode = "InternalError"
	ErrInvalidArgument  s3fs.ErrorCode = "InvalidArgument"
	ErrMethodNotAllowed s3fs.ErrorCode = "MethodNotAllowed"
	ErrNotImplemented   s3fs.ErrorCode = "NotImplemented"
)

// ErrorResult is the XML body of an S3 error response.
type ErrorResult struct {
	XMLName   xml.Name       `xml:"Error"`
	Code      s3fs.ErrorCode `xml:"Code"`
	Message   string         `xml:"Message"`
	Resource  string         `xml:"Resource,omitempty"`
	RequestID string         `xml:"RequestId"`
}

func (e *ErrorResult) status() int {
	switch e.Code {
	case s3fs.ErrNotFound, s3fs.ErrNoSuchContainer:
		return http.StatusNotFound
	case ErrInvalidArgument, s3fs.ErrIllegalArgument:
		return http.StatusBadRequest
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ensureErrorResult converts any error the storage returns. Anything without
// an s3fs.ErrorCode is an internal error.
func ensureErrorResult(err error, requestID string) *ErrorResult {
	out := &ErrorResult{Code: ErrInternal, Message: "We encountered an internal error, please try again.", RequestID: requestID}

	var resp *s3fs.ErrorResponse
	var coded s3fs.Error
	if errors.As(err, &resp) {
		out.Code, out.Message, out.Resource = resp.Code, resp.Message, resp.Resource
	} else if errors.As(err, &coded) {
		out.Code = coded.ErrorCode()
		switch out.Code {
		case ErrInvalidArgument:
			out.Message = "Invalid argument"
		case ErrMethodNotAllowed:
			out.Message = "The specified method is not allowed against this resource"
		case ErrNotImplemented:
			out.Message = "A header you provided implies functionality that is not implemented"
		default:
			out.Message = out.Code.Message()
		}
	}
	return out
}
