package s3fs

import (
	"errors"
	"fmt"
)

const (
	// Malformed path string, e.g. an absolute path without a container name.
	ErrInvalidPath ErrorCode = "InvalidPath"

	// Relativize was asked to relate paths with a different absoluteness or
	// container, or paths that do not share a segment prefix.
	ErrIllegalRelativize ErrorCode = "IllegalRelativize"

	// There is no current container to resolve a relative path against.
	ErrIllegalState ErrorCode = "IllegalState"

	// The object store has no equivalent for the requested operation.
	ErrUnsupportedOperation ErrorCode = "UnsupportedOperation"

	ErrIllegalArgument ErrorCode = "IllegalArgument"

	// The reader passed to a backend's PutObject did not provide the number
	// of bytes it was said to contain.
	ErrIncompleteBody ErrorCode = "IncompleteBody"

	// See KeyNotFound() for a helper function for this error:
	ErrNotFound ErrorCode = "NoSuchKey"

	// See ContainerNotFound() for a helper function for this error:
	ErrNoSuchContainer ErrorCode = "NoSuchBucket"

	ErrContainerAlreadyExists ErrorCode = "BucketAlreadyExists"

	// Wraps failures of the ObjectStoreClient; see BackendError().
	ErrBackend ErrorCode = "BackendError"

	ErrFileSystemExists ErrorCode = "FileSystemAlreadyExists"
	ErrFileSystemClosed ErrorCode = "FileSystemClosed"
)

type Error interface {
	error
	ErrorCode() ErrorCode
}

type ErrorCode string

func (e ErrorCode) ErrorCode() ErrorCode { return e }
func (e ErrorCode) Error() string        { return string(e) }

func (e ErrorCode) Message() string {
	switch e {
	case ErrInvalidPath:
		return "The path is not a valid object store path"
	case ErrIllegalRelativize:
		return "The paths cannot be relativized against each other"
	case ErrIllegalState:
		return "The path has no container to resolve against"
	case ErrUnsupportedOperation:
		return "The operation is not supported by the object store"
	case ErrNotFound:
		return "The specified key does not exist"
	case ErrNoSuchContainer:
		return "The specified bucket does not exist"
	case ErrContainerAlreadyExists:
		return "The requested bucket name is not available"
	case ErrFileSystemExists:
		return "A filesystem is already open for the endpoint"
	case ErrFileSystemClosed:
		return "The filesystem has been closed"
	default:
		return ""
	}
}

// ErrorResponse carries an ErrorCode along with the resource it refers to.
type ErrorResponse struct {
	Code     ErrorCode
	Message  string
	Resource string
}

var _ Error = &ErrorResponse{}

func (e *ErrorResponse) ErrorCode() ErrorCode { return e.Code }

func (e *ErrorResponse) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %q", e.Code, e.Message, e.Resource)
}

// Is allows errors.Is(err, ErrNotFound) to match a wrapped response.
func (e *ErrorResponse) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == e.Code
}

func ErrorMessage(code ErrorCode, message string) error {
	return &ErrorResponse{Code: code, Message: message}
}

func ResourceError(code ErrorCode, resource string) error {
	return &ErrorResponse{Code: code, Message: code.Message(), Resource: resource}
}

func KeyNotFound(key string) error             { return ResourceError(ErrNotFound, key) }
func ContainerNotFound(container string) error { return ResourceError(ErrNoSuchContainer, container) }

type backendError struct {
	op    string
	cause error
}

var _ Error = &backendError{}

// BackendError wraps a failure of the ObjectStoreClient. The cause stays
// reachable through errors.Is/errors.As, so a wrapped ErrNoSuchContainer is
// still reported as not found.
func BackendError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &backendError{op: op, cause: cause}
}

func (e *backendError) ErrorCode() ErrorCode { return ErrBackend }

func (e *backendError) Error() string {
	if e == nil {
		return "(*backendError)(nil)"
	}
	return fmt.Sprintf("%s: %s: %v", ErrBackend, e.op, e.cause)
}

func (e *backendError) Unwrap() []error {
	return []error{ErrBackend, e.cause}
}

// HasErrorCode reports whether err, or anything it wraps, carries code.
func HasErrorCode(err error, code ErrorCode) bool {
	return errors.Is(err, code)
}

// IsNotFound reports whether err means the key or container does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSuchContainer)
}

func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackend)
}
