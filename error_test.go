package s3fs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorResponseMessage(t *testing.T) {
	err := KeyNotFound("/tree/nope")
	expected := `NoSuchKey: The specified key does not exist: "/tree/nope"`
	if err.Error() != expected {
		t.Fatalf("expected:\n%s\nfound:\n%s", expected, err)
	}

	err = ErrorMessage(ErrIllegalArgument, "index out of range")
	if err.Error() != "IllegalArgument: index out of range" {
		t.Fatal(err)
	}
}

func TestHasErrorCode(t *testing.T) {
	for idx, tc := range []struct {
		err  error
		code ErrorCode
		has  bool
	}{
		{ErrNotFound, ErrNotFound, true},
		{KeyNotFound("k"), ErrNotFound, true},
		{fmt.Errorf("wrapped: %w", KeyNotFound("k")), ErrNotFound, true},
		{ContainerNotFound("c"), ErrNotFound, false},
		{BackendError("list", ContainerNotFound("c")), ErrNoSuchContainer, true},
		{BackendError("list", ContainerNotFound("c")), ErrBackend, true},
		{BackendError("list", errors.New("boom")), ErrNotFound, false},
		{errors.New("boom"), ErrBackend, false},
		{nil, ErrNotFound, false},
	} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			if HasErrorCode(tc.err, tc.code) != tc.has {
				t.Fatal(tc.err, tc.code, "expected", tc.has)
			}
		})
	}
}

func TestBackendError(t *testing.T) {
	if BackendError("list", nil) != nil {
		t.Fatal("nil cause must give nil error")
	}

	cause := errors.New("connection reset")
	err := BackendError("list /tree", cause)
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable")
	}
	if !IsBackendError(err) || IsNotFound(err) {
		t.Fatal(err)
	}
	if err.Error() != "BackendError: list /tree: connection reset" {
		t.Fatal(err)
	}

	var coded Error
	if !errors.As(err, &coded) || coded.ErrorCode() != ErrBackend {
		t.Fatal("expected ErrBackend code")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(KeyNotFound("k")) || !IsNotFound(ContainerNotFound("c")) {
		t.Fatal()
	}
	if IsNotFound(ResourceError(ErrInvalidPath, "//")) {
		t.Fatal()
	}
}
