package s3fs

import (
	"io"
)

// ReadAll is a replacement for io.ReadAll(), for use by backends when the
// size of the object is known ahead of time. It is considerably faster to
// preallocate the entire slice than to allow growslice to be triggered
// repeatedly, especially with larger buffers.
//
// It reports ErrIncompleteBody if the reader yields more or fewer bytes than
// size.
func ReadAll(r io.Reader, size int64) (b []byte, err error) {
	var n int
	b = make([]byte, size)
	n, err = io.ReadFull(r, b)
	if err == io.ErrUnexpectedEOF {
		return nil, ErrIncompleteBody
	} else if err != nil {
		return nil, err
	}

	if n != int(size) {
		return nil, ErrIncompleteBody
	}

	if extra, err := io.ReadAll(r); err != nil {
		return nil, err
	} else if len(extra) > 0 {
		return nil, ErrIncompleteBody
	}

	return b, nil
}

// clampPageSize applies DefaultPageSize when size is unset and caps it at the
// S3 maximum.
func clampPageSize(size int) int {
	if size <= 0 || size > DefaultPageSize {
		return DefaultPageSize
	}
	return size
}
