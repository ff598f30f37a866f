package s3fs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrorCollector wraps a Visitor and records every error passed to
// VisitFileFailed, so a walk can carry on past failures and report them
// once it is done.
type ErrorCollector struct {
	Visitor
	errs *multierror.Error
}

// CollectErrors wraps v; a nil v visits nothing but still collects.
func CollectErrors(v Visitor) *ErrorCollector {
	if v == nil {
		v = VisitorFuncs{}
	}
	return &ErrorCollector{Visitor: v}
}

func (c *ErrorCollector) VisitFileFailed(file Path, err error) VisitResult {
	c.errs = multierror.Append(c.errs, fmt.Errorf("%s: %w", file, err))
	return c.Visitor.VisitFileFailed(file, err)
}

// Err returns every collected error as a *multierror.Error, or nil if
// nothing failed.
func (c *ErrorCollector) Err() error {
	return c.errs.ErrorOrNil()
}

// Len returns the number of collected errors.
func (c *ErrorCollector) Len() int {
	if c.errs == nil {
		return 0
	}
	return len(c.errs.Errors)
}
