package main

import (
	"fmt"

	"github.com/johannesboyne/s3fs"
)

// A walk issues one listing per directory level, and one in total when
// listing flat, against a real endpoint as it does against s3mem.
type S300005WalkCallCount struct{}

func (s S300005WalkCallCount) Run(ctx *Context) error {
	client := ctx.S3Client()
	bucket := ctx.Config().BucketStandard()

	prefix, err := ctx.PutKeys(client, bucket, "d1/f1", "d1/f2", "d2/f1", "f")
	if err != nil {
		return err
	}

	for _, tc := range []struct {
		mode  s3fs.ListingMode
		lists int
	}{
		{s3fs.ListPerLevel, 3},
		{s3fs.ListFlat, 1},
	} {
		store, api := ctx.ObjectStore(client)
		fsys := s3fs.New(ctx.Config().S3Endpoint, store)
		root, err := fsys.Path("/" + bucket + "/" + prefix)
		if err != nil {
			return err
		}

		var files int
		collector := s3fs.CollectErrors(s3fs.VisitorFuncs{
			VisitFileFunc: func(file s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
				files++
				return s3fs.Continue
			},
		})
		if err := fsys.Walk(ctx, root, collector, s3fs.WithListingMode(tc.mode)); err != nil {
			return err
		}
		if err := collector.Err(); err != nil {
			return err
		}

		if files != 4 {
			return fmt.Errorf("%s: expected 4 files, found %d", tc.mode, files)
		}
		if api.Lists() != tc.lists {
			return fmt.Errorf("%s: expected %d listings, found %d", tc.mode, tc.lists, api.Lists())
		}
	}
	return nil
}
