package main

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/johannesboyne/s3fs"
)

// Does ListObjectsV2 return NoSuchBucket when a nonexistent bucket is used,
// and does the s3fs adapter translate it?
type S300004ListNoSuchBucket struct{}

func (s S300004ListNoSuchBucket) Run(ctx *Context) error {
	client := ctx.S3Client()
	bucket := ctx.Config().BucketMissing()

	rs, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() != "NoSuchBucket" {
			return fmt.Errorf("expected NoSuchBucket, found %s", apiErr.ErrorCode())
		}
	} else if err != nil {
		return err
	} else {
		return fmt.Errorf("expected NoSuchBucket, but call succeeded: %+v", rs)
	}

	store, _ := ctx.ObjectStore(client)
	if _, err := store.ListEntries(ctx, bucket, s3fs.ListRequest{}); !s3fs.HasErrorCode(err, s3fs.ErrNoSuchContainer) {
		return fmt.Errorf("expected ErrNoSuchContainer, found %v", err)
	}
	return nil
}
