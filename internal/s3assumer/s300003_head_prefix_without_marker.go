package main

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// A synthetic directory has no object of its own: HEAD on either its bare
// name or its "/" form reports NotFound, so existence checks must fall back
// to a listing.
type S300003HeadPrefixWithoutMarker struct{}

func (s S300003HeadPrefixWithoutMarker) Run(ctx *Context) error {
	client := ctx.S3Client()
	bucket := ctx.Config().BucketStandard()

	prefix, err := ctx.PutKeys(client, bucket, "dir/file")
	if err != nil {
		return err
	}

	for _, key := range []string{prefix + "dir", prefix + "dir/"} {
		rs, err := client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() != "NotFound" {
				return fmt.Errorf("%s: expected NotFound, found %s", key, apiErr.ErrorCode())
			}
		} else if err != nil {
			return err
		} else {
			return fmt.Errorf("%s: expected NotFound, but call succeeded: %+v", key, rs)
		}
	}
	return nil
}
