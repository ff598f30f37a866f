package main

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// When a folder is created by a console or a sync tool, S3 stores a
// zero-length "dir/" object. A delimited listing of "dir/" returns that
// object alongside the real children; the walker must not report it as a
// file.
type S300001ListIncludesMarkerAtPrefix struct{}

func (s S300001ListIncludesMarkerAtPrefix) Run(ctx *Context) error {
	client := ctx.S3Client()
	bucket := ctx.Config().BucketStandard()

	prefix, err := ctx.PutKeys(client, bucket, "dir/", "dir/file")
	if err != nil {
		return err
	}

	rs, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix + "dir/"),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return err
	}

	if len(rs.Contents) != 2 {
		return fmt.Errorf("expected 2 objects, found %d", len(rs.Contents))
	}
	if key := aws.ToString(rs.Contents[0].Key); key != prefix+"dir/" {
		return fmt.Errorf("expected marker first, found %q", key)
	}
	if size := aws.ToInt64(rs.Contents[0].Size); size != 0 {
		return fmt.Errorf("expected empty marker, found %d bytes", size)
	}
	return nil
}
