package main

import (
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxKeys counts common prefixes and keys together, and a continuation token
// issued after a common prefix resumes past every key sharing it. The
// walker's per-level call count depends on both.
type S300002DelimitedPagination struct{}

func (s S300002DelimitedPagination) Run(ctx *Context) error {
	client := ctx.S3Client()
	bucket := ctx.Config().BucketStandard()

	prefix, err := ctx.PutKeys(client, bucket, "a/1", "a/2", "b", "c/1")
	if err != nil {
		return err
	}

	var pages int
	var entries []string
	var token *string
	for {
		rs, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			MaxKeys:           aws.Int32(1),
			ContinuationToken: token,
		})
		if err != nil {
			return err
		}
		pages++

		for _, cp := range rs.CommonPrefixes {
			entries = append(entries, aws.ToString(cp.Prefix))
		}
		for _, obj := range rs.Contents {
			entries = append(entries, aws.ToString(obj.Key))
		}
		if !aws.ToBool(rs.IsTruncated) {
			break
		}
		token = rs.NextContinuationToken
	}

	expected := []string{prefix + "a/", prefix + "b", prefix + "c/"}
	if !slices.Equal(entries, expected) {
		return fmt.Errorf("expected %q, found %q", expected, entries)
	}
	if pages != 3 {
		return fmt.Errorf("expected 3 pages, found %d", pages)
	}
	return nil
}
