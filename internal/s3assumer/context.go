package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/backend/s3client"
)

type Context struct {
	context.Context
	config Config
	rand   *rand.Rand
}

func (c *Context) Config() Config           { return c.config }
func (c *Context) Rand() *rand.Rand         { return c.rand }
func (c *Context) RandString(sz int) string { return hex.EncodeToString(c.RandBytes(sz)[:sz]) }

func (c *Context) RandBytes(sz int) []byte {
	out := make([]byte, sz)
	c.rand.Read(out)
	return out
}

func (c *Context) S3Client() *s3.Client {
	config := aws.Config{
		BaseEndpoint: aws.String(c.config.S3Endpoint),
		Region:       c.config.S3Region,
	}

	if c.config.Verbose {
		config.ClientLogMode = aws.LogRequestWithBody
	}

	svc := s3.NewFromConfig(config, func(options *s3.Options) {
		options.UsePathStyle = c.config.S3PathStyle
	})
	return svc
}

// ObjectStore wraps the SDK client in the s3fs adapter, counting the
// ListObjectsV2 calls made through it.
func (c *Context) ObjectStore(client *s3.Client) (*s3client.Client, *countingAPI) {
	api := &countingAPI{Client: client}
	return s3client.New(api, s3client.WithLogger(s3fs.GlobalLog(s3fs.LogErr))), api
}

// PutKeys creates each key under a fresh random prefix, which is returned
// with a trailing "/". Keys ending in "/" are stored as empty markers.
func (c *Context) PutKeys(client *s3.Client, bucket string, keys ...string) (prefix string, err error) {
	prefix = c.RandString(16) + "/"
	for _, key := range keys {
		var body []byte
		if len(key) == 0 || key[len(key)-1] != '/' {
			body = c.RandBytes(32)
		}
		if _, err := client.PutObject(c, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(prefix + key),
			Body:   bytes.NewReader(body),
		}); err != nil {
			return prefix, fmt.Errorf("put %q: %w", key, err)
		}
	}
	return prefix, nil
}

type countingAPI struct {
	*s3.Client
	lists atomic.Int64
}

func (a *countingAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	a.lists.Add(1)
	return a.Client.ListObjectsV2(ctx, params, optFns...)
}

func (a *countingAPI) Lists() int { return int(a.lists.Load()) }
