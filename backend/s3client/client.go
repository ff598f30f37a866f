// Package s3client implements s3fs.ObjectStoreClient against a real S3
// endpoint with aws-sdk-go-v2.
package s3client

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/johannesboyne/s3fs"
)

// API is the subset of *s3.Client the Client calls.
type API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

var _ API = &s3.Client{}

// Client adapts an S3 API client to s3fs.ObjectStoreClient. Errors that mean
// a key or bucket does not exist are translated to s3fs.ErrNotFound and
// s3fs.ErrNoSuchContainer; everything else is returned as the SDK reports
// it. Retries are left to the SDK's retryer.
type Client struct {
	api API
	log s3fs.Logger
}

var _ s3fs.ObjectStoreClient = &Client{}

type Option func(c *Client)

func WithLogger(logger s3fs.Logger) Option {
	return func(c *Client) { c.log = logger }
}

func New(api API, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = s3fs.DiscardLog()
	}
	return c
}

// Config describes how to reach an S3 endpoint. Zero values fall back to the
// SDK's default credential and region chain.
type Config struct {
	// Endpoint is a base URL like "http://localhost:9000". Empty means AWS.
	Endpoint  string
	Region    string
	PathStyle bool

	AccessKey    string
	SecretKey    string
	SessionToken string

	HTTPClient *http.Client
}

// NewFromConfig loads the SDK configuration and builds an *s3.Client from it.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)))
	}
	if cfg.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(cfg.HTTPClient))
	} else {
		loadOpts = append(loadOpts, config.WithHTTPClient(awshttp.NewBuildableClient()))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(api, opts...), nil
}

func (c *Client) ListEntries(ctx context.Context, container string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
	}
	if req.Prefix != "" {
		input.Prefix = aws.String(req.Prefix)
	}
	if req.Delimiter != "" {
		input.Delimiter = aws.String(req.Delimiter)
	}
	if req.ContinuationToken != "" {
		input.ContinuationToken = aws.String(req.ContinuationToken)
	}
	if req.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(int32(req.MaxKeys))
	}

	out, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, translate(err, container, "")
	}

	result := &s3fs.ListResult{
		CommonPrefixes: make([]string, 0, len(out.CommonPrefixes)),
		Objects:        make([]s3fs.ObjectInfo, 0, len(out.Contents)),
	}
	for _, prefix := range out.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(prefix.Prefix))
	}
	for _, obj := range out.Contents {
		result.Objects = append(result.Objects, s3fs.ObjectInfo{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	if aws.ToBool(out.IsTruncated) {
		result.NextContinuationToken = aws.ToString(out.NextContinuationToken)
	}
	return result, nil
}

func (c *Client) ObjectMetadata(ctx context.Context, container, key string) (*s3fs.ObjectInfo, error) {
	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translate(err, container, key)
	}
	return &s3fs.ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
		ETag:         aws.ToString(out.ETag),
	}, nil
}

func (c *Client) ObjectExists(ctx context.Context, container, key string) (bool, error) {
	_, err := c.ObjectMetadata(ctx, container, key)
	if s3fs.HasErrorCode(err, s3fs.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) ContainerExists(ctx context.Context, container string) (bool, error) {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(container)})
	if err == nil {
		return true, nil
	}
	err = translate(err, container, "")
	if s3fs.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// BucketRegion asks the endpoint which region a bucket lives in.
func (c *Client) BucketRegion(ctx context.Context, container string) (string, error) {
	region, err := manager.GetBucketRegion(ctx, c.api, container)
	if err != nil {
		var bnf manager.BucketNotFound
		if errors.As(err, &bnf) {
			return "", s3fs.ContainerNotFound(container)
		}
		return "", err
	}
	return region, nil
}

// translate maps the SDK's not-found errors onto s3fs error codes. HEAD
// responses have no body, so their errors only carry the status as
// "NotFound"; key is empty for requests against the bucket itself.
func translate(err error, container, key string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case "NoSuchBucket":
		return s3fs.ContainerNotFound(container)
	case "NoSuchKey":
		return s3fs.KeyNotFound(key)
	case "NotFound":
		if key == "" {
			return s3fs.ContainerNotFound(container)
		}
		return s3fs.KeyNotFound(key)
	}
	return err
}
