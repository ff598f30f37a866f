package main

type Config struct {
	S3Endpoint         string
	S3Region           string
	S3PathStyle        bool
	S3TestBucketPrefix string
	Verbose            bool
}

// BucketStandard is an existing bucket the tests may write to.
func (c Config) BucketStandard() string {
	return c.S3TestBucketPrefix
}

// BucketMissing names a bucket that must not exist.
func (c Config) BucketMissing() string {
	return c.S3TestBucketPrefix + ".missing"
}
