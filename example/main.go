package main

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"

	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/backend/s3client"
	"github.com/johannesboyne/s3fs/backend/s3mem"
	"github.com/johannesboyne/s3fs/internal/s3test"
)

func main() {
	ctx := context.Background()
	logger := log.New(os.Stderr, "[s3fs] ", log.LstdFlags)

	// Step 1: Fill an in-memory store and serve it over the S3 listing API
	backend := s3mem.New()
	bucketName := "test-bucket"
	if err := backend.CreateBucket(bucketName); err != nil {
		log.Fatalf("Failed to create bucket: %v", err)
	}
	for _, key := range []string{
		"docs/readme.txt",
		"docs/guide/intro.txt",
		"docs/guide/setup.txt",
		"images/",
		"top.txt",
	} {
		body := "content of " + key
		if strings.HasSuffix(key, "/") {
			body = ""
		}
		if err := backend.PutObject(bucketName, key, strings.NewReader(body), int64(len(body))); err != nil {
			log.Fatalf("Failed to put %s: %v", key, err)
		}
	}

	ts := httptest.NewServer(s3test.New(backend).Server())
	defer ts.Close()
	fmt.Printf("S3 server running at: %s\n", ts.URL)

	// Step 2: Configure the AWS SDK client against it
	client, err := s3client.NewFromConfig(ctx, s3client.Config{
		Endpoint:  ts.URL,
		Region:    "us-east-1",
		PathStyle: true,
		AccessKey: "YOUR-ACCESSKEYID",
		SecretKey: "YOUR-SECRETACCESSKEY",
	})
	if err != nil {
		log.Fatalf("Unable to configure AWS SDK: %v", err)
	}

	u, _ := url.Parse(ts.URL)
	fsys := s3fs.New(u.Host, client, s3fs.WithLogger(s3fs.StdLog(logger, s3fs.LogWarn, s3fs.LogErr)))
	defer fsys.Close()

	// Step 3: Walk the bucket
	root, err := fsys.Path("/" + bucketName)
	if err != nil {
		log.Fatal(err)
	}

	collector := s3fs.CollectErrors(s3fs.VisitorFuncs{
		EnterDirectoryFunc: func(dir s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			fmt.Printf("enter %s\n", dir)
			return s3fs.Continue
		},
		VisitFileFunc: func(file s3fs.Path, info *s3fs.FileInfo) s3fs.VisitResult {
			fmt.Printf("  file %s (%d bytes)\n", file, info.Size())
			return s3fs.Continue
		},
		LeaveDirectoryFunc: func(dir s3fs.Path, err error) s3fs.VisitResult {
			fmt.Printf("leave %s\n", dir)
			return s3fs.Continue
		},
	})
	if err := fsys.Walk(ctx, root, collector, s3fs.WithListingMode(s3fs.ListFlat)); err != nil {
		log.Fatalf("Walk failed: %v", err)
	}
	if err := collector.Err(); err != nil {
		log.Fatalf("Walk reported errors: %v", err)
	}

	// Step 4: Path algebra needs no store at all
	guide, _ := root.ResolveString("docs/guide/")
	rel, err := root.Relativize(guide)
	if err != nil {
		log.Fatal(err)
	}
	parent, _ := guide.Parent()
	fmt.Printf("%s is %q below %s; its parent is %s; URI %s\n", guide, rel, root, parent, guide.ToURI())

	info, err := fsys.Stat(ctx, guide)
	if err != nil {
		log.Fatalf("Stat failed: %v", err)
	}
	fmt.Printf("%s is a directory: %v\n", info.Name(), info.IsDir())
}
