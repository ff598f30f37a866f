package s3test

import (
	"encoding/xml"
	"time"

	"github.com/johannesboyne/s3fs"
)

const xmlns = "http://s3.amazonaws.com/doc/2006-03-01/"

type ListBucketResult struct {
	XMLName               xml.Name       `xml:"ListBucketResult"`
	Xmlns                 string         `xml:"xmlns,attr"`
	Name                  string         `xml:"Name"`
	Prefix                string         `xml:"Prefix"`
	Delimiter             string         `xml:"Delimiter,omitempty"`
	MaxKeys               int            `xml:"MaxKeys"`
	KeyCount              int            `xml:"KeyCount"`
	IsTruncated           bool           `xml:"IsTruncated"`
	ContinuationToken     string         `xml:"ContinuationToken,omitempty"`
	NextContinuationToken string         `xml:"NextContinuationToken,omitempty"`
	Contents              []*Content     `xml:"Contents"`
	CommonPrefixes        []CommonPrefix `xml:"CommonPrefixes,omitempty"`
}

type Content struct {
	Key          string      `xml:"Key"`
	LastModified ContentTime `xml:"LastModified"`
	ETag         string      `xml:"ETag"`
	Size         int64       `xml:"Size"`
	StorageClass string      `xml:"StorageClass"`
}

type CommonPrefix struct {
	Prefix string `xml:"Prefix"`
}

type ContentTime time.Time

func (c ContentTime) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	// This is the format expected by the aws xml code, not the default.
	var s = time.Time(c).UTC().Format("2006-01-02T15:04:05.000Z")
	return e.EncodeElement(s, start)
}

func newListBucketResult(bucket string, req s3fs.ListRequest, page *s3fs.ListResult) *ListBucketResult {
	out := &ListBucketResult{
		Xmlns:                 xmlns,
		Name:                  bucket,
		Prefix:                req.Prefix,
		Delimiter:             req.Delimiter,
		MaxKeys:               req.MaxKeys,
		KeyCount:              len(page.Objects) + len(page.CommonPrefixes),
		IsTruncated:           page.IsTruncated(),
		ContinuationToken:     req.ContinuationToken,
		NextContinuationToken: page.NextContinuationToken,
	}
	for _, obj := range page.Objects {
		out.Contents = append(out.Contents, &Content{
			Key:          obj.Key,
			LastModified: ContentTime(obj.LastModified),
			ETag:         obj.ETag,
			Size:         obj.Size,
			StorageClass: "STANDARD",
		})
	}
	for _, prefix := range page.CommonPrefixes {
		out.CommonPrefixes = append(out.CommonPrefixes, CommonPrefix{Prefix: prefix})
	}
	return out
}

func formatHeaderTime(t time.Time) string {
	// https://github.com/aws/aws-sdk-go/issues/1937 - FIXED
	// https://github.com/aws/aws-sdk-go-v2/issues/178 - Still open
	// .Format("Mon, 2 Jan 2006 15:04:05 MST")

	tc := t.In(time.UTC)
	return tc.Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
}
