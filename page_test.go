package s3fs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func objects(keys ...string) []ObjectInfo {
	out := make([]ObjectInfo, len(keys))
	for i, key := range keys {
		out[i] = ObjectInfo{Key: key}
	}
	return out
}

func TestListCollector(t *testing.T) {
	all := objects("a", "b/1", "b/2", "c/", "c/x", "d", "e/f/g")

	for _, tc := range []struct {
		req      ListRequest
		prefixes []string
		keys     []string
		next     string
	}{
		{
			req:      ListRequest{Delimiter: "/"},
			prefixes: []string{"b/", "c/", "e/"},
			keys:     []string{"a", "d"},
		},
		{
			req:  ListRequest{},
			keys: []string{"a", "b/1", "b/2", "c/", "c/x", "d", "e/f/g"},
		},
		{
			req:  ListRequest{Prefix: "c/", Delimiter: "/"},
			keys: []string{"c/", "c/x"},
		},
		{
			req:      ListRequest{Delimiter: "/", MaxKeys: 2},
			prefixes: []string{"b/"},
			keys:     []string{"a"},
			next:     "b/",
		},
		{
			req:      ListRequest{Delimiter: "/", MaxKeys: 2, ContinuationToken: "b/"},
			prefixes: []string{"c/"},
			keys:     []string{"d"},
			next:     "d",
		},
		{
			req:      ListRequest{Delimiter: "/", MaxKeys: 2, ContinuationToken: "d"},
			prefixes: []string{"e/"},
		},
		{
			req:      ListRequest{Delimiter: "/", MaxKeys: 3},
			prefixes: []string{"b/", "c/"},
			keys:     []string{"a"},
			next:     "c/",
		},
		{
			req: ListRequest{Prefix: "z"},
		},
	} {
		t.Run("", func(t *testing.T) {
			result := NewListCollector(tc.req).AddSorted(all)
			assert.Equal(t, tc.prefixes, result.CommonPrefixes)

			var keys []string
			for _, obj := range result.Objects {
				keys = append(keys, obj.Key)
			}
			assert.Equal(t, tc.keys, keys)
			assert.Equal(t, tc.next, result.NextContinuationToken)
			assert.Equal(t, tc.next != "", result.IsTruncated())
		})
	}
}

func TestListCollectorStart(t *testing.T) {
	assert.Equal(t, "p/", NewListCollector(ListRequest{Prefix: "p/"}).Start())
	assert.Equal(t, "p/x", NewListCollector(ListRequest{Prefix: "p/", ContinuationToken: "p/x"}).Start())
	assert.Equal(t, "", NewListCollector(ListRequest{}).Start())
}
