package s3fs

import (
	"context"
	"slices"
	"strings"
)

// levelListing is the complete content of one synthetic directory: every
// page of a delimited listing, merged.
type levelListing struct {
	// dirs are full key prefixes, each ending with the separator.
	dirs  []string
	files []ObjectInfo

	// marker is set if a zero-length "directory" object exists at exactly
	// the listed prefix. It is never reported as a file.
	marker bool
}

func (l *levelListing) isEmpty() bool {
	return len(l.dirs) == 0 && len(l.files) == 0 && !l.marker
}

func (l *levelListing) add(prefix string, page *ListResult) {
	l.dirs = append(l.dirs, page.CommonPrefixes...)
	for _, obj := range page.Objects {
		if obj.Key == prefix {
			l.marker = true
			continue
		}
		l.files = append(l.files, obj)
	}
}

func (l *levelListing) sort() {
	slices.Sort(l.dirs)
	l.dirs = slices.Compact(l.dirs)
	slices.SortFunc(l.files, func(a, b ObjectInfo) int { return strings.Compare(a.Key, b.Key) })
}

// pager issues paginated ListEntries calls for a single prefix.
type pager struct {
	client    ObjectStoreClient
	container string
	pageSize  int
	log       Logger
}

// each calls fn for every page of the listing of prefix. The context is
// checked before every call, so a cancelled walk stops between pages.
func (pg *pager) each(ctx context.Context, prefix, delimiter string, fn func(page *ListResult)) error {
	var token string
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pg.log.Print(LogInfo, "list", pg.container, prefix, token)
		page, err := pg.client.ListEntries(ctx, pg.container, ListRequest{
			Prefix:            prefix,
			Delimiter:         delimiter,
			ContinuationToken: token,
			MaxKeys:           pg.pageSize,
		})
		if err != nil {
			return BackendError("list "+pg.container+"/"+prefix, err)
		}
		fn(page)

		if !page.IsTruncated() || page.NextContinuationToken == token {
			return nil
		}
		token = page.NextContinuationToken
	}
}

// level lists exactly one directory level under prefix.
func (pg *pager) level(ctx context.Context, prefix string) (*levelListing, error) {
	listing := &levelListing{}
	if err := pg.each(ctx, prefix, separator, func(page *ListResult) {
		listing.add(prefix, page)
	}); err != nil {
		return nil, err
	}
	listing.sort()
	return listing, nil
}

// tree lists every key under prefix in one undelimited stream and splits
// it into per-directory listings, keyed by directory prefix. The listing
// of prefix itself is always present.
func (pg *pager) tree(ctx context.Context, prefix string) (map[string]*levelListing, error) {
	levels := map[string]*levelListing{prefix: {}}

	dir := func(p string) *levelListing {
		if l, ok := levels[p]; ok {
			return l
		}
		l := &levelListing{}
		levels[p] = l
		return l
	}

	err := pg.each(ctx, prefix, "", func(page *ListResult) {
		for _, obj := range page.Objects {
			parent := prefix
			rest := strings.TrimPrefix(obj.Key, prefix)
			for {
				name, tail, found := strings.Cut(rest, separator)
				if !found {
					if name == "" {
						dir(parent).marker = true
					} else {
						dir(parent).files = append(dir(parent).files, obj)
					}
					break
				}
				child := parent + name + separator
				if _, ok := levels[child]; !ok {
					dir(parent).dirs = append(dir(parent).dirs, child)
					dir(child)
				}
				parent, rest = child, tail
			}
		}
	})
	if err != nil {
		return nil, err
	}

	for _, l := range levels {
		l.sort()
	}
	return levels, nil
}
