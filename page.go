package s3fs

// ListCollector builds one page of a listing from objects fed to it in
// ascending key order. It applies the prefix and delimiter grouping,
// MaxKeys and continuation token of a ListRequest, so a backend that keeps
// an ordered key index only has to iterate it:
//
//	c := s3fs.NewListCollector(req)
//	for it := index.Seek(c.Start()); it.Valid(); it.Next() {
//		if !c.Add(it.Object()) {
//			break
//		}
//	}
//	return c.Result(), nil
//
// The continuation token is the last key or common prefix of the page.
type ListCollector struct {
	req     ListRequest
	prefix  Prefix
	maxKeys int

	result     ListResult
	count      int
	last       string
	lastCommon string
}

func NewListCollector(req ListRequest) *ListCollector {
	return &ListCollector{
		req:     req,
		prefix:  PrefixFromRequest(req),
		maxKeys: clampPageSize(req.MaxKeys),
	}
}

// Start returns the smallest key iteration needs to begin at.
func (c *ListCollector) Start() string {
	if c.req.ContinuationToken > c.req.Prefix {
		return c.req.ContinuationToken
	}
	return c.req.Prefix
}

// Add offers the next object in key order. It returns false once the page
// is complete or the object lies past the prefix; no more objects need to
// be offered after that.
func (c *ListCollector) Add(obj ObjectInfo) bool {
	var match PrefixMatch
	if !c.prefix.Match(obj.Key, &match) {
		// Keys sharing a prefix are contiguous, so once one falls outside
		// it after the start, all later keys do too.
		return obj.Key < c.req.Prefix
	}

	token := c.req.ContinuationToken
	if token != "" && obj.Key <= token {
		return true
	}

	if match.CommonPrefix {
		if match.MatchedPart == token || match.MatchedPart == c.lastCommon {
			return true
		}
		if c.full() {
			return false
		}
		c.result.CommonPrefixes = append(c.result.CommonPrefixes, match.MatchedPart)
		c.lastCommon = match.MatchedPart
		c.last = match.MatchedPart

	} else {
		if c.full() {
			return false
		}
		c.result.Objects = append(c.result.Objects, obj)
		c.last = obj.Key
	}

	c.count++
	return true
}

// full marks the page truncated if it cannot take another entry.
func (c *ListCollector) full() bool {
	if c.count < c.maxKeys {
		return false
	}
	c.result.NextContinuationToken = c.last
	return true
}

func (c *ListCollector) Result() *ListResult {
	result := c.result
	return &result
}

// AddSorted offers every object of a slice sorted by key and returns the
// page, for backends that do not keep an ordered index.
func (c *ListCollector) AddSorted(objects []ObjectInfo) *ListResult {
	start := c.Start()
	for _, obj := range objects {
		if obj.Key < start {
			continue
		}
		if !c.Add(obj) {
			break
		}
	}
	return c.Result()
}
