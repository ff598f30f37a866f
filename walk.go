package s3fs

import (
	"context"
	"fmt"
)

// VisitResult tells the Walker how to proceed after a Visitor callback.
type VisitResult int

const (
	Continue VisitResult = iota

	// SkipSubtree, returned from EnterDirectory, skips the directory's
	// entries and its LeaveDirectory call. Elsewhere it means Continue.
	SkipSubtree

	// SkipSiblings skips the remaining entries of the directory currently
	// being read. The directory still receives LeaveDirectory.
	SkipSiblings

	Terminate
)

func (r VisitResult) String() string {
	switch r {
	case Continue:
		return "Continue"
	case SkipSubtree:
		return "SkipSubtree"
	case SkipSiblings:
		return "SkipSiblings"
	case Terminate:
		return "Terminate"
	default:
		return fmt.Sprintf("VisitResult(%d)", int(r))
	}
}

// Visitor receives the entries of a walk in pre-order: a directory is
// entered, its subdirectories are walked in ascending key order, its files
// are visited in ascending key order, then it is left.
type Visitor interface {
	EnterDirectory(dir Path, info *FileInfo) VisitResult
	VisitFile(file Path, info *FileInfo) VisitResult

	// VisitFileFailed is called when an entry could not be read: the walk
	// root does not exist, or listing a directory failed. The walk carries
	// on with the entry's siblings unless told otherwise.
	VisitFileFailed(file Path, err error) VisitResult

	LeaveDirectory(dir Path, err error) VisitResult
}

// VisitorFuncs adapts plain functions to a Visitor. Nil functions return
// Continue.
type VisitorFuncs struct {
	EnterDirectoryFunc  func(dir Path, info *FileInfo) VisitResult
	VisitFileFunc       func(file Path, info *FileInfo) VisitResult
	VisitFileFailedFunc func(file Path, err error) VisitResult
	LeaveDirectoryFunc  func(dir Path, err error) VisitResult
}

var _ Visitor = VisitorFuncs{}

func (v VisitorFuncs) EnterDirectory(dir Path, info *FileInfo) VisitResult {
	if v.EnterDirectoryFunc == nil {
		return Continue
	}
	return v.EnterDirectoryFunc(dir, info)
}

func (v VisitorFuncs) VisitFile(file Path, info *FileInfo) VisitResult {
	if v.VisitFileFunc == nil {
		return Continue
	}
	return v.VisitFileFunc(file, info)
}

func (v VisitorFuncs) VisitFileFailed(file Path, err error) VisitResult {
	if v.VisitFileFailedFunc == nil {
		return Continue
	}
	return v.VisitFileFailedFunc(file, err)
}

func (v VisitorFuncs) LeaveDirectory(dir Path, err error) VisitResult {
	if v.LeaveDirectoryFunc == nil {
		return Continue
	}
	return v.LeaveDirectoryFunc(dir, err)
}

type ListingMode int

const (
	// ListPerLevel issues one delimited listing (plus continuation pages)
	// for every directory the walk descends into.
	ListPerLevel ListingMode = iota

	// ListFlat issues a single undelimited listing of the whole subtree and
	// rebuilds the hierarchy from the keys. It needs far fewer calls for
	// deep trees of small directories, but always reads the entire subtree,
	// even below the depth limit.
	ListFlat
)

func (m ListingMode) String() string {
	switch m {
	case ListPerLevel:
		return "per-level"
	case ListFlat:
		return "flat"
	default:
		return fmt.Sprintf("ListingMode(%d)", int(m))
	}
}

type WalkOption func(w *Walker)

// WithMaxDepth limits how deep the walk goes. The root is at depth 0;
// directories at the limit are entered and left but not listed. A negative
// depth, the default, means no limit.
func WithMaxDepth(depth int) WalkOption {
	return func(w *Walker) { w.maxDepth = depth }
}

// WithListPageSize sets MaxKeys for every listing call. Values outside
// (0, DefaultPageSize] are clamped.
func WithListPageSize(size int) WalkOption {
	return func(w *Walker) { w.pageSize = clampPageSize(size) }
}

func WithListingMode(mode ListingMode) WalkOption {
	return func(w *Walker) { w.mode = mode }
}

func WithWalkLogger(logger Logger) WalkOption {
	return func(w *Walker) { w.log = logger }
}

func withFileSystem(fs *FileSystem) WalkOption {
	return func(w *Walker) {
		w.pageSize = fs.pageSize
		w.log = fs.log
		w.readOnly = fs.readOnly
		w.timeSource = fs.timeSource
	}
}

// Walker traverses the synthetic directory tree below a path using the
// listing calls of an ObjectStoreClient.
//
// A Walker holds no state between walks and may be used concurrently.
type Walker struct {
	client     ObjectStoreClient
	maxDepth   int
	pageSize   int
	mode       ListingMode
	log        Logger
	readOnly   bool
	timeSource TimeSource
}

func NewWalker(client ObjectStoreClient, opts ...WalkOption) *Walker {
	w := &Walker{
		client:     client,
		maxDepth:   -1,
		pageSize:   DefaultPageSize,
		log:        DiscardLog(),
		timeSource: DefaultTimeSource(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk visits root and everything below it.
//
// If root names a directory (any key exists below root.Prefix()), the
// directory is walked. Otherwise, if an object is stored at exactly root's
// key, it is visited as a single file; if not, the visitor receives
// VisitFileFailed with an ErrNotFound error. Failures to list a
// subdirectory are reported for that subdirectory alone.
//
// Walk returns nil when the walk completes or the visitor terminates it.
// It returns ErrIllegalState for a relative root and the context's error
// if ctx is done before the walk completes.
func (w *Walker) Walk(ctx context.Context, root Path, v Visitor) error {
	if !root.IsAbsolute() {
		return ResourceError(ErrIllegalState, root.String())
	}

	wk := &walk{
		Walker:  w,
		ctx:     ctx,
		visitor: v,
		pager: &pager{
			client:    w.client,
			container: root.Container(),
			pageSize:  w.pageSize,
			log:       w.log,
		},
	}

	start := w.timeSource.Now()
	err := wk.root(root)
	w.log.Print(LogInfo, "walk", root.String(), w.mode, "done in", w.timeSource.Since(start))
	return err
}

// walk holds the state of a single Walker.Walk call.
type walk struct {
	*Walker
	ctx     context.Context
	visitor Visitor
	pager   *pager

	// levels holds the whole subtree in ListFlat mode.
	levels map[string]*levelListing
}

func (wk *walk) withinDepth(depth int) bool {
	return wk.maxDepth < 0 || depth < wk.maxDepth
}

// list returns the content of the directory at prefix.
func (wk *walk) list(prefix string) (*levelListing, error) {
	if wk.mode != ListFlat {
		return wk.pager.level(wk.ctx, prefix)
	}
	if wk.levels == nil {
		levels, err := wk.pager.tree(wk.ctx, prefix)
		if err != nil {
			return nil, err
		}
		wk.levels = levels
	}
	if l, ok := wk.levels[prefix]; ok {
		return l, nil
	}
	return &levelListing{}, nil
}

func (wk *walk) root(root Path) error {
	listing, err := wk.list(root.Prefix())
	if err != nil {
		if cerr := wk.ctx.Err(); cerr != nil {
			return cerr
		}
		wk.visitor.VisitFileFailed(root, err)
		return nil
	}

	if listing.isEmpty() && !root.IsRoot() {
		return wk.single(root)
	}

	if !wk.withinDepth(0) {
		listing = nil
	}
	_, err = wk.directory(root, 0, listing)
	return err
}

// single handles a root that is not a directory.
func (wk *walk) single(root Path) error {
	obj, err := wk.client.ObjectMetadata(wk.ctx, root.Container(), root.Key())
	switch {
	case err == nil:
		wk.visitor.VisitFile(root, newFileInfo(root, obj, wk.readOnly))
	case IsNotFound(err):
		wk.visitor.VisitFileFailed(root, KeyNotFound(root.String()))
	default:
		if cerr := wk.ctx.Err(); cerr != nil {
			return cerr
		}
		wk.visitor.VisitFileFailed(root, BackendError("metadata "+root.String(), err))
	}
	return nil
}

// subdirectory lists dir, if the depth allows it, then walks it. A listing
// failure is reported for dir and does not stop the walk.
func (wk *walk) subdirectory(dir Path, depth int) (VisitResult, error) {
	var listing *levelListing
	if wk.withinDepth(depth) {
		var err error
		listing, err = wk.list(dir.Prefix())
		if err != nil {
			if cerr := wk.ctx.Err(); cerr != nil {
				return Terminate, cerr
			}
			wk.log.Print(LogWarn, "walk", dir.String(), err)
			return wk.visitor.VisitFileFailed(dir, err), nil
		}
	}
	return wk.directory(dir, depth, listing)
}

// directory walks dir, whose content is listing. A nil listing means dir is
// at the depth limit.
func (wk *walk) directory(dir Path, depth int, listing *levelListing) (VisitResult, error) {
	switch wk.visitor.EnterDirectory(dir, newDirInfo(dir, wk.readOnly)) {
	case Terminate:
		return Terminate, nil
	case SkipSubtree:
		return Continue, nil
	case SkipSiblings:
		return SkipSiblings, nil
	}

	if listing != nil {
		res, err := wk.entries(dir, depth, listing)
		if err != nil || res == Terminate {
			return Terminate, err
		}
	}

	if wk.visitor.LeaveDirectory(dir, nil) == Terminate {
		return Terminate, nil
	}
	return Continue, nil
}

// entries visits the content of dir: subdirectories first, then files.
// It returns SkipSiblings if the visitor asked to stop reading dir.
func (wk *walk) entries(dir Path, depth int, listing *levelListing) (VisitResult, error) {
	for _, prefix := range listing.dirs {
		res, err := wk.subdirectory(dir.withKey(prefix), depth+1)
		if err != nil || res == Terminate {
			return Terminate, err
		}
		if res == SkipSiblings {
			return SkipSiblings, nil
		}
	}

	for i := range listing.files {
		obj := &listing.files[i]
		file := dir.withKey(obj.Key)
		switch wk.visitor.VisitFile(file, newFileInfo(file, obj, wk.readOnly)) {
		case Terminate:
			return Terminate, nil
		case SkipSiblings:
			return SkipSiblings, nil
		}
	}
	return Continue, nil
}
