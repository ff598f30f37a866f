package s3fs

type Option func(fs *FileSystem)

func WithTimeSource(timeSource TimeSource) Option {
	return func(fs *FileSystem) { fs.timeSource = timeSource }
}

// WithLogger allows you to supply a logger to s3fs. Messages from the
// filesystem and every walker it creates go through it.
//
// See DiscardLog for the default.
func WithLogger(logger Logger) Option {
	return func(fs *FileSystem) { fs.log = logger }
}

// WithReadOnly marks the filesystem read-only. Nothing is ever written
// through a FileSystem; the flag only changes the modes reported by Stat
// and ReadDir.
func WithReadOnly() Option {
	return func(fs *FileSystem) { fs.readOnly = true }
}

// WithPageSize sets the MaxKeys of every listing request the filesystem
// makes. Values outside (0, DefaultPageSize] are clamped.
func WithPageSize(size int) Option {
	return func(fs *FileSystem) { fs.pageSize = clampPageSize(size) }
}

// WithStatCache keeps the results of the last 'size' successful Stat calls.
// Entries do not expire: writes to the store are only seen after
// FileSystem.Forget, so Stat may report stale results otherwise.
//
// Set to '0' to disable, which is the default.
func WithStatCache(size int) Option {
	return func(fs *FileSystem) { fs.statCacheSize = size }
}
