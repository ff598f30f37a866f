package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/backend/s3afero"
	"github.com/johannesboyne/s3fs/backend/s3bolt"
	"github.com/johannesboyne/s3fs/backend/s3client"
	"github.com/johannesboyne/s3fs/backend/s3mem"
	"github.com/johannesboyne/s3fs/internal/config"
)

// session is everything a command needs to talk to the configured store.
type session struct {
	cfg    *config.Config
	log    s3fs.Logger
	zap    *zap.Logger
	store  s3fs.ObjectStoreClient
	calls  *countingClient
	fsys   *s3fs.FileSystem
	closer func() error
}

func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	zl, err := newZapLogger(o.verbose)
	if err != nil {
		return nil, err
	}
	logger := s3fs.ZapLog(zl)

	timeSource, err := o.timeSource()
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(cmd.Context(), cfg, logger, timeSource)
	if err != nil {
		return nil, err
	}
	logger.Print(s3fs.LogInfo, "using", cfg.Backend, "backend")

	calls := &countingClient{ObjectStoreClient: store}
	fsys := s3fs.New(endpointName(cfg), calls,
		s3fs.WithLogger(logger),
		s3fs.WithPageSize(cfg.PageSize),
		s3fs.WithReadOnly(),
	)

	return &session{
		cfg:    cfg,
		log:    logger,
		zap:    zl,
		store:  store,
		calls:  calls,
		fsys:   fsys,
		closer: closer,
	}, nil
}

func (s *session) Close() error {
	_ = s.zap.Sync()
	if err := s.fsys.Close(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// path parses an absolute path for a command that reads the store.
func (s *session) path(raw string) (s3fs.Path, error) {
	p, err := parsePath(s.fsys, raw)
	if err != nil {
		return s3fs.Path{}, err
	}
	if !p.IsAbsolute() {
		return s3fs.Path{}, fmt.Errorf("path %q must start with /<container>", raw)
	}
	return p, nil
}

// parsePath accepts "/container/key", a relative "key", or an "s3://" URI.
func parsePath(fsys *s3fs.FileSystem, raw string) (s3fs.Path, error) {
	if strings.HasPrefix(raw, s3fs.Scheme+"://") {
		u, err := url.Parse(raw)
		if err != nil {
			return s3fs.Path{}, s3fs.ResourceError(s3fs.ErrInvalidPath, raw)
		}
		return fsys.PathFromURI(u)
	}
	return fsys.Path(raw)
}

func (s *session) walkOptions() ([]s3fs.WalkOption, error) {
	return s.cfg.WalkOptions()
}

func newZapLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return zc.Build()
}

// endpointName is the authority used in the filesystem's URIs.
func endpointName(cfg *config.Config) string {
	if cfg.Backend != config.BackendS3 {
		return cfg.Backend
	}
	if cfg.Endpoint == "" {
		return "s3.amazonaws.com"
	}
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return cfg.Endpoint
}

// writableStore is implemented by the local backends.
type writableStore interface {
	s3fs.ObjectStoreClient
	PutObject(container, key string, input io.Reader, size int64) error
}

type bucketCreator interface {
	CreateBucket(name string) error
}

func openStore(ctx context.Context, cfg *config.Config, logger s3fs.Logger, timeSource s3fs.TimeSource) (store s3fs.ObjectStoreClient, closer func() error, err error) {
	switch cfg.Backend {
	case config.BackendS3:
		client, err := s3client.NewFromConfig(ctx, s3client.Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			PathStyle: cfg.PathStyle,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		}, s3client.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	case config.BackendMem:
		var opts []s3mem.Option
		if timeSource != nil {
			opts = append(opts, s3mem.WithTimeSource(timeSource))
		}
		return s3mem.New(opts...), nil, nil

	case config.BackendBolt:
		var opts []s3bolt.Option
		if timeSource != nil {
			opts = append(opts, s3bolt.WithTimeSource(timeSource))
		}
		db, err := s3bolt.NewFile(cfg.BoltFile, opts...)
		if err != nil {
			return nil, nil, err
		}
		logger.Print(s3fs.LogInfo, "using bolt file", cfg.BoltFile)
		return db, db.Close, nil

	case config.BackendAfero:
		fs, err := s3afero.FsPath(cfg.AferoRoot, s3afero.FsPathCreateAll)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AferoBucket != "" {
			backend, err := s3afero.SingleBucket(cfg.AferoBucket, fs)
			if err != nil {
				return nil, nil, err
			}
			return backend, nil, nil
		}
		backend, err := s3afero.MultiBucket(fs)
		if err != nil {
			return nil, nil, err
		}
		return backend, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// countingClient counts the calls made through it, for --stats.
type countingClient struct {
	s3fs.ObjectStoreClient
	lists    atomic.Int64
	metadata atomic.Int64
}

func (c *countingClient) ListEntries(ctx context.Context, container string, req s3fs.ListRequest) (*s3fs.ListResult, error) {
	c.lists.Add(1)
	return c.ObjectStoreClient.ListEntries(ctx, container, req)
}

func (c *countingClient) ObjectMetadata(ctx context.Context, container, key string) (*s3fs.ObjectInfo, error) {
	c.metadata.Add(1)
	return c.ObjectStoreClient.ObjectMetadata(ctx, container, key)
}

func (c *countingClient) String() string {
	return fmt.Sprintf("%d list calls, %d metadata calls", c.lists.Load(), c.metadata.Load())
}
