package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/johannesboyne/s3fs"
	"github.com/johannesboyne/s3fs/internal/config"
)

const rootLong = `s3walk browses an object store as a directory tree.

Keys are split on "/" into path segments; a directory exists wherever some
key continues below it. Paths are written "/container/key", or as
"s3://endpoint/container/key" URIs.

Configuration is read from s3walk.yaml (or --config), then from the
environment (S3WALK_*, with a .env file loaded first), then from flags.

Backends:
  s3     any S3-compatible endpoint, through the AWS SDK
  mem    an empty in-memory store, useful with "serve"
  bolt   a bbolt database file
  afero  a local directory; "buckets/<name>" holds each bucket, or the
         directory itself is one bucket when --afero-bucket is set`

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:          "s3walk",
		Short:        "Walk object store keys as a directory tree",
		Long:         rootLong,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	flags.StringVar(&opts.configFile, "config", "", "Config file (default ./"+config.ConfigFileName+" if present)")
	flags.StringVar(&opts.envFile, "env-file", config.EnvFileName, "Environment file loaded before S3WALK_* variables are read")
	flags.StringVar(&opts.fixedTime, "time", "", "RFC3339 format. If passed, local backends stamp new objects with this time")
	flags.StringP("backend", "b", "", "Backend to read from (s3, mem, bolt, afero)")
	flags.String("endpoint", "", "S3 endpoint URL; empty means AWS")
	flags.String("region", "", "S3 region")
	flags.Bool("path-style", false, "Use path-style S3 addressing")
	flags.Int("page-size", 0, "Keys per listing call; 0 means the default of 1000")
	flags.Int("max-depth", 0, "Deepest level to list; negative means no limit")
	flags.String("mode", "", "Listing strategy (per-level, flat)")
	flags.String("bolt-file", "", "bbolt database file for the bolt backend")
	flags.String("afero-root", "", "Directory for the afero backend")
	flags.String("afero-bucket", "", "Serve --afero-root as a single bucket of this name")

	cmd.AddCommand(
		newWalkCmd(opts),
		newTreeCmd(opts),
		newLsCmd(opts),
		newStatCmd(opts),
		newURICmd(opts),
		newPutCmd(opts),
		newMbCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

type globalOptions struct {
	verbose    bool
	configFile string
	envFile    string
	fixedTime  string
}

// loadConfig resolves the configuration for cmd. Flags the user set win over
// the file and the environment.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(o.configFile, o.envFile)
	if err != nil {
		return nil, err
	}

	var flagErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if flagErr != nil {
			return
		}
		flagErr = applyFlag(cfg, cmd.Flags(), f.Name)
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlag(cfg *config.Config, flags *pflag.FlagSet, name string) (err error) {
	switch name {
	case "backend":
		cfg.Backend, err = flags.GetString(name)
	case "endpoint":
		cfg.Endpoint, err = flags.GetString(name)
	case "region":
		cfg.Region, err = flags.GetString(name)
	case "path-style":
		cfg.PathStyle, err = flags.GetBool(name)
	case "page-size":
		cfg.PageSize, err = flags.GetInt(name)
	case "max-depth":
		cfg.MaxDepth, err = flags.GetInt(name)
	case "mode":
		cfg.ListingMode, err = flags.GetString(name)
	case "bolt-file":
		cfg.BoltFile, err = flags.GetString(name)
	case "afero-root":
		cfg.AferoRoot, err = flags.GetString(name)
	case "afero-bucket":
		cfg.AferoBucket, err = flags.GetString(name)
	}
	return err
}

// timeSource returns nil unless --time was given.
func (o *globalOptions) timeSource() (s3fs.TimeSource, error) {
	if o.fixedTime == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339Nano, o.fixedTime)
	if err != nil {
		return nil, fmt.Errorf("--time: %w", err)
	}
	return s3fs.FixedTimeSource(at), nil
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Warning: "+format+"\n", args...)
}
