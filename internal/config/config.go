package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/johannesboyne/s3fs"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName = "s3walk.yaml"
	EnvFileName    = ".env"
	EnvPrefix      = "S3WALK_"
)

const (
	BackendS3    = "s3"
	BackendMem   = "mem"
	BackendBolt  = "bolt"
	BackendAfero = "afero"
)

type Config struct {
	Backend     string `yaml:"backend"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	Region      string `yaml:"region,omitempty"`
	PathStyle   bool   `yaml:"path_style,omitempty"`
	AccessKey   string `yaml:"access_key,omitempty"`
	SecretKey   string `yaml:"secret_key,omitempty"`
	PageSize    int    `yaml:"page_size,omitempty"`
	MaxDepth    int    `yaml:"max_depth"`
	ListingMode string `yaml:"listing_mode,omitempty"`
	BoltFile    string `yaml:"bolt_file,omitempty"`
	AferoRoot   string `yaml:"afero_root,omitempty"`

	// AferoBucket serves AferoRoot itself as a single bucket of this name
	// instead of treating its "buckets" directory as the bucket list.
	AferoBucket string `yaml:"afero_bucket,omitempty"`
}

func Default() *Config {
	return &Config{
		Backend:     BackendS3,
		Region:      "us-east-1",
		PageSize:    s3fs.DefaultPageSize,
		MaxDepth:    -1,
		ListingMode: s3fs.ListPerLevel.String(),
	}
}

// Load reads ConfigFileName from dir over the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", configPath, err)
	}
	return cfg, nil
}

// Resolve builds the effective configuration: defaults, then the config
// file if there is one, then the environment. Variables in envFile are
// loaded into the process environment first but never replace variables
// that are already set. An empty configPath looks for ConfigFileName in
// the working directory.
func Resolve(configPath, envFile string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = ConfigFileName
	}

	cfg, err := LoadFile(configPath)
	if errors.Is(err, ErrConfigNotFound) && !explicit {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: %s: %w", envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from EnvPrefix variables, e.g. S3WALK_ENDPOINT
// or S3WALK_PAGE_SIZE.
func (c *Config) ApplyEnv(lookup func(key string) (string, bool)) error {
	for _, v := range []struct {
		name string
		str  *string
		num  *int
		flag *bool
	}{
		{name: "BACKEND", str: &c.Backend},
		{name: "ENDPOINT", str: &c.Endpoint},
		{name: "REGION", str: &c.Region},
		{name: "PATH_STYLE", flag: &c.PathStyle},
		{name: "ACCESS_KEY", str: &c.AccessKey},
		{name: "SECRET_KEY", str: &c.SecretKey},
		{name: "PAGE_SIZE", num: &c.PageSize},
		{name: "MAX_DEPTH", num: &c.MaxDepth},
		{name: "LISTING_MODE", str: &c.ListingMode},
		{name: "BOLT_FILE", str: &c.BoltFile},
		{name: "AFERO_ROOT", str: &c.AferoRoot},
		{name: "AFERO_BUCKET", str: &c.AferoBucket},
	} {
		raw, ok := lookup(EnvPrefix + v.name)
		if !ok {
			continue
		}

		switch {
		case v.str != nil:
			*v.str = raw
		case v.num != nil:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, v.name, err)
			}
			*v.num = n
		case v.flag != nil:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", EnvPrefix, v.name, err)
			}
			*v.flag = b
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendS3, BackendMem:
	case BackendBolt:
		if c.BoltFile == "" {
			return fmt.Errorf("config: backend %q requires bolt_file", c.Backend)
		}
	case BackendAfero:
		if c.AferoRoot == "" {
			return fmt.Errorf("config: backend %q requires afero_root", c.Backend)
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}

	if c.PageSize < 0 || c.PageSize > s3fs.DefaultPageSize {
		return fmt.Errorf("config: page_size %d out of range (0-%d)", c.PageSize, s3fs.DefaultPageSize)
	}
	if _, err := c.Mode(); err != nil {
		return err
	}
	return nil
}

// Mode parses ListingMode. "level" and "per-level" select
// s3fs.ListPerLevel; "flat" selects s3fs.ListFlat.
func (c *Config) Mode() (s3fs.ListingMode, error) {
	switch strings.ToLower(strings.TrimSpace(c.ListingMode)) {
	case "", "level", s3fs.ListPerLevel.String():
		return s3fs.ListPerLevel, nil
	case s3fs.ListFlat.String():
		return s3fs.ListFlat, nil
	default:
		return 0, fmt.Errorf("config: unknown listing_mode %q", c.ListingMode)
	}
}

// WalkOptions returns the walk options the configuration selects.
func (c *Config) WalkOptions() ([]s3fs.WalkOption, error) {
	mode, err := c.Mode()
	if err != nil {
		return nil, err
	}
	opts := []s3fs.WalkOption{
		s3fs.WithListingMode(mode),
		s3fs.WithMaxDepth(c.MaxDepth),
	}
	if c.PageSize > 0 {
		opts = append(opts, s3fs.WithListPageSize(c.PageSize))
	}
	return opts, nil
}

// Save writes the configuration as YAML, for "s3walk config init".
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o600)
}
