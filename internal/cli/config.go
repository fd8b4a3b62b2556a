package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/helloworldx64/craftpacker/pkg/cache"
	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/download"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/integrations/modrinth"
	"github.com/helloworldx64/craftpacker/pkg/ratelimit"
)

// Cache backends selectable in the config file.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

var cacheBackends = []string{CacheMemory, CacheFile, CacheRedis, CacheNone}

const defaultCacheTTL = 24 * time.Hour

// Config is the contents of config.toml. Zero fields fall back to
// [DefaultConfig].
//
//	loader = "fabric"
//	game_version = "1.20.1"
//	destination = "~/CraftPacker_Downloads"
//	calls_per_minute = 280
//	workers = 4
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
type Config struct {
	Loader         string      `toml:"loader"`
	GameVersion    string      `toml:"game_version"`
	Destination    string      `toml:"destination"`
	CallsPerMinute int         `toml:"calls_per_minute"`
	Workers        int         `toml:"workers"`
	APIBaseURL     string      `toml:"api_base_url"`
	UserAgent      string      `toml:"user_agent"`
	Retries        int         `toml:"retries"` // total tries per catalog request
	Cache          CacheConfig `toml:"cache"`

	path string
}

// CacheConfig is the [cache] table.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	TTL       string `toml:"ttl"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`

	ttl time.Duration
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Loader:         string(deps.DefaultLoader),
		GameVersion:    deps.DefaultGameVersion,
		CallsPerMinute: ratelimit.DefaultCallsPerMinute,
		Workers:        download.DefaultWorkers,
		APIBaseURL:     modrinth.DefaultBaseURL,
		Retries:        cache.DefaultBackoff.Attempts,
		Cache: CacheConfig{
			Backend:   CacheMemory,
			TTL:       defaultCacheTTL.String(),
			RedisAddr: "localhost:6379",
			ttl:       defaultCacheTTL,
		},
	}
}

// LoadConfig reads path over the defaults. An empty path means the XDG
// location, which may be missing; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "config file not found: %s", path)
			}
			return cfg, nil
		}
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg.path = path
	return cfg, nil
}

// Validate checks the settings and fills in defaults for zero values.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Loader == "" {
		c.Loader = def.Loader
	}
	l, err := deps.ParseLoader(c.Loader)
	if err != nil {
		return err
	}
	c.Loader = string(l)
	if c.GameVersion == "" {
		c.GameVersion = def.GameVersion
	}
	c.Destination = expandHome(c.Destination)
	if c.CallsPerMinute <= 0 {
		c.CallsPerMinute = def.CallsPerMinute
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = def.APIBaseURL
	}
	if err := perrors.ValidateURL(c.APIBaseURL); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "api_base_url")
	}
	if c.Retries <= 0 {
		c.Retries = def.Retries
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if !slices.Contains(cacheBackends, c.Cache.Backend) {
		return perrors.New(perrors.ErrCodeInvalidConfig, "unknown cache backend %q (want memory, file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = def.Cache.TTL
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "invalid cache ttl %q", c.Cache.TTL)
	}
	c.Cache.ttl = ttl
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return perrors.New(perrors.ErrCodeInvalidConfig, "redis cache needs redis_addr")
	}
	return nil
}

// expandHome resolves a leading "~/" against the home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Path returns the file the config was read from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// =============================================================================
// Global Flags
// =============================================================================

// globalFlags are the persistent flags that override the config file.
type globalFlags struct {
	config      string
	loader      string
	gameVersion string
	destination string
	workers     int
	noCache     bool
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "config file (default $XDG_CONFIG_HOME/craftpacker/config.toml)")
	pf.StringVarP(&f.loader, "loader", "l", "", "mod loader: fabric (default), forge, neoforge, quilt")
	pf.StringVarP(&f.gameVersion, "game-version", "g", "", "Minecraft version (default 1.20.1)")
	pf.StringVarP(&f.destination, "dest", "d", "", "download folder (default ~/CraftPacker_Downloads)")
	pf.IntVarP(&f.workers, "workers", "w", 0, "concurrent downloads and dependency walks")
	pf.BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
}

// apply copies flags the user set onto cfg.
func (f *globalFlags) apply(cmd *cobra.Command, cfg *Config) {
	changed := cmd.Flags().Changed
	if changed("loader") {
		cfg.Loader = f.loader
	}
	if changed("game-version") {
		cfg.GameVersion = f.gameVersion
	}
	if changed("dest") {
		cfg.Destination = f.destination
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if f.noCache {
		cfg.Cache.Backend = CacheNone
	}
}
