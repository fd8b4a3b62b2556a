// Package cli implements the craftpacker command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/helloworldx64/craftpacker/pkg/buildinfo"
	"github.com/helloworldx64/craftpacker/pkg/cache"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/integrations/modrinth"
	"github.com/helloworldx64/craftpacker/pkg/pipeline"
	"github.com/helloworldx64/craftpacker/pkg/progress"
	"github.com/helloworldx64/craftpacker/pkg/ratelimit"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "craftpacker"

	// configEnv overrides the config file location.
	configEnv = "CRAFTPACKER_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	flags globalFlags
}

// New creates a new CLI instance with a default logger and default config.
// The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "CraftPacker finds, resolves and downloads Minecraft mods from Modrinth",
		Long: `CraftPacker takes a list of mod names, finds each one on Modrinth for a
loader and game version, resolves the required dependencies and downloads
every file into one folder.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.flags.register(root)

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.downloadCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and lays the global flags over it.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	path := c.flags.config
	if path == "" {
		path = os.Getenv(configEnv)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	c.flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.installHooks()
	c.Logger.Debug("config loaded", "path", cfg.path, "loader", cfg.Loader, "game_version", cfg.GameVersion, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned function
// releases the response cache.
func (c *CLI) newRunner(ctx context.Context, sink progress.Sink) (*pipeline.Runner, func(), error) {
	cfg := c.Config
	rc, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	client := modrinth.NewClient(modrinth.Options{
		BaseURL:   cfg.APIBaseURL,
		UserAgent: cfg.UserAgent,
		Cache:     rc,
		TTL:       cfg.Cache.ttl,
		Limiter:   ratelimit.New(cfg.CallsPerMinute),
		Backoff:   cache.Backoff{Attempts: cfg.Retries, Delay: cache.DefaultBackoff.Delay},
		Logger:    c.Logger,
	})
	runner := pipeline.NewRunner(client, pipeline.Config{
		Sink:            progress.Multi(sink, c.eventLog()),
		Logger:          c.Logger,
		ResolveWorkers:  cfg.Workers,
		DownloadWorkers: cfg.Workers,
		UserAgent:       cfg.UserAgent,
	})
	closeCache := func() {
		if err := rc.Close(); err != nil {
			c.Logger.Debug("close cache", "err", err)
		}
	}
	return runner, closeCache, nil
}

// newCache opens the configured response cache backend.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile:
		dir, err := c.cacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "connect to redis at %s", cfg.RedisAddr)
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// options returns the flow options from the effective config.
func (c *CLI) options() pipeline.Options {
	return pipeline.Options{
		Loader:      c.Config.Loader,
		GameVersion: c.Config.GameVersion,
		Destination: c.Config.Destination,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or the XDG
// standard (~/.cache/craftpacker/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/craftpacker/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the config file location using XDG standard
// (~/.config/craftpacker/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
