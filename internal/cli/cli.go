// Package cli implements the oddnet command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/urbanpilot/oddnet/pkg/buildinfo"
	"github.com/urbanpilot/oddnet/pkg/cache"
	"github.com/urbanpilot/oddnet/pkg/pipeline"
	"github.com/urbanpilot/oddnet/pkg/provider"
	"github.com/urbanpilot/oddnet/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "oddnet"

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

	config     Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "oddnet",
		Short:        "Oddnet analyzes road networks for operational design domain compliance",
		Long:         `Oddnet classifies junctions in a road network snapshot, counts movement conflicts, and extracts the largest connected sub-network that satisfies a set of driving domain criteria.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: oddnet.toml, then XDG config dir)")

	// Register all subcommands
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.networkCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner assembles a pipeline runner from the loaded config.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	s, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(s, ch, cache.NewDefaultKeyer(), c.Logger)
	if c.config.Provider.BaseURL != "" {
		p, err := provider.NewHTTP(provider.HTTPConfig{BaseURL: c.config.Provider.BaseURL})
		if err != nil {
			return nil, err
		}
		runner.Provider = p
	}
	return runner, nil
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.config.Store.Backend == "mongo" {
		ms, err := store.NewMongo(ctx, store.MongoConfig{
			URI:      c.config.Store.URI,
			Database: c.config.Store.Database,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	return store.NewMemory(), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.config.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if c.config.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.config.Cache.Addr,
			Password: c.config.Cache.Password,
			DB:       c.config.Cache.DB,
			Prefix:   c.config.Cache.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir := c.config.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/oddnet/).
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
