package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chaosgame/pkg/buildinfo"
	"github.com/matzehuels/chaosgame/pkg/cache"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "chaosgame"

	// redisURLEnv selects the redis frame cache when set.
	redisURLEnv = "CHAOSGAME_REDIS_URL"

	// defaultRedisScope namespaces frame keys in a shared redis. Bump it when
	// the rasteriser's output changes for the same options.
	defaultRedisScope = "v1"
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
}

// New creates a new CLI instance with a default logger.
// The same logger receives the rasteriser's diagnostics.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	bridgeRenderLogs(logger)
	return &CLI{Logger: logger}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Chaosgame animates the chaos game on regular polygons",
		Long: `Chaosgame plays the chaos game on a regular polygon with the optimal
contraction ratio and renders one frame per iteration, optionally encoding the
frames into a GIF or MP4.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.rateCommand())
	root.AddCommand(c.polygonsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags selects the frame cache backend.
type cacheFlags struct {
	noCache    bool
	redisURL   string
	redisScope string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the frame cache")
	cmd.Flags().StringVar(&f.redisURL, "redis", os.Getenv(redisURLEnv), "redis URL for a shared frame cache (default: file cache; env "+redisURLEnv+")")
	cmd.Flags().StringVar(&f.redisScope, "redis-scope", defaultRedisScope, "frame key namespace in a shared redis")
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, flags cacheFlags) (*pipeline.Runner, error) {
	fc, err := c.newCache(ctx, flags)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(fc, frameKeyer(fc, flags.redisScope), c.Logger), nil
}

// frameKeyer scopes frame keys when the cache is shared through redis, so
// installations with different scopes never read each other's frames.
func frameKeyer(fc cache.Cache, scope string) cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if _, shared := fc.(*cache.RedisCache); !shared || scope == "" {
		return keyer
	}
	return cache.NewScopedKeyer(keyer, scope+":")
}

// newCache opens the configured backend. An unreachable redis falls back to
// the file cache with a warning rather than failing the command.
func (c *CLI) newCache(ctx context.Context, flags cacheFlags) (cache.Cache, error) {
	if flags.noCache {
		return cache.NewNullCache(), nil
	}
	if flags.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, flags.redisURL)
		if err == nil {
			c.Logger.Debug("using redis frame cache")
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "error", err)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/chaosgame/frames).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "frames"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "frames"), nil
}

// displayPath shortens paths under the working directory.
func displayPath(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(wd, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
