package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/buildinfo"
	"github.com/matzehuels/stacktile/pkg/cache"
	"github.com/matzehuels/stacktile/pkg/config"
	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/store"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stacktile"

	// defaultAddr is where the introspection server listens by default.
	defaultAddr = "127.0.0.1:7878"

	// diagramTTL is how long rendered diagrams stay cached.
	diagramTTL = 7 * 24 * time.Hour
)

// Exit statuses returned by [ExitCode].
const (
	ExitFailure     = 1
	ExitUsage       = 2   // invalid scenario, step, flag value or config
	ExitInterrupted = 130 // shell convention for SIGINT
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

	// configPath overrides config.DefaultPath when set with --config.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stacktile is a tiling window-layout engine",
		Long:         `Stacktile maintains a tree of tiled windows and containers. Replay layout scenarios, inspect saved snapshots, drive the layout interactively, or serve it over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stacktile/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ExitCode maps an error returned by the root command to a process exit
// status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case serrors.HTTPStatus(err) == http.StatusBadRequest:
		return ExitUsage
	}
	return ExitFailure
}

// PrintError reports err on w. Coded errors are suffixed with their code.
func PrintError(w io.Writer, err error) {
	var coded *serrors.Error
	if errors.As(err, &coded) {
		printError(w, "%s %s", serrors.UserMessage(err), StyleDim.Render("("+string(coded.Code)+")"))
		if coded.Cause != nil {
			fmt.Fprintln(w, "  "+StyleDim.Render(coded.Cause.Error()))
		}
		return
	}
	printError(w, "%v", err)
}

// =============================================================================
// Shared Helpers
// =============================================================================

// resolvedConfigPath returns --config or the default location.
func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return config.DefaultPath()
}

func (c *CLI) loadConfig() (config.Config, error) {
	path, err := c.resolvedConfigPath()
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// openStore opens the configured snapshot store. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case store.BackendRedis, store.BackendMongo:
		spin := startSpinner(ctx, os.Stderr, "Connecting to "+cfg.Store.Backend+"...")
		defer spin.Stop()
	}
	s, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened store", "backend", cfg.Store.Backend)
	return s, nil
}

// newManager creates an empty manager sized from cfg.
func (c *CLI) newManager(cfg config.Config) *wm.Manager {
	return wm.New(cfg.Width, cfg.Height,
		wm.WithPadding(cfg.Padding),
		wm.WithInter(cfg.Inter),
		wm.WithLogger(c.Logger),
	)
}

// newCache opens the diagram cache. Any failure to open it disables
// caching rather than failing the command.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.Disabled
	}
	fc, err := openFileCache()
	if err != nil {
		c.Logger.Debug("diagram cache disabled", "err", err)
		return cache.Disabled
	}
	return fc
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir, diagramTTL)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/stacktile/).
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
