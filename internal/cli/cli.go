// Package cli implements the panotour command-line interface.
//
// # Commands
//
//   - analyze: Report integrity, connectivity and floor statistics of a tour
//   - watch: Re-run the summary whenever the tour document changes
//   - browse: Walk the scene graph interactively
//   - serve: Expose analyses over HTTP
//   - cache: Manage the local report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
//
// # Configuration
//
// Defaults are read from $XDG_CONFIG_HOME/panotour/config.toml when present.
// Flags always win over file values.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panotour/pkg/buildinfo"
	"github.com/matzehuels/panotour/pkg/cache"
	"github.com/matzehuels/panotour/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "panotour"

	// configFileName is the name of the config file inside the config dir.
	configFileName = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configPath string
	errOut     io.Writer
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
		errOut: w,
	}
}

// status returns the writer for human-readable progress lines.
func (c *CLI) status() status {
	return status{c.errOut}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Panotour analyzes the scene graph of 360° panorama tours",
		Long:         `Panotour loads a panorama tour document and reports broken links, unreachable scenes, dead ends and per-floor statistics.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/panotour/config.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache || !c.Config.Cache.Enabled)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/panotour/).
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

// configPath returns the default config file location
// (~/.config/panotour/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}

// pipelineOptions returns the analysis options shared by the commands that
// do not expose every analyze flag.
func pipelineOptions(c *CLI, start string) pipeline.Options {
	return pipeline.Options{
		Start:    start,
		CacheTTL: c.Config.Cache.TTL.Std(),
		Logger:   c.Logger,
	}
}
