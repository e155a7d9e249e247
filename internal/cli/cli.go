// Package cli implements the stanza command-line interface.
//
// This package provides commands for installing locked dependencies into
// virtualenvs, inspecting resolution order, and exporting the dependency
// closure as a graph. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - install: Resolve an environment's dependency set and install it into a virtualenv
//   - resolve: Print the ordered transitive closure for dependency names
//   - graph: Export the project closure as DOT or SVG
//   - cache: Manage the install marker cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// surfaces the resolver's per-package skip decisions.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stanza-dev/stanza/pkg/buildinfo"
	"github.com/stanza-dev/stanza/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "stanza"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stanza installs locked Poetry dependencies into test environments",
		Long:         `Stanza installs a project's dependencies into a virtualenv straight from poetry.lock, bypassing live resolution so test environments get exactly the versions the lockfile recorded.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.installCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newCache returns the install marker cache, or a null cache when caching
// is disabled or no cache directory can be determined.
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

// cacheDir returns the cache directory using XDG standard (~/.cache/stanza/).
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
