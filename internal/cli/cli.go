// Package cli implements the lumen command-line interface.
//
// This package provides commands for computing lighting fixture layouts,
// measuring rooms through the ArUco detection service, previewing layouts
// interactively, running the HTTP service, and managing the detection
// response cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - plan: Compute a fixture layout from known room dimensions
//   - measure: Measure a room from a photo and compute its layout
//   - preview: Interactively explore layouts in the terminal
//   - serve: Run the HTTP planning service
//   - cache: Manage the detection response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lumenlab/lumen/pkg/buildinfo"
	"github.com/lumenlab/lumen/pkg/detect"
	"github.com/lumenlab/lumen/pkg/httputil"
	"github.com/lumenlab/lumen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "lumen"

	// defaultDetectorURL points at a locally running measurement service.
	defaultDetectorURL = "http://localhost:5000"
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
		Use:          "lumen",
		Short:        "Lumen plans lighting fixture layouts from room measurements",
		Long:         `Lumen computes how many lighting fixtures a room needs and where to place them, from dimensions you provide or from a photo measured against an ArUco marker.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.planCommand())
	root.AddCommand(c.measureCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the detection service.
func (c *CLI) newRunner(detectorURL string, noCache bool) (*pipeline.Runner, error) {
	opts := []detect.Option{}
	if !noCache {
		if cache := newCache(); cache != nil {
			opts = append(opts, detect.WithCache(cache))
		}
	}
	client, err := detect.NewClient(detectorURL, opts...)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(client, c.Logger), nil
}

func newCache() *httputil.Cache {
	dir, err := cacheDir()
	if err != nil {
		return nil
	}
	cache, err := httputil.NewCache(dir, detect.DefaultCacheTTL)
	if err != nil {
		return nil
	}
	return cache
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/lumen/).
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
