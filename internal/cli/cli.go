// Package cli implements the netalign command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netalign/pkg/buildinfo"
	"github.com/matzehuels/netalign/pkg/cache"
	"github.com/matzehuels/netalign/pkg/config"
	netio "github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/pipeline"
	"github.com/matzehuels/netalign/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "netalign"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// inputArgs is the usage string shared by commands that read an alignment.
const inputArgs = "<g1.sif> <g2.sif> <alignment> [perfect]"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
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
		Use:   appName,
		Short: "netalign scores and visualizes network alignments",
		Long: `netalign merges two networks under an alignment, scores the alignment
and lays out the merged network to show where it succeeds and where it fails.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.alignCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.scoreCommand())
	root.AddCommand(c.cyclesCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log level.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.SetLevel(cfg.Level())
	return nil
}

// settings returns the loaded config, or the defaults before loading.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects the optional backends of a runner.
type runnerOpts struct {
	noCache bool
	noStore bool
	// scope prefixes cache keys so that a shared backend keeps
	// entries of different frontends apart.
	scope string
}

// newRunner creates a pipeline runner for CLI use. An unavailable cache
// degrades to no caching; an unavailable store is an error.
func (c *CLI) newRunner(ctx context.Context, opts runnerOpts) (*pipeline.Runner, error) {
	cfg := c.settings()

	var ch cache.Cache = cache.NewNullCache()
	if !opts.noCache {
		opened, err := cache.Open(ctx, cfg.CacheOptions(c.Logger))
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		} else {
			ch = opened
		}
	}

	var store storage.Store
	if !opts.noStore {
		s, err := storage.Open(ctx, cfg.StoreOptions())
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
		store = s
	}
	var keyer cache.Keyer
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(nil, opts.scope)
	}
	return pipeline.NewRunner(ch, keyer, store, c.Logger), nil
}

// closeRunner releases the runner's backends, logging failures.
func (c *CLI) closeRunner(r *pipeline.Runner) {
	if err := r.Close(context.Background()); err != nil {
		c.Logger.Warn("close backends", "error", err)
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// inputPaths maps positional arguments to input files.
func inputPaths(args []string) netio.Paths {
	p := netio.Paths{G1: args[0], G2: args[1], Alignment: args[2]}
	if len(args) > 3 {
		p.Perfect = args[3]
	}
	return p
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s, fallback string) []string {
	if s == "" {
		return []string{fallback}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
