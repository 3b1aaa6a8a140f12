// Package cli implements the treeflow command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kafei-ai/treeflow/internal/config"
	"github.com/kafei-ai/treeflow/pkg/buildinfo"
	"github.com/kafei-ai/treeflow/pkg/cache"
	"github.com/kafei-ai/treeflow/pkg/observability"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
	"github.com/kafei-ai/treeflow/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "treeflow"

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
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Install()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Treeflow lays out path hierarchies as collapsible node graphs",
		Long:         `Treeflow turns flat lists of slash-separated paths into a positioned, collapsible tree graph that can be rendered, browsed in the terminal or served to a web canvas.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(noCache), nil, c.Logger)
}

// newCache returns the local file cache, or a null cache when caching is off
// or the cache directory is unusable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := config.CacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Shared Flags
// =============================================================================

// layoutFlags are the spacing and seeding flags shared by layout and browse.
type layoutFlags struct {
	opts   pipeline.Options
	format string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	f.opts.SetDefaults()
	fs := cmd.Flags()
	fs.StringVar(&f.format, "format", "auto", "input format: auto, json, yaml, text, events")
	fs.StringSliceVar(&f.opts.Expanded, "expand", nil, "path to open initially (repeatable)")
	fs.IntVar(&f.opts.ExpandDepth, "expand-depth", 0, "open every node above this depth")
	fs.BoolVar(&f.opts.ExpandAll, "expand-all", false, "open every node")
	fs.BoolVar(&f.opts.Strict, "strict", false, "reject malformed paths instead of dropping them")
	fs.Float64Var(&f.opts.NodeWidth, "node-width", f.opts.NodeWidth, "width of a leaf slot")
	fs.Float64Var(&f.opts.XGap, "x-gap", f.opts.XGap, "horizontal gap between siblings")
	fs.Float64Var(&f.opts.YGap, "y-gap", f.opts.YGap, "vertical distance between depths")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		names := []string{"auto"}
		for _, f := range source.Formats {
			names = append(names, string(f))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// readPaths loads the raw path list from an input file.
func (f *layoutFlags) readPaths(path string) ([]string, error) {
	format, err := source.ParseFormat(f.format)
	if err != nil {
		return nil, err
	}
	doc, err := source.ReadFile(path, format)
	if err != nil {
		return nil, err
	}
	return doc.TreePaths(), nil
}
