package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: svg, dot, json, png, pdf
	engine     string   // svg engine: svg or graphviz
	nodeHeight float64  // box height in pixels
	scale      float64  // PNG scale factor
	title      string   // optional document title
	noCache    bool
}

// renderCommand creates the render command for drawing a layout document.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		engine:     render.EngineSVG,
		nodeHeight: render.DefaultNodeHeight,
		scale:      render.DefaultScale,
	}

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a layout document to SVG, DOT, PNG or PDF",
		Long: `Render a layout document produced by 'treeflow layout'.

Nodes are drawn at their computed positions and colored by the category their
name suggests. Collapsed nodes carry a badge with their hidden child count.

The svg engine draws directly; the graphviz engine emits DOT with pinned
positions and lets Graphviz draw it. PNG and PDF need rsvg-convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", render.FormatSVG, "comma-separated formats: "+strings.Join(render.Formats, ", "))
	cmd.Flags().StringVar(&opts.engine, "engine", opts.engine, "svg engine: "+strings.Join(render.Engines, ", "))
	cmd.Flags().Float64Var(&opts.nodeHeight, "node-height", opts.nodeHeight, "box height in pixels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.title, "title", "", "document title")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(render.Engines, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runRender loads the layout and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	var written []string
	cachedAll := true
	for _, format := range opts.formats {
		spinner.SetMessage(fmt.Sprintf("Rendering %s...", format))
		data, hit, err := runner.Render(ctx, l, render.Options{
			Format:     format,
			Engine:     opts.engine,
			NodeHeight: opts.nodeHeight,
			Scale:      opts.scale,
			Title:      opts.title,
		})
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		cachedAll = cachedAll && hit

		path := outputPath(input, opts.output, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			spinner.StopWithError("Write failed")
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	spinner.Stop()

	printSuccess("Rendered %d file(s)", len(written))
	for _, p := range written {
		printFile(p)
	}
	printStats(statsOf(l.Graph, cachedAll))
	return nil
}

// outputPath picks the file for one format. With several formats an explicit
// output is used as a base name.
func outputPath(input, output, format string, multi bool) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		base = strings.TrimSuffix(base, ".layout")
		return base + "." + format
	}
	if multi {
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	return output
}

// parseFormats parses a comma-separated format string.
func parseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return []string{render.FormatSVG}
	}
	return out
}
