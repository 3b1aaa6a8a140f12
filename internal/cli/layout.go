package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kafei-ai/treeflow/pkg/graph"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [paths-file]",
		Short: "Compute a tree layout from a path list",
		Long: `Compute a tree layout from a path list.

The input is a JSON, YAML or plain-text list of slash-separated paths, or an
assistant result with a component_tree or tech_stack. The output is a
layout.json document holding the normalized paths, the open set, the
spacing and the positioned graph. Render it with 'treeflow render'.

Every node starts collapsed unless opened with --expand, --expand-depth or
--expand-all. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], &flags, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout reads the paths, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags *layoutFlags, output string, noCache bool) error {
	raw, err := flags.readPaths(input)
	if err != nil {
		return fmt.Errorf("load paths %s: %w", input, err)
	}

	runner := c.newRunner(noCache)
	defer runner.Close()

	opts := flags.opts
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d paths...", len(raw)))
	spinner.Start()

	l, cacheHit, err := runner.Layout(ctx, raw, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.Logger.Debug("layout", "paths", len(l.Paths), "nodes", l.Graph.NodeCount())

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	prog.done("Layout written")

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(statsOf(l.Graph, cacheHit))
	if dropped := len(raw) - len(l.Paths); dropped > 0 {
		printWarning("%d blank, duplicate or malformed entries dropped", dropped)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}

// statsOf counts a graph for status output.
func statsOf(g graph.Graph, cached bool) graphStats {
	s := graphStats{Nodes: g.NodeCount(), Edges: g.EdgeCount(), Cached: cached}
	for _, n := range g.Nodes {
		if n.HasHiddenChildren {
			s.Hidden++
		}
	}
	return s
}
