package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowgrid-dev/flowgrid/pkg/cache"
	gio "github.com/flowgrid-dev/flowgrid/pkg/io"
	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// cliCacheTTL bounds how long locally cached layouts stay valid.
const cliCacheTTL = 7 * 24 * time.Hour

// layoutCommand creates the layout command for computing a grid layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output     string
		configPath string
		noCache    bool
		dropLoops  bool
		xMargin    int
		yMargin    int
		rowMargin  int
		colMargin  int
	)
	defaults := layout.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions and edge routes for a graph",
		Long: `Compute node positions and edge routes for a graph.

The layout command takes a graph.json file listing nodes and edges and
produces a layout document with an absolute anchor point per node and a
Manhattan polyline per edge. Cycles and self-loops are handled.

Results are cached locally for faster subsequent runs. The output path
defaults to the input path with a .layout.json suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			opts := cfg.Layout
			if cmd.Flags().Changed("x-margin") {
				opts.XMargin = xMargin
			}
			if cmd.Flags().Changed("y-margin") {
				opts.YMargin = yMargin
			}
			if cmd.Flags().Changed("row-margin") {
				opts.RowMargin = rowMargin
			}
			if cmd.Flags().Changed("col-margin") {
				opts.ColMargin = colMargin
			}
			opts.DropSelfLoops = dropLoops
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./flowgrid.toml)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().IntVar(&xMargin, "x-margin", defaults.XMargin, "horizontal spacing between edge lanes")
	cmd.Flags().IntVar(&yMargin, "y-margin", defaults.YMargin, "vertical spacing between edge lanes")
	cmd.Flags().IntVar(&rowMargin, "row-margin", defaults.RowMargin, "padding between grid rows")
	cmd.Flags().IntVar(&colMargin, "col-margin", defaults.ColMargin, "padding between grid columns")
	cmd.Flags().BoolVar(&dropLoops, "drop-self-loops", false, "skip routing self-loop edges")

	return cmd
}

// runLayout imports the graph, computes the layout (consulting the local
// cache first) and writes the layout document.
func (c *CLI) runLayout(ctx context.Context, input string, opts layout.Options, output string, noCache bool) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read graph %s: %w", input, err)
	}
	g, sizes, err := gio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse graph %s: %w", input, err)
	}

	if output == "" {
		output = defaultOutputPath(input)
	}

	store, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	key := cache.LayoutKey(cache.Hash(raw), opts)
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write layout %s: %w", output, err)
		}
		printStats(g.NodeCount(), g.EdgeCount(), true)
		printFile(output)
		return nil
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d nodes...", g.NodeCount()))
	spinner.Start()

	track := newProgress(c.Logger)
	result, _, err := layout.Layout(g, sizes, strings.Compare, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("layout: %w", err)
	}
	spinner.Stop()
	track.done(fmt.Sprintf("Laid out %d nodes", g.NodeCount()))

	if err := gio.ExportJSON(result, output); err != nil {
		return fmt.Errorf("export layout: %w", err)
	}

	if data, err := os.ReadFile(output); err == nil {
		if err := store.Set(ctx, key, data, cliCacheTTL); err != nil {
			c.Logger.Warn("cache write failed", "err", err)
		}
	}

	printStats(g.NodeCount(), g.EdgeCount(), false)
	printFile(output)
	return nil
}

// defaultOutputPath derives the layout output path from the input graph
// path: graph.json becomes graph.layout.json.
func defaultOutputPath(input string) string {
	return strings.TrimSuffix(input, ".json") + ".layout.json"
}
