package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/pipeline"
	"github.com/mkarlsen/rivalmap/pkg/render"
)

// layoutFlags holds the options of the layout command.
type layoutFlags struct {
	dataset       string
	maxHops       int
	categories    []string
	minWeight     float64
	displayDegree float64
	refresh       bool
	output        string
	format        string
	detailed      bool
}

func newLayoutCmd(root *rootFlags) *cobra.Command {
	flags := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "layout [source] [destination]",
		Short: "Compute the layered diagram between two programs",
		Long: `Compute the layered comparison diagram between two programs in a
stored dataset. When source or destination is omitted, an interactive
picker over the dataset's programs is shown.

The result is written as JSON, DOT, or SVG. A hop bound of zero asks
for the direct comparison only.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.dataset, "dataset", "d", "", "dataset to lay out (required)")
	cmd.Flags().IntVar(&flags.maxHops, "max-hops", pipeline.DefaultMaxHops, "bound on path length in hops")
	cmd.Flags().StringSliceVar(&flags.categories, "category", nil, "restrict edges to these categories")
	cmd.Flags().Float64Var(&flags.minWeight, "min-weight", 0, "drop edges lighter than this weight")
	cmd.Flags().Float64Var(&flags.displayDegree, "display-degree", 0, "hide nodes beyond this degree (visibility only)")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().StringVarP(&flags.output, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format: json, dot, or svg (default from file extension, else json)")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "include degrees in rendered node labels")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func runLayout(cmd *cobra.Command, args []string, root *rootFlags, flags *layoutFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	u, hash, err := st.Universe(ctx, flags.dataset)
	if err != nil {
		return err
	}

	source, destination := "", ""
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		destination = args[1]
	}
	if source == "" || destination == "" {
		source, destination, err = pickEndpoints(u, source, destination)
		if err != nil {
			return err
		}
	}

	c, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	prog := newProgress(logger)
	runner := pipeline.NewRunner(c, nil)
	result, err := runner.Execute(ctx, u, pipeline.Options{
		Source:      source,
		Destination: destination,
		MaxHops:     flags.maxHops,
		Categories:  flags.categories,
		MinWeight:   flags.minWeight,
		Spacing:     cfg.SpacingOverride(),
		Refresh:     flags.refresh,
		DatasetHash: hash,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	prog.done("Computed layout")

	layout := result.Layout
	if flags.displayDegree > 0 {
		layout = pipeline.Visible(layout, flags.displayDegree)
	}

	if layout.Empty {
		printWarning("no connection between %s and %s within %d hops", source, destination, flags.maxHops)
	} else {
		printSuccess("%s %s %s", source, StyleDim.Render(iconArrow), destination)
		printStats(len(layout.Nodes), len(layout.Edges), result.Stats.Crossings, result.CacheInfo.Hit)
	}

	data, err := encodeLayout(ctx, layout, flags)
	if err != nil {
		return err
	}
	if flags.output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(flags.output, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", flags.output)
	}
	printFile(flags.output)
	return nil
}

// encodeLayout serializes the layout in the requested format. The
// format falls back to the output file extension, then to JSON.
func encodeLayout(ctx context.Context, l pipeline.Layout, flags *layoutFlags) ([]byte, error) {
	format := flags.format
	if format == "" {
		switch strings.ToLower(filepath.Ext(flags.output)) {
		case ".dot", ".gv":
			format = "dot"
		case ".svg":
			format = "svg"
		default:
			format = "json"
		}
	}

	switch format {
	case "json":
		return json.MarshalIndent(l, "", "  ")
	case "dot":
		return []byte(render.ToDOT(l, render.Options{Detailed: flags.detailed})), nil
	case "svg":
		dot := render.ToDOT(l, render.Options{Detailed: flags.detailed})
		return render.RenderSVG(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest, "unknown format %q", format)
	}
}
