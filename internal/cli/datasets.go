package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDatasetsCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasets(cmd, root)
		},
	}
}

func runDatasets(cmd *cobra.Command, root *rootFlags) error {
	ctx := cmd.Context()

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	datasets, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		printInfo("no datasets yet; run %s first", StyleValue.Render("rivalmap ingest"))
		return nil
	}

	fmt.Println(StyleTitle.Render("Datasets"))
	for _, d := range datasets {
		line := fmt.Sprintf("  %s  %s",
			StyleValue.Render(d.Name),
			StyleDim.Render(fmt.Sprintf("%d programs · %d edges · updated %s",
				d.Nodes, d.Edges, d.UpdatedAt.Format("2006-01-02"))))
		fmt.Println(line)
		if d.Description != "" {
			fmt.Println("    " + StyleDim.Render(d.Description))
		}
	}
	return nil
}
