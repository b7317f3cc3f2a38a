package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/rivalmap/pkg/errors"
	"github.com/mkarlsen/rivalmap/pkg/httputil"
	"github.com/mkarlsen/rivalmap/pkg/store"
)

func newIngestCmd(root *rootFlags) *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "ingest <file-or-url>",
		Short: "Build a weighted dataset from raw contest rows",
		Long: `Read a raw JSON document of programs and contests from a local file
or an http(s) URL, convert the shared contests into weighted edges
(recent contests count more), and save the result as a named dataset.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, root, args[0], name, description)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "dataset name (required)")
	cmd.Flags().StringVar(&description, "description", "", "dataset description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runIngest(cmd *cobra.Command, root *rootFlags, path, name, description string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	data, err := readSource(ctx, path)
	if err != nil {
		return err
	}
	programs, contests, err := store.ParseIngestFile(data)
	if err != nil {
		return err
	}
	logger.Debug("parsed ingest file", "programs", len(programs), "contests", len(contests))

	prog := newProgress(logger)
	u := store.BuildUniverse(programs, contests, time.Now())

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	if err := st.Save(ctx, name, description, u); err != nil {
		return err
	}
	prog.done("Ingested dataset")
	printSuccess("saved dataset %s", StyleValue.Render(name))
	printInfo("%d programs, %d weighted edges", u.NodeCount(), u.EdgeCount())
	return nil
}

// readSource loads the raw ingest document from a local path or an
// http(s) URL.
func readSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err := httputil.Fetch(ctx, source)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "fetch %s", source)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read %s", source)
	}
	return data, nil
}
