package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/rivalmap/pkg/errors"
)

func newCacheCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all cached layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheClear(cmd, root)
		},
	})
	return cmd
}

func runCacheClear(cmd *cobra.Command, root *rootFlags) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	switch cfg.Cache.Backend {
	case "null":
		printInfo("caching is disabled, nothing to clear")
		return nil
	case "", "file":
		if err := os.RemoveAll(cfg.Cache.Dir); err != nil {
			return errors.Wrap(errors.ErrCodeCache, err, "clear cache dir %s", cfg.Cache.Dir)
		}
		printSuccess("cleared cache %s", StyleValue.Render(cfg.Cache.Dir))
		return nil
	case "redis":
		// Entries expire via TTL; a blanket FLUSHDB could take out
		// unrelated keys on a shared instance.
		return errors.New(errors.ErrCodeUnsupported, "redis cache entries expire via TTL; clear them server-side")
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Cache.Backend)
	}
}
