package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panotour/pkg/cache"
)

// cacheCommand groups the subcommands that inspect and clear the report
// cache under $XDG_CACHE_HOME/panotour.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local report cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached reports",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.clearCache()
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("resolve cache dir: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
				return err
			},
		},
	)
	return cmd
}

func (c *CLI) clearCache() error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("resolve cache dir: %w", err)
	}
	st := c.status()
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		st.info("Nothing cached yet")
		return nil
	}

	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	defer fc.Close()

	n, err := fc.Clear()
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	st.ok("Removed %s", plural(n, "cached report"))
	st.detail("%s", fc.Dir())
	return nil
}
