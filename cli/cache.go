package cli

import (
	"github.com/spf13/cobra"
)

// CacheInvalidateOptions holds flags for `cache invalidate`.
type CacheInvalidateOptions struct {
	*RootOptions
	Prefix bool
}

// NewCacheCommand creates the cache command and its subcommands.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the page cache",
	}
	cmd.AddCommand(newCacheInvalidateCommand(rootOpts))
	return cmd
}

func newCacheInvalidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheInvalidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invalidate <key>",
		Short: "Drop a cached page, or every page under a prefix",
		Long: `Drop a cached page before its window runs out.

Only the redis backend is shared with running servers; the memory
backend lives inside each server process.

Example:
  yatube cache invalidate cache:posts:index:page=1
  yatube cache invalidate --prefix cache:posts:`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer a.close()

			if opts.Prefix {
				err = a.cache.InvalidatePrefix(cmd.Context(), args[0])
			} else {
				err = a.cache.Invalidate(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			cmd.Printf("invalidated %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Prefix, "prefix", false, "treat <key> as a prefix")

	return cmd
}
