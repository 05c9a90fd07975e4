package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/yatube/cache"
	"github.com/cppla/yatube/controllers"
	"github.com/cppla/yatube/fanout"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/routes"
	"github.com/cppla/yatube/social"
	"github.com/cppla/yatube/utils"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		Long: `Serve the HTTP API until SIGINT or SIGTERM.

The schema is migrated first. In-flight requests get a grace period on
shutdown.

Example:
  yatube serve --config ./config`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	a, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.store.Migrate(ctx); err != nil {
		return err
	}

	graph := social.New(a.store)
	deps := controllers.Deps{
		Store:         a.store,
		Graph:         graph,
		Feed:          feed.New(a.store, graph),
		Cache:         a.cache,
		Notifier:      fanout.NewPassthrough(nil),
		IndexWindow:   cache.Window(a.cfg.IndexCacheSeconds),
		GroupWindow:   cache.Window(a.cfg.GroupCacheSeconds),
		SessionCookie: a.cfg.SessionCookieName,
		SessionTTL:    time.Duration(a.cfg.SessionTTLHours) * time.Hour,
	}
	r := routes.SetupRouter(a.cfg, deps)

	utils.Logger.Info("starting server",
		zap.String("port", a.cfg.AppPort),
		zap.Duration("index_cache", deps.IndexWindow),
		zap.Duration("group_cache", deps.GroupWindow))
	return utils.GraceServer(ctx, ":"+a.cfg.AppPort, r)
}
