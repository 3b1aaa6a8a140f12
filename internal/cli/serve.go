package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kafei-ai/treeflow/internal/config"
	"github.com/kafei-ai/treeflow/internal/server"
	"github.com/kafei-ai/treeflow/pkg/cache"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
	"github.com/kafei-ai/treeflow/pkg/project"
	"github.com/kafei-ai/treeflow/pkg/source"
)

// serveCommand creates the HTTP service command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		watchFile  string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and interactive sessions over HTTP",
		Long: `Serve layouts and interactive sessions over HTTP.

Settings come from treeflow.toml, .env and TREEFLOW_* environment variables,
with flags taking precedence. Sessions stream every re-laid-out graph over
Server-Sent Events.

With --watch, sessions created without paths follow the watched file and are
rebuilt whenever it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, watchFile, strict)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./"+config.FileName+")")
	cmd.Flags().StringVar(&addr, "addr", config.Default().Server.Addr, "listen address")
	cmd.Flags().StringVar(&watchFile, "watch", "", "path file that following sessions track")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject malformed paths instead of dropping them")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg *config.Config, watchFile string, strict bool) error {
	ch, err := c.openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.KeyPrefix)
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	defer runner.Close()

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Deps{
		Config: cfg.Server,
		Layout: pipeline.Options{
			NodeWidth: cfg.Layout.NodeWidth,
			XGap:      cfg.Layout.XGap,
			YGap:      cfg.Layout.YGap,
			Strict:    strict,
		},
		Runner: runner,
		Store:  store,
		Logger: c.Logger,
	})

	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend,
		"watch", watchFile)

	g, gctx := errgroup.WithContext(ctx)
	if watchFile != "" {
		doc, err := source.ReadFile(watchFile, source.FormatAuto)
		if err != nil {
			return fmt.Errorf("load watched paths: %w", err)
		}
		srv.SetWatchedPaths(doc.TreePaths())

		g.Go(func() error {
			return source.Watch(gctx, watchFile, source.WatchOptions{
				OnChange: func(doc source.Document) {
					paths := doc.TreePaths()
					c.Logger.Info("watched file changed", "file", watchFile, "paths", len(paths))
					srv.SetWatchedPaths(paths)
				},
				OnError: func(err error) {
					c.Logger.Warn("watch", "file", watchFile, "err", err)
				},
			})
		})
	}
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	c.Logger.Info("server stopped")
	return ctx.Err()
}

// openCache builds the configured cache backend.
func (c *CLI) openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", cfg.Dir, err)
		}
		return fc, nil
	}
}

// openStore builds the configured project store.
func openStore(ctx context.Context, cfg config.StoreConfig) (project.Store, error) {
	if cfg.Backend == config.StoreMongo {
		s, err := project.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return s, nil
	}
	s, err := project.NewFileStore(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("open project store %s: %w", cfg.Dir, err)
	}
	return s, nil
}
