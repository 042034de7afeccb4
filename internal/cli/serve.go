package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenlab/lumen/internal/config"
	"github.com/lumenlab/lumen/internal/server"
	"github.com/lumenlab/lumen/pkg/archive"
	"github.com/lumenlab/lumen/pkg/detect"
	"github.com/lumenlab/lumen/pkg/httputil"
	"github.com/lumenlab/lumen/pkg/pipeline"
	"github.com/lumenlab/lumen/pkg/session"
)

// serveCommand creates the serve command for running the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP planning service",
		Long: `Serve runs the HTTP service exposing the measurement-compatible
/process_image endpoint and the /api/v1 plan, session, and archive API.

Without --config the service uses in-memory session and archive backends
and expects the detection service on localhost.`,
		Example: `  lumen serve
  lumen serve --config /etc/lumen/lumen.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(c.Logger)
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			prog.done("Loaded configuration")

			srv, cleanup, err := c.buildServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML configuration file")

	return cmd
}

// buildServer assembles the service components from the configuration.
// The returned cleanup closes backend connections.
func (c *CLI) buildServer(ctx context.Context, cfg config.Config) (*server.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}

	detectOpts := []detect.Option{detect.WithTimeout(cfg.Detector.Timeout.Duration())}
	if cache, err := httputil.NewCache(cfg.Cache.Dir, cfg.Cache.TTL.Duration()); err == nil {
		detectOpts = append(detectOpts, detect.WithCache(cache))
	} else {
		c.Logger.Warn("detection cache disabled", "error", err)
	}
	client, err := detect.NewClient(cfg.Detector.URL, detectOpts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sessions, err := c.buildSessionStore(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	plans, err := c.buildArchive(ctx, cfg, &closers)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	runner := pipeline.NewRunner(client, c.Logger)
	return server.New(cfg, runner, sessions, plans, c.Logger), cleanup, nil
}

func (c *CLI) buildSessionStore(ctx context.Context, cfg config.Config, closers *[]func()) (session.Store, error) {
	switch cfg.Sessions.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "file":
		return session.NewFileStore(cfg.Sessions.Dir)
	case "redis":
		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.Sessions.Redis.Addr,
			Password: cfg.Sessions.Redis.Password,
			DB:       cfg.Sessions.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() {
			if err := store.Close(); err != nil {
				c.Logger.Warn("closing redis store", "error", err)
			}
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Sessions.Backend)
	}
}

func (c *CLI) buildArchive(ctx context.Context, cfg config.Config, closers *[]func()) (archive.Archive, error) {
	switch cfg.Archive.Backend {
	case "memory":
		return archive.NewMemoryArchive(), nil
	case "mongo":
		store, err := archive.NewMongoArchive(ctx, archive.MongoConfig{
			URI:      cfg.Archive.Mongo.URI,
			Database: cfg.Archive.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, func() {
			if err := store.Close(context.Background()); err != nil {
				c.Logger.Warn("closing mongo archive", "error", err)
			}
		})
		return store, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}
}
