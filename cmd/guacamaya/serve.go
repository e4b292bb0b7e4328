package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"guacamaya/internal/config"
	hhttp "guacamaya/internal/handler/http"
	"guacamaya/internal/infra/db"
	"guacamaya/internal/observability/tracing"
	artUC "guacamaya/internal/usecase/article"
	"guacamaya/internal/usecase/feed"
)

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the HTTP API with realtime sync and periodic resync",
		Annotations: map[string]string{logOutputKey: "stdout"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the articles schema before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg, logger := a.cfg, a.logger

	if cfg.Tracing.Enabled {
		shutdown := tracing.Init(tracing.Config{
			ServiceName: "guacamaya",
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				logger.Warn("tracer shutdown failed", slog.Any("error", err))
			}
		}()
	}

	local, err := loadDataset(cfg.Feed)
	if err != nil {
		return err
	}

	rem := openRemote(ctx, cfg.Database, logger)
	defer func() {
		if err := rem.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if migrate && rem.DB != nil {
		if err := db.MigrateUp(rem.DB); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	store := feed.NewStore(rem.Repo, rem.Changes, feed.WithLogger(logger))
	resync, err := feed.NewResync(store, cfg.Feed.ResyncSchedule, cfg.Feed.ResyncTimeout, logger)
	if err != nil {
		return err
	}
	resync.InLocation(cfg.Location())

	version := appVersion()
	handler := hhttp.NewRouter(hhttp.Deps{
		Feed: &hhttp.FeedHandler{
			Store:   store,
			Local:   local,
			Lookup:  artUC.NewService(rem.Lookup, local),
			Refresh: refreshLimiter(cfg.HTTP),
		},
		Health: &hhttp.HealthHandler{
			DB:      rem.DB,
			Store:   store,
			Breaker: rem.Breaker,
			Version: version,
		},
		Logger:  logger,
		Version: version,
		CORS:    hhttp.CORSConfig{AllowedOrigins: cfg.HTTP.CORSOrigins},
	})

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		// streams end with the process context
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error { return resync.Run(gctx) })
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", version),
			slog.Bool("remote", rem.DB != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// refreshLimiter builds the token bucket guarding POST /articles/refresh.
// A non-positive rate disables the limit.
func refreshLimiter(cfg config.HTTPConfig) *rate.Limiter {
	if cfg.RefreshPerMinute <= 0 {
		return nil
	}
	burst := cfg.RefreshBurst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RefreshPerMinute)), burst)
}
