package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/service/auth"
	"guacamaya/internal/tui"
	"guacamaya/internal/usecase/feed"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the terminal home screen",
		// log lines would tear the alternate screen
		Annotations: map[string]string{logOutputKey: "discard"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.browse(ctx)
		},
	}
}

func (a *app) browse(ctx context.Context) error {
	local, err := loadDataset(a.cfg.Feed)
	if err != nil {
		return err
	}
	rem := openRemote(ctx, a.cfg.Database, a.logger)
	defer func() { _ = rem.Close() }()

	store := feed.NewStore(rem.Repo, rem.Changes, feed.WithLogger(a.logger))
	screen := feed.NewScreen(store, local, feed.WithDebounce(a.cfg.Feed.SearchDebounce))
	defer screen.Close()

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error {
		// leaving the screen stops the sync
		defer cancel()
		return tui.Run(gctx, tui.Options{
			Screen: screen,
			User:   a.currentUser(gctx),
		})
	})
	return g.Wait()
}

// currentUser reads the signed-in demo user. Storage errors browse as a guest.
func (a *app) currentUser(ctx context.Context) *entity.User {
	kv, err := openDeviceStore(ctx, a.cfg.Device)
	if err != nil {
		a.logger.Warn("device storage unavailable", slog.Any("error", err))
		return nil
	}
	defer func() { _ = kv.Close() }()

	u, err := auth.NewService(kv, a.logger).CurrentUser(ctx)
	if err != nil {
		a.logger.Warn("failed to read signed-in user", slog.Any("error", err))
		return nil
	}
	return u
}
