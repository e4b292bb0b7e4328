package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"guacamaya/internal/domain/entity"
	pg "guacamaya/internal/infra/adapter/persistence/postgres"
	"guacamaya/internal/infra/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the articles schema and change trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := requireDB(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := db.MigrateUp(conn); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			a.logger.Info("database migrated")
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert the fallback dataset into the articles table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			local, err := loadDataset(a.cfg.Feed)
			if err != nil {
				return err
			}
			conn, err := requireDB(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := db.MigrateUp(conn); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}

			w := pg.NewArticleWriter(conn)
			for i, r := range local.Rows() {
				slug, row := seedRow(r, i, status)
				id, err := w.Upsert(cmd.Context(), slug, row)
				if err != nil {
					return fmt.Errorf("seed %s: %w", slug, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, slug)
			}
			a.logger.Info("fallback dataset seeded",
				slog.Int("rows", local.Len()),
				slog.String("status", status))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", entity.StatusPublished, "status given to seeded rows")
	return cmd
}

// seedRow maps a fallback row to a remote row keyed by slug, or by the
// fallback id when the row has no slug.
func seedRow(r entity.LocalRow, index int, status string) (string, entity.RemoteRow) {
	art := entity.FromLocal(r, index)
	slug := art.Slug
	if slug == "" {
		slug = art.ID
	}
	row := entity.RemoteRow{
		Title:  strPtr(art.Title),
		Date:   art.Date,
		Tags:   []string{art.Tag},
		Status: strPtr(status),
	}
	if art.Summary != "" {
		row.Excerpt = strPtr(art.Summary)
	}
	if art.Content != "" {
		row.Content = strPtr(art.Content)
	}
	if art.Author != "" {
		row.Author = strPtr(art.Author)
	}
	if art.Image != "" {
		row.CoverURL = strPtr(art.Image)
	}
	return slug, row
}

func strPtr(s string) *string { return &s }

// newStatusCmd builds publish and unpublish. Changing the status fires the
// change trigger, so running feeds add or drop the row.
func newStatusCmd(a *app, use, status string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Set the status of an article row to %q", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := requireDB(cmd.Context(), a.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			err = pg.NewArticleWriter(conn).SetStatus(cmd.Context(), args[0], status)
			if errors.Is(err, entity.ErrNotFound) {
				return fmt.Errorf("no article row with id %s", args[0])
			}
			if err != nil {
				return err
			}
			a.logger.Info("article status changed",
				slog.String("id", args[0]),
				slog.String("status", status))
			return nil
		},
	}
}
