package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"guacamaya/internal/domain/entity"
	hhttp "guacamaya/internal/handler/http"
	"guacamaya/internal/handler/http/respond"
	"guacamaya/internal/tui"
	artUC "guacamaya/internal/usecase/article"
	"guacamaya/internal/usecase/feed"
)

func newFeedCmd(a *app) *cobra.Command {
	var (
		query  string
		tag    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Fetch the feed once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.composeOnce(cmd.Context(), query, tag)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), hhttp.NewFeedResponse(v))
			}
			return printView(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "search title and summary")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only articles with this tag")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response shape")
	return cmd
}

// composeOnce fetches the published list and applies the filters without
// debouncing. Fetch errors are reported in the view, as the screen does.
func (a *app) composeOnce(ctx context.Context, query, tag string) (feed.View, error) {
	local, err := loadDataset(a.cfg.Feed)
	if err != nil {
		return feed.View{}, err
	}
	rem := openRemote(ctx, a.cfg.Database, a.logger)
	defer func() { _ = rem.Close() }()

	store := feed.NewStore(rem.Repo, nil, feed.WithLogger(a.logger))
	_, _ = store.FetchAll(ctx)

	var tp *string
	if t := strings.TrimSpace(tag); t != "" {
		tp = &t
	}
	return feed.Compose(store.Snapshot(), local, query, tp), nil
}

func printView(w io.Writer, v feed.View) error {
	header := fmt.Sprintf("fuente: %s", v.Source)
	if v.Err != "" {
		header += fmt.Sprintf(" (error: %s)", respond.SanitizeMessage(v.Err))
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if len(v.Tags) > 0 {
		fmt.Fprintf(w, "etiquetas: %s\n", strings.Join(v.Tags, ", "))
	}
	if len(v.Articles) == 0 {
		_, err := fmt.Fprintln(w, "Sin resultados.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TÍTULO", "ETIQUETA", "FECHA")
	for _, art := range v.Articles {
		t.Row(art.ID, truncate(art.Title, 60), art.Tag, dateOf(art))
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func newArticleCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "article <id|slug>",
		Short: "Print one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := loadDataset(a.cfg.Feed)
			if err != nil {
				return err
			}
			rem := openRemote(cmd.Context(), a.cfg.Database, a.logger)
			defer func() { _ = rem.Close() }()

			art, origin, err := artUC.NewService(rem.Lookup, local).Lookup(cmd.Context(), args[0])
			if errors.Is(err, artUC.ErrArticleNotFound) {
				return fmt.Errorf("no article matches %q", args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), hhttp.ArticleResponse{Article: art, Origin: string(origin)})
			}
			return printArticle(cmd.OutOrStdout(), art)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response shape")
	return cmd
}

func printArticle(w io.Writer, art entity.Article) error {
	var b strings.Builder
	b.WriteString(art.Title + "\n")
	meta := []string{art.Tag}
	if d := dateOf(art); d != "" {
		meta = append(meta, d)
	}
	if art.Author != "" {
		meta = append(meta, art.Author)
	}
	b.WriteString(strings.Join(meta, " · ") + "\n\n")
	if art.Summary != "" {
		b.WriteString(art.Summary + "\n\n")
	}
	if art.Content != "" && art.Content != art.Summary {
		b.WriteString(art.Content + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func dateOf(a entity.Article) string {
	if a.Date == nil {
		return ""
	}
	return tui.FormatDate(*a.Date)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
