package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/usecase/feed"
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.renderTags())
	b.WriteString("\n\n")

	switch {
	case a.detail:
		b.WriteString(a.renderDetail())
	case a.view.Mode == feed.ModeLoading:
		b.WriteString(a.spinner.View() + " Cargando artículos...")
	case a.view.Mode == feed.ModeError:
		b.WriteString(errorStyle.Render("No pudimos cargar las noticias: " + a.view.Err))
	case len(a.view.Articles) == 0:
		b.WriteString(metaStyle.Render(noResults(a.view)))
	default:
		b.WriteString(a.renderFeatured())
		b.WriteString("\n")
		b.WriteString(a.renderList())
	}

	b.WriteString("\n\n")
	b.WriteString(a.renderStatus())
	return b.String()
}

func (a *App) renderHeader() string {
	greeting := "Hola, invitado"
	if a.user != nil && a.user.Name != "" {
		greeting = "Hola, " + a.user.Name
	}
	line := brandStyle.Render("Guacamaya") + "  " + greetingStyle.Render(greeting)
	if a.view.Source == feed.SourceLocal && a.view.Mode != feed.ModeLoading {
		line += "  " + sourceBadgeStyle.Render("(sin conexión: mostrando noticias locales)")
	}
	return line
}

func (a *App) renderTags() string {
	tabs := []string{renderTab("Todas", a.view.Tag == nil)}
	for _, t := range a.view.Tags {
		tabs = append(tabs, renderTab(t, a.view.Tag != nil && *a.view.Tag == t))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderTab(label string, active bool) string {
	if active {
		return tabActiveStyle.Render(label)
	}
	return tabInactiveStyle.Render(label)
}

func (a *App) renderFeatured() string {
	f := a.view.Featured
	if f == nil {
		return ""
	}
	style := featuredStyle
	if a.cursor == 0 {
		style = featuredActiveStyle
	}
	body := featuredTitleStyle.Render(f.Title) + "\n" +
		summaryStyle.Render(truncate(f.Summary, a.textWidth())) + "\n" +
		metaStyle.Render(meta(*f))
	if a.width > 0 {
		style = style.Width(a.width - 2)
	}
	return style.Render(body)
}

func (a *App) renderList() string {
	var b strings.Builder
	for i, art := range a.view.Articles {
		if i == 0 {
			continue
		}
		title := truncate(art.Title, a.textWidth()-4)
		if i == a.cursor {
			b.WriteString(itemSelectedStyle.Render("> " + title))
		} else {
			b.WriteString(itemTitleStyle.Render("  " + title))
		}
		b.WriteString("  ")
		b.WriteString(metaStyle.Render(meta(art)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) renderDetail() string {
	art, ok := a.selected()
	if !ok {
		return ""
	}
	body := art.Content
	if body == "" {
		body = art.Summary
	}
	text := featuredTitleStyle.Render(art.Title) + "\n" +
		metaStyle.Render(meta(art)) + "\n\n" +
		summaryStyle.Render(body)
	style := detailStyle
	if a.width > 0 {
		style = style.Width(a.width - 2)
	}
	return style.Render(text)
}

func (a *App) renderStatus() string {
	parts := []string{fmt.Sprintf("%d de %d", len(a.view.Articles), a.view.ActiveCount)}
	if a.refreshing || a.view.Refreshing {
		parts = append(parts, a.spinner.View()+" actualizando")
	} else if !a.view.UpdatedAt.IsZero() {
		parts = append(parts, "actualizado "+a.view.UpdatedAt.Local().Format("15:04"))
	}
	if a.err != nil {
		parts = append(parts, errorStyle.Render("error al actualizar"))
	} else if a.view.Err != "" && a.view.Mode == feed.ModeReady {
		parts = append(parts, errorStyle.Render(a.view.Err))
	}
	parts = append(parts, "tab categorías · ctrl+r actualizar · esc limpiar · enter abrir · ctrl+c salir")
	return statusBarStyle.Render(strings.Join(parts, " │ "))
}

func noResults(v feed.View) string {
	switch {
	case v.Query != "" && v.Tag != nil:
		return fmt.Sprintf("Sin resultados para %q en %s", v.Query, *v.Tag)
	case v.Query != "":
		return fmt.Sprintf("Sin resultados para %q", v.Query)
	case v.Tag != nil:
		return "No hay artículos en " + *v.Tag
	default:
		return "No hay artículos publicados"
	}
}

func meta(a entity.Article) string {
	parts := []string{a.Tag}
	if a.Date != nil {
		parts = append(parts, FormatDate(*a.Date))
	}
	if a.Author != "" {
		parts = append(parts, a.Author)
	}
	if a.ReadMins > 0 {
		parts = append(parts, fmt.Sprintf("%d min", a.ReadMins))
	}
	return strings.Join(parts, " · ")
}

var monthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// FormatDate renders t as "10 ago 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

func (a *App) textWidth() int {
	if a.width <= 0 {
		return 80
	}
	return max(20, a.width-6)
}

// truncate shortens s to n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
