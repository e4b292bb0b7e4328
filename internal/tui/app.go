// Package tui is a terminal browser for the article feed built on bubbletea.
// It renders a feed.Screen and forwards input to it; filtering, debouncing
// and fallback selection all happen in the screen.
package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/usecase/feed"
)

// DefaultRefreshTimeout bounds a ctrl+r refetch.
const DefaultRefreshTimeout = 30 * time.Second

// Options configure the browser.
type Options struct {
	Screen *feed.Screen
	// User is greeted in the header; nil browses as a guest.
	User           *entity.User
	RefreshTimeout time.Duration
}

// App is the bubbletea model.
type App struct {
	screen         *feed.Screen
	user           *entity.User
	refreshTimeout time.Duration

	changed chan struct{}
	unsub   func()

	input   textinput.Model
	spinner spinner.Model

	view       feed.View
	cursor     int
	detail     bool
	refreshing bool
	err        error

	width  int
	height int
}

// NewApp creates the model and subscribes it to the screen. Call Close when
// the program exits.
func NewApp(opts Options) *App {
	ti := textinput.New()
	ti.Placeholder = "Buscar por título, resumen o categoría..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 120
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	timeout := opts.RefreshTimeout
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}

	a := &App{
		screen:         opts.Screen,
		user:           opts.User,
		refreshTimeout: timeout,
		changed:        make(chan struct{}, 1),
		input:          ti,
		spinner:        sp,
		view:           opts.Screen.View(),
	}
	a.unsub = opts.Screen.OnChange(a.push)
	return a
}

// push only marks the view as changed; the model reads the screen's current
// view when it wakes, so views delivered out of order are never rendered and
// a slow renderer never blocks the screen.
func (a *App) push(feed.View) {
	select {
	case a.changed <- struct{}{}:
	default:
	}
}

// Close detaches the model from the screen.
func (a *App) Close() {
	a.unsub()
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, a.waitForView())
}

func (a *App) waitForView() tea.Cmd {
	ch, sc := a.changed, a.screen
	return func() tea.Msg {
		<-ch
		return viewMsg{view: sc.View()}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	sc := a.screen
	timeout := a.refreshTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshDoneMsg{err: sc.Refresh(ctx)}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = max(10, msg.Width-4)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case viewMsg:
		a.setView(msg.view)
		return a, a.waitForView()

	case refreshDoneMsg:
		a.refreshing = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		a.err = nil
		return a, a.refreshCmd()
	case "esc":
		if a.detail {
			a.detail = false
			return a, nil
		}
		a.input.Reset()
		a.screen.ClearFilters()
		a.setView(a.screen.View())
		return a, nil
	case "tab":
		a.cycleTag(1)
		return a, nil
	case "shift+tab":
		a.cycleTag(-1)
		return a, nil
	case "up", "ctrl+p":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "down", "ctrl+n":
		if a.cursor < len(a.view.Articles)-1 {
			a.cursor++
		}
		return a, nil
	case "enter":
		if _, ok := a.selected(); ok {
			a.detail = !a.detail
		}
		return a, nil
	}

	if a.detail {
		return a, nil
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if v := a.input.Value(); v != before {
		a.screen.SetQuery(v)
		a.setView(a.screen.View())
	}
	return a, cmd
}

// cycleTag moves the tag selection through "all" followed by every tag of
// the catalog, wrapping around in either direction.
func (a *App) cycleTag(dir int) {
	tags := a.view.Tags
	if len(tags) == 0 {
		return
	}
	pos := -1
	if a.view.Tag != nil {
		pos = slices.Index(tags, *a.view.Tag)
	}
	next := pos + dir
	switch {
	case next >= len(tags):
		next = -1
	case next < -1:
		next = len(tags) - 1
	}
	if next == -1 {
		a.screen.SelectTag("")
	} else {
		a.screen.SelectTag(tags[next])
	}
	a.setView(a.screen.View())
}

func (a *App) setView(v feed.View) {
	a.view = v
	if a.cursor >= len(v.Articles) {
		a.cursor = max(0, len(v.Articles)-1)
	}
	if len(v.Articles) == 0 {
		a.detail = false
	}
}

func (a *App) selected() (entity.Article, bool) {
	if a.cursor < 0 || a.cursor >= len(a.view.Articles) {
		return entity.Article{}, false
	}
	return a.view.Articles[a.cursor], true
}

// Run starts the browser on the terminal until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	app := NewApp(opts)
	defer app.Close()
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
