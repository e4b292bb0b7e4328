package feed

import (
	"context"
	"sync"
	"time"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/infra/fallback"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/usecase/search"
	"guacamaya/pkg/debounce"
)

// View is everything a screen renders from the feed.
type View struct {
	Mode   Mode
	Source SourceKind
	// Articles is the filtered active list; Featured is its first entry when any.
	Articles []entity.Article
	Featured *entity.Article
	Tags     []string
	// Query is the committed, normalized query; RawQuery the latest input.
	Query      string
	RawQuery   string
	Tag        *string
	Err        string
	Refreshing bool
	UpdatedAt  time.Time
	// ActiveCount is the size of the active list before filtering.
	ActiveCount int
}

// Rest returns the filtered articles after the featured one.
func (v View) Rest() []entity.Article {
	if len(v.Articles) <= 1 {
		return nil
	}
	return v.Articles[1:]
}

// Screen is the view model of the home screen. Query input is debounced;
// tag selection applies immediately. It never mutates the store.
type Screen struct {
	store     *Store
	local     fallback.Dataset
	debouncer *debounce.Debouncer[string]

	mu        sync.Mutex
	state     State
	raw       string
	query     string
	tag       *string
	view      View
	listeners map[int]func(View)
	nextID    int
	unsub     func()
}

// ScreenOption customizes a Screen.
type ScreenOption func(*screenConfig)

type screenConfig struct {
	delay time.Duration
}

// WithDebounce sets the query quiet period. Defaults to debounce.DefaultDelay.
func WithDebounce(d time.Duration) ScreenOption {
	return func(c *screenConfig) { c.delay = d }
}

// NewScreen creates a screen over store, falling back to local.
func NewScreen(store *Store, local fallback.Dataset, opts ...ScreenOption) *Screen {
	cfg := screenConfig{delay: debounce.DefaultDelay}
	for _, opt := range opts {
		opt(&cfg)
	}
	sc := &Screen{
		store:     store,
		local:     local,
		listeners: map[int]func(View){},
	}
	sc.debouncer = debounce.New(cfg.delay, sc.commitQuery)

	sc.mu.Lock()
	sc.recomputeLocked()
	sc.mu.Unlock()

	// Subscribe before reading, so no change falls between the two.
	sc.unsub = store.Subscribe(sc.onState)
	sc.onState(store.Snapshot())
	return sc
}

// Close detaches the screen from the store and drops any pending query.
func (sc *Screen) Close() {
	sc.debouncer.Stop()
	sc.unsub()
}

// View returns the current view.
func (sc *Screen) View() View {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.view
}

// OnChange registers fn to receive every recomputed view.
func (sc *Screen) OnChange(fn func(View)) (cancel func()) {
	sc.mu.Lock()
	id := sc.nextID
	sc.nextID++
	sc.listeners[id] = fn
	sc.mu.Unlock()
	return func() {
		sc.mu.Lock()
		delete(sc.listeners, id)
		sc.mu.Unlock()
	}
}

// SetQuery records raw input. The effective query is committed once input
// has been quiet for the debounce delay.
func (sc *Screen) SetQuery(raw string) {
	sc.mu.Lock()
	sc.raw = raw
	sc.view.RawQuery = raw
	sc.mu.Unlock()
	sc.debouncer.Push(search.NormalizeQuery(raw))
}

// FlushQuery commits pending input immediately.
func (sc *Screen) FlushQuery() {
	sc.debouncer.Flush()
}

func (sc *Screen) commitQuery(q string) {
	sc.mu.Lock()
	if q == sc.query {
		sc.mu.Unlock()
		return
	}
	sc.query = q
	sc.recomputeAndNotify()
}

// SelectTag restricts the list to tag. An empty tag clears the restriction.
func (sc *Screen) SelectTag(tag string) {
	sc.mu.Lock()
	if tag == "" {
		sc.tag = nil
	} else {
		sc.tag = &tag
	}
	sc.recomputeAndNotify()
}

// ToggleTag selects tag, or clears it when it is already selected.
func (sc *Screen) ToggleTag(tag string) {
	sc.mu.Lock()
	if sc.tag != nil && *sc.tag == tag {
		sc.tag = nil
	} else {
		t := tag
		sc.tag = &t
	}
	sc.recomputeAndNotify()
}

// ClearFilters drops the query, pending input and tag.
func (sc *Screen) ClearFilters() {
	sc.debouncer.Cancel()
	sc.mu.Lock()
	sc.raw, sc.query, sc.tag = "", "", nil
	sc.recomputeAndNotify()
}

// Refresh asks the store for a manual refetch.
func (sc *Screen) Refresh(ctx context.Context) error {
	_, err := sc.store.Refetch(ctx)
	return err
}

// onState keeps the newest state. Listeners run on the goroutines that changed
// the store, so an older state can arrive after a newer one.
func (sc *Screen) onState(st State) {
	sc.mu.Lock()
	if sc.state.Version != 0 && st.Version <= sc.state.Version {
		sc.mu.Unlock()
		return
	}
	sc.state = st
	sc.recomputeAndNotify()
}

// recomputeAndNotify must be called with mu held; it releases it.
func (sc *Screen) recomputeAndNotify() {
	sc.recomputeLocked()
	v := sc.view
	fns := make([]func(View), 0, len(sc.listeners))
	for _, fn := range sc.listeners {
		fns = append(fns, fn)
	}
	sc.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

func (sc *Screen) recomputeLocked() {
	sc.view = Compose(sc.state, sc.local, sc.query, sc.tag)
	sc.view.RawQuery = sc.raw
	metrics.UpdateActiveArticles(string(sc.view.Source), sc.view.ActiveCount)
}

// Compose derives the view of st for a committed query and tag. The active
// list falls back to local when st has no articles.
func Compose(st State, local fallback.Dataset, query string, tag *string) View {
	active, source := Active(st.Articles, local)
	query = search.NormalizeQuery(query)
	res := search.Apply(active, query, tag)

	v := View{
		Mode:        Presentable(st, active),
		Source:      source,
		Articles:    res.Articles,
		Tags:        search.Tags(active),
		Query:       query,
		RawQuery:    query,
		Err:         st.Err,
		Refreshing:  st.Refreshing,
		UpdatedAt:   st.UpdatedAt,
		ActiveCount: len(active),
	}
	if res.HasFeatured {
		f := res.Featured
		v.Featured = &f
	}
	if tag != nil && *tag != "" {
		t := *tag
		v.Tag = &t
	}
	return v
}
