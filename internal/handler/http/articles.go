package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/handler/http/respond"
	"guacamaya/internal/infra/fallback"
	"guacamaya/internal/observability/metrics"
	"guacamaya/internal/resilience/circuitbreaker"
	artUC "guacamaya/internal/usecase/article"
	"guacamaya/internal/usecase/feed"
)

// FeedResponse is the JSON form of a composed feed view.
type FeedResponse struct {
	Source     string           `json:"source"`
	Mode       string           `json:"mode"`
	Featured   *entity.Article  `json:"featured"`
	Articles   []entity.Article `json:"articles"`
	Tags       []string         `json:"tags"`
	Query      string           `json:"query,omitempty"`
	Tag        *string          `json:"tag,omitempty"`
	Error      string           `json:"error,omitempty"`
	Refreshing bool             `json:"refreshing"`
	UpdatedAt  *time.Time       `json:"updated_at,omitempty"`
}

// ArticleResponse is returned by the detail endpoint.
type ArticleResponse struct {
	Article entity.Article `json:"article"`
	Origin  string         `json:"origin"`
}

// TagsResponse lists the tag catalog of the active list.
type TagsResponse struct {
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

// FeedHandler serves the article feed. Refresh may be nil to disable throttling.
type FeedHandler struct {
	Store   *feed.Store
	Local   fallback.Dataset
	Lookup  *artUC.Service
	Refresh *rate.Limiter
}

// List handles GET /articles?q=&tag=.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.compose(h.Store.Snapshot(), r))
}

// Tags handles GET /tags.
func (h *FeedHandler) Tags(w http.ResponseWriter, r *http.Request) {
	v := feed.Compose(h.Store.Snapshot(), h.Local, "", nil)
	respond.JSON(w, http.StatusOK, TagsResponse{Tags: nonNil(v.Tags), Source: string(v.Source)})
}

// Get handles GET /articles/{idOrSlug}.
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, origin, err := h.Lookup.Lookup(r.Context(), r.PathValue("idOrSlug"))
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, ArticleResponse{Article: a, Origin: string(origin)})
	case errors.Is(err, artUC.ErrInvalidArticleID):
		respond.SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, artUC.ErrArticleNotFound):
		respond.SafeError(w, http.StatusNotFound, err)
	case circuitbreaker.IsOpenError(err):
		respond.Fail(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, "article source unavailable", err))
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

// RefreshFeed handles POST /articles/refresh. It refetches the whole list and
// answers with the resulting view; callers over the limit get 429.
func (h *FeedHandler) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	if h.Refresh != nil && !h.Refresh.Allow() {
		metrics.RecordRefreshThrottled()
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter(h.Refresh)))
		respond.Fail(w, http.StatusTooManyRequests,
			respond.NewAppError(http.StatusTooManyRequests, "too many refresh requests", nil))
		return
	}

	if _, err := h.Store.Refetch(r.Context()); err != nil {
		if r.Context().Err() != nil {
			return
		}
		respond.Fail(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, "feed refresh failed", err))
		return
	}
	respond.JSON(w, http.StatusOK, h.compose(h.Store.Snapshot(), r))
}

func (h *FeedHandler) compose(st feed.State, r *http.Request) FeedResponse {
	q := r.URL.Query()
	var tag *string
	if t := strings.TrimSpace(q.Get("tag")); t != "" {
		tag = &t
	}
	return NewFeedResponse(feed.Compose(st, h.Local, q.Get("q"), tag))
}

// NewFeedResponse converts a composed view to its JSON shape.
func NewFeedResponse(v feed.View) FeedResponse {
	resp := FeedResponse{
		Source:     string(v.Source),
		Mode:       string(v.Mode),
		Featured:   v.Featured,
		Articles:   nonNil(v.Articles),
		Tags:       nonNil(v.Tags),
		Query:      v.Query,
		Tag:        v.Tag,
		Error:      respond.SanitizeMessage(v.Err),
		Refreshing: v.Refreshing,
	}
	if !v.UpdatedAt.IsZero() {
		t := v.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// retryAfter is the whole number of seconds until lim allows one more event.
func retryAfter(lim *rate.Limiter) int {
	res := lim.Reserve()
	if !res.OK() {
		return 60
	}
	d := res.Delay()
	res.Cancel()
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
