package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"guacamaya/internal/usecase/feed"
)

// StreamKeepAlive is how often an idle feed stream sends a comment line.
const StreamKeepAlive = 15 * time.Second

// Stream handles GET /articles/stream. It sends the composed view for the
// request's q and tag as a server-sent "feed" event, then again on every
// store change. Changes arriving faster than the client reads are coalesced,
// and each send reads the store's current state, so a client never sees an
// older state after a newer one.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the server write timeout does not apply to a long-lived stream
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sseClients.Inc()
	defer sseClients.Dec()

	// 通知は合図だけ。状態は送信時に読み直す
	changed := make(chan struct{}, 1)
	cancel := h.Store.Subscribe(func(feed.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	var sent uint64
	send := func(st feed.State) error {
		if sent != 0 && st.Version <= sent {
			return nil
		}
		sent = st.Version
		data, err := json.Marshal(h.compose(st, r))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: feed\ndata: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	if err := send(h.Store.Snapshot()); err != nil {
		slog.Warn("feed stream: initial send failed", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(StreamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if err := send(h.Store.Snapshot()); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
