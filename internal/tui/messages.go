package tui

import "guacamaya/internal/usecase/feed"

// viewMsg carries a view recomputed by the screen.
type viewMsg struct {
	view feed.View
}

type refreshDoneMsg struct {
	err error
}
