package feed

import (
	"guacamaya/internal/domain/entity"
	"guacamaya/internal/infra/fallback"
)

// SourceKind names where the active list came from.
type SourceKind string

const (
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// Mode is what the presentation layer should render.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModeError   Mode = "error"
	ModeReady   Mode = "ready"
)

// Active picks the list shown to readers: the remote list when it has any
// article, otherwise the whole fallback dataset. The two are never mixed.
func Active(remote []entity.Article, local fallback.Dataset) ([]entity.Article, SourceKind) {
	if len(remote) > 0 {
		return remote, SourceRemote
	}
	return local.Articles(), SourceLocal
}

// Presentable decides how to render st given the active list: a full-screen
// loader during the first fetch while there is no remote data, a full-screen
// error only when there is nothing at all to show, and the list otherwise.
func Presentable(st State, active []entity.Article) Mode {
	switch {
	case st.Loading && len(st.Articles) == 0:
		return ModeLoading
	case st.Err != "" && len(active) == 0:
		return ModeError
	default:
		return ModeReady
	}
}
