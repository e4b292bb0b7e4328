package entity

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// RemoteRow is a row of the remote articles table.
// Nullable columns are pointers so a missing value can be told apart from an empty one.
type RemoteRow struct {
	ID       string     `json:"id"`
	Title    *string    `json:"title"`
	Excerpt  *string    `json:"excerpt"`
	Content  *string    `json:"content"`
	Author   *string    `json:"author"`
	Date     *time.Time `json:"date"`
	CoverURL *string    `json:"cover_url"`
	Tags     []string   `json:"tags"`
	Status   *string    `json:"status"`
}

// Published reports whether the row carries the published status marker.
func (r RemoteRow) Published() bool {
	return r.Status != nil && *r.Status == StatusPublished
}

// LocalRow is a record of the bundled fallback dataset.
type LocalRow struct {
	ID          string `yaml:"id" json:"id,omitempty"`
	Slug        string `yaml:"slug" json:"slug,omitempty"`
	Title       string `yaml:"title" json:"title"`
	Summary     string `yaml:"summary" json:"summary,omitempty"`
	CoverURL    string `yaml:"cover_url" json:"cover_url,omitempty"`
	Image       string `yaml:"image" json:"image,omitempty"`
	Content     string `yaml:"content" json:"content,omitempty"`
	Tag         string `yaml:"tag" json:"tag,omitempty"`
	Author      string `yaml:"author" json:"author,omitempty"`
	PublishedAt string `yaml:"published_at" json:"published_at,omitempty"`
	ReadMins    int    `yaml:"read_mins" json:"read_mins,omitempty"`
}

// ArticleSource is one of the shapes an article can arrive in.
// Only Remote and Local implement it.
type ArticleSource interface {
	articleSource()
}

// Remote wraps a row of the remote table.
type Remote struct {
	Row RemoteRow
}

// Local wraps a fallback row together with its position in the dataset.
type Local struct {
	Row   LocalRow
	Index int
}

func (Remote) articleSource() {}
func (Local) articleSource()  {}

// Normalize maps any article source into the canonical Article.
func Normalize(src ArticleSource) Article {
	switch s := src.(type) {
	case Remote:
		return FromRemote(s.Row)
	case Local:
		return FromLocal(s.Row, s.Index)
	default:
		return Article{Tag: DefaultTag}
	}
}

// FromRemote maps a remote row into the canonical Article. It never fails.
func FromRemote(r RemoteRow) Article {
	tag := DefaultTag
	if len(r.Tags) > 0 && r.Tags[0] != "" {
		tag = r.Tags[0]
	}
	a := Article{
		ID:      r.ID,
		Title:   deref(r.Title),
		Summary: deref(r.Excerpt),
		Tag:     tag,
		Image:   deref(r.CoverURL),
		Content: deref(r.Content),
		Author:  deref(r.Author),
	}
	if r.Date != nil {
		d := *r.Date
		a.Date = &d
	}
	return a
}

// FromLocal maps a fallback row into the canonical Article. It never fails.
// Rows without id or slug get an identifier derived from the title and position,
// so the same row always gets the same id.
func FromLocal(r LocalRow, index int) Article {
	tag := r.Tag
	if tag == "" {
		tag = DefaultTag
	}
	image := r.Image
	if image == "" {
		image = r.CoverURL
	}
	return Article{
		ID:       LocalID(r, index),
		Slug:     r.Slug,
		Title:    r.Title,
		Summary:  r.Summary,
		Tag:      tag,
		Image:    image,
		Content:  r.Content,
		Author:   r.Author,
		Date:     parseDate(r.PublishedAt),
		ReadMins: r.ReadMins,
	}
}

// LocalDetail maps a fallback row for the detail view, where the author defaults
// to the newsroom and the content falls back to the summary.
func LocalDetail(r LocalRow, index int) Article {
	a := FromLocal(r, index)
	if a.Author == "" {
		a.Author = "Redacción"
	}
	if a.Content == "" {
		a.Content = a.Summary
	}
	return a
}

// LocalID returns the identifier of a fallback row: its id, else its slug,
// else a stable hash of title and index.
func LocalID(r LocalRow, index int) string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	if slug := strings.TrimSpace(r.Slug); slug != "" {
		return slug
	}
	sum := sha1.Sum([]byte(r.Title + "#" + strconv.Itoa(index)))
	return "local-" + hex.EncodeToString(sum[:])[:12]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
