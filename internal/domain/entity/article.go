// Package entity defines the core domain entities of the article feed.
// It contains the canonical Article, the source-specific row shapes it is built from,
// realtime change events, the demo user, and domain-level errors.
package entity

import (
	"strings"
	"time"
)

const (
	// StatusPublished is the remote status marker required for an article to be visible.
	StatusPublished = "published"

	// DefaultTag is the category assigned to articles that carry no tag.
	DefaultTag = "Noticias"

	// TableArticles is the remote table the feed is synchronized from.
	TableArticles = "articles"
)

// Article is the canonical, post-normalization article shown to readers.
// Optional text fields use the empty string for "absent"; Date is nil when absent.
type Article struct {
	ID       string     `json:"id"`
	Slug     string     `json:"slug,omitempty"`
	Title    string     `json:"title"`
	Summary  string     `json:"summary"`
	Tag      string     `json:"tag"`
	Image    string     `json:"image,omitempty"`
	Content  string     `json:"content,omitempty"`
	Author   string     `json:"author,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	ReadMins int        `json:"read_mins,omitempty"`
}

// HasDate reports whether the article carries a publication date.
func (a Article) HasDate() bool {
	return a.Date != nil
}

// parseDate parses an ISO-8601 timestamp. Values that cannot be parsed are treated as absent.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
