// Package search derives the visible article subset, the featured article and
// the tag catalog from an article list. Every function here is pure: the input
// list is never modified and equal inputs give equal outputs.
package search

import (
	"strings"

	"guacamaya/internal/domain/entity"
)

// Result is the filtered view of an article list.
type Result struct {
	// Articles is the filtered sequence.
	Articles []entity.Article
	// Featured is the first article of the active sequence; valid only when HasFeatured.
	Featured    entity.Article
	HasFeatured bool
}

// Rest returns the filtered articles after the first one, which is shown as featured.
func (r Result) Rest() []entity.Article {
	if len(r.Articles) <= 1 {
		return nil
	}
	return r.Articles[1:]
}

// NormalizeQuery trims and lower-cases raw query text.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Active reports whether a query or tag restriction is in effect.
func Active(query string, tag *string) bool {
	return NormalizeQuery(query) != "" || (tag != nil && *tag != "")
}

// Matches reports whether a satisfies the query and tag restriction.
// The query matches case-insensitively as a substring of title, summary or tag.
// The tag must equal a.Tag exactly; a nil or empty tag does not restrict.
func Matches(a entity.Article, query string, tag *string) bool {
	return matches(a, NormalizeQuery(query), tag)
}

func matches(a entity.Article, k string, tag *string) bool {
	if tag != nil && *tag != "" && a.Tag != *tag {
		return false
	}
	if k == "" {
		return true
	}
	return strings.Contains(strings.ToLower(a.Title), k) ||
		strings.Contains(strings.ToLower(a.Summary), k) ||
		strings.Contains(strings.ToLower(a.Tag), k)
}

// Filter returns the articles of list matching query and tag, in list order.
func Filter(list []entity.Article, query string, tag *string) []entity.Article {
	k := NormalizeQuery(query)
	out := make([]entity.Article, 0, len(list))
	for _, a := range list {
		if matches(a, k, tag) {
			out = append(out, a)
		}
	}
	return out
}

// Featured returns the first article of the filtered sequence when a filter
// is active, otherwise the first article of list.
func Featured(list []entity.Article, query string, tag *string) (entity.Article, bool) {
	base := list
	if Active(query, tag) {
		base = Filter(list, query, tag)
	}
	if len(base) == 0 {
		return entity.Article{}, false
	}
	return base[0], true
}

// Apply computes the filtered sequence and the featured article in one pass.
func Apply(list []entity.Article, query string, tag *string) Result {
	filtered := Filter(list, query, tag)
	res := Result{Articles: filtered}
	// With no filter active the filtered sequence is the list itself.
	if len(filtered) > 0 {
		res.Featured = filtered[0]
		res.HasFeatured = true
	}
	return res
}
