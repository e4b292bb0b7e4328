package search

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"guacamaya/internal/domain/entity"
)

// Collators are not safe for concurrent use.
var collators = sync.Pool{
	New: func() any {
		return collate.New(language.Spanish, collate.Loose)
	},
}

// CompareTags orders two tags for Spanish readers, ignoring case and accents.
func CompareTags(a, b string) int {
	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	return c.CompareString(a, b)
}

// Tags returns the distinct tags of list sorted with CompareTags.
// Only identical strings are merged; tags that compare equal keep first-seen order.
func Tags(list []entity.Article) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, a := range list {
		if _, ok := seen[a.Tag]; ok {
			continue
		}
		seen[a.Tag] = struct{}{}
		out = append(out, a.Tag)
	}

	c := collators.Get().(*collate.Collator)
	defer collators.Put(c)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i], out[j]) < 0
	})
	return out
}
