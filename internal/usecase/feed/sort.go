package feed

import (
	"sort"

	"guacamaya/internal/domain/entity"
)

// SortByDate orders list newest first with dateless articles last.
// The sort is stable: equal dates and dateless articles keep their order.
func SortByDate(list []entity.Article) {
	sort.SliceStable(list, func(i, j int) bool {
		return newer(list[i], list[j])
	})
}

func newer(a, b entity.Article) bool {
	switch {
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	default:
		return a.Date.After(*b.Date)
	}
}

// IsSorted reports whether list satisfies the ordering produced by SortByDate.
func IsSorted(list []entity.Article) bool {
	for i := 1; i < len(list); i++ {
		if newer(list[i], list[i-1]) {
			return false
		}
	}
	return true
}
