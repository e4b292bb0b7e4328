package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "article uuid", path: "/articles/0b9c7f5e-4a52-4f3e-9a56-3f1f4a0d2c11", expected: "/articles/:idOrSlug"},
		{name: "article slug", path: "/articles/crisis-hidrica-los-salias", expected: "/articles/:idOrSlug"},
		{name: "local numeric id", path: "/articles/2", expected: "/articles/:idOrSlug"},
		{name: "trailing slash", path: "/articles/2/", expected: "/articles/:idOrSlug"},
		{name: "query stripped", path: "/articles/2?x=1", expected: "/articles/:idOrSlug"},
		{name: "refresh stays", path: "/articles/refresh", expected: "/articles/refresh"},
		{name: "stream stays", path: "/articles/stream", expected: "/articles/stream"},
		{name: "feed", path: "/articles?q=agua&tag=Servicios", expected: "/articles"},
		{name: "tags", path: "/tags", expected: "/tags"},
		{name: "health", path: "/health", expected: "/health"},
		{name: "metrics", path: "/metrics", expected: "/metrics"},
		{name: "root", path: "/", expected: "/"},
		{name: "nested under article", path: "/articles/2/comments", expected: "other"},
		{name: "unknown", path: "/wp-login.php", expected: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.path))
		})
	}
}

func TestNormalizePath_BoundedCardinality(t *testing.T) {
	seen := map[string]struct{}{}
	for _, p := range []string{
		"/articles/a", "/articles/b", "/articles/c", "/x", "/y/z", "/articles/refresh",
		"/articles", "/tags", "/health", "/ready", "/live", "/metrics", "/", "/articles/stream",
	} {
		seen[NormalizePath(p)] = struct{}{}
	}
	assert.LessOrEqual(t, len(seen), GetExpectedCardinality())
}

func BenchmarkNormalizePath(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NormalizePath("/articles/0b9c7f5e-4a52-4f3e-9a56-3f1f4a0d2c11")
	}
}
