// Package pathutil maps request paths to route templates for metric and log labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// staticArticleRoutes are literal paths under /articles that must not be
// mistaken for an article id or slug.
var staticArticleRoutes = map[string]struct{}{
	"/articles/refresh": {},
	"/articles/stream":  {},
}

// pathPatterns defines the dynamic routes, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/articles/[^/]+$`), Template: "/articles/:idOrSlug"},
}

// NormalizePath converts paths carrying an article id or slug
// (e.g. /articles/crisis-hidrica-los-salias) to their template
// (/articles/:idOrSlug) so metric labels stay bounded. Unknown paths are
// collapsed to "other" for the same reason; known static paths pass through.
//
//	NormalizePath("/articles/0b9c7f5e-4a52-4f3e-9a56-3f1f4a0d2c11") // "/articles/:idOrSlug"
//	NormalizePath("/articles/refresh")                               // "/articles/refresh"
//	NormalizePath("/articles?q=agua")                                // "/articles"
//	NormalizePath("/wp-login.php")                                   // "other"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	if _, ok := staticArticleRoutes[path]; ok {
		return path
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return "other"
}

var knownRoutes = map[string]struct{}{
	"/":         {},
	"/articles": {},
	"/tags":     {},
	"/health":   {},
	"/ready":    {},
	"/live":     {},
	"/metrics":  {},
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	return len(knownRoutes) + len(staticArticleRoutes) + len(pathPatterns) + 1
}
