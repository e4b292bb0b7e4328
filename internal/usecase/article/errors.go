// Package article resolves a single article for the detail view, from the
// remote table or the bundled fallback dataset.
package article

import "errors"

// Sentinel errors for article lookups.
var (
	// ErrArticleNotFound indicates that no visible article matches the identifier.
	// It is distinct from transport failures, which are returned wrapped.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates an empty identifier.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
