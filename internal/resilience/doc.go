// Package resilience provides reliability and fault tolerance patterns for the application.
//
// The package supports:
//   - A circuit breaker around the remote article repository, so a dead
//     database fails fast and the feed falls back to the bundled dataset
//   - Retry logic with exponential backoff and jitter for the realtime
//     listen connection
//
// Usage Example:
//
//	repo := circuitbreaker.NewArticleRepository(postgres.NewArticleRepo(db), circuitbreaker.DBConfig())
//
//	err := retry.WithBackoff(ctx, retry.ListenConfig(), func() error {
//	    return reconnect(ctx)
//	})
package resilience
