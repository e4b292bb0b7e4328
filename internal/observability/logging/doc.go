// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for the logging patterns used by the server, the realtime listener and the CLI.
//
// Example usage:
//
//	import "guacamaya/internal/observability/logging"
//
//	func main() {
//	    logger := logging.New(logging.Options{Level: "info", Format: "json"})
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("processing request")
//	}
package logging
