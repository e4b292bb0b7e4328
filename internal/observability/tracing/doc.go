// Package tracing provides OpenTelemetry tracing integration.
//
// The server wraps its mux with Middleware, and the feed store and the
// Postgres adapter open child spans through Start. Init installs an SDK
// tracer provider; without it the global no-op provider is used.
//
//	shutdown := tracing.Init(tracing.Config{ServiceName: "guacamaya", SampleRatio: 0.1})
//	defer shutdown(context.Background())
package tracing
