// Command guacamaya serves and browses the Guacamaya news feed.
//
// Subcommands:
//
//	serve      HTTP API with realtime sync, periodic resync and SSE stream
//	browse     terminal home screen with debounced search and tag filter
//	feed       print the composed feed once
//	article    print one article by id or slug
//	auth       demo sign-in state kept in device storage
//	migrate    apply the articles schema
//	seed       upsert the fallback dataset into the remote table
//	publish    mark a remote row as published
//	unpublish  move a remote row back to draft
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
