// Package timeouts defines shared timeout constants used across the bot.
package timeouts

import "time"

// InteractionResponse is the window Discord allows before an interaction
// must be acknowledged. Handlers run under a context bounded by it.
const InteractionResponse = 3 * time.Second

// StoreQuery caps a single read against the dex database.
const StoreQuery = 2 * time.Second

// ReadHeader limits how long the metrics HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second
