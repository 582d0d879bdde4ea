// Package main hosts the tubescribe CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation, builds
// the retrieval pipeline (yt-dlp client, subtitle fetcher, transcript cache
// and processor) on demand, and renders cache, history and status views for
// the terminal. Commands stay thin: behaviour lives in the internal packages
// and is surfaced here through flags and output formatting.
package main
