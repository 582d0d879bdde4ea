// Package ytdlp mediates access to the yt-dlp CLI used to fetch captions,
// metadata, and audio.
//
// BuildOptions turns fetch configuration into the credential and capability
// flags passed to every invocation. Client runs the binary through an
// injectable Executor, parses the printed metadata, and classifies failures
// into the services error markers so callers can decide whether to retry,
// fall back, or give up.
package ytdlp
