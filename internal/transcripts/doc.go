// Package transcripts stores cleaned transcript text on disk, one file per
// cache key.
//
// Keys combine the video identifier with a category (subtitles per language,
// or audio transcription) so artifacts for the same video never collide. A
// stored file with zero bytes counts as a miss, writes replace files
// atomically, and Lock offers an optional per-key file lock for callers that
// want to collapse concurrent misses.
package transcripts
