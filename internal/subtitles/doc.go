// Package subtitles turns upstream caption tracks into plain transcript text.
//
// Clean is a line-oriented state machine that strips WebVTT structure, inline
// markup and rolling-caption repeats. Fetcher drives the retrieval tool for
// caption tracks, retrying rate-limited attempts with exponential backoff and
// picking the first available track in language preference order.
package subtitles
