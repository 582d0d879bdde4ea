// Package processor turns a video URL into transcript text.
//
// Process checks the transcript cache first and returns cached text without
// touching the network. On a miss it allocates a scratch directory named by
// a digest of the request, fetches subtitles (or audio for transcription),
// stores the cleaned result, and removes the scratch directory on every exit
// path. Callers observe failures only as *ProcessingError and may pass a
// Notifier to receive progress messages.
package processor
