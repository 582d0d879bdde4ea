// Package language normalizes subtitle language codes.
//
// Callers pass whatever the user or yt-dlp supplied ("en", "eng", "en-US",
// "English") and get back the ISO 639-1 code used for subtitle file names and
// cache keys. Parsing and display names come from golang.org/x/text.
package language
