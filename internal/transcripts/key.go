package transcripts

import (
	"errors"
	"strings"

	"tubescribe/internal/textutil"
)

// Category separates artifacts produced by different acquisition paths.
type Category string

const (
	CategorySubtitles     Category = "subtitles"
	CategoryTranscription Category = "transcription"
)

// Key identifies one cached artifact.
type Key struct {
	SourceID string
	Category Category
	// Language applies to subtitles only.
	Language string
}

// SubtitlesKey returns the key for a subtitle transcript in lang.
func SubtitlesKey(sourceID, lang string) Key {
	return Key{SourceID: sourceID, Category: CategorySubtitles, Language: lang}
}

// TranscriptionKey returns the key for an audio transcription.
func TranscriptionKey(sourceID string) Key {
	return Key{SourceID: sourceID, Category: CategoryTranscription}
}

// Validate reports missing or inconsistent fields.
func (k Key) Validate() error {
	if strings.TrimSpace(k.SourceID) == "" {
		return errors.New("source id required")
	}
	switch k.Category {
	case CategorySubtitles:
		if strings.TrimSpace(k.Language) == "" {
			return errors.New("subtitle key requires a language")
		}
	case CategoryTranscription:
	default:
		return errors.New("unknown category " + string(k.Category))
	}
	return nil
}

// FileName returns {sourceId}_{category}[_{lang}].txt.
func (k Key) FileName() string {
	name := textutil.SafeToken(k.SourceID) + "_" + string(k.Category)
	if k.Category == CategorySubtitles && k.Language != "" {
		name += "_" + textutil.SafeToken(k.Language)
	}
	return name + ".txt"
}

// Digest returns a SHA-256 fingerprint of the canonical key.
func (k Key) Digest() string {
	lang := ""
	if k.Category == CategorySubtitles {
		lang = strings.ToLower(strings.TrimSpace(k.Language))
	}
	return textutil.Digest(strings.TrimSpace(k.SourceID), string(k.Category), lang)
}

func (k Key) String() string {
	if k.Category == CategorySubtitles {
		return string(k.Category) + ":" + k.Language + "/" + k.SourceID
	}
	return string(k.Category) + "/" + k.SourceID
}
