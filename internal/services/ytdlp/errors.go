package ytdlp

import (
	"context"
	"errors"
	"strings"

	"tubescribe/internal/services"
)

var (
	formatUnavailableTokens = []string{"Requested format is not available"}
	rateLimitTokens         = []string{"HTTP Error 429", "Too Many Requests"}
)

// Classify maps a yt-dlp failure to one of services.ErrFormatUnavailable,
// services.ErrRateLimited, services.ErrCancelled or services.ErrUpstream.
// Errors already carrying a marker keep it. Nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, marker := range []error{services.ErrCancelled, services.ErrFormatUnavailable, services.ErrRateLimited} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return services.ErrCancelled
	}
	message := err.Error()
	if containsAny(message, formatUnavailableTokens) {
		return services.ErrFormatUnavailable
	}
	if containsAny(message, rateLimitTokens) {
		return services.ErrRateLimited
	}
	return services.ErrUpstream
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
