package logging

import (
	"log/slog"
	"time"
)

type Attr = slog.Attr

// Keys shared by fetch, cache and history log lines.
const (
	FieldError          = "error"
	FieldPath           = "path"
	FieldAttempt        = "attempt"
	FieldMaxAttempts    = "max_attempts"
	FieldLanguages      = "languages"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"
)

// Defaults injected by WarnWithContext when the caller supplies none.
const (
	defaultWarnHint   = "re-run with --log-level debug to see yt-dlp output"
	defaultWarnImpact = "transcript request continues"
)

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Strings(key string, values []string) Attr { return slog.Any(key, values) }

func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

// Path tags a scratch, cache or history file.
func Path(path string) Attr { return slog.String(FieldPath, path) }

// Languages tags the subtitle languages a fetch asked for.
func Languages(tags []string) Attr { return slog.Any(FieldLanguages, tags) }

// Attempt tags a position in the rate-limit retry loop.
func Attempt(attempt, maxAttempts int) []Attr {
	return []Attr{Int(FieldAttempt, attempt), Int(FieldMaxAttempts, maxAttempts)}
}

// Args converts attrs for the variadic slog methods.
func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger
// discards output.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	if !hasKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, defaultWarnHint))
	}
	if !hasKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, defaultWarnImpact))
	}
	logger.Warn(msg, Args(attrs...)...)
}

func hasKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// DecisionAttrs describes an automatic choice, such as serving from cache
// or attaching default remote components.
func DecisionAttrs(decisionType, result, reason string) []Attr {
	return []Attr{
		String(FieldDecisionType, decisionType),
		String(FieldDecisionResult, result),
		String(FieldDecisionReason, reason),
	}
}
