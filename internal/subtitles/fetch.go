package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"tubescribe/internal/config"
	"tubescribe/internal/language"
	"tubescribe/internal/logging"
	"tubescribe/internal/services"
	"tubescribe/internal/services/ytdlp"
)

const stage = "subtitles"

// Extractor performs one upstream retrieval, including the single
// capability fallback.
type Extractor interface {
	ExtractWithFallback(ctx context.Context, url string, opts ytdlp.Options, req ytdlp.Request) (ytdlp.VideoInfo, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// RetryPolicy bounds the rate-limit retry loop.
type RetryPolicy struct {
	Attempts  int
	BaseSleep time.Duration
}

// RetryPolicyFromConfig converts fetch settings into a policy.
func RetryPolicyFromConfig(cfg config.Fetch) RetryPolicy {
	return RetryPolicy{
		Attempts:  cfg.RetryAttempts,
		BaseSleep: time.Duration(cfg.RetryBaseSleep * float64(time.Second)),
	}
}

// MaxAttempts clamps the configured attempts to [1, config.MaxRetryAttempts].
func (p RetryPolicy) MaxAttempts() int {
	return max(1, min(p.Attempts, config.MaxRetryAttempts))
}

// Backoff returns the sleep after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseSleep * time.Duration(1<<uint(attempt-1))
}

// Transcript is a located and cleaned caption track.
type Transcript struct {
	Text     string
	Language string
	Path     string
	Info     ytdlp.VideoInfo

	Attempts int
	Sleeps   []time.Duration
	// DetectedLanguage is the ISO 639-1 code guessed from Text, empty when
	// there is nothing to inspect.
	DetectedLanguage string
}

// Fetcher downloads caption tracks with rate-limit retries.
type Fetcher struct {
	extractor Extractor
	options   ytdlp.Options
	policy    RetryPolicy
	sleep     Sleeper
	logger    *slog.Logger
}

// NewFetcher constructs a fetcher. Options are used verbatim for every attempt.
func NewFetcher(extractor Extractor, opts ytdlp.Options, policy RetryPolicy, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		extractor: extractor,
		options:   opts,
		policy:    policy,
		sleep:     SleepWithContext,
		logger:    logger,
	}
}

// WithSleeper replaces the backoff sleeper (for testing).
func (f *Fetcher) WithSleeper(sleep Sleeper) {
	if sleep != nil {
		f.sleep = sleep
	}
}

// FetchSubtitles downloads captions for url into workDir and returns the
// cleaned text of the first language in languages that produced a file.
// found is false when the fetch succeeded but no requested language exists.
func (f *Fetcher) FetchSubtitles(ctx context.Context, url, workDir string, languages []string) (Transcript, bool, error) {
	if f == nil || f.extractor == nil {
		return Transcript{}, false, services.Wrap(services.ErrConfiguration, stage, "fetch", "extractor unavailable", nil)
	}
	languages = language.Tags(languages)
	if len(languages) == 0 {
		return Transcript{}, false, services.Wrap(services.ErrValidation, stage, "fetch", "no subtitle languages requested", nil)
	}
	logger := logging.WithContext(ctx, f.logger)
	maxAttempts := f.policy.MaxAttempts()
	req := ytdlp.Request{Mode: ytdlp.ModeSubtitles, WorkDir: workDir, Languages: languages}

	result := Transcript{}
	for attempt := 1; ; attempt++ {
		result.Attempts = attempt
		info, err := f.extractor.ExtractWithFallback(ctx, url, f.options, req)
		if err == nil {
			result.Info = info
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, false, services.Cancelled(stage, ctxErr)
		}
		if !errors.Is(err, services.ErrRateLimited) || attempt >= maxAttempts {
			return result, false, err
		}
		backoff := f.policy.Backoff(attempt)
		attrs := append(logging.Attempt(attempt, maxAttempts),
			logging.Duration("backoff", backoff),
			logging.Error(err),
			logging.String(logging.FieldEventType, "subtitle_rate_limited"),
			logging.String(logging.FieldErrorHint, "wait for upstream rate limits or configure cookies"),
		)
		logger.Warn("subtitle fetch rate limited, retrying", logging.Args(attrs...)...)
		result.Sleeps = append(result.Sleeps, backoff)
		if err := f.sleep(ctx, backoff); err != nil {
			return result, false, services.Cancelled(stage, err)
		}
	}

	path, lang, ok := locateTrack(workDir, result.Info.ID, languages)
	if !ok {
		logger.Info("no subtitle track for requested languages",
			logging.String(logging.FieldEventType, "subtitle_not_found"),
			logging.Languages(languages),
		)
		return result, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return result, false, services.Wrap(services.ErrExternalTool, stage, "read track", fmt.Sprintf("read %s", filepath.Base(path)), err)
	}

	result.Path = path
	result.Language = lang
	result.Text = Clean(string(data))
	if strings.TrimSpace(result.Text) != "" {
		result.DetectedLanguage = whatlanggo.DetectLang(result.Text).Iso6391()
	}
	if result.DetectedLanguage != "" && !language.Same(result.DetectedLanguage, lang) {
		logger.Info("subtitle language differs from track label",
			logging.String(logging.FieldEventType, "subtitle_language_mismatch"),
			logging.String("track_language", lang),
			logging.String("detected_language", result.DetectedLanguage),
		)
	}
	logger.Debug("subtitle track cleaned",
		logging.String("language", lang),
		logging.Int("attempts", result.Attempts),
		logging.Int("chars", len(result.Text)),
	)
	return result, true, nil
}

// locateTrack returns the first <id>.<lang>.vtt present in workDir, in
// preference order.
func locateTrack(workDir, id string, languages []string) (string, string, bool) {
	for _, lang := range languages {
		path := filepath.Join(workDir, fmt.Sprintf("%s.%s.vtt", id, lang))
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, lang, true
		}
	}
	return "", "", false
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
