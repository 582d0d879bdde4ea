package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tubescribe/internal/config"
	"tubescribe/internal/language"
	"tubescribe/internal/logging"
	"tubescribe/internal/services"
	"tubescribe/internal/services/ytdlp"
	"tubescribe/internal/subtitles"
	"tubescribe/internal/textutil"
	"tubescribe/internal/transcripts"
)

// Method selects how a transcript is acquired.
type Method string

const (
	MethodSubtitles Method = "subs"
	MethodAudio     Method = "audio"
)

// ParseMethod accepts "subs"/"subtitles" and "audio".
func ParseMethod(value string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "subs", "subtitles":
		return MethodSubtitles, nil
	case "audio":
		return MethodAudio, nil
	default:
		return "", fmt.Errorf("unknown processing method %q (want subs or audio)", value)
	}
}

// Level is the severity of a progress notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier receives progress messages. Delivery is fire-and-forget.
type Notifier func(level Level, message string)

// InfoFetcher retrieves video metadata.
type InfoFetcher interface {
	FetchInfo(ctx context.Context, url string) (ytdlp.VideoInfo, error)
}

// SubtitleFetcher downloads and cleans caption tracks.
type SubtitleFetcher interface {
	FetchSubtitles(ctx context.Context, url, workDir string, languages []string) (subtitles.Transcript, bool, error)
}

// AudioFetcher downloads the audio track as mp3 into workDir.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, url, workDir string) (ytdlp.VideoInfo, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// Request describes one processing run.
type Request struct {
	URL      string
	Language string
	Method   Method
	// Info skips the metadata fetch when the caller already has it.
	Info   *ytdlp.VideoInfo
	Notify Notifier
}

// Result is the outcome of a successful run.
type Result struct {
	RequestID   string
	Text        string
	FromCache   bool
	DisplayName string
	Path        string
	Category    transcripts.Category
	Language    string
	Info        ytdlp.VideoInfo
	Attempts    int
}

// Option configures a Processor.
type Option func(*Processor)

// WithAudio enables the audio transcription path.
func WithAudio(fetcher AudioFetcher, transcriber Transcriber) Option {
	return func(p *Processor) {
		p.audio = fetcher
		p.transcriber = transcriber
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor sequences cache lookup, fetch, clean, and persist.
type Processor struct {
	cfg         *config.Config
	cache       *transcripts.Cache
	info        InfoFetcher
	subs        SubtitleFetcher
	audio       AudioFetcher
	transcriber Transcriber
	logger      *slog.Logger
}

// New constructs a processor.
func New(cfg *config.Config, cache *transcripts.Cache, info InfoFetcher, subs SubtitleFetcher, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if cache == nil {
		return nil, errors.New("transcript cache required")
	}
	if info == nil || subs == nil {
		return nil, errors.New("info and subtitle fetchers required")
	}
	p := &Processor{
		cfg:    cfg,
		cache:  cache,
		info:   info,
		subs:   subs,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "processor")
	return p, nil
}

// Process returns transcript text for req.URL, from cache when possible.
// Every returned error is a *ProcessingError.
func (p *Processor) Process(ctx context.Context, req Request) (result Result, err error) {
	result.RequestID = uuid.NewString()
	notify := req.Notify
	if notify == nil {
		notify = func(Level, string) {}
	}
	defer func() {
		if err != nil {
			err = asProcessingError(err)
			notify(LevelError, err.Error())
		}
	}()

	url := strings.TrimSpace(req.URL)
	if url == "" {
		return result, newProcessingError("Missing video URL.", services.Wrap(services.ErrValidation, "processor", "process", "url required", nil))
	}
	requested := strings.TrimSpace(req.Language)
	if requested == "" {
		requested = p.cfg.Processing.DefaultLanguage
	}
	lang := language.Tag(requested)
	if lang == "" {
		return result, newProcessingError(fmt.Sprintf("Unsupported language %q.", req.Language), services.ErrValidation)
	}
	method := req.Method
	if method == "" {
		method = MethodSubtitles
	}
	if method != MethodSubtitles && method != MethodAudio {
		return result, newProcessingError("Unknown processing method.", services.ErrValidation)
	}

	ctx = services.WithRequestID(ctx, result.RequestID)
	result.Category = categoryFor(method)
	result.Language = lang
	ctx = services.WithCategory(ctx, string(result.Category))

	var info ytdlp.VideoInfo
	haveInfo := req.Info != nil
	if haveInfo {
		info = *req.Info
	}
	sourceID := info.ID
	if sourceID == "" {
		sourceID, _ = SourceIDFromURL(url)
	}
	if sourceID == "" {
		notify(LevelInfo, "Fetching video info...")
		if info, err = p.info.FetchInfo(ctx, url); err != nil {
			return result, err
		}
		haveInfo = true
		sourceID = info.ID
	}
	ctx = services.WithSourceID(ctx, sourceID)
	logger := logging.WithContext(ctx, p.logger)
	key := keyFor(method, sourceID, lang)

	if p.cfg.Cache.LockKeys {
		unlock, lockErr := p.cache.Lock(ctx, key)
		if lockErr != nil {
			return result, services.Cancelled("processor", lockErr)
		}
		defer unlock()
	}

	notify(LevelInfo, "Checking cache...")
	text, hit, lookupErr := p.cache.Lookup(key)
	if lookupErr != nil {
		logging.WarnWithContext(logger, "transcript cache lookup failed", "cache_lookup_failed",
			logging.String("key", key.String()),
			logging.Error(lookupErr),
			logging.String(logging.FieldErrorHint, "check transcripts directory permissions"),
			logging.String(logging.FieldImpact, "transcript will be fetched again"),
		)
	}
	if hit {
		if !haveInfo {
			info = ytdlp.VideoInfo{ID: sourceID, WebpageURL: url}
		}
		result.Text = text
		result.FromCache = true
		result.Path = p.cache.Path(key)
		result.Info = info
		result.DisplayName = displayName(info, key)
		if method == MethodSubtitles {
			notify(LevelInfo, "Using cached subtitles.")
		} else {
			notify(LevelInfo, "Using cached transcription.")
		}
		logger.Info("transcript served from cache", logging.Args(logging.DecisionAttrs("transcript_cache", "hit", key.String())...)...)
		return result, nil
	}

	if !haveInfo {
		notify(LevelInfo, "Fetching video info...")
		if info, err = p.info.FetchInfo(ctx, url); err != nil {
			return result, err
		}
		if info.ID != "" && info.ID != sourceID {
			logger.Warn("video id differs from url",
				logging.String(logging.FieldEventType, "source_id_mismatch"),
				logging.String("url_id", sourceID),
				logging.String("info_id", info.ID),
				logging.String(logging.FieldImpact, "transcript cached under metadata id"),
			)
			sourceID = info.ID
			key = keyFor(method, sourceID, lang)
		}
	}
	result.Info = info

	workDir := filepath.Join(p.cfg.Paths.DownloadsDir, textutil.Digest(url, string(result.Category), lang, result.RequestID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "processor", "scratch", "create scratch directory", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.WarnWithContext(logger, "failed to remove scratch directory", "scratch_cleanup_failed",
				logging.Path(workDir),
				logging.Error(rmErr),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()

	switch method {
	case MethodSubtitles:
		text, err = p.fetchSubtitles(ctx, url, workDir, lang, info, notify, &result)
	case MethodAudio:
		text, err = p.transcribeAudio(ctx, url, workDir, lang, info, notify)
	}
	if err != nil {
		return result, err
	}

	path, err := p.cache.Store(key, text)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "processor", "store", "persist transcript", err)
	}
	result.Text = text
	result.Path = path
	result.DisplayName = displayName(info, key)
	logger.Info("transcript stored",
		logging.String(logging.FieldEventType, "transcript_stored"),
		logging.Path(path),
		logging.Int("chars", len(text)),
		logging.Int("attempts", result.Attempts),
	)
	return result, nil
}

func (p *Processor) fetchSubtitles(ctx context.Context, url, workDir, lang string, info ytdlp.VideoInfo, notify Notifier, result *Result) (string, error) {
	notify(LevelInfo, "Checking for subtitles...")
	transcript, found, err := p.subs.FetchSubtitles(ctx, url, workDir, p.cfg.SubtitleLanguages(lang))
	result.Attempts = transcript.Attempts
	if err != nil {
		return "", err
	}
	if !found || strings.TrimSpace(transcript.Text) == "" {
		limit := p.cfg.Processing.MaxAudioDurationSeconds
		if limit > 0 && info.Duration > float64(limit) {
			return "", newProcessingError(fmt.Sprintf("Video is too long (>%ds) and no subtitles found.", limit), services.ErrNotFound)
		}
		return "", newProcessingError("No subtitles found. Try the audio option.", services.ErrNotFound)
	}
	if transcript.Language != "" && !strings.EqualFold(transcript.Language, lang) {
		notify(LevelInfo, fmt.Sprintf("Subtitles found in %s.", language.DisplayName(transcript.Language)))
	}
	notify(LevelInfo, "Subtitles found and downloaded.")
	return transcript.Text, nil
}

func (p *Processor) transcribeAudio(ctx context.Context, url, workDir, lang string, info ytdlp.VideoInfo, notify Notifier) (string, error) {
	limit := p.cfg.Processing.MaxAudioDurationSeconds
	if limit > 0 && info.Duration > float64(limit) {
		return "", newProcessingError("Video is too long for audio transcription. Please use subtitles.", services.ErrValidation)
	}
	if p.audio == nil || p.transcriber == nil {
		return "", newProcessingError("Audio transcription is not configured.", services.ErrConfiguration)
	}
	notify(LevelInfo, "Downloading and converting audio...")
	if _, err := p.audio.FetchAudio(ctx, url, workDir); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(workDir, "*.mp3"))
	if err != nil || len(matches) == 0 {
		return "", newProcessingError("No MP3 file found after download.", services.ErrNotFound)
	}
	notify(LevelInfo, "Transcribing audio...")
	text, err := p.transcriber.Transcribe(ctx, matches[0], lang)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", newProcessingError("Transcription returned no text.", services.ErrUpstream)
	}
	notify(LevelInfo, "Transcription complete.")
	return text, nil
}

func categoryFor(method Method) transcripts.Category {
	if method == MethodAudio {
		return transcripts.CategoryTranscription
	}
	return transcripts.CategorySubtitles
}

func keyFor(method Method, sourceID, lang string) transcripts.Key {
	if method == MethodAudio {
		return transcripts.TranscriptionKey(sourceID)
	}
	return transcripts.SubtitlesKey(sourceID, lang)
}

// displayName is "<safe title>_<id>_<category>[_<lang>].txt". Without a
// title the name falls back to the cache file name.
func displayName(info ytdlp.VideoInfo, key transcripts.Key) string {
	title := textutil.SafeTitle(info.Title)
	if title == "" {
		return key.FileName()
	}
	suffix := string(key.Category)
	if key.Category == transcripts.CategorySubtitles {
		suffix += "_" + key.Language
	}
	return fmt.Sprintf("%s_%s_%s.txt", title, key.SourceID, suffix)
}
