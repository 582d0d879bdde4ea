package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tubescribe/internal/logging"
	"tubescribe/internal/services"
)

const stage = "ytdlp"

// Executor abstracts command execution for testability. Run returns the
// command's standard output; a failed run returns an error whose text
// includes standard error.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger attaches a logger for fallback decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Mode selects what an invocation retrieves.
type Mode int

const (
	// ModeInfo prints metadata without downloading anything.
	ModeInfo Mode = iota
	// ModeSubtitles writes manual and automatic VTT tracks.
	ModeSubtitles
	// ModeAudio downloads the best audio stream as mp3.
	ModeAudio
)

func (m Mode) String() string {
	switch m {
	case ModeSubtitles:
		return "subtitles"
	case ModeAudio:
		return "audio"
	default:
		return "info"
	}
}

// Request describes one invocation.
type Request struct {
	Mode      Mode
	WorkDir   string
	Languages []string
	// Raw skips format processing so metadata survives format negotiation
	// failures.
	Raw bool
}

func (r Request) args() []string {
	args := []string{"--no-warnings", "--no-playlist", "--ignore-config", "--dump-single-json"}
	switch r.Mode {
	case ModeSubtitles:
		args = append(args,
			"--no-simulate",
			"--skip-download",
			"--write-subs",
			"--write-auto-subs",
			"--sub-format", "vtt",
			"--sub-langs", strings.Join(r.Languages, ","),
			"-o", filepath.Join(r.WorkDir, "%(id)s"),
		)
	case ModeAudio:
		args = append(args,
			"--no-simulate",
			"-f", "bestaudio/best",
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "64K",
			"--restrict-filenames",
			"-o", filepath.Join(r.WorkDir, "%(id)s.%(ext)s"),
		)
	default:
		args = append(args, "--skip-download")
		if r.Raw {
			args = append(args, "--ignore-no-formats-error")
		}
	}
	return args
}

// VideoInfo is the subset of yt-dlp metadata the pipeline uses.
type VideoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
}

func parseVideoInfo(url string, payload []byte) (VideoInfo, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return VideoInfo{}, errors.New("empty metadata output")
	}
	// Playlists or multi-line output: the last JSON line is the video.
	if idx := bytes.LastIndexByte(payload, '\n'); idx >= 0 {
		payload = payload[idx+1:]
	}
	var info VideoInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return VideoInfo{}, fmt.Errorf("decode metadata: %w", err)
	}
	if strings.TrimSpace(info.Title) == "" {
		info.Title = "Unknown Title"
	}
	if strings.TrimSpace(info.ID) == "" {
		info.ID = "UnknownID"
	}
	if strings.TrimSpace(info.WebpageURL) == "" {
		info.WebpageURL = url
	}
	return info, nil
}

// Extract runs a single yt-dlp invocation. Failures are tagged with the
// classified services marker.
func (c *Client) Extract(ctx context.Context, url string, opts Options, req Request) (VideoInfo, error) {
	if strings.TrimSpace(url) == "" {
		return VideoInfo{}, services.Wrap(services.ErrValidation, stage, req.Mode.String(), "url required", nil)
	}
	if req.Mode != ModeInfo && req.WorkDir != "" {
		if err := os.MkdirAll(req.WorkDir, 0o755); err != nil {
			return VideoInfo{}, services.Wrap(services.ErrConfiguration, stage, req.Mode.String(), "create work directory", err)
		}
	}
	args := append(opts.Args(), req.args()...)
	args = append(args, "--", url)

	stdout, err := c.exec.Run(ctx, c.binary, args)
	if err != nil {
		return VideoInfo{}, services.Wrap(Classify(err), stage, req.Mode.String(), "yt-dlp failed", err)
	}
	info, err := parseVideoInfo(url, stdout)
	if err != nil {
		return VideoInfo{}, services.Wrap(services.ErrExternalTool, stage, req.Mode.String(), "parse yt-dlp output", err)
	}
	return info, nil
}

// ExtractWithFallback runs Extract and, when format negotiation fails while
// a capability hint is attached, retries once immediately without it.
func (c *Client) ExtractWithFallback(ctx context.Context, url string, opts Options, req Request) (VideoInfo, error) {
	info, err := c.Extract(ctx, url, opts, req)
	if err == nil || !errors.Is(err, services.ErrFormatUnavailable) || !opts.HasExtractorArgs() {
		return info, err
	}
	c.logger.Info("retrying without extractor args",
		logging.String(logging.FieldEventType, "ytdlp_extractor_fallback"),
		logging.String("mode", req.Mode.String()),
		logging.Strings("player_clients", opts.PlayerClients),
		logging.Error(err),
	)
	return c.Extract(ctx, url, opts.WithoutExtractorArgs(), req)
}

// FetchInfo retrieves video metadata. If format negotiation still fails
// after the extractor fallback, metadata is read in raw mode.
func (c *Client) FetchInfo(ctx context.Context, url string, opts Options) (VideoInfo, error) {
	info, err := c.ExtractWithFallback(ctx, url, opts, Request{Mode: ModeInfo})
	if err == nil || !errors.Is(err, services.ErrFormatUnavailable) {
		return info, err
	}
	c.logger.Info("reading raw metadata",
		logging.String(logging.FieldEventType, "ytdlp_raw_info_fallback"),
		logging.Error(err),
	)
	return c.Extract(ctx, url, opts, Request{Mode: ModeInfo, Raw: true})
}

// FetchAudio downloads the best audio track as <id>.mp3 into workDir.
func (c *Client) FetchAudio(ctx context.Context, url, workDir string, opts Options) (VideoInfo, error) {
	return c.ExtractWithFallback(ctx, url, opts, Request{Mode: ModeAudio, WorkDir: workDir})
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, lastLines(detail, 5))
	}
	return stdout.Bytes(), nil
}

func lastLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// Bound pairs a client with the options built for a run.
type Bound struct {
	client  *Client
	options Options
}

// Bind returns a view of the client that always uses opts.
func (c *Client) Bind(opts Options) *Bound {
	return &Bound{client: c, options: opts}
}

// Options returns the bound options.
func (b *Bound) Options() Options {
	return b.options
}

// FetchInfo retrieves metadata with the bound options.
func (b *Bound) FetchInfo(ctx context.Context, url string) (VideoInfo, error) {
	return b.client.FetchInfo(ctx, url, b.options)
}

// FetchAudio downloads audio with the bound options.
func (b *Bound) FetchAudio(ctx context.Context, url, workDir string) (VideoInfo, error) {
	return b.client.FetchAudio(ctx, url, workDir, b.options)
}
