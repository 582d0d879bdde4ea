package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tubescribe/internal/language"
)

// Environment variables recognised as overrides. All are optional.
const (
	EnvCookiesFromBrowser = "COOKIES_FROM_BROWSER"
	EnvCookiesFile        = "COOKIES_FILE"
	EnvPlayerClient       = "YTDLP_PLAYER_CLIENT"
	EnvJSRuntimes         = "YTDLP_JS_RUNTIMES"
	EnvRemoteComponents   = "YTDLP_REMOTE_COMPONENTS"
	EnvRetryAttempts      = "SUBS_RETRY_ATTEMPTS"
	EnvRetryBaseSleep     = "SUBS_RETRY_BASE_SLEEP"
	EnvLogLevel           = "TUBESCRIBE_LOG_LEVEL"
)

// applyEnv overlays set, non-empty environment variables onto the file values.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		value, ok := lookup(key)
		if !ok {
			return "", false
		}
		value = strings.TrimSpace(value)
		return value, value != ""
	}

	if value, ok := get(EnvCookiesFromBrowser); ok {
		c.Fetch.CookiesFromBrowser = value
	}
	if value, ok := get(EnvCookiesFile); ok {
		c.Fetch.CookiesFile = value
	}
	if value, ok := get(EnvPlayerClient); ok {
		c.Fetch.PlayerClients = value
	}
	if value, ok := get(EnvJSRuntimes); ok {
		c.Fetch.JSRuntimes = value
	}
	if value, ok := get(EnvRemoteComponents); ok {
		c.Fetch.RemoteComponents = value
	}
	if value, ok := get(EnvRetryAttempts); ok {
		attempts, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvRetryAttempts, value)
		}
		c.Fetch.RetryAttempts = attempts
	}
	if value, ok := get(EnvRetryBaseSleep); ok {
		seconds, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid number %q", EnvRetryBaseSleep, value)
		}
		c.Fetch.RetryBaseSleep = seconds
	}
	if value, ok := get(EnvLogLevel); ok {
		c.Logging.Level = value
	}
	return nil
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeProcessing()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DownloadsDir) == "" {
		c.Paths.DownloadsDir = filepath.Join(c.Paths.DataDir, "downloads")
	}
	if c.Paths.DownloadsDir, err = expandPath(c.Paths.DownloadsDir); err != nil {
		return fmt.Errorf("paths.downloads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TranscriptsDir) == "" {
		c.Paths.TranscriptsDir = filepath.Join(c.Paths.DataDir, "transcriptions")
	}
	if c.Paths.TranscriptsDir, err = expandPath(c.Paths.TranscriptsDir); err != nil {
		return fmt.Errorf("paths.transcripts_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = filepath.Join(c.Paths.DataDir, "history.db")
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.Binary = strings.TrimSpace(c.Fetch.Binary)
	if c.Fetch.Binary == "" {
		c.Fetch.Binary = defaultFetchBinary
	}
	c.Fetch.CookiesFromBrowser = strings.TrimSpace(c.Fetch.CookiesFromBrowser)
	c.Fetch.CookiesFile = strings.TrimSpace(c.Fetch.CookiesFile)
	c.Fetch.PlayerClients = strings.TrimSpace(c.Fetch.PlayerClients)
	c.Fetch.JSRuntimes = strings.TrimSpace(c.Fetch.JSRuntimes)
	c.Fetch.RemoteComponents = strings.TrimSpace(c.Fetch.RemoteComponents)
	if c.Fetch.RetryAttempts > MaxRetryAttempts {
		c.Fetch.RetryAttempts = MaxRetryAttempts
	}
}

func (c *Config) normalizeProcessing() {
	c.Processing.DefaultLanguage = language.Tag(c.Processing.DefaultLanguage)
	if c.Processing.DefaultLanguage == "" {
		c.Processing.DefaultLanguage = defaultLanguage
	}
	c.Processing.FallbackLanguages = language.Tags(c.Processing.FallbackLanguages)
	if c.Processing.MaxAudioDurationSeconds <= 0 {
		c.Processing.MaxAudioDurationSeconds = defaultMaxAudioDurationSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
