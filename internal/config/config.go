package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"tubescribe/internal/language"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	DownloadsDir   string `toml:"downloads_dir"`
	TranscriptsDir string `toml:"transcripts_dir"`
	LogDir         string `toml:"log_dir"`
	HistoryDB      string `toml:"history_db"`
}

// Fetch contains settings for the upstream retrieval tool. The hint lists are
// kept as the raw comma-separated strings users supply; the option builder
// parses them.
type Fetch struct {
	Binary             string  `toml:"binary"`
	CookiesFromBrowser string  `toml:"cookies_from_browser"`
	CookiesFile        string  `toml:"cookies_file"`
	PlayerClients      string  `toml:"player_clients"`
	JSRuntimes         string  `toml:"js_runtimes"`
	RemoteComponents   string  `toml:"remote_components"`
	EJSPluginInstalled bool    `toml:"ejs_plugin_installed"`
	RetryAttempts      int     `toml:"retry_attempts"`
	RetryBaseSleep     float64 `toml:"retry_base_sleep"`
}

// Processing contains orchestration policy.
type Processing struct {
	DefaultLanguage         string   `toml:"default_language"`
	FallbackLanguages       []string `toml:"fallback_languages"`
	MaxAudioDurationSeconds int      `toml:"max_audio_duration_seconds"`
}

// Cache contains transcript cache behaviour.
type Cache struct {
	// LockKeys serialises concurrent misses for the same key with a file lock.
	LockKeys bool `toml:"lock_keys"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for tubescribe.
//
// Configuration sections by subsystem:
//   - Paths: data, scratch, transcript cache and log locations
//   - Fetch: yt-dlp credentials, capability hints, and retry policy
//   - Processing: languages and audio duration limit
//   - Cache: transcript cache concurrency guard
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Fetch      Fetch      `toml:"fetch"`
	Processing Processing `toml:"processing"`
	Cache      Cache      `toml:"cache"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment overrides applied. A .env file in the
// working directory is loaded first without overriding existing variables.
func Load(path string) (*Config, string, bool, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tubescribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, scratch, transcript, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.DownloadsDir, c.Paths.TranscriptsDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SubtitleLanguages returns the preference-ordered subtitle languages for a
// request: the requested tag first, then the configured fallbacks. Without
// configured fallbacks an English request falls back to Russian and any
// other request to English.
func (c *Config) SubtitleLanguages(requested string) []string {
	requested = language.Tag(requested)
	if requested == "" {
		requested = c.Processing.DefaultLanguage
	}
	fallbacks := c.Processing.FallbackLanguages
	if len(fallbacks) == 0 {
		if language.Same(requested, "en") {
			fallbacks = []string{"ru"}
		} else {
			fallbacks = []string{"en"}
		}
	}
	return language.Tags(append([]string{requested}, fallbacks...))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the configuration as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
