package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tubescribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retry backoff is zero and logging is limited to errors so tests stay fast
// and quiet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.DownloadsDir = filepath.Join(base, "data", "downloads")
	cfgVal.Paths.TranscriptsDir = filepath.Join(base, "data", "transcriptions")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "data", "history.db")
	cfgVal.Fetch.CookiesFile = ""
	cfgVal.Fetch.RetryBaseSleep = 0
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubbedFetchBinary writes script as an executable yt-dlp stand-in and
// points fetch.binary at it.
func WithStubbedFetchBinary(script string) ConfigOption {
	return func(b *configBuilder) {
		target := filepath.Join(b.baseDir, "bin", "yt-dlp")
		WriteExecutable(b.t, target, script)
		b.cfg.Fetch.Binary = target
	}
}

// WithLockKeys enables the per-key cache lock.
func WithLockKeys() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.LockKeys = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WriteConfigFile renders cfg as TOML at path.
func WriteConfigFile(t testing.TB, cfg *config.Config, path string) {
	t.Helper()

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// ClearFetchEnv blanks every environment override so the host environment
// cannot leak into a test. Blank values are ignored by config.Load.
func ClearFetchEnv(t testing.TB) {
	t.Helper()
	for _, key := range []string{
		config.EnvCookiesFromBrowser,
		config.EnvCookiesFile,
		config.EnvPlayerClient,
		config.EnvJSRuntimes,
		config.EnvRemoteComponents,
		config.EnvRetryAttempts,
		config.EnvRetryBaseSleep,
		config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}
