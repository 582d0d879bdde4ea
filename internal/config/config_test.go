package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tubescribe/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
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
	t.Chdir(home)
	return home
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(home, ".local", "share", "tubescribe")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.TranscriptsDir != filepath.Join(wantData, "transcriptions") {
		t.Fatalf("unexpected transcripts dir: %q", cfg.Paths.TranscriptsDir)
	}
	if cfg.Paths.DownloadsDir != filepath.Join(wantData, "downloads") {
		t.Fatalf("unexpected downloads dir: %q", cfg.Paths.DownloadsDir)
	}
	if cfg.Fetch.RetryAttempts != 3 || cfg.Fetch.RetryBaseSleep != 5 {
		t.Fatalf("unexpected retry defaults: %d %v", cfg.Fetch.RetryAttempts, cfg.Fetch.RetryBaseSleep)
	}
	if cfg.Fetch.CookiesFile != "cookies.txt" {
		t.Fatalf("unexpected cookies file default %q", cfg.Fetch.CookiesFile)
	}
	if cfg.Cache.LockKeys {
		t.Fatal("expected per-key locking disabled by default")
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.toml")
	content := `
[fetch]
player_clients = "web"
retry_attempts = 2
retry_base_sleep = 1.5

[processing]
fallback_languages = ["EN", "de", "en"]

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvPlayerClient, " android , ios ")
	t.Setenv(config.EnvRetryBaseSleep, "0")
	t.Setenv(config.EnvCookiesFromBrowser, "firefox")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected file to be used, got %q %v", resolved, exists)
	}
	if cfg.Fetch.PlayerClients != "android , ios" {
		t.Fatalf("expected env player clients, got %q", cfg.Fetch.PlayerClients)
	}
	if cfg.Fetch.RetryAttempts != 2 {
		t.Fatalf("expected file retry attempts, got %d", cfg.Fetch.RetryAttempts)
	}
	if cfg.Fetch.RetryBaseSleep != 0 {
		t.Fatalf("expected env base sleep, got %v", cfg.Fetch.RetryBaseSleep)
	}
	if cfg.Fetch.CookiesFromBrowser != "firefox" {
		t.Fatalf("expected env browser cookies, got %q", cfg.Fetch.CookiesFromBrowser)
	}
	if !reflect.DeepEqual(cfg.Processing.FallbackLanguages, []string{"en", "de"}) {
		t.Fatalf("unexpected fallback languages %v", cfg.Processing.FallbackLanguages)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized format, got %q", cfg.Logging.Format)
	}
}

func TestLoadCapsRetryAttempts(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvRetryAttempts, "10")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Fetch.RetryAttempts != config.MaxRetryAttempts {
		t.Fatalf("expected attempts capped at %d, got %d", config.MaxRetryAttempts, cfg.Fetch.RetryAttempts)
	}
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvRetryAttempts, "three")

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), config.EnvRetryAttempts) {
		t.Fatalf("expected env parse error, got %v", err)
	}
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvRetryAttempts, "0")

	if _, _, _, err := config.Load(""); err == nil {
		t.Fatal("expected validation error for zero attempts")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	home := isolate(t)
	os.Unsetenv(config.EnvJSRuntimes)
	t.Cleanup(func() { os.Unsetenv(config.EnvJSRuntimes) })
	if err := os.WriteFile(filepath.Join(home, ".env"), []byte("YTDLP_JS_RUNTIMES=deno\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Fetch.JSRuntimes != "deno" {
		t.Fatalf("expected .env value, got %q", cfg.Fetch.JSRuntimes)
	}
}

func TestSubtitleLanguagesOrdering(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		requested string
		want      []string
	}{
		{"en", []string{"en", "ru"}},
		{"ru", []string{"ru", "en"}},
		{"DE", []string{"de", "en"}},
		{"pt-BR", []string{"pt-BR", "en"}},
		{"en-GB", []string{"en-GB", "ru"}},
		{"iw", []string{"iw", "en"}},
		{"", []string{"en", "ru"}},
	}
	for _, tt := range tests {
		if got := cfg.SubtitleLanguages(tt.requested); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SubtitleLanguages(%q) = %v, want %v", tt.requested, got, tt.want)
		}
	}
}

func TestSubtitleLanguagesConfiguredFallbacks(t *testing.T) {
	cfg := config.Default()
	cfg.Processing.FallbackLanguages = []string{"en", "ru"}
	if got := cfg.SubtitleLanguages("de"); !reflect.DeepEqual(got, []string{"de", "en", "ru"}) {
		t.Fatalf("SubtitleLanguages(de) = %v", got)
	}
	if got := cfg.SubtitleLanguages("ru"); !reflect.DeepEqual(got, []string{"ru", "en"}) {
		t.Fatalf("SubtitleLanguages(ru) = %v", got)
	}
}

func TestLoadRejectsNonFiniteBaseSleep(t *testing.T) {
	for _, value := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		t.Run(value, func(t *testing.T) {
			isolate(t)
			t.Setenv(config.EnvRetryBaseSleep, value)

			_, _, _, err := config.Load("")
			if err == nil || !strings.Contains(err.Error(), "retry_base_sleep") {
				t.Fatalf("expected base sleep validation error, got %v", err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("expected sample to load, exists=%v err=%v", exists, err)
	}
}
