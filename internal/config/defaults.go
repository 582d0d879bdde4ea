package config

const (
	defaultConfigPath              = "~/.config/tubescribe/config.toml"
	defaultDataDir                 = "~/.local/share/tubescribe"
	defaultLogDir                  = "~/.local/share/tubescribe/logs"
	defaultFetchBinary             = "yt-dlp"
	defaultCookiesFile             = "cookies.txt"
	defaultRetryAttempts           = 3
	defaultRetryBaseSleep          = 5.0
	defaultLanguage                = "en"
	defaultMaxAudioDurationSeconds = 1400
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"

	// MaxRetryAttempts caps fetch.retry_attempts regardless of configuration.
	MaxRetryAttempts = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Fetch: Fetch{
			Binary:         defaultFetchBinary,
			CookiesFile:    defaultCookiesFile,
			RetryAttempts:  defaultRetryAttempts,
			RetryBaseSleep: defaultRetryBaseSleep,
		},
		Processing: Processing{
			DefaultLanguage:         defaultLanguage,
			MaxAudioDurationSeconds: defaultMaxAudioDurationSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
