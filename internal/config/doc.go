// Package config loads, normalizes, and validates tubescribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file, and honours the
// environment overrides the retrieval tool has always accepted
// (COOKIES_FROM_BROWSER, YTDLP_PLAYER_CLIENT, SUBS_RETRY_ATTEMPTS, ...).
// The Config value is built once at process start and passed explicitly to
// the option builder, fetch strategy, and orchestrator; none of them read the
// environment themselves.
package config
