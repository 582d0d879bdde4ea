package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.RetryAttempts < 1 {
		return fmt.Errorf("fetch.retry_attempts must be between 1 and %d", MaxRetryAttempts)
	}
	if math.IsNaN(c.Fetch.RetryBaseSleep) || math.IsInf(c.Fetch.RetryBaseSleep, 0) {
		return errors.New("fetch.retry_base_sleep must be a finite number of seconds")
	}
	if c.Fetch.RetryBaseSleep < 0 {
		return errors.New("fetch.retry_base_sleep must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
