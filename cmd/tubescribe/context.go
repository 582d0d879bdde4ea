package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tubescribe/internal/config"
	"tubescribe/internal/logging"
	"tubescribe/internal/processor"
	"tubescribe/internal/services/ytdlp"
	"tubescribe/internal/subtitles"
	"tubescribe/internal/transcripts"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// pipeline bundles everything a retrieval command needs.
type pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	client    *ytdlp.Bound
	cache     *transcripts.Cache
	processor *processor.Processor
}

func (c *commandContext) buildPipeline() (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	client, err := ytdlp.New(cfg.Fetch.Binary, ytdlp.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init yt-dlp client: %w", err)
	}
	opts := ytdlp.BuildOptions(ytdlp.EnvironmentFromConfig(cfg.Fetch), ytdlp.SystemProbe{})
	if opts.RemoteComponentsDefaulted {
		logger.Info("remote components enabled automatically",
			logging.Args(append(
				logging.DecisionAttrs("remote_components", strings.Join(opts.RemoteComponents, ","), "js runtime available without ejs plugin"),
				logging.String(logging.FieldComponent, "cli"),
			)...)...,
		)
	}

	bound := client.Bind(opts)
	fetcher := subtitles.NewFetcher(client, opts, subtitles.RetryPolicyFromConfig(cfg.Fetch), logger)
	cache := transcripts.New(cfg.Paths.TranscriptsDir, logger)
	proc, err := processor.New(cfg, cache, bound, fetcher, processor.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:       cfg,
		logger:    logger,
		client:    bound,
		cache:     cache,
		processor: proc,
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
