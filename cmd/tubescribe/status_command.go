package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tubescribe/internal/preflight"
	"tubescribe/internal/services/ytdlp"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var audio bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report configuration, tools, credentials and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			printSection(stdout, "Configuration", colorize)
			configDetail := ctx.configPath
			if !ctx.configExists {
				configDetail += " (not found, using defaults)"
			}
			configKind := statusOK
			if !ctx.configExists {
				configKind = statusInfo
			}
			fmt.Fprintln(stdout, renderStatusLine("Config file", configKind, configDetail, colorize))
			fmt.Fprintln(stdout, resultLine(preflight.CheckDirectoryAccess("Transcripts", cfg.Paths.TranscriptsDir), statusError, colorize))
			fmt.Fprintln(stdout, resultLine(preflight.CheckDirectoryAccess("Downloads", cfg.Paths.DownloadsDir), statusError, colorize))
			fmt.Fprintln(stdout, renderStatusLine("Key locking", statusInfo, yesNo(cfg.Cache.LockKeys), colorize))
			fmt.Fprintln(stdout)

			printSection(stdout, "Dependencies", colorize)
			for _, line := range dependencyLines(preflight.CheckSystemDeps(cmd.Context(), cfg, audio), colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			printSection(stdout, "Fetch Options", colorize)
			probe := ytdlp.SystemProbe{}
			fmt.Fprintln(stdout, resultLine(preflight.CheckCredentials(cfg, probe), statusWarn, colorize))
			opts := ytdlp.BuildOptions(ytdlp.EnvironmentFromConfig(cfg.Fetch), probe)
			for _, result := range preflight.DescribeOptions(opts) {
				fmt.Fprintln(stdout, resultLine(result, statusWarn, colorize))
			}
			retry := fmt.Sprintf("%d attempts, %gs base backoff", cfg.Fetch.RetryAttempts, cfg.Fetch.RetryBaseSleep)
			fmt.Fprintln(stdout, renderStatusLine("Rate-limit retries", statusInfo, retry, colorize))
			fmt.Fprintln(stdout)

			printSection(stdout, "Cache", colorize)
			cache, err := transcriptCache(ctx)
			if err != nil {
				return err
			}
			entries, err := cache.List()
			if err != nil {
				fmt.Fprintln(stdout, renderStatusLine("Transcripts", statusError, err.Error(), colorize))
				return nil
			}
			var total int64
			for _, e := range entries {
				total += e.Size
			}
			summary := fmt.Sprintf("%d cached (%s)", len(entries), humanize.Bytes(uint64(total)))
			fmt.Fprintln(stdout, renderStatusLine("Transcripts", statusInfo, summary, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&audio, "audio", false, "Treat FFmpeg as required, as the audio method does")
	return cmd
}

func printSection(w io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(w, line)
	}
}
