package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tubescribe/internal/config"
	"tubescribe/internal/fileutil"
	"tubescribe/internal/history"
	"tubescribe/internal/logging"
	"tubescribe/internal/preflight"
	"tubescribe/internal/processor"
	"tubescribe/internal/services"
)

type fetchOutcome struct {
	url    string
	result processor.Result
	err    error
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var method string
	var output string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "fetch <url>...",
		Short: "Fetch transcripts, using the cache when possible",
		Long: "Fetch prints the transcript for a single URL, or writes it to --output.\n" +
			"With several URLs each transcript is written into the --output directory\n" +
			"(the current directory by default) under its display name.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := processor.ParseMethod(method)
			if err != nil {
				return err
			}
			p, err := ctx.buildPipeline()
			if err != nil {
				return err
			}
			if err := checkPreflight(cmd.Context(), p.cfg, m == processor.MethodAudio); err != nil {
				return err
			}

			store, err := history.Open(p.cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			outcomes := runFetches(cmd.Context(), p, store, args, lang, m, concurrency)
			return reportFetches(cmd, outcomes, output)
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Preferred transcript language (defaults to processing.default_language)")
	cmd.Flags().StringVarP(&method, "method", "m", string(processor.MethodSubtitles), "Acquisition method: subs or audio")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (one URL) or directory (several URLs)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Maximum requests processed at once")
	return cmd
}

func checkPreflight(ctx context.Context, cfg *config.Config, audio bool) error {
	failed := preflight.Failed(preflight.RunAll(ctx, cfg, audio))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "cli", "preflight", strings.Join(parts, "; "), nil)
}

func runFetches(ctx context.Context, p *pipeline, store *history.Store, urls []string, lang string, method processor.Method, concurrency int) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(urls))
	var g errgroup.Group
	g.SetLimit(max(1, concurrency))
	for i, url := range urls {
		g.Go(func() error {
			outcomes[i] = fetchOne(ctx, p, store, url, lang, method)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func fetchOne(ctx context.Context, p *pipeline, store *history.Store, url, lang string, method processor.Method) fetchOutcome {
	logger := p.logger.With(logging.String("url", url))
	start := time.Now()
	result, err := p.processor.Process(ctx, processor.Request{
		URL:      url,
		Language: lang,
		Method:   method,
		Notify:   notifyLogger(logger),
	})

	sourceID := result.Info.ID
	if sourceID == "" {
		sourceID, _ = processor.SourceIDFromURL(url)
	}
	entry := history.Entry{
		RequestID: result.RequestID,
		URL:       url,
		SourceID:  sourceID,
		Title:     result.Info.Title,
		Category:  string(result.Category),
		Language:  result.Language,
		FromCache: result.FromCache,
		Outcome:   services.Outcome(err),
		Duration:  time.Since(start),
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	if _, recErr := store.Record(context.WithoutCancel(ctx), entry); recErr != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write",
			logging.Error(recErr),
			logging.String(logging.FieldErrorHint, "check history_db permissions"),
			logging.String(logging.FieldImpact, "request missing from history"),
		)
	}
	return fetchOutcome{url: url, result: result, err: err}
}

// notifyLogger routes progress notifications to the logger at matching levels.
func notifyLogger(logger *slog.Logger) processor.Notifier {
	return func(level processor.Level, message string) {
		switch level {
		case processor.LevelError:
			logger.Error(message)
		case processor.LevelWarning:
			logger.Warn(message)
		default:
			logger.Info(message)
		}
	}
}

func reportFetches(cmd *cobra.Command, outcomes []fetchOutcome, output string) error {
	out := cmd.OutOrStdout()
	output = strings.TrimSpace(output)

	if len(outcomes) == 1 {
		o := outcomes[0]
		if o.err != nil {
			return o.err
		}
		if output == "" {
			fmt.Fprintln(out, o.result.Text)
			return nil
		}
		if err := fileutil.WriteFileAtomic(output, []byte(o.result.Text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", output)
		return nil
	}

	dir := output
	if dir == "" {
		dir = "."
	}
	var failures int
	for _, o := range outcomes {
		if o.err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", o.url, o.err)
			continue
		}
		target := filepath.Join(dir, o.result.DisplayName)
		if err := fileutil.WriteFileAtomic(target, []byte(o.result.Text+"\n"), 0o644); err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: write transcript: %v\n", o.url, err)
			continue
		}
		source := "fetched"
		if o.result.FromCache {
			source = "cached"
		}
		fmt.Fprintf(out, "Wrote %s (%s)\n", target, source)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d requests failed", failures, len(outcomes))
	}
	return nil
}
