package preflight

import (
	"context"
	"fmt"

	"tubescribe/internal/config"
	"tubescribe/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the working directories and required executables.
// FFmpeg only counts when audio is true.
func RunAll(ctx context.Context, cfg *config.Config, audio bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Transcripts directory", cfg.Paths.TranscriptsDir),
		CheckDirectoryAccess("Downloads directory", cfg.Paths.DownloadsDir),
	}
	for _, status := range CheckSystemDeps(ctx, cfg, audio) {
		if status.Optional {
			continue
		}
		results = append(results, fromStatus(status))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	detail := status.Path
	if status.Version != "" {
		detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	}
	return Result{Name: status.Name, Passed: true, Detail: detail}
}
