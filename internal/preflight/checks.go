package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"tubescribe/internal/config"
	"tubescribe/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// SystemRequirements lists the executables the configured pipeline needs.
// FFmpeg is only required for the audio path.
func SystemRequirements(cfg *config.Config, audio bool) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Fetch.Binary,
			Description: "Required for subtitle, metadata and audio retrieval",
			VersionArgs: []string{"--version"},
		},
		{
			Name:        "FFmpeg",
			Command:     "ffmpeg",
			Description: "Required for audio extraction",
			Optional:    !audio,
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "Node.js",
			Command:     "node",
			Description: "JavaScript runtime for YouTube player challenges",
			Optional:    true,
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckSystemDeps evaluates SystemRequirements.
func CheckSystemDeps(ctx context.Context, cfg *config.Config, audio bool) []deps.Status {
	return deps.CheckBinaries(ctx, SystemRequirements(cfg, audio))
}
