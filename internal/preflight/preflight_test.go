package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubescribe/internal/config"
	"tubescribe/internal/services/ytdlp"
	"tubescribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, false); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_ReportsMissingBinary(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.TranscriptsDir = t.TempDir()
	cfg.Paths.DownloadsDir = t.TempDir()
	cfg.Fetch.Binary = "clearly-not-present-yt-dlp"

	results := RunAll(context.Background(), &cfg, false)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "yt-dlp" {
		t.Fatalf("expected only yt-dlp to fail, got %+v", failed)
	}
	for _, r := range results {
		if r.Name == "FFmpeg" {
			t.Fatal("ffmpeg must not be checked when audio is disabled")
		}
	}
}

func TestRunAll_PassesWithStubBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedFetchBinary("#!/bin/sh\necho 2026.10.01\n"))
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, false)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	last := results[len(results)-1]
	if !strings.Contains(last.Detail, "2026.10.01") {
		t.Fatalf("expected version in detail, got %q", last.Detail)
	}
}

type staticProbe struct {
	files map[string]bool
	node  string
}

func (p staticProbe) LookPath(name string) (string, error) {
	if name == "node" && p.node != "" {
		return p.node, nil
	}
	return "", errors.New("not found")
}

func (p staticProbe) FileExists(path string) bool { return p.files[path] }

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()

	cfg.Fetch.CookiesFromBrowser = "firefox:default-release"
	if r := CheckCredentials(&cfg, staticProbe{}); r.Detail != "browser firefox:default-release" {
		t.Fatalf("browser detail = %q", r.Detail)
	}

	cfg.Fetch.CookiesFromBrowser = ""
	if r := CheckCredentials(&cfg, staticProbe{files: map[string]bool{"cookies.txt": true}}); r.Detail != "file cookies.txt" {
		t.Fatalf("file detail = %q", r.Detail)
	}
	if r := CheckCredentials(&cfg, staticProbe{}); r.Detail != "none (cookies.txt not found)" {
		t.Fatalf("missing file detail = %q", r.Detail)
	}
}

func TestDescribeOptionsLabelsAutomaticChoices(t *testing.T) {
	opts := ytdlp.BuildOptions(ytdlp.Environment{}, staticProbe{node: "/usr/bin/node"})
	results := DescribeOptions(opts)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Detail != "default" {
		t.Fatalf("player clients = %q", results[0].Detail)
	}
	if results[1].Detail != "node=/usr/bin/node (found on PATH)" {
		t.Fatalf("runtimes = %q", results[1].Detail)
	}
	if results[2].Detail != "ejs:github (automatic default)" {
		t.Fatalf("remote components = %q", results[2].Detail)
	}
}
