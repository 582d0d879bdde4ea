package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"tubescribe/internal/deps"
	"tubescribe/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusError, "binary not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "yt-dlp:", "[ERROR] binary not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithoutMessage(t *testing.T) {
	got := renderStatusLine("Cache", statusInfo, "", false)
	if !strings.HasSuffix(got, "[INFO]") {
		t.Fatalf("expected bare status label, got %q", got)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "yt-dlp", Available: true, Version: "2026.10.01"},
		{Name: "FFmpeg", Available: false, Detail: `binary "ffmpeg" not found`},
		{Name: "Node.js", Available: false, Optional: true},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] Missing FFmpeg") {
		t.Fatalf("expected summary naming FFmpeg, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (2026.10.01)") {
		t.Fatalf("expected ready line with version, got %q", lines[1])
	}
	if !strings.Contains(lines[2], `[ERROR] binary "ffmpeg" not found`) {
		t.Fatalf("expected error detail, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN] not available") {
		t.Fatalf("expected optional warning, got %q", lines[3])
	}
}

func TestDependencyLinesAllPresent(t *testing.T) {
	lines := dependencyLines([]deps.Status{{Name: "yt-dlp", Available: true}}, false)
	if !strings.Contains(lines[0], "[OK] All required tools available") {
		t.Fatalf("unexpected summary %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "[OK] Ready") {
		t.Fatalf("unexpected ready line %q", lines[1])
	}
}

func TestResultLine(t *testing.T) {
	ok := resultLine(preflight.Result{Name: "Cookies", Passed: true, Detail: "none"}, statusWarn, false)
	if !strings.Contains(ok, "[OK] none") {
		t.Fatalf("unexpected passed line %q", ok)
	}
	failed := resultLine(preflight.Result{Name: "Downloads", Detail: "not writable"}, statusError, false)
	if !strings.Contains(failed, "[ERROR] not writable") {
		t.Fatalf("unexpected failed line %q", failed)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, stubYTDLP)
	seedTranscript(t, env, "abc_subtitles_en.txt", "hello")

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Configuration ==")
	requireContains(t, out, env.configPath)
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "[OK] Ready (2026.10.01)")
	requireContains(t, out, "== Fetch Options ==")
	requireContains(t, out, "Cookies:")
	requireContains(t, out, "Rate-limit retries:")
	requireContains(t, out, "1 cached")
	if strings.Contains(out, ansiReset) {
		t.Fatalf("expected no colour when writing to a buffer")
	}
}
