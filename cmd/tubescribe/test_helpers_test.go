package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubescribe/internal/config"
	"tubescribe/internal/testsupport"
)

const testVideoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// stubYTDLP answers --version, prints fixed metadata, and writes an English
// caption track whenever an output template is given. Every non-version
// call is appended to $STUB_CALLS.
const stubYTDLP = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2026.10.01"
  exit 0
fi
if [ -n "$STUB_CALLS" ]; then
  echo "$*" >> "$STUB_CALLS"
fi
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-o" ]; then
    out="$arg"
  fi
  prev="$arg"
done
if [ -n "$out" ]; then
  dir=$(dirname "$out")
  cat > "$dir/dQw4w9WgXcQ.en.vtt" <<'VTT'
WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:03.000 align:start position:0%
Never gonna <c>give</c> you up

00:00:03.000 --> 00:00:05.000
Never gonna let you down
VTT
fi
echo '{"id":"dQw4w9WgXcQ","title":"Stub Video","duration":60,"webpage_url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}'
`

// failingYTDLP passes preflight but fails every retrieval.
const failingYTDLP = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "2026.10.01"
  exit 0
fi
echo "ERROR: [youtube] dQw4w9WgXcQ: Video unavailable" >&2
exit 1
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	callsPath  string
	cfg        *config.Config
}

func setupCLITestEnv(t *testing.T, script string) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedFetchBinary(script))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	testsupport.ClearFetchEnv(t)

	callsPath := filepath.Join(base, "calls.log")
	t.Setenv("STUB_CALLS", callsPath)

	configPath := filepath.Join(homeDir, ".config", "tubescribe", "config.toml")
	testsupport.WriteConfigFile(t, cfg, configPath)

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		callsPath:  callsPath,
		cfg:        cfg,
	}
}

// stubCalls counts retrieval invocations of the stub binary.
func (e *cliTestEnv) stubCalls(t *testing.T) int {
	t.Helper()
	data, err := os.ReadFile(e.callsPath)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("read stub calls: %v", err)
	}
	return strings.Count(string(data), "\n")
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
