package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	writeWithMode(t, path, content, 0o644)
}

// WriteExecutable writes a script to path with the executable bit set.
func WriteExecutable(t testing.TB, path, script string) {
	t.Helper()
	writeWithMode(t, path, script, 0o755)
}

func writeWithMode(t testing.TB, path, content string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
