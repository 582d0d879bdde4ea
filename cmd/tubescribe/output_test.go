package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"Name", "Size"}, [][]string{{"a.txt", "1 kB"}, {"b.txt"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"Name", "Size", "a.txt", "1 kB", "b.txt"} {
		requireContains(t, out, want)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline")
	}
	if got := renderTable(nil, [][]string{{"x"}}, nil); got != "" {
		t.Fatalf("expected empty output without headers, got %q", got)
	}
}
