package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tubescribe/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "subtitles", "extract", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"subtitles", "extract", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected upstream marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestCancelledMarksContextErrors(t *testing.T) {
	err := services.Cancelled("subtitles", context.Canceled)
	if !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected cancelled marker, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cause retained, got %v", err)
	}

	other := errors.New("other")
	if got := services.Cancelled("subtitles", other); got != other {
		t.Fatalf("expected non-context error unchanged, got %v", got)
	}
	if services.Cancelled("subtitles", nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestOutcomeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"rate limited", services.Wrap(services.ErrRateLimited, "fetch", "", "429", nil), "rate_limited"},
		{"format", services.Wrap(services.ErrFormatUnavailable, "fetch", "", "", nil), "format_unavailable"},
		{"cancelled", services.Cancelled("fetch", context.Canceled), "cancelled"},
		{"validation", services.Wrap(services.ErrValidation, "", "", "bad", nil), "rejected"},
		{"other", errors.New("x"), "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Outcome(tt.err); got != tt.want {
				t.Fatalf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}
