package services_test

import (
	"errors"
	"strings"
	"testing"

	"lingclip/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "run", "ffmpeg failed", base)
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
	for _, fragment := range []string{"extract", "run", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "extract", "run", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestMessageStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrTimeout, "extract", "run", "exceeded 120s budget", nil)
	msg := services.Message(err)
	if strings.Contains(msg, services.ErrTimeout.Error()) {
		t.Fatalf("expected marker prefix stripped, got %q", msg)
	}
	if !strings.Contains(msg, "exceeded 120s budget") {
		t.Fatalf("expected detail retained, got %q", msg)
	}
	if services.Message(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
}
