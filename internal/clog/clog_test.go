package clog

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLevelSlogMapping(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
	}
	for _, tt := range tests {
		if got := tt.level.Slog(); got != tt.want {
			t.Errorf("Level(%d).Slog() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestColorHandlerAddsEscapeCodesWhenEnabled(t *testing.T) {
	old := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	h := NewColorHandler(base, true)
	logger := slog.New(h)
	logger.Info("hello")
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output = %q, want ANSI escape codes when enabled", buf.String())
	}
}

func TestColorHandlerPassesThroughWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	h := NewColorHandler(base, false)
	logger := slog.New(h)
	logger.Info("hello")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output = %q, want no ANSI escape codes when disabled", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("output = %q, want the message preserved", buf.String())
	}
}

func TestColorHandlerEnabledDelegates(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewColorHandler(base, true)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected LevelInfo to be disabled when base handler is configured for LevelWarn")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected LevelError to be enabled")
	}
}

func TestColorHandlerWithAttrsAndGroupPreserveEnabled(t *testing.T) {
	h := NewColorHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), true)
	withAttrs := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*ColorHandler)
	if !withAttrs.enabled {
		t.Error("WithAttrs should preserve enabled=true")
	}
	withGroup := h.WithGroup("g").(*ColorHandler)
	if !withGroup.enabled {
		t.Error("WithGroup should preserve enabled=true")
	}
}
