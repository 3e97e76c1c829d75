package util

import (
	"context"
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
		muted   slog.Level
	}{
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"info", slog.LevelInfo, slog.LevelDebug},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
		{"bogus", slog.LevelInfo, slog.LevelDebug},
	}

	for _, tt := range tests {
		log := NewLogger(tt.level, "json")
		if log == nil {
			t.Fatalf("NewLogger(%q) returned nil", tt.level)
		}
		ctx := context.Background()
		if !log.Enabled(ctx, tt.enabled) {
			t.Errorf("NewLogger(%q): level %v should be enabled", tt.level, tt.enabled)
		}
		if log.Enabled(ctx, tt.muted) {
			t.Errorf("NewLogger(%q): level %v should be muted", tt.level, tt.muted)
		}
	}
}

func TestNewLoggerFormats(t *testing.T) {
	for _, format := range []string{"json", "text", ""} {
		if log := NewLogger("info", format); log == nil {
			t.Fatalf("NewLogger(info, %q) returned nil", format)
		}
	}
}
