package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBuildsLoggerForBothEncodings(t *testing.T) {
	for _, cfg := range []Config{{}, {JSON: true, Debug: true}} {
		l, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%+v) error: %v", cfg, err)
		}
		if l == nil {
			t.Fatalf("New(%+v) returned nil logger", cfg)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != cfg.Debug {
			t.Fatalf("debug enabled = %v, want %v", got, cfg.Debug)
		}
	}
}

func TestNamedFallsBackToNop(t *testing.T) {
	l := Named(nil, "scoring")
	if l == nil {
		t.Fatalf("expected fallback logger")
	}
	l.Info("does not panic")
}

func TestNamedKeepsComponent(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	Named(zap.New(core), "notifier").Info("sent")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "notifier" {
		t.Fatalf("expected logger name notifier, got %q", entries[0].LoggerName)
	}
}
