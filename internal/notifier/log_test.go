package notifier

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSenderWritesMessage(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	s := NewLogSender(zap.New(core))

	msg := EmailMessage{To: []string{"dev@example.com"}, Subject: "Application screened", Body: "score 80"}
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["to"] != "dev@example.com" || fields["subject"] != "Application screened" {
		t.Fatalf("log output missing message info: %v", fields)
	}
}

func TestLogSenderNilLogger(t *testing.T) {
	if err := NewLogSender(nil).Send(context.Background(), EmailMessage{}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
}
