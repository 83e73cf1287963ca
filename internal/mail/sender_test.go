package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct{ sent []Message }

func (r *recorder) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return nil
}

func TestLogSender_MasksRecipient(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := LogSender{L: zap.New(core)}
	if err := s.Send(context.Background(), Message{To: "alice@x.com", Subject: "Hi", Text: "body"}); err != nil {
		t.Fatal(err)
	}
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	to := entries[0].ContextMap()["to"].(string)
	if strings.Contains(to, "alice") || !strings.HasSuffix(to, "@x.com") {
		t.Fatalf("recipient not masked: %q", to)
	}
}

func TestThrottled_PassesThrough(t *testing.T) {
	rec := &recorder{}
	s := NewThrottled(rec, 100)
	for i := 0; i < 3; i++ {
		if err := s.Send(context.Background(), Message{To: "a@x.com"}); err != nil {
			t.Fatal(err)
		}
	}
	if len(rec.sent) != 3 {
		t.Fatalf("want 3 sends, got %d", len(rec.sent))
	}
}

func TestThrottled_RespectsContext(t *testing.T) {
	rec := &recorder{}
	s := NewThrottled(rec, 0.001)
	if err := s.Send(context.Background(), Message{}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Send(ctx, Message{}); err == nil {
		t.Fatal("second send should be throttled past the deadline")
	} else if errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected cancel: %v", err)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("throttled send reached the sender: %d", len(rec.sent))
	}
}
