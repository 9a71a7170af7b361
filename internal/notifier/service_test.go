package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	logx "kswatch/pkg/logx"
)

type recordingTransport struct {
	mu    sync.Mutex
	sent  []Push
	fails error
}

func (r *recordingTransport) Send(ctx context.Context, p Push) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails != nil {
		return r.fails
	}
	r.sent = append(r.sent, p)
	return nil
}

func TestDispatcherAppliesTitleAndPriority(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, Config{Priority: 1, RatePerSec: 100}, logx.Nop())

	if err := d.Notify(context.Background(), "1801sk13 available in gra with status available"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected 1 push, got %d", len(tr.sent))
	}
	got := tr.sent[0]
	if got.Title != DefaultTitle || got.Priority != 1 || got.Message != "1801sk13 available in gra with status available" {
		t.Fatalf("unexpected push: %+v", got)
	}
}

func TestDispatcherSurfacesTransportError(t *testing.T) {
	boom := errors.New("invalid token")
	d := NewDispatcher(&recordingTransport{fails: boom}, Config{Title: "custom"}, logx.Nop())

	err := d.Notify(context.Background(), "hello")
	if !errors.Is(err, ErrNotify) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrNotify wrapping cause, got %v", err)
	}
}

func TestDispatcherHonorsCancelledContext(t *testing.T) {
	tr := &recordingTransport{}
	d := NewDispatcher(tr, Config{RatePerSec: 0.001}, logx.Nop())

	// Drain the single burst token.
	if err := d.Notify(context.Background(), "first"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Notify(ctx, "second"); !errors.Is(err, ErrNotify) {
		t.Fatalf("expected ErrNotify on cancelled wait, got %v", err)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected only the first push to be sent, got %d", len(tr.sent))
	}
}

func TestNewSelectsDriver(t *testing.T) {
	if _, err := New(Config{Driver: "log"}, logx.Nop()); err != nil {
		t.Fatalf("log driver: %v", err)
	}
	if _, err := New(Config{Driver: "pushover"}, logx.Nop()); err == nil {
		t.Fatal("expected error for pushover without credentials")
	}
	if _, err := New(Config{Driver: "telegram", Telegram: TelegramConfig{Token: "x"}}, logx.Nop()); err == nil {
		t.Fatal("expected error for telegram without chat id")
	}
	if _, err := New(Config{Driver: "smoke-signal"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
