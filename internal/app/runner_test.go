package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"kswatch/internal/availability"
	"kswatch/internal/debounce"
	"kswatch/internal/feed"
	"kswatch/internal/notifier"
	logx "kswatch/pkg/logx"
)

type staticFeed struct {
	body string
	err  error
}

func (f staticFeed) FetchAvailability(ctx context.Context) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	var v any
	if err := json.Unmarshal([]byte(f.body), &v); err != nil {
		return nil, err
	}
	return v, nil
}

type recordingNotifier struct {
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(ctx context.Context, message string) error {
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, message)
	return nil
}

type countingGate struct {
	inner AlertGate
	calls []string
}

func (g *countingGate) ShouldAlert(ctx context.Context, item string, cooldown time.Duration) (bool, error) {
	g.calls = append(g.calls, item)
	return g.inner.ShouldAlert(ctx, item, cooldown)
}

type brokenStore struct{ *debounce.Memory }

func (brokenStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	return time.Time{}, false, errors.New("permission denied")
}

func feedWith(status string) staticFeed {
	return staticFeed{body: `{"answer":{"availability":[
		{"reference":"1801sk13","zones":[{"zone":"gra","availability":"` + status + `"}]},
		{"reference":"1801sk12","zones":[{"zone":"rbx","availability":"72H"},{"zone":"bhs","availability":"unknown"}]}
	]}}`}
}

func newTestRunner(f Fetcher, gate AlertGate, n Notifier, items ...string) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewRunner(f, gate, n, items, time.Hour, logx.NewWriter(&buf, "debug")), &buf
}

func TestRunAvailableItemAlerts(t *testing.T) {
	store := debounce.NewMemory()
	n := &recordingNotifier{}
	r, logs := newTestRunner(feedWith("available"), debounce.NewGate(store), n, "1801sk13")

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.messages) != 1 {
		t.Fatalf("expected 1 notification, got %v", n.messages)
	}
	for _, want := range []string{"1801sk13", "gra", "available"} {
		if !strings.Contains(n.messages[0], want) {
			t.Fatalf("message %q missing %q", n.messages[0], want)
		}
	}
	if _, ok, _ := store.Get(context.Background(), "1801sk13"); !ok {
		t.Fatal("marker not created")
	}
	if rep.Interesting != 1 || rep.Alerted != 1 || rep.Failed != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.RunID == "" || !strings.Contains(logs.String(), rep.RunID) {
		t.Fatalf("run id %q not found in logs", rep.RunID)
	}
}

func TestRunUnavailableItemNeverConsultsGate(t *testing.T) {
	gate := &countingGate{inner: debounce.NewGate(debounce.NewMemory())}
	n := &recordingNotifier{}
	r, logs := newTestRunner(feedWith("unavailable"), gate, n, "1801sk13")

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(gate.calls) != 0 {
		t.Fatalf("gate consulted for unavailable item: %v", gate.calls)
	}
	if len(n.messages) != 0 {
		t.Fatalf("unexpected notifications: %v", n.messages)
	}
	if !strings.Contains(logs.String(), "1801sk13 not available in gra (status: unavailable)") {
		t.Fatalf("not-available observation not logged:\n%s", logs.String())
	}
}

func TestRunMissingItemIsIsolated(t *testing.T) {
	n := &recordingNotifier{}
	r, _ := newTestRunner(feedWith("unavailable"), debounce.NewGate(debounce.NewMemory()), n, "missing", "1801sk12")

	rep, err := r.Run(context.Background())
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("expected *RunError, got %v", err)
	}
	if got := runErr.Items(); len(got) != 1 || got[0] != "missing" {
		t.Fatalf("failed items = %v", got)
	}
	if !errors.Is(err, availability.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound in chain, got %v", err)
	}
	// 1801sk12 was still processed.
	if len(n.messages) != 1 || !strings.Contains(n.messages[0], "1801sk12 available in rbx with status 72H") {
		t.Fatalf("remaining item not processed: %v", n.messages)
	}
	if rep.Failed != 1 || rep.Alerted != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestRunCooldownAcrossPasses(t *testing.T) {
	base := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	now := base
	store := debounce.NewMemory()
	gate := debounce.NewGate(store, debounce.WithClock(func() time.Time { return now }))
	n := &recordingNotifier{}
	r, _ := newTestRunner(feedWith("available"), gate, n, "1801sk13")
	ctx := context.Background()

	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	now = base.Add(time.Hour - time.Second)
	rep, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.messages) != 1 || rep.Suppressed != 1 {
		t.Fatalf("alert inside cooldown: messages=%v report=%+v", n.messages, rep)
	}
	if last, _, _ := store.Get(ctx, "1801sk13"); !last.Equal(base) {
		t.Fatalf("suppressed pass touched the marker: %v", last)
	}

	now = base.Add(time.Hour + time.Second)
	if _, err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.messages) != 2 {
		t.Fatalf("expected second alert after cooldown, got %v", n.messages)
	}
	if last, _, _ := store.Get(ctx, "1801sk13"); !last.Equal(now) {
		t.Fatalf("marker not refreshed: %v, want %v", last, now)
	}
}

func TestRunZonesShareOneMarker(t *testing.T) {
	f := staticFeed{body: `{"answer":{"availability":[{"reference":"a","zones":[
		{"zone":"gra","availability":"1H-low"},
		{"zone":"sbg","availability":"24H"}
	]}]}}`}
	n := &recordingNotifier{}
	r, _ := newTestRunner(f, debounce.NewGate(debounce.NewMemory()), n, "a")

	rep, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.messages) != 1 || rep.Interesting != 2 || rep.Suppressed != 1 {
		t.Fatalf("expected one alert per item: messages=%v report=%+v", n.messages, rep)
	}
}

func TestRunFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		feed staticFeed
		want error
	}{
		{name: "fetch", feed: staticFeed{err: feed.ErrFetch}, want: feed.ErrFetch},
		{name: "malformed", feed: staticFeed{body: `{"answer":{}}`}, want: availability.ErrMalformedFeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := &countingGate{inner: debounce.NewGate(debounce.NewMemory())}
			r, _ := newTestRunner(tt.feed, gate, &recordingNotifier{}, "1801sk13")
			_, err := r.Run(context.Background())
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var runErr *RunError
			if errors.As(err, &runErr) {
				t.Fatalf("fatal error reported as per-item: %v", err)
			}
			if len(gate.calls) != 0 {
				t.Fatalf("items processed after fatal error: %v", gate.calls)
			}
		})
	}
}

func TestRunMarkerFailureIsSurfaced(t *testing.T) {
	n := &recordingNotifier{}
	gate := debounce.NewGate(brokenStore{debounce.NewMemory()})
	r, _ := newTestRunner(feedWith("available"), gate, n, "1801sk13", "1801sk12")

	_, err := r.Run(context.Background())
	if !errors.Is(err, debounce.ErrMarkerIO) {
		t.Fatalf("expected ErrMarkerIO, got %v", err)
	}
	var runErr *RunError
	if !errors.As(err, &runErr) || len(runErr.Failed) != 2 {
		t.Fatalf("expected both items to fail independently, got %v", err)
	}
	if len(n.messages) != 0 {
		t.Fatalf("marker failure must not notify: %v", n.messages)
	}
}

func TestRunNotifyFailureKeepsMarker(t *testing.T) {
	store := debounce.NewMemory()
	n := &recordingNotifier{err: notifier.ErrNotify}
	r, _ := newTestRunner(feedWith("available"), debounce.NewGate(store), n, "1801sk13", "1801sk12")

	_, err := r.Run(context.Background())
	if !errors.Is(err, notifier.ErrNotify) {
		t.Fatalf("expected ErrNotify, got %v", err)
	}
	var runErr *RunError
	if !errors.As(err, &runErr) || len(runErr.Failed) != 2 {
		t.Fatalf("expected both items reported, got %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "1801sk13"); !ok {
		t.Fatal("marker refresh must not be rolled back on notify failure")
	}
}

func TestRunPicksUpNewTargets(t *testing.T) {
	n := &recordingNotifier{}
	r, _ := newTestRunner(feedWith("available"), debounce.NewGate(debounce.NewMemory()), n, "1801sk13")
	r.SetTargets([]string{"1801sk12"}, time.Minute)

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.messages) != 1 || !strings.HasPrefix(n.messages[0], "1801sk12 ") {
		t.Fatalf("new targets not used: %v", n.messages)
	}
}

func TestAlertMessage(t *testing.T) {
	if got := AlertMessage("1801sk13", "gra", "1H-low"); got != "1801sk13 available in gra with status 1H-low" {
		t.Fatalf("AlertMessage = %q", got)
	}
}
