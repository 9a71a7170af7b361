package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"kswatch/internal/availability"
	logx "kswatch/pkg/logx"
)

// Fetcher returns the raw availability payload.
type Fetcher interface {
	FetchAvailability(ctx context.Context) (any, error)
}

// AlertGate decides whether an alert for an item may fire now.
type AlertGate interface {
	ShouldAlert(ctx context.Context, item string, cooldown time.Duration) (bool, error)
}

// Notifier delivers one alert message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Report summarizes one pass.
type Report struct {
	RunID       string
	Items       int
	Zones       int
	Interesting int
	Alerted     int
	Suppressed  int
	Failed      int
	Took        time.Duration
}

// Runner performs fetch -> classify -> gate -> notify passes.
//
// A pass is synchronous. Runner serializes passes so a scheduler cannot
// overlap them inside one process.
type Runner struct {
	feed   Fetcher
	gate   AlertGate
	notify Notifier
	log    logx.Logger

	runMu sync.Mutex

	mu       sync.RWMutex
	items    []string
	cooldown time.Duration
}

func NewRunner(feed Fetcher, gate AlertGate, notify Notifier, items []string, cooldown time.Duration, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Runner{feed: feed, gate: gate, notify: notify, log: log}
	r.SetTargets(items, cooldown)
	return r
}

// SetTargets replaces the tracked items and cooldown for the next pass.
func (r *Runner) SetTargets(items []string, cooldown time.Duration) {
	cp := append([]string(nil), items...)
	r.mu.Lock()
	r.items = cp
	r.cooldown = cooldown
	r.mu.Unlock()
}

func (r *Runner) targets() ([]string, time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items, r.cooldown
}

// Run performs one pass. Fetch and feed-shape failures abort the pass;
// per-item failures are logged, the remaining items still run, and a
// *RunError is returned at the end.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	items, cooldown := r.targets()
	rep := Report{RunID: uuid.NewString(), Items: len(items)}
	log := r.log.With(logx.String("run_id", rep.RunID))
	start := time.Now()

	log.Debug("pass started", logx.Strs("items", items), logx.Duration("cooldown", cooldown))

	raw, err := r.feed.FetchAvailability(ctx)
	if err != nil {
		log.Error("fetch failed", logx.Err(err))
		return rep, err
	}
	snap, err := availability.Classify(raw)
	if err != nil {
		log.Error("feed rejected", logx.Err(err))
		return rep, err
	}
	log.Debug("feed classified", logx.Int("models", len(snap)))

	failed := map[string]error{}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := r.checkItem(ctx, log, snap, item, cooldown, &rep); err != nil {
			failed[item] = err
			rep.Failed++
			log.Error("item check failed", logx.String("item", item), logx.Err(err))
		}
	}

	rep.Took = time.Since(start)
	log.Info("pass finished",
		logx.Int("items", rep.Items),
		logx.Int("interesting", rep.Interesting),
		logx.Int("alerted", rep.Alerted),
		logx.Int("suppressed", rep.Suppressed),
		logx.Int("failed", rep.Failed),
		logx.Duration("took", rep.Took),
	)
	if len(failed) > 0 {
		return rep, &RunError{Total: len(items), Failed: failed}
	}
	return rep, nil
}

// checkItem walks every zone of one item. Zones keep going after a notify
// failure so one bad send does not hide the rest of the item's state.
func (r *Runner) checkItem(ctx context.Context, log logx.Logger, snap availability.Snapshot, item string, cooldown time.Duration, rep *Report) error {
	zones, err := snap.SortedZones(availability.Item(item))
	if err != nil {
		return err
	}
	var errs []error
	for _, zone := range zones {
		rep.Zones++
		status := snap[availability.Item(item)][zone]
		zlog := log.With(logx.String("item", item), logx.String("zone", string(zone)), logx.String("status", status.String()))

		if !status.Interesting() {
			zlog.Info(fmt.Sprintf("%s not available in %s (status: %s)", item, zone, status))
			continue
		}

		rep.Interesting++
		msg := AlertMessage(item, string(zone), status.String())
		zlog.Info(msg)

		ok, err := r.gate.ShouldAlert(ctx, item, cooldown)
		if err != nil {
			// No decision without the marker; the remaining zones share it.
			return errors.Join(append(errs, err)...)
		}
		if !ok {
			rep.Suppressed++
			continue
		}
		if err := r.notify.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
			continue
		}
		rep.Alerted++
		zlog.Debug("alert sent")
	}
	return errors.Join(errs...)
}

// AlertMessage is the notification body for an interesting observation.
func AlertMessage(item, zone, status string) string {
	return fmt.Sprintf("%s available in %s with status %s", item, zone, status)
}
