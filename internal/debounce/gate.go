package debounce

import (
	"context"
	"time"

	logx "kswatch/pkg/logx"
)

// Gate is a per-key cooldown gate backed by a Store.
//
// The only admission rule is "cooldown elapsed since the last granted
// alert". Concurrent gates sharing one store are not coordinated.
type Gate struct {
	store Store
	log   logx.Logger
	now   func() time.Time
}

type GateOption func(*Gate)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

func WithLogger(log logx.Logger) GateOption {
	return func(g *Gate) {
		if !log.IsZero() {
			g.log = log
		}
	}
}

func NewGate(store Store, opts ...GateOption) *Gate {
	g := &Gate{store: store, log: logx.Nop(), now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// ShouldAlert reports whether an alert for item may fire now and, if so,
// refreshes the item's marker to now.
//
// On a store failure it returns (false, *MarkerIOError); callers must treat
// that as "no decision", not as a denial.
func (g *Gate) ShouldAlert(ctx context.Context, item string, cooldown time.Duration) (bool, error) {
	log := g.log.With(logx.String("item", item))

	last, ok, err := g.store.Get(ctx, item)
	if err != nil {
		return false, &MarkerIOError{Item: item, Op: "get", Err: err}
	}
	now := g.now()

	if ok {
		elapsed := now.Sub(last)
		if elapsed <= cooldown {
			log.Info("no notification, cooldown active",
				logx.Duration("since_last", elapsed), logx.Duration("cooldown", cooldown))
			return false, nil
		}
		log.Info("send notification, cooldown elapsed",
			logx.Duration("since_last", elapsed), logx.Duration("cooldown", cooldown))
	} else {
		log.Info("no marker found, creating one and sending notification")
	}

	if err := g.store.Set(ctx, item, now); err != nil {
		return false, &MarkerIOError{Item: item, Op: "set", Err: err}
	}
	return true, nil
}
