package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "kswatch/pkg/logx"

	"golang.org/x/time/rate"
)

// Dispatcher sends alert messages through a Transport with a fixed
// title/priority policy.
type Dispatcher struct {
	transport Transport
	log       logx.Logger
	title     string
	priority  int
	timeout   time.Duration
	limiter   *rate.Limiter
}

// New builds the transport named by cfg.Driver and wraps it in a Dispatcher.
func New(cfg Config, log logx.Logger) (*Dispatcher, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	var (
		tr  Transport
		err error
	)
	switch d := strings.ToLower(strings.TrimSpace(cfg.Driver)); d {
	case "", "pushover":
		tr, err = NewPushover(cfg.Pushover, cfg.Timeout)
	case "telegram":
		tr, err = NewTelegram(cfg.Telegram, cfg.Timeout)
	case "log", "dry-run":
		tr = NewLogTransport(log)
	default:
		err = errors.New("unknown notifier driver: " + d)
	}
	if err != nil {
		return nil, err
	}
	return NewDispatcher(tr, cfg, log), nil
}

// NewDispatcher wraps an existing transport.
func NewDispatcher(tr Transport, cfg Config, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = DefaultTitle
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	// Token bucket: one push of burst so the first alert of a pass is immediate.
	return &Dispatcher{
		transport: tr,
		log:       log,
		title:     title,
		priority:  cfg.Priority,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Notify sends message with the configured title and priority.
func (d *Dispatcher) Notify(ctx context.Context, message string) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", ErrNotify, err)
	}

	sctx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	p := Push{Message: message, Title: d.title, Priority: d.priority}
	start := time.Now()
	if err := d.transport.Send(sctx, p); err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	d.log.Debug("notification sent",
		logx.String("title", p.Title),
		logx.Int("priority", p.Priority),
		logx.Duration("took", time.Since(start)),
	)
	return nil
}

// logTransport only records the push.
type logTransport struct{ log logx.Logger }

func NewLogTransport(log logx.Logger) Transport { return logTransport{log: log} }

func (t logTransport) Send(ctx context.Context, p Push) error {
	_ = ctx
	t.log.Info("dry-run notification",
		logx.String("title", p.Title),
		logx.Int("priority", p.Priority),
		logx.String("message", p.Message),
	)
	return nil
}
