package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"kswatch/internal/config"
	"kswatch/internal/schedule"
	logx "kswatch/pkg/logx"
)

const DefaultWatchSchedule = "5m"

// Watch runs a pass now and then on every schedule tick until ctx is done.
//
// Passes never overlap: a tick that fires while a pass is still running is
// skipped. Config changes to ks, watch and logging apply without restart.
func (a *App) Watch(ctx context.Context) error {
	raw := a.cfg.Watch.Schedule
	if raw == "" {
		raw = DefaultWatchSchedule
	}
	spec, err := schedule.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: watch.schedule: %w", config.ErrConfig, err)
	}

	a.runLogged(ctx)

	clog := cronLogger{log: a.log.With(logx.String("comp", "cron"))}
	c := cron.New(
		cron.WithParser(schedule.Parser),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	job := cron.FuncJob(func() { a.runLogged(ctx) })
	id := c.Schedule(spec.Schedule, job)
	c.Start()
	a.log.Info("watch mode started", logx.String("schedule", raw), logx.String("kind", spec.Kind.String()))

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("systemd notify failed", logx.Err(err))
	} else if ok {
		a.log.Debug("systemd notified ready")
	}

	var (
		updates  chan *config.Config
		watchErr = make(chan error, 1)
	)
	if a.cfgm != nil {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
		updates = a.cfgm.Subscribe(1)
		defer a.cfgm.Unsubscribe(updates)
		go func() { watchErr <- a.cfgm.Watch(ctx) }()
	}

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			<-c.Stop().Done()
			a.log.Info("watch mode stopped")
			return nil
		case err := <-watchErr:
			if err != nil {
				a.log.Warn("config watcher stopped; hot reload disabled", logx.Err(err))
			}
		case cfg := <-updates:
			if cfg == nil {
				continue
			}
			if next, ok := a.applyConfig(cfg, raw); ok {
				spec, err := schedule.Parse(next)
				if err != nil {
					a.log.Warn("new watch.schedule rejected; keeping previous", logx.String("schedule", next), logx.Err(err))
					continue
				}
				c.Remove(id)
				id = c.Schedule(spec.Schedule, job)
				raw = next
				a.log.Info("watch schedule changed", logx.String("schedule", raw))
			}
		}
	}
}

// applyConfig swaps the hot-reloadable parts of cfg in and reports the new
// schedule when it differs from current.
func (a *App) applyConfig(cfg *config.Config, current string) (string, bool) {
	changed, fields := config.SummarizeChange(a.cfg, cfg)
	if len(changed) == 0 {
		return "", false
	}
	a.log.Info("config change applied", append(fields, logx.Strs("sections", changed))...)

	for _, s := range changed {
		switch s {
		case "feed", "debounce", "notifier":
			a.log.Warn("config section changed; restart to apply", logx.String("section", s))
		}
	}

	a.runner.SetTargets(cfg.Models(), cfg.Cooldown())
	if a.logs != nil {
		if err := a.logs.Apply(LogConfig(cfg)); err != nil {
			a.log.Warn("logging reload incomplete", logx.Err(err))
		}
	}
	a.cfg = cfg

	next := cfg.Watch.Schedule
	if next == "" {
		next = DefaultWatchSchedule
	}
	return next, next != current
}

func (a *App) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := a.runner.Run(ctx)
	if err == nil {
		return
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		// Per-item failures were already logged by the runner.
		return
	}
	a.log.Error("pass aborted", logx.Err(err))
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
