package app

import (
	"context"
	"errors"
	"fmt"

	"kswatch/internal/config"
	"kswatch/internal/debounce"
	"kswatch/internal/feed"
	"kswatch/internal/notifier"
	logx "kswatch/pkg/logx"
)

// Options are command-line switches that are not part of the config file.
type Options struct {
	DryRun bool // log pushes instead of sending them
}

// App owns the components of one kswatch process.
type App struct {
	cfgm *config.Manager
	cfg  *config.Config
	opts Options

	log  logx.Logger
	logs *logx.Service

	store  debounce.Store
	runner *Runner
}

// New builds every component from an already validated config.
// logs may be nil; the App then logs to the console only.
func New(cfgm *config.Manager, cfg *config.Config, logs *logx.Service, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrConfig)
	}
	log := logx.NewConsole("info")
	if logs != nil {
		log = logs.Logger()
	}

	store, err := debounce.Open(debounceConfig(cfg), log.With(logx.String("comp", "debounce")))
	if err != nil {
		return nil, fmt.Errorf("open debounce store: %w", err)
	}
	disp, err := notifier.New(notifierConfig(cfg, opts.DryRun), log.With(logx.String("comp", "notifier")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("%w: notifier: %w", config.ErrConfig, err)
	}

	gate := debounce.NewGate(store, debounce.WithLogger(log.With(logx.String("comp", "debounce"))))
	client := feed.New(feedConfig(cfg), log.With(logx.String("comp", "feed")))
	runner := NewRunner(client, gate, disp, cfg.Models(), cfg.Cooldown(), log)

	return &App{
		cfgm:   cfgm,
		cfg:    cfg,
		opts:   opts,
		log:    log,
		logs:   logs,
		store:  store,
		runner: runner,
	}, nil
}

func (a *App) Runner() *Runner { return a.runner }

// RunOnce performs a single pass.
func (a *App) RunOnce(ctx context.Context) error {
	_, err := a.runner.Run(ctx)
	return err
}

func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
