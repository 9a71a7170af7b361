package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"kswatch/internal/app"
	"kswatch/internal/config"
	logx "kswatch/pkg/logx"
)

const (
	exitFatal       = 1
	exitItemFailure = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath string
		watch   bool
		dryRun  bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config (yaml or json)")
	flag.BoolVar(&watch, "watch", false, "keep running and poll on watch.schedule")
	flag.BoolVar(&dryRun, "dry-run", false, "log alerts instead of sending them")
	flag.Parse()

	boot := logx.NewConsole("info")

	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		boot.Error("config load failed", logx.String("path", cfgPath), logx.Err(err))
		return exitFatal
	}

	logs, log, err := logx.New(app.LogConfig(cfg))
	if err != nil {
		// File sink problems are not fatal; console keeps working.
		boot.Warn("logging setup incomplete", logx.Err(err))
	}
	defer logs.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgm, cfg, logs, app.Options{DryRun: dryRun})
	if err != nil {
		log.Error("startup failed", logx.Err(err))
		return exitFatal
	}
	defer a.Close()

	if watch {
		if err := a.Watch(ctx); err != nil {
			log.Error("watch failed", logx.Err(err))
			return exitFatal
		}
		return 0
	}

	err = a.RunOnce(ctx)
	var runErr *app.RunError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &runErr):
		log.Warn("pass finished with failures", logx.Strs("items", runErr.Items()))
		return exitItemFailure
	default:
		log.Error("pass aborted", logx.Err(err))
		return exitFatal
	}
}
