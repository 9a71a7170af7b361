package app

import (
	"strings"

	"kswatch/internal/config"
	"kswatch/internal/debounce"
	"kswatch/internal/feed"
	"kswatch/internal/notifier"
	logx "kswatch/pkg/logx"
)

// ---- config -> component mapping ----

// LogConfig maps the logging section onto the logx service config.
func LogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Console:      cfg.ConsoleEnabled(),
		ConsoleLevel: cfg.Logging.ConsoleLevel,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
			Level:   cfg.Logging.File.Level,
		},
	}
}

func feedConfig(cfg *config.Config) feed.Config {
	return feed.Config{
		URL:     cfg.Feed.URL,
		Timeout: config.MustDuration(cfg.Feed.Timeout),
	}
}

func debounceConfig(cfg *config.Config) debounce.Config {
	d := cfg.Debounce
	return debounce.Config{
		Driver:      d.Driver,
		Path:        d.Path,
		BusyTimeout: config.MustDuration(d.BusyTimeout),
		Addr:        d.Addr,
		Password:    d.Password,
		DB:          d.DB,
		Prefix:      d.Prefix,
		TTL:         config.MustDuration(d.TTL),
	}
}

func notifierConfig(cfg *config.Config, dryRun bool) notifier.Config {
	n := cfg.Notifier
	driver := n.Driver
	if dryRun {
		driver = "log"
	}
	return notifier.Config{
		Driver:     strings.TrimSpace(driver),
		Title:      n.Title,
		Priority:   cfg.NotifierPriority(),
		RatePerSec: n.RatePerSec,
		Timeout:    config.MustDuration(n.Timeout),
		Pushover: notifier.PushoverConfig{
			APIToken:  n.Pushover.APIToken,
			ClientKey: n.Pushover.ClientKey,
			Endpoint:  n.Pushover.Endpoint,
		},
		Telegram: notifier.TelegramConfig{
			Token:    n.Telegram.Token,
			ChatID:   n.Telegram.ChatID,
			ThreadID: n.Telegram.ThreadID,
			APIURL:   n.Telegram.APIURL,
		},
	}
}
