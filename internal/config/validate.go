package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	logx "kswatch/pkg/logx"
)

// Validate reports every problem found in cfg, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if len(c.Models()) == 0 {
		add("ks.models: at least one model is required")
	}
	if c.KS.NotificationDelay != nil && *c.KS.NotificationDelay < 0 {
		add("ks.notification_delay: must be >= 0 minutes, got %d", *c.KS.NotificationDelay)
	}

	for _, f := range [][2]string{
		{"feed.timeout", c.Feed.Timeout},
		{"notifier.timeout", c.Notifier.Timeout},
		{"debounce.busy_timeout", c.Debounce.BusyTimeout},
		{"debounce.ttl", c.Debounce.TTL},
	} {
		if _, err := Duration(f[0], f[1]); err != nil {
			errs = append(errs, err)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Debounce.Driver)) {
	case "", "marker", "file", "memory":
	case "sqlite", "sqlite3":
		if strings.TrimSpace(c.Debounce.Path) == "" {
			add("debounce.path: required for sqlite driver")
		}
	case "redis":
		if strings.TrimSpace(c.Debounce.Addr) == "" {
			add("debounce.addr: required for redis driver")
		}
	default:
		add("debounce.driver: unknown driver %q", c.Debounce.Driver)
	}

	switch strings.ToLower(strings.TrimSpace(c.Notifier.Driver)) {
	case "", "pushover":
		if strings.TrimSpace(c.Notifier.Pushover.APIToken) == "" {
			add("notifier.pushover.api_token: required")
		}
		if strings.TrimSpace(c.Notifier.Pushover.ClientKey) == "" {
			add("notifier.pushover.client_key: required")
		}
	case "telegram":
		if strings.TrimSpace(c.Notifier.Telegram.Token) == "" {
			add("notifier.telegram.token: required")
		}
		if c.Notifier.Telegram.ChatID == 0 {
			add("notifier.telegram.chat_id: required")
		}
	case "log", "dry-run":
	default:
		add("notifier.driver: unknown driver %q", c.Notifier.Driver)
	}
	if p := c.NotifierPriority(); p < -2 || p > 2 {
		add("notifier.priority: must be within -2..2, got %d", p)
	}
	if c.Notifier.RatePerSec < 0 {
		add("notifier.rate_per_sec: must be >= 0")
	}

	if !logx.ValidLevel(c.Logging.ConsoleLevel) {
		add("logging.console_level: unknown level %q", c.Logging.ConsoleLevel)
	}
	if !logx.ValidLevel(c.Logging.File.Level) {
		add("logging.file.level: unknown level %q", c.Logging.File.Level)
	}
	if c.Logging.File.Enabled && strings.TrimSpace(c.Logging.File.Path) == "" {
		add("logging.file.path: required when file logging is enabled")
	}

	return errors.Join(errs...)
}

// Duration parses an optional Go duration string; empty means 0.
func Duration(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// MustDuration is Duration for values already checked by Validate.
func MustDuration(raw string) time.Duration {
	d, _ := Duration("", raw)
	return d
}
