package config

import (
	"strings"
	"time"
)

// Config is the on-disk configuration (JSON or YAML).
//
// Durations are Go duration strings (e.g. "500ms", "10s", "1m") except
// ks.notification_delay, which is whole minutes.
type Config struct {
	Feed     FeedConfig     `json:"feed"`
	KS       KSConfig       `json:"ks"`
	Watch    WatchConfig    `json:"watch"`
	Debounce DebounceConfig `json:"debounce"`
	Notifier NotifierConfig `json:"notifier"`
	Logging  LoggingConfig  `json:"logging"`
}

type FeedConfig struct {
	URL     string `json:"url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// KSConfig lists the tracked server models and the alert cooldown.
//
// Example:
//
//	"ks": { "models": "1801sk13, 1801sk12", "notification_delay": 60 }
type KSConfig struct {
	// Models is a comma-separated list of model references.
	Models string `json:"models"`
	// NotificationDelay is the per-model cooldown in minutes.
	// Omitted means DefaultNotificationDelay.
	NotificationDelay *int `json:"notification_delay,omitempty"`
}

// WatchConfig is only used by -watch mode.
type WatchConfig struct {
	// Schedule accepts cron ("*/5 * * * *"), descriptors ("@every 5m"),
	// durations ("5m") or HH:MM intervals ("00:05").
	Schedule string `json:"schedule,omitempty"`
}

// DebounceConfig selects where the per-model "last alert" markers live.
//
// Example:
//
//	"debounce": { "driver": "sqlite", "path": "./state/markers.db" }
type DebounceConfig struct {
	Driver      string `json:"driver,omitempty"` // marker | sqlite | redis | memory
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite

	Addr     string `json:"addr,omitempty"` // redis
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	TTL      string `json:"ttl,omitempty"`
}

type NotifierConfig struct {
	Driver     string  `json:"driver,omitempty"` // pushover | telegram | log
	Title      string  `json:"title,omitempty"`
	Priority   *int    `json:"priority,omitempty"`
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
	Timeout    string  `json:"timeout,omitempty"`

	Pushover PushoverConfig `json:"pushover"`
	Telegram TelegramConfig `json:"telegram"`
}

type PushoverConfig struct {
	APIToken  string `json:"api_token"`
	ClientKey string `json:"client_key"`
	Endpoint  string `json:"endpoint,omitempty"`
}

type TelegramConfig struct {
	Token    string `json:"token"`
	ChatID   int64  `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	APIURL   string `json:"api_url,omitempty"`
}

type LoggingConfig struct {
	Console      *bool       `json:"console,omitempty"`
	ConsoleLevel string      `json:"console_level,omitempty"`
	File         LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	Level   string `json:"level,omitempty"`
}

const DefaultNotificationDelay = 60

// Models returns the tracked model references in configuration order,
// whitespace stripped, empties and duplicates dropped.
func (c *Config) Models() []string {
	return SplitModels(c.KS.Models)
}

// Cooldown returns ks.notification_delay as a duration.
func (c *Config) Cooldown() time.Duration {
	m := DefaultNotificationDelay
	if c.KS.NotificationDelay != nil {
		m = *c.KS.NotificationDelay
	}
	return time.Duration(m) * time.Minute
}

// ConsoleEnabled defaults to true when logging.console is omitted.
func (c *Config) ConsoleEnabled() bool {
	return c.Logging.Console == nil || *c.Logging.Console
}

// NotifierPriority defaults to 1 when notifier.priority is omitted.
func (c *Config) NotifierPriority() int {
	if c.Notifier.Priority == nil {
		return 1
	}
	return *c.Notifier.Priority
}

func SplitModels(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
