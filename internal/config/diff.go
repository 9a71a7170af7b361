package config

import (
	"reflect"
	"strings"

	logx "kswatch/pkg/logx"
)

// SummarizeChange returns the changed top-level sections and safe fields
// for logging. Secrets (tokens, keys, passwords) are never included.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 6)
	fields := make([]logx.Field, 0, 8)

	if !reflect.DeepEqual(oldCfg.Models(), newCfg.Models()) || oldCfg.Cooldown() != newCfg.Cooldown() {
		changed = append(changed, "ks")
		fields = append(fields,
			logx.Strs("ks.models", newCfg.Models()),
			logx.Duration("ks.cooldown", newCfg.Cooldown()),
		)
	}
	if oldCfg.Feed != newCfg.Feed {
		changed = append(changed, "feed")
		fields = append(fields, logx.String("feed.url", newCfg.Feed.URL))
	}
	if strings.TrimSpace(oldCfg.Watch.Schedule) != strings.TrimSpace(newCfg.Watch.Schedule) {
		changed = append(changed, "watch")
		fields = append(fields, logx.String("watch.schedule", newCfg.Watch.Schedule))
	}
	if oldCfg.Debounce != newCfg.Debounce {
		changed = append(changed, "debounce")
		fields = append(fields, logx.String("debounce.driver", newCfg.Debounce.Driver))
	}
	if !reflect.DeepEqual(oldCfg.Notifier, newCfg.Notifier) {
		changed = append(changed, "notifier")
		fields = append(fields, logx.String("notifier.driver", newCfg.Notifier.Driver))
	}
	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
	}
	return changed, fields
}
