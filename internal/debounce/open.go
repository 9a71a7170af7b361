package debounce

import (
	"errors"
	"strings"

	logx "kswatch/pkg/logx"
)

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "marker", "file":
		return openMarker(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "redis":
		return openRedis(cfg, log)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown debounce driver: " + driver)
	}
}

// Drivers lists the accepted driver names.
func Drivers() []string { return []string{"marker", "file", "sqlite", "sqlite3", "redis", "memory"} }
