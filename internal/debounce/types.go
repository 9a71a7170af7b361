package debounce

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrMarkerIO   = errors.New("debounce marker i/o")
	ErrInvalidKey = errors.New("invalid debounce key")
	ErrClosed     = errors.New("debounce store closed")
)

// Store persists the last alert instant per key.
type Store interface {
	Get(ctx context.Context, key string) (last time.Time, ok bool, err error)
	Set(ctx context.Context, key string, at time.Time) error
	Close() error
}

// Config selects and configures a Store backend.
//
// Driver values: "marker" (default), "sqlite", "redis", "memory".
type Config struct {
	Driver string

	// Path is the marker directory (marker) or database file (sqlite).
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	// Redis.
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration // 0 keeps keys forever
}

// MarkerIOError reports a failed read or write of an item's marker.
// It never implies a decision: the alert is neither granted nor denied.
type MarkerIOError struct {
	Item string
	Op   string // "get" | "set"
	Err  error
}

func (e *MarkerIOError) Error() string {
	return fmt.Sprintf("debounce marker %s for %q: %v", e.Op, e.Item, e.Err)
}

func (e *MarkerIOError) Unwrap() []error { return []error{ErrMarkerIO, e.Err} }
