package debounce

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logx "kswatch/pkg/logx"
)

const markerExt = ".ks"

// markerStore keeps one empty file per key; the file mtime is the instant.
//
// Files:
//   - <dir>/<key>.ks
//
// Existence + mtime are the whole read API, touch is the whole write API.
type markerStore struct {
	log logx.Logger
	dir string

	mu     sync.Mutex
	closed bool
}

func openMarker(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	log.Debug("marker store opened", logx.String("dir", dir))
	return &markerStore{log: log, dir: dir}, nil
}

// NewMarker opens a marker store rooted at dir.
func NewMarker(dir string) (Store, error) {
	return openMarker(Config{Path: dir}, logx.Nop())
}

func (s *markerStore) path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+markerExt), nil
}

func (s *markerStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	if s.isClosed() {
		return time.Time{}, false, ErrClosed
	}
	p, err := s.path(key)
	if err != nil {
		return time.Time{}, false, err
	}
	fi, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if fi.IsDir() {
		return time.Time{}, false, fmt.Errorf("%s is a directory", p)
	}
	s.log.Debug("marker found", logx.String("path", p), logx.Time("mtime", fi.ModTime()))
	return fi.ModTime(), true, nil
}

func (s *markerStore) Set(ctx context.Context, key string, at time.Time) error {
	_ = ctx
	if s.isClosed() {
		return ErrClosed
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Chtimes(p, at, at); err != nil {
		return err
	}
	s.log.Debug("marker touched", logx.String("path", p), logx.Time("at", at))
	return nil
}

func (s *markerStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *markerStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// validKey rejects keys that could escape the marker directory.
func validKey(key string) error {
	k := strings.TrimSpace(key)
	if k == "" || k != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if k == "." || k == ".." || strings.ContainsAny(k, `/\`) || strings.ContainsRune(k, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
