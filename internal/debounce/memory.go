package debounce

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local Store.
type Memory struct {
	mu sync.Mutex
	m  map[string]time.Time
}

func NewMemory() *Memory { return &Memory{m: map[string]time.Time{}} }

func (s *Memory) Get(ctx context.Context, key string) (time.Time, bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return time.Time{}, false, ErrClosed
	}
	t, ok := s.m[key]
	return t, ok, nil
}

func (s *Memory) Set(ctx context.Context, key string, at time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		return ErrClosed
	}
	s.m[key] = at
	return nil
}

// Len returns the number of stored markers.
func (s *Memory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Memory) Close() error {
	s.mu.Lock()
	s.m = nil
	s.mu.Unlock()
	return nil
}
