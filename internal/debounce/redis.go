package debounce

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	logx "kswatch/pkg/logx"
)

const defaultRedisPrefix = "kswatch:marker:"

// redisStore keeps one string key per item holding the unix-milli instant.
type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logx.Logger
}

func openRedis(cfg Config, log logx.Logger) (Store, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	log.Debug("redis store opened", logx.String("addr", addr), logx.Int("db", cfg.DB))
	return NewRedis(client, cfg.Prefix, cfg.TTL, log), nil
}

// NewRedis wraps an existing client. An empty prefix selects the default.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, log logx.Logger) Store {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &redisStore{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (s *redisStore) key(item string) (string, error) {
	if item == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	return s.prefix + item, nil
}

func (s *redisStore) Get(ctx context.Context, item string) (time.Time, bool, error) {
	k, err := s.key(item)
	if err != nil {
		return time.Time{}, false, err
	}
	v, err := s.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis key %s: bad instant %q: %w", k, v, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *redisStore) Set(ctx context.Context, item string, at time.Time) error {
	k, err := s.key(item)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, k, at.UnixMilli(), s.ttl).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
