package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var (
	_ port.RecentlyViewedStore = (*MemoryRecentlyViewed)(nil)
	_ port.RecentlyViewedStore = RedisRecentlyViewed{}
)

// MemoryRecentlyViewed keeps the lists in process memory.
type MemoryRecentlyViewed struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewMemoryRecentlyViewed() *MemoryRecentlyViewed {
	return &MemoryRecentlyViewed{lists: make(map[string][]string)}
}

func (s *MemoryRecentlyViewed) Get(_ context.Context, visitor string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lists[visitor]), nil
}

func (s *MemoryRecentlyViewed) Set(_ context.Context, visitor string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ids) == 0 {
		delete(s.lists, visitor)
		return nil
	}
	s.lists[visitor] = slices.Clone(ids)
	return nil
}

const (
	DefaultRedisKeyPrefix = "storefront:recently-viewed:"
	DefaultRedisTTL       = 30 * 24 * time.Hour
)

type RedisOpt func(*RedisRecentlyViewed)

func RedisKeyPrefixOpt(prefix string) RedisOpt {
	return func(s *RedisRecentlyViewed) {
		s.prefix = prefix
	}
}

// RedisTTLOpt sets the idle lifetime of a list; 0 keeps lists forever.
func RedisTTLOpt(ttl time.Duration) RedisOpt {
	return func(s *RedisRecentlyViewed) {
		s.ttl = ttl
	}
}

// RedisRecentlyViewed stores each list as a JSON array under one key.
type RedisRecentlyViewed struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisRecentlyViewed(
	rdb redis.UniversalClient, opts ...RedisOpt,
) RedisRecentlyViewed {
	if rdb == nil {
		panic("redis client is nil") // develop mistake
	}
	s := RedisRecentlyViewed{
		rdb:    rdb,
		prefix: DefaultRedisKeyPrefix,
		ttl:    DefaultRedisTTL,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s RedisRecentlyViewed) key(visitor string) string {
	return s.prefix + visitor
}

func (s RedisRecentlyViewed) Get(ctx context.Context, visitor string) ([]string, error) {
	const op = "RedisRecentlyViewed.Get"

	data, err := s.rdb.Get(ctx, s.key(visitor)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("dropping unreadable list", "op", op, "visitor", visitor, "err", err)
		return nil, nil
	}
	return ids, nil
}

func (s RedisRecentlyViewed) Set(ctx context.Context, visitor string, ids []string) error {
	const op = "RedisRecentlyViewed.Set"

	if len(ids) == 0 {
		if err := s.rdb.Del(ctx, s.key(visitor)).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.rdb.Set(ctx, s.key(visitor), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(
	ctx context.Context, addr, password string, db int,
) (*redis.Client, error) {
	const op = "NewRedisClient"

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op, "addr", addr)
	return rdb, nil
}
