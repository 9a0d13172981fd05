package quotecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/UnlockdFinance/unlockd-v2/internal/reservoir"
)

// Cache stores JSON values in Redis with a fixed TTL.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(addr string, db int, password string, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Cache{redis: rdb, ttl: ttl, logger: logger}, nil
}

// Get decodes the value stored at key into dest. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// Set stores value at key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Source is anything that can produce execute data.
type Source interface {
	Execute(ctx context.Context, action reservoir.Action, req *reservoir.ExecuteRequest) (*reservoir.ExecuteResponse, error)
}

// CachingSource serves repeated execute calls from Redis. Cache failures
// are logged and fall through to next.
type CachingSource struct {
	next   Source
	cache  *Cache
	logger *zap.Logger
}

func NewCachingSource(next Source, cache *Cache, logger *zap.Logger) *CachingSource {
	return &CachingSource{next: next, cache: cache, logger: logger}
}

// Key builds the cache key for an execute request.
func Key(action reservoir.Action, req *reservoir.ExecuteRequest) string {
	token := ""
	if len(req.Items) > 0 {
		token = req.Items[0].Token
	}
	return strings.ToLower(fmt.Sprintf("reservoir:execute:%s:%s:%s:%s", action, token, req.Taker, req.Currency))
}

func (s *CachingSource) Execute(ctx context.Context, action reservoir.Action, req *reservoir.ExecuteRequest) (*reservoir.ExecuteResponse, error) {
	key := Key(action, req)

	var cached reservoir.ExecuteResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("quotecache.get_failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		s.logger.Debug("quotecache.hit", zap.String("key", key))
		return &cached, nil
	}

	resp, err := s.next.Execute(ctx, action, req)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, resp); err != nil {
		s.logger.Warn("quotecache.set_failed", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}
