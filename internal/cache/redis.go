package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"salonemart/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis connects to redis. Callers skip the call entirely when the cache
// is disabled in config.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// BalanceCache is a read-through cache over the derived wallet balance. It is
// invalidated on every ledger append and finalize and is never written from
// any other source, so it can only lag, never drift. A nil *BalanceCache is
// valid and disables caching.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if client == nil {
		return nil
	}
	return &BalanceCache{client: client, ttl: ttl}
}

func balanceKey(userID uint) string {
	return fmt.Sprintf("wallet:balance:%d", userID)
}

func (c *BalanceCache) Get(ctx context.Context, userID uint) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, err := c.client.Get(ctx, balanceKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	bal, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return bal, true
}

func (c *BalanceCache) Set(ctx context.Context, userID uint, balance int64) {
	if c == nil {
		return
	}
	c.client.Set(ctx, balanceKey(userID), strconv.FormatInt(balance, 10), c.ttl)
}

func (c *BalanceCache) Invalidate(ctx context.Context, userIDs ...uint) {
	if c == nil {
		return
	}
	for _, id := range userIDs {
		c.client.Del(ctx, balanceKey(id))
	}
}
