package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	pricingTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, pricingTTL time.Duration) *RedisCache {
	return newRedisCache(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), pricingTTL)
}

func newRedisCache(client *redis.Client, pricingTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, pricingTTL: pricingTTL}
}

// GetPricing returns nil, nil on a cache miss.
func (c *RedisCache) GetPricing(ctx context.Context, flightID int64) (*domain.FlightPricing, error) {
	data, err := c.client.Get(ctx, pricingKey(flightID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var pricing domain.FlightPricing
	if err := json.Unmarshal(data, &pricing); err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (c *RedisCache) SetPricing(ctx context.Context, pricing *domain.FlightPricing) error {
	if c.pricingTTL <= 0 {
		return nil
	}
	payload, err := json.Marshal(pricing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pricingKey(pricing.FlightID), payload, c.pricingTTL).Err()
}

func (c *RedisCache) AcquireTicketLock(ctx context.Context, ticketID uuid.UUID, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, ticketLockKey(ticketID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseTicketLock(ctx context.Context, ticketID uuid.UUID) error {
	return c.client.Del(ctx, ticketLockKey(ticketID)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func pricingKey(flightID int64) string {
	return fmt.Sprintf("cache:flight:%d:pricing", flightID)
}

func ticketLockKey(ticketID uuid.UUID) string {
	return fmt.Sprintf("lock:ticket:%s", ticketID)
}
