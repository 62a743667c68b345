// Package redis caches demand forecasts so repeated plans over an unchanged sales history do
// not call the AI provider again.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/planning"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 6 * time.Hour

// ForecastCache stores forecasts as JSON strings with a TTL.
type ForecastCache struct {
	client goredis.Cmdable
	ttl    time.Duration
}

var _ planning.ForecastCache = (*ForecastCache)(nil)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewForecastCache wraps client. A non-positive ttl selects DefaultTTL.
func NewForecastCache(client goredis.Cmdable, ttl time.Duration) *ForecastCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ForecastCache{client: client, ttl: ttl}
}

// GetForecast returns the cached forecast for key; ok is false on a miss.
func (c *ForecastCache) GetForecast(ctx context.Context, key string) (models.ForecastData, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var forecast models.ForecastData
	if err := json.Unmarshal([]byte(val), &forecast); err != nil {
		return nil, false, fmt.Errorf("decode cached forecast: %w", err)
	}
	return forecast, true, nil
}

// SetForecast stores forecast under key until the TTL expires.
func (c *ForecastCache) SetForecast(ctx context.Context, key string, forecast models.ForecastData) error {
	payload, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
