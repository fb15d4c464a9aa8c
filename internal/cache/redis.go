package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kafaat/sahool-sensors/internal/domain"
)

const DefaultTTL = 15 * time.Minute

// RedisHealthCache keeps the latest health verdict per (device, field,
// sensor type) with a TTL so the API can answer without re-evaluating on
// every request. Instances are injected into their callers; there is no
// process-wide cache.
type RedisHealthCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHealthCache(addr string, ttl time.Duration) (*RedisHealthCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     100,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisHealthCache{client: client, ttl: ttl}, nil
}

func healthKey(deviceID, fieldID, sensorType string) string {
	return "health:" + deviceID + ":" + fieldID + ":" + sensorType
}

func (c *RedisHealthCache) PutHealth(ctx context.Context, health domain.SensorHealth) error {
	data, err := json.Marshal(health)
	if err != nil {
		return fmt.Errorf("failed to marshal health: %w", err)
	}

	if err := c.client.Set(ctx, healthKey(health.DeviceID, health.FieldID, health.SensorType), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store health in Redis: %w", err)
	}
	return nil
}

// GetHealth returns nil without error on a cache miss.
func (c *RedisHealthCache) GetHealth(ctx context.Context, deviceID, fieldID, sensorType string) (*domain.SensorHealth, error) {
	data, err := c.client.Get(ctx, healthKey(deviceID, fieldID, sensorType)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get health from Redis: %w", err)
	}

	var health domain.SensorHealth
	if err := json.Unmarshal([]byte(data), &health); err != nil {
		return nil, fmt.Errorf("failed to unmarshal health: %w", err)
	}
	return &health, nil
}

func (c *RedisHealthCache) Close() error {
	return c.client.Close()
}
