package cache

import (
	"context"
	"sync"

	"github.com/kafaat/sahool-sensors/internal/domain"
)

// MemoryHealthCache is a mutex-guarded in-process cache for local runs and
// tests. Concurrent evaluation workers share it safely.
type MemoryHealthCache struct {
	mu      sync.RWMutex
	entries map[string]domain.SensorHealth
}

func NewMemoryHealthCache() *MemoryHealthCache {
	return &MemoryHealthCache{entries: make(map[string]domain.SensorHealth)}
}

func (c *MemoryHealthCache) PutHealth(_ context.Context, health domain.SensorHealth) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memoryKey(health.DeviceID, health.FieldID, health.SensorType)] = health
	return nil
}

func (c *MemoryHealthCache) GetHealth(_ context.Context, deviceID, fieldID, sensorType string) (*domain.SensorHealth, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if health, ok := c.entries[memoryKey(deviceID, fieldID, sensorType)]; ok {
		return &health, nil
	}
	return nil, nil
}

func memoryKey(deviceID, fieldID, sensorType string) string {
	return deviceID + ":" + fieldID + ":" + sensorType
}
