package server

import (
	"log/slog"
	"time"

	"github.com/kafaat/sahool-sensors/internal/broker"
	"github.com/kafaat/sahool-sensors/internal/cache"
	"github.com/kafaat/sahool-sensors/internal/db"
	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/health"
	"github.com/kafaat/sahool-sensors/internal/threshold"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ServerConfig struct {
	MessageQueue    broker.MessageQueue
	DataStore       domain.DataStore
	HealthCache     domain.HealthCache
	Consumer        domain.DataConsumer
	Catalog         *threshold.Catalog
	Logger          *slog.Logger
	WorkerCount     int
	BatchSize       int
	Port            string
	QualityInterval time.Duration
	Health          health.Options
}

type ConfigOption func(*ServerConfig) error

func WithKafka(brokers, topic, groupID string) ConfigOption {
	return func(config *ServerConfig) error {
		mq, err := broker.NewKafkaQueue(brokers, topic, groupID, config.Logger)
		if err != nil {
			return err
		}
		config.MessageQueue = mq
		return nil
	}
}

// WithChannelQueue wires an in-process queue for single-node runs.
func WithChannelQueue(buffer int) ConfigOption {
	return func(config *ServerConfig) error {
		config.MessageQueue = broker.NewChannelQueue(buffer)
		return nil
	}
}

func WithMongoDB(client *mongo.Client, database string) ConfigOption {
	return func(config *ServerConfig) error {
		store, err := db.NewMongoReadingStore(client, database)
		if err != nil {
			return err
		}
		config.DataStore = store
		return nil
	}
}

func WithRedis(addr string, ttl time.Duration) ConfigOption {
	return func(config *ServerConfig) error {
		healthCache, err := cache.NewRedisHealthCache(addr, ttl)
		if err != nil {
			return err
		}
		config.HealthCache = healthCache
		return nil
	}
}

func WithWorkerConfig(workerCount, batchSize int) ConfigOption {
	return func(config *ServerConfig) error {
		config.WorkerCount = workerCount
		config.BatchSize = batchSize
		return nil
	}
}

func WithPort(port string) ConfigOption {
	return func(config *ServerConfig) error {
		config.Port = port
		return nil
	}
}

func WithLogger(log *slog.Logger) ConfigOption {
	return func(config *ServerConfig) error {
		config.Logger = log
		return nil
	}
}

// WithCatalog replaces the default threshold catalog, e.g. with regional
// overrides loaded from config.
func WithCatalog(catalog *threshold.Catalog) ConfigOption {
	return func(config *ServerConfig) error {
		config.Catalog = catalog
		return nil
	}
}

func WithQualityInterval(interval time.Duration) ConfigOption {
	return func(config *ServerConfig) error {
		config.QualityInterval = interval
		return nil
	}
}

func WithHealthOptions(opts health.Options) ConfigOption {
	return func(config *ServerConfig) error {
		config.Health = opts
		return nil
	}
}

// WithMessageQueue, WithDataStore, WithHealthCache and WithConsumer inject
// prebuilt collaborators, mostly for tests.
func WithMessageQueue(mq broker.MessageQueue) ConfigOption {
	return func(config *ServerConfig) error {
		config.MessageQueue = mq
		return nil
	}
}

func WithDataStore(store domain.DataStore) ConfigOption {
	return func(config *ServerConfig) error {
		config.DataStore = store
		return nil
	}
}

func WithHealthCache(healthCache domain.HealthCache) ConfigOption {
	return func(config *ServerConfig) error {
		config.HealthCache = healthCache
		return nil
	}
}

func WithConsumer(consumer domain.DataConsumer) ConfigOption {
	return func(config *ServerConfig) error {
		config.Consumer = consumer
		return nil
	}
}
