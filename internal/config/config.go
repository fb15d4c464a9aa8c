package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kafaat/sahool-sensors/internal/threshold"
)

type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Kafka struct {
		Brokers string `mapstructure:"brokers"`
		Topic   string `mapstructure:"topic"`
		GroupID string `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
	Redis struct {
		Addr       string `mapstructure:"addr"`
		TTLMinutes int    `mapstructure:"ttl_minutes"`
	} `mapstructure:"redis"`
	Worker struct {
		Count     int `mapstructure:"count"`
		BatchSize int `mapstructure:"batch_size"`
	} `mapstructure:"worker"`
	Quality struct {
		// nominal reporting interval used for completeness scoring
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"quality"`
	Health struct {
		WindowHours      int `mapstructure:"window_hours"`
		DriftWindow      int `mapstructure:"drift_window"`
		ExpectedReadings int `mapstructure:"expected_readings"`
	} `mapstructure:"health"`
	// Thresholds override or extend the built-in catalog per deployment
	// region without a rebuild.
	Thresholds []threshold.Entry `mapstructure:"thresholds"`
}

// Load reads config.yaml from path, falling back to defaults for anything
// missing. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvPrefix("sahool")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "sensor-readings")
	v.SetDefault("kafka.group_id", "sahool-aggregator")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "sahool_sensors")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.ttl_minutes", 15)
	v.SetDefault("worker.count", 8)
	v.SetDefault("worker.batch_size", 200)
	v.SetDefault("quality.interval_minutes", 15)
	v.SetDefault("health.window_hours", 24)
	v.SetDefault("health.drift_window", 10)
}
