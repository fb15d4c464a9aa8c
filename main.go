package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/kafaat/sahool-sensors/core/server"
	"github.com/kafaat/sahool-sensors/internal/config"
	"github.com/kafaat/sahool-sensors/internal/db"
	"github.com/kafaat/sahool-sensors/internal/health"
	"github.com/kafaat/sahool-sensors/internal/threshold"
)

func main() {
	log := slog.New(tint.NewHandler(os.Stdout, nil))
	slog.SetDefault(log)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	mongoClient, err := db.NewMongoConnection(cfg.Mongo.URI)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(
		server.WithLogger(log),
		server.WithKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID),
		server.WithMongoDB(mongoClient, cfg.Mongo.Database),
		server.WithRedis(cfg.Redis.Addr, time.Duration(cfg.Redis.TTLMinutes)*time.Minute),
		server.WithWorkerConfig(cfg.Worker.Count, cfg.Worker.BatchSize),
		server.WithPort(cfg.Server.Port),
		server.WithCatalog(threshold.NewCatalog(cfg.Thresholds...)),
		server.WithQualityInterval(time.Duration(cfg.Quality.IntervalMinutes)*time.Minute),
		server.WithHealthOptions(healthOptions(cfg)),
	)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
	}

	srv.Close()
}

func healthOptions(cfg *config.Config) health.Options {
	return health.Options{
		Window:           time.Duration(cfg.Health.WindowHours) * time.Hour,
		ExpectedReadings: cfg.Health.ExpectedReadings,
		DriftWindowSize:  cfg.Health.DriftWindow,
	}
}
