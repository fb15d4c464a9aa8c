package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kafaat/sahool-sensors/core/consumer"
	"github.com/kafaat/sahool-sensors/internal/aggregate"
	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/health"
	"github.com/kafaat/sahool-sensors/internal/metrics"
	"github.com/kafaat/sahool-sensors/internal/outlier"
	"github.com/kafaat/sahool-sensors/internal/quality"
	"github.com/kafaat/sahool-sensors/internal/threshold"
	"github.com/kafaat/sahool-sensors/internal/worker"
)

type Server struct {
	config     *ServerConfig
	worker     *worker.Worker
	router     *gin.Engine
	aggregator *aggregate.Aggregator
	evaluator  *health.Evaluator
	log        *slog.Logger
}

func NewServer(options ...ConfigOption) (*Server, error) {
	config := &ServerConfig{
		WorkerCount: 4,
		BatchSize:   100,
		Port:        "8080",
		Logger:      slog.Default(),
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return nil, err
		}
	}

	if config.Catalog == nil {
		config.Catalog = threshold.NewCatalog()
	}

	detector := outlier.NewDetector(config.Catalog, outlier.Options{})
	scorer := quality.NewScorer(detector, config.QualityInterval)
	evaluator := health.NewEvaluator(config.Catalog, detector, scorer, config.Health)

	if config.Consumer == nil {
		if config.DataStore != nil {
			config.Consumer = consumer.NewHealthConsumer(
				config.DataStore, config.HealthCache, evaluator, detector, config.Health.Window, config.Logger)
		} else {
			config.Consumer = consumer.NewLogConsumer("DefaultConsumer", config.Logger)
		}
	}

	server := &Server{
		config:     config,
		worker:     worker.NewWorker(config.DataStore, config.Consumer, config.WorkerCount, config.BatchSize, config.Logger),
		router:     gin.Default(),
		aggregator: aggregate.New(detector, scorer),
		evaluator:  evaluator,
		log:        config.Logger,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		api.POST("/ingest", s.handleIngest)
		api.POST("/aggregates", s.handleGetAggregates)
		api.GET("/devices/:id/health", s.handleDeviceHealth)
		api.GET("/thresholds", s.handleThresholds)
	}
}

func (s *Server) handleIngest(c *gin.Context) {
	var bulk domain.BulkSensorReadings
	if err := c.ShouldBindJSON(&bulk); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(bulk.Data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}

	data, err := json.Marshal(bulk)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize data"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := s.config.MessageQueue.Publish(ctx, data); err != nil {
		s.log.Error("failed to publish batch", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish data"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":  "data accepted for processing",
		"batch_id": uuid.NewString(),
		"count":    len(bulk.Data),
	})
}

func (s *Server) handleGetAggregates(c *gin.Context) {
	var query domain.AggregateQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if query.StartTime.IsZero() || query.EndTime.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time and end_time are required"})
		return
	}

	if query.Granularity == "" {
		query.Granularity = domain.GranularityHourly
	}
	if !query.Granularity.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be hourly, daily, weekly or monthly"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	readings, err := s.config.DataStore.GetReadings(ctx, query.ReadingQuery)
	if err != nil {
		s.log.Error("failed to load readings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get readings"})
		return
	}

	buckets, err := s.aggregator.Aggregate(readings, query.Granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results := make([]domain.AggregatedData, 0, len(buckets))
	for _, data := range buckets {
		results = append(results, data)
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FieldID != b.FieldID {
			return a.FieldID < b.FieldID
		}
		if a.SensorType != b.SensorType {
			return a.SensorType < b.SensorType
		}
		return a.TimeRangeStart.Before(b.TimeRangeStart)
	})

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleDeviceHealth(c *gin.Context) {
	deviceID := c.Param("id")
	fieldID := c.Query("field_id")
	sensorType := c.Query("sensor_type")
	if fieldID == "" || sensorType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field_id and sensor_type are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if s.config.HealthCache != nil && c.Query("refresh") != "true" {
		cached, err := s.config.HealthCache.GetHealth(ctx, deviceID, fieldID, sensorType)
		if err != nil {
			s.log.Warn("health cache lookup failed", "device", deviceID, "error", err)
		} else if cached != nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	window := s.config.Health.Window
	if window <= 0 {
		window = health.DefaultWindow
	}
	end := time.Now()
	readings, err := s.config.DataStore.GetReadings(ctx, domain.ReadingQuery{
		DeviceID:   deviceID,
		FieldID:    fieldID,
		SensorType: sensorType,
		StartTime:  end.Add(-window),
		EndTime:    end,
	})
	if err != nil {
		s.log.Error("failed to load device window", "device", deviceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get readings"})
		return
	}

	verdict := s.evaluator.Evaluate(deviceID, fieldID, sensorType, readings)
	metrics.HealthEvaluations.WithLabelValues(string(verdict.Status)).Inc()

	if s.config.HealthCache != nil {
		if err := s.config.HealthCache.PutHealth(ctx, verdict); err != nil {
			s.log.Warn("failed to cache health verdict", "device", deviceID, "error", err)
		}
	}

	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleThresholds(c *gin.Context) {
	entries := s.config.Catalog.Entries()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SensorType < entries[j].SensorType
	})

	type rendered struct {
		threshold.Entry
		RecommendedRange string `json:"recommended_range"`
	}
	out := make([]rendered, len(entries))
	for i, e := range entries {
		out[i] = rendered{Entry: e, RecommendedRange: e.RangeString()}
	}

	c.JSON(http.StatusOK, gin.H{"thresholds": out})
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.worker.Start(ctx, s.config.MessageQueue); err != nil {
			s.log.Error("worker pool error", "error", err)
		}
	}()

	server := &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info("server starting", "port", s.config.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Close() error {
	if s.config.MessageQueue != nil {
		s.config.MessageQueue.Close()
	}
	if s.config.DataStore != nil {
		s.config.DataStore.Close()
	}
	return nil
}
