package consumer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/health"
	"github.com/kafaat/sahool-sensors/internal/metrics"
	"github.com/kafaat/sahool-sensors/internal/outlier"
)

type deviceKey struct {
	DeviceID   string
	FieldID    string
	SensorType string
}

// HealthConsumer runs a health evaluation for every device seen in a batch.
// Evaluations are independent per device, so each runs in its own goroutine.
type HealthConsumer struct {
	store     domain.DataStore
	cache     domain.HealthCache
	evaluator *health.Evaluator
	detector  *outlier.Detector
	window    time.Duration
	log       *slog.Logger
}

func NewHealthConsumer(store domain.DataStore, cache domain.HealthCache, evaluator *health.Evaluator, detector *outlier.Detector, window time.Duration, log *slog.Logger) *HealthConsumer {
	if window <= 0 {
		window = health.DefaultWindow
	}
	return &HealthConsumer{
		store:     store,
		cache:     cache,
		evaluator: evaluator,
		detector:  detector,
		window:    window,
		log:       log,
	}
}

// Process evaluates each device in the batch. A failing device is logged and
// skipped; it never aborts the rest of the batch.
func (c *HealthConsumer) Process(ctx context.Context, data []domain.SensorReading) error {
	// each reading passes through here exactly once, so this is where the
	// detected-outlier counter advances
	if c.detector != nil {
		if flags := c.detector.Detect(data, outlier.MethodThreshold); len(flags) > 0 {
			metrics.OutliersDetected.Add(float64(len(flags)))
		}
	}

	devices := make(map[deviceKey]struct{})
	for _, r := range data {
		devices[deviceKey{r.DeviceID, r.FieldID, r.SensorType}] = struct{}{}
	}

	var wg sync.WaitGroup
	for key := range devices {
		wg.Add(1)
		go func(key deviceKey) {
			defer wg.Done()
			c.evaluateDevice(ctx, key)
		}(key)
	}
	wg.Wait()
	return nil
}

func (c *HealthConsumer) evaluateDevice(ctx context.Context, key deviceKey) {
	end := time.Now()
	readings, err := c.store.GetReadings(ctx, domain.ReadingQuery{
		DeviceID:   key.DeviceID,
		FieldID:    key.FieldID,
		SensorType: key.SensorType,
		StartTime:  end.Add(-c.window),
		EndTime:    end,
	})
	if err != nil {
		c.log.Error("failed to load device window", "device", key.DeviceID, "error", err)
		return
	}

	verdict := c.evaluator.Evaluate(key.DeviceID, key.FieldID, key.SensorType, readings)
	metrics.HealthEvaluations.WithLabelValues(string(verdict.Status)).Inc()

	if verdict.Status != domain.StatusHealthy {
		c.log.Warn("device health degraded",
			"device", key.DeviceID,
			"field", key.FieldID,
			"status", verdict.Status,
			"quality", verdict.DataQualityScore,
			"alerts", len(verdict.Alerts))
	}

	if c.cache != nil {
		if err := c.cache.PutHealth(ctx, verdict); err != nil {
			c.log.Error("failed to cache health verdict", "device", key.DeviceID, "error", err)
		}
	}
}
