package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kafaat/sahool-sensors/internal/broker"
	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/metrics"
)

const flushInterval = 5 * time.Second

// Worker drains reading batches off the message queue, validates them,
// persists the survivors and hands them to the consumer for health
// evaluation.
type Worker struct {
	store       domain.DataStore
	consumer    domain.DataConsumer
	workerCount int
	batchSize   int
	log         *slog.Logger
}

func NewWorker(store domain.DataStore, consumer domain.DataConsumer, workerCount, batchSize int, log *slog.Logger) *Worker {
	return &Worker{
		store:       store,
		consumer:    consumer,
		workerCount: workerCount,
		batchSize:   batchSize,
		log:         log,
	}
}

func (w *Worker) Start(ctx context.Context, mq broker.MessageQueue) error {
	var wg sync.WaitGroup

	for i := range w.workerCount {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.worker(ctx, workerID, mq)
		}(i)
	}

	wg.Wait()
	return nil
}

func (w *Worker) worker(ctx context.Context, workerID int, mq broker.MessageQueue) {
	w.log.Info("worker started", "worker", workerID)
	defer w.log.Info("worker stopped", "worker", workerID)

	batch := make([]domain.SensorReading, 0, w.batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	// The handler runs on the consume goroutine; readings cross into the
	// select loop over this channel so only one goroutine touches batch.
	incoming := make(chan []domain.SensorReading, 1)

	handler := func(data []byte) error {
		var bulk domain.BulkSensorReadings
		if err := json.Unmarshal(data, &bulk); err != nil {
			return fmt.Errorf("failed to unmarshal batch: %w", err)
		}

		select {
		case incoming <- w.validate(bulk.Data):
		case <-ctx.Done():
		}
		return nil
	}

	go func() {
		if err := mq.Consume(ctx, handler); err != nil && ctx.Err() == nil {
			w.log.Error("consume loop failed", "worker", workerID, "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case readings := <-incoming:
					batch = append(batch, readings...)
				default:
					if len(batch) > 0 {
						w.processBatch(context.Background(), batch)
					}
					return
				}
			}
		case readings := <-incoming:
			batch = append(batch, readings...)
			if len(batch) >= w.batchSize {
				w.processBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.processBatch(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

// validate drops malformed readings one by one; a bad reading never takes the
// rest of its batch down with it.
func (w *Worker) validate(readings []domain.SensorReading) []domain.SensorReading {
	valid := readings[:0]
	for _, r := range readings {
		r.Normalize()
		if err := r.Validate(); err != nil {
			metrics.InvalidReadingsDropped.Inc()
			w.log.Warn("dropping invalid reading", "device", r.DeviceID, "error", err)
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

func (w *Worker) processBatch(ctx context.Context, batch []domain.SensorReading) {
	start := time.Now()

	if err := w.store.InsertBatch(ctx, batch); err != nil {
		w.log.Error("failed to store batch", "error", err)
		return
	}

	if err := w.consumer.Process(ctx, batch); err != nil {
		w.log.Error("failed to process batch in consumer", "error", err)
		return
	}

	duration := time.Since(start)
	metrics.ReadingsIngested.Add(float64(len(batch)))
	metrics.BatchDuration.Observe(duration.Seconds())

	w.log.Info("processed batch", "readings", len(batch), "duration", duration)
}
