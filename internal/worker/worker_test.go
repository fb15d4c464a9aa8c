package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-sensors/internal/broker"
	"github.com/kafaat/sahool-sensors/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	inserted []domain.SensorReading
}

func (s *fakeStore) InsertBatch(_ context.Context, data []domain.SensorReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserted = append(s.inserted, data...)
	return nil
}

func (s *fakeStore) GetReadings(context.Context, domain.ReadingQuery) ([]domain.SensorReading, error) {
	return nil, nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

type fakeConsumer struct {
	mu      sync.Mutex
	batches int
}

func (c *fakeConsumer) Process(_ context.Context, _ []domain.SensorReading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	return nil
}

func TestWorkerProcessesBatchAndDropsInvalid(t *testing.T) {
	store := &fakeStore{}
	consumer := &fakeConsumer{}
	queue := broker.NewChannelQueue(16)
	defer queue.Close()

	w := NewWorker(store, consumer, 1, 3, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx, queue)
	}()

	ts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	bulk := domain.BulkSensorReadings{Data: []domain.SensorReading{
		{DeviceID: "dev-1", FieldID: "f1", SensorType: "Soil_Moisture", Value: 40, Timestamp: ts},
		{DeviceID: "", FieldID: "f1", SensorType: "soil_moisture", Value: 48, Timestamp: ts},
		{DeviceID: "dev-2", FieldID: "f1", SensorType: "soil_moisture", Value: 55, Timestamp: ts},
		{DeviceID: "dev-3", FieldID: "f1", SensorType: "soil_moisture", Value: 61, Timestamp: ts},
	}}
	payload, err := json.Marshal(bulk)
	require.NoError(t, err)
	require.NoError(t, queue.Publish(ctx, payload))

	require.Eventually(t, func() bool {
		return store.count() == 3
	}, 3*time.Second, 10*time.Millisecond)

	// sensor types are normalized before storage
	store.mu.Lock()
	require.Equal(t, "soil_moisture", store.inserted[0].SensorType)
	store.mu.Unlock()

	cancel()
	<-done
}

func TestWorkerConcurrentPublishNoLostReadings(t *testing.T) {
	store := &fakeStore{}
	consumer := &fakeConsumer{}
	queue := broker.NewChannelQueue(64)
	defer queue.Close()

	w := NewWorker(store, consumer, 1, 5, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx, queue)
	}()

	ts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	const publishers, batches, perBatch = 4, 25, 3

	var pubWG sync.WaitGroup
	for p := range publishers {
		pubWG.Add(1)
		go func(p int) {
			defer pubWG.Done()
			for b := range batches {
				bulk := domain.BulkSensorReadings{Data: make([]domain.SensorReading, perBatch)}
				for i := range bulk.Data {
					bulk.Data[i] = domain.SensorReading{
						DeviceID:   "dev-1",
						FieldID:    "f1",
						SensorType: "soil_moisture",
						Value:      float64(p*batches + b),
						Timestamp:  ts,
					}
				}
				payload, err := json.Marshal(bulk)
				require.NoError(t, err)
				require.NoError(t, queue.Publish(ctx, payload))
			}
		}(p)
	}
	pubWG.Wait()

	total := publishers * batches * perBatch
	require.Eventually(t, func() bool {
		return store.count() == total
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	require.Equal(t, total, store.count())
}
