package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

type LoadTestConfig struct {
	TargetURL       string
	ConcurrentUsers int
	Duration        time.Duration
	RequestsPerSec  int
}

type SensorReading struct {
	DeviceID   string                 `json:"device_id"`
	FieldID    string                 `json:"field_id"`
	SensorType string                 `json:"sensor_type"`
	Value      float64                `json:"value"`
	Unit       string                 `json:"unit"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type BulkSensorReadings struct {
	Data []SensorReading `json:"data"`
}

type TestResults struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    time.Duration
	MinLatency      time.Duration
	MaxLatency      time.Duration
	Errors          []string
	mu              sync.RWMutex
}

func (tr *TestResults) AddResult(success bool, latency time.Duration, err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.TotalRequests++
	tr.TotalLatency += latency

	if tr.MinLatency == 0 || latency < tr.MinLatency {
		tr.MinLatency = latency
	}
	if latency > tr.MaxLatency {
		tr.MaxLatency = latency
	}

	if success {
		tr.SuccessRequests++
	} else {
		tr.FailedRequests++
		if err != nil {
			tr.Errors = append(tr.Errors, err.Error())
		}
	}
}

func (tr *TestResults) GetStats() (float64, float64, time.Duration) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	successRate := float64(tr.SuccessRequests) / float64(tr.TotalRequests) * 100
	avgLatency := tr.TotalLatency / time.Duration(tr.TotalRequests)

	return successRate, float64(tr.TotalRequests), avgLatency
}

var sensorRanges = map[string]struct {
	min, max float64
	unit     string
}{
	"soil_moisture": {10, 90, "%"},
	"temperature":   {0, 48, "°C"},
	"humidity":      {20, 95, "%"},
	"salinity":      {0, 6, "dS/m"},
	"ph":            {4.5, 9, "pH"},
	"rainfall":      {0, 20, "mm"},
	"wind_speed":    {0, 22, "m/s"},
}

func generateReadings(count int) BulkSensorReadings {
	sensorTypes := []string{"soil_moisture", "temperature", "humidity", "salinity", "ph", "rainfall", "wind_speed"}
	fieldIDs := []string{"field_north", "field_south", "field_east", "field_west"}

	data := make([]SensorReading, count)

	for i := 0; i < count; i++ {
		sensorType := sensorTypes[rand.Intn(len(sensorTypes))]
		fieldID := fieldIDs[rand.Intn(len(fieldIDs))]
		r := sensorRanges[sensorType]

		data[i] = SensorReading{
			DeviceID:   fmt.Sprintf("device_%03d", rand.Intn(50)+1),
			FieldID:    fieldID,
			SensorType: sensorType,
			Value:      r.min + rand.Float64()*(r.max-r.min),
			Unit:       r.unit,
			Timestamp:  time.Now().Add(-time.Duration(rand.Intn(3600)) * time.Second),
			Metadata: map[string]interface{}{
				"battery": float64(rand.Intn(80) + 20),
				"rssi":    float64(-(rand.Intn(60) + 40)),
			},
		}
	}

	return BulkSensorReadings{Data: data}
}

func runUser(ctx context.Context, cfg LoadTestConfig, results *TestResults, wg *sync.WaitGroup) {
	defer wg.Done()

	client := &http.Client{Timeout: 10 * time.Second}
	interval := time.Second / time.Duration(cfg.RequestsPerSec)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload, err := json.Marshal(generateReadings(rand.Intn(20) + 5))
			if err != nil {
				results.AddResult(false, 0, err)
				continue
			}

			start := time.Now()
			resp, err := client.Post(cfg.TargetURL+"/api/v1/ingest", "application/json", bytes.NewReader(payload))
			latency := time.Since(start)

			if err != nil {
				results.AddResult(false, latency, err)
				continue
			}
			resp.Body.Close()

			results.AddResult(resp.StatusCode == http.StatusAccepted, latency, nil)
		}
	}
}

func main() {
	cfg := LoadTestConfig{
		TargetURL:       "http://localhost:8080",
		ConcurrentUsers: 10,
		Duration:        30 * time.Second,
		RequestsPerSec:  5,
	}

	if url := os.Getenv("TARGET_URL"); url != "" {
		cfg.TargetURL = url
	}
	if users := os.Getenv("CONCURRENT_USERS"); users != "" {
		if n, err := strconv.Atoi(users); err == nil {
			cfg.ConcurrentUsers = n
		}
	}

	log.Printf("Starting load test: %d users, %d req/s each, for %v", cfg.ConcurrentUsers, cfg.RequestsPerSec, cfg.Duration)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	results := &TestResults{}
	var wg sync.WaitGroup

	for i := 0; i < cfg.ConcurrentUsers; i++ {
		wg.Add(1)
		go runUser(ctx, cfg, results, &wg)
	}

	wg.Wait()

	successRate, total, avgLatency := results.GetStats()
	log.Printf("Done: %d requests, %.1f%% success, avg latency %v (min %v, max %v)",
		int64(total), successRate, avgLatency, results.MinLatency, results.MaxLatency)
}
