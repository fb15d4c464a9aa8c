package domain

import (
	"context"
	"time"
)

type HealthStatus string

const (
	StatusHealthy       HealthStatus = "healthy"
	StatusWarning       HealthStatus = "warning"
	StatusCritical      HealthStatus = "critical"
	StatusOffline       HealthStatus = "offline"
	StatusDriftDetected HealthStatus = "drift_detected"
)

// SensorHealth is the per-device verdict produced by one health evaluation.
// It is not retained by the core; callers persist or cache it as needed.
type SensorHealth struct {
	DeviceID              string       `json:"device_id"`
	FieldID               string       `json:"field_id"`
	SensorType            string       `json:"sensor_type"`
	Status                HealthStatus `json:"status"`
	Timestamp             time.Time    `json:"timestamp"`
	DataQualityScore      float64      `json:"data_quality_score"`
	UptimePercentage      float64      `json:"uptime_percentage"`
	BatteryLevel          *float64     `json:"battery_level"`
	SignalStrength        *float64     `json:"signal_strength"`
	DriftDetected         bool         `json:"drift_detected"`
	DriftMagnitude        *float64     `json:"drift_magnitude"`
	ConsecutiveErrors     int          `json:"consecutive_errors"`
	LastSuccessfulReading *time.Time   `json:"last_successful_reading"`
	ReadingsCount24h      int          `json:"readings_count_24h"`
	ExpectedReadings24h   int          `json:"expected_readings_24h"`
	OutlierPercentage     float64      `json:"outlier_percentage"`
	Alerts                []string     `json:"alerts"`
	RecommendationsAr     []string     `json:"recommendations_ar"`
	RecommendationsEn     []string     `json:"recommendations_en"`
}

// HealthCache holds the latest verdict per sensor. A device can report
// several sensor types, so entries are keyed by the full
// (device, field, sensor_type) identity. Implementations are injected by the
// caller; the core never owns a process-wide cache.
type HealthCache interface {
	PutHealth(ctx context.Context, health SensorHealth) error
	GetHealth(ctx context.Context, deviceID, fieldID, sensorType string) (*SensorHealth, error)
}
