package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// SensorReading is a single time-stamped observation from a field device.
// Readings are treated as immutable once ingested; IsOutlier is informational
// and is never set by the core (detection results are returned out-of-band).
type SensorReading struct {
	DeviceID     string                 `json:"device_id" bson:"device_id"`
	FieldID      string                 `json:"field_id" bson:"field_id"`
	SensorType   string                 `json:"sensor_type" bson:"sensor_type"`
	Value        float64                `json:"value" bson:"value"`
	Unit         string                 `json:"unit" bson:"unit"`
	Timestamp    time.Time              `json:"timestamp" bson:"timestamp"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	QualityScore *float64               `json:"quality_score,omitempty" bson:"quality_score,omitempty"`
	IsOutlier    bool                   `json:"is_outlier,omitempty" bson:"is_outlier,omitempty"`
}

type BulkSensorReadings struct {
	Data []SensorReading `json:"data"`
}

var (
	ErrMissingDeviceID = errors.New("device_id is required")
	ErrMissingField    = errors.New("field_id is required")
	ErrMissingType     = errors.New("sensor_type is required")
	ErrValueNotFinite  = errors.New("value must be a finite number")
	ErrBadTimestamp    = errors.New("timestamp must be a valid instant")
)

// Validate rejects a single reading without affecting the rest of its batch.
func (r *SensorReading) Validate() error {
	if r.DeviceID == "" {
		return ErrMissingDeviceID
	}
	if r.FieldID == "" {
		return ErrMissingField
	}
	if r.SensorType == "" {
		return ErrMissingType
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("%w: got %v", ErrValueNotFinite, r.Value)
	}
	if r.Timestamp.IsZero() {
		return ErrBadTimestamp
	}
	return nil
}

// Normalize lower-cases the sensor type so threshold lookups are stable.
func (r *SensorReading) Normalize() {
	r.SensorType = strings.ToLower(strings.TrimSpace(r.SensorType))
}

// Battery returns the battery level carried in reading metadata, if any.
func (r *SensorReading) Battery() (float64, bool) {
	return metadataNumber(r.Metadata, "battery")
}

// SignalStrength returns the RSSI carried in reading metadata, if any.
func (r *SensorReading) SignalStrength() (float64, bool) {
	return metadataNumber(r.Metadata, "rssi")
}

func metadataNumber(meta map[string]interface{}, key string) (float64, bool) {
	if meta == nil {
		return 0, false
	}
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Accumulating sensor types report quantities that sum meaningfully over a
// time bucket (rainfall family); gauges like temperature do not.
func IsAccumulating(sensorType string) bool {
	switch strings.ToLower(sensorType) {
	case "rainfall", "rain", "precipitation":
		return true
	}
	return false
}

type DataConsumer interface {
	Process(ctx context.Context, data []SensorReading) error
}
