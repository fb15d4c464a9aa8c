package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/outlier"
	"github.com/kafaat/sahool-sensors/internal/quality"
	"github.com/kafaat/sahool-sensors/internal/threshold"
)

var evalNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newEvaluator(opts Options) *Evaluator {
	catalog := threshold.NewCatalog()
	detector := outlier.NewDetector(catalog, outlier.Options{})
	scorer := quality.NewScorer(detector, 0)
	return NewEvaluator(catalog, detector, scorer, opts).WithNow(func() time.Time { return evalNow })
}

func window(n int, value float64, sensorType string) []domain.SensorReading {
	out := make([]domain.SensorReading, n)
	for i := 0; i < n; i++ {
		out[i] = domain.SensorReading{
			DeviceID:   "dev-1",
			FieldID:    "field-1",
			SensorType: sensorType,
			Value:      value,
			Timestamp:  evalNow.Add(-time.Duration(n-1-i) * 15 * time.Minute),
		}
	}
	return out
}

func TestEvaluateOfflineOnEmptyWindow(t *testing.T) {
	e := newEvaluator(Options{})

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", nil)
	require.Equal(t, domain.StatusOffline, h.Status)
	require.Equal(t, "dev-1", h.DeviceID)
	require.Equal(t, 0, h.ReadingsCount24h)
	require.Equal(t, 96, h.ExpectedReadings24h)
	require.NotEmpty(t, h.Alerts)
	require.NotEmpty(t, h.RecommendationsAr)
	require.NotEmpty(t, h.RecommendationsEn)
	require.Len(t, h.RecommendationsAr, len(h.RecommendationsEn))
}

func TestEvaluateHealthyDevice(t *testing.T) {
	e := newEvaluator(Options{})

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", window(96, 45, "soil_moisture"))
	require.Equal(t, domain.StatusHealthy, h.Status)
	require.Equal(t, 100.0, h.DataQualityScore)
	require.Equal(t, 100.0, h.UptimePercentage)
	require.Equal(t, 0.0, h.OutlierPercentage)
	require.Equal(t, 0, h.ConsecutiveErrors)
	require.NotNil(t, h.LastSuccessfulReading)
	require.Empty(t, h.Alerts)
}

func TestEvaluateCriticalOnLowUptime(t *testing.T) {
	e := newEvaluator(Options{})

	// 40 of 96 expected readings -> uptime ~41.67 < 50
	h := e.Evaluate("dev-1", "field-1", "soil_moisture", window(40, 45, "soil_moisture"))
	require.Equal(t, domain.StatusCritical, h.Status)
	require.InDelta(t, 41.67, h.UptimePercentage, 0.01)
}

func TestEvaluateWarningOnOutlierRate(t *testing.T) {
	e := newEvaluator(Options{ExpectedReadings: 20})

	readings := window(20, 45, "soil_moisture")
	// 3 of 20 readings out of warning range -> 15% > 10%
	readings[4].Value = 15
	readings[9].Value = 85
	readings[14].Value = 12

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", readings)
	require.Equal(t, domain.StatusWarning, h.Status)
	require.Equal(t, 15.0, h.OutlierPercentage)
}

func TestEvaluateDriftDetected(t *testing.T) {
	e := newEvaluator(Options{ExpectedReadings: 20, DriftWindowSize: 10})

	readings := window(20, 30, "soil_moisture")
	for i := 10; i < 20; i++ {
		readings[i].Value = 40
	}

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", readings)
	require.Equal(t, domain.StatusDriftDetected, h.Status)
	require.True(t, h.DriftDetected)
	require.NotNil(t, h.DriftMagnitude)
	require.Equal(t, 33.33, *h.DriftMagnitude)
	require.Contains(t, h.Alerts, "Sensor drift detected: 33.33% baseline change")
}

func TestCriticalTakesPriorityOverDrift(t *testing.T) {
	e := newEvaluator(Options{DriftWindowSize: 10})

	// drifting series, but only 20 of 96 expected readings -> uptime < 50
	readings := window(20, 30, "soil_moisture")
	for i := 10; i < 20; i++ {
		readings[i].Value = 40
	}

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", readings)
	require.Equal(t, domain.StatusCritical, h.Status)
	require.True(t, h.DriftDetected)
}

func TestEvaluateBatteryAndSignalFromMetadata(t *testing.T) {
	e := newEvaluator(Options{ExpectedReadings: 10})

	readings := window(10, 45, "soil_moisture")
	readings[9].Metadata = map[string]interface{}{"battery": 12.0, "rssi": -97.0}

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", readings)
	require.NotNil(t, h.BatteryLevel)
	require.Equal(t, 12.0, *h.BatteryLevel)
	require.NotNil(t, h.SignalStrength)
	require.Equal(t, -97.0, *h.SignalStrength)
	require.Contains(t, h.Alerts, "Low battery: 12.0%")
	require.Contains(t, h.Alerts, "Weak signal: -97 dBm")
}

func TestEvaluateConsecutiveErrorsAndLastSuccess(t *testing.T) {
	e := newEvaluator(Options{ExpectedReadings: 10})

	readings := window(10, 45, "soil_moisture")
	// tail of the window runs past the critical bound
	readings[8].Value = 95
	readings[9].Value = 96

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", readings)
	require.Equal(t, 2, h.ConsecutiveErrors)
	require.NotNil(t, h.LastSuccessfulReading)
	require.Equal(t, readings[7].Timestamp, *h.LastSuccessfulReading)
}

func TestEvaluateRangeRecommendations(t *testing.T) {
	e := newEvaluator(Options{ExpectedReadings: 10})

	h := e.Evaluate("dev-1", "field-1", "soil_moisture", window(10, 16, "soil_moisture"))
	require.Contains(t, h.RecommendationsEn,
		"Increase irrigation to keep soil moisture within the recommended range")
	require.NotEmpty(t, h.RecommendationsAr)
}
