package drift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kafaat/sahool-sensors/internal/domain"
)

func series(values ...float64) []domain.SensorReading {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	out := make([]domain.SensorReading, len(values))
	for i, v := range values {
		out[i] = domain.SensorReading{
			DeviceID:   "dev-1",
			FieldID:    "field-1",
			SensorType: "soil_moisture",
			Value:      v,
			Timestamp:  base.Add(time.Duration(i) * 15 * time.Minute),
		}
	}
	return out
}

func TestDetectBaselineShift(t *testing.T) {
	values := make([]float64, 0, 20)
	for i := 0; i < 10; i++ {
		values = append(values, 30)
	}
	for i := 0; i < 10; i++ {
		values = append(values, 40)
	}

	drifted, magnitude := Detect(series(values...), 10)
	require.True(t, drifted)
	require.NotNil(t, magnitude)
	require.Equal(t, 33.33, *magnitude)
}

func TestDetectStableSeries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 25
	}

	drifted, magnitude := Detect(series(values...), 10)
	require.False(t, drifted)
	require.NotNil(t, magnitude)
	require.Equal(t, 0.0, *magnitude)
}

func TestDetectInsufficientReadings(t *testing.T) {
	values := make([]float64, 19)
	for i := range values {
		values[i] = float64(i)
	}

	drifted, magnitude := Detect(series(values...), 10)
	require.False(t, drifted)
	require.Nil(t, magnitude)
}

func TestDetectNegativeBaseline(t *testing.T) {
	// sub-zero temperatures: -5 -> -10 is a 100% baseline shift
	values := make([]float64, 20)
	for i := 0; i < 10; i++ {
		values[i] = -5
	}
	for i := 10; i < 20; i++ {
		values[i] = -10
	}

	drifted, magnitude := Detect(series(values...), 10)
	require.True(t, drifted)
	require.NotNil(t, magnitude)
	require.Equal(t, 100.0, *magnitude)
}

func TestDetectZeroBaseline(t *testing.T) {
	values := make([]float64, 20)
	for i := 10; i < 20; i++ {
		values[i] = 5
	}

	drifted, magnitude := Detect(series(values...), 10)
	require.False(t, drifted)
	require.Nil(t, magnitude)
}

func TestDetectSortsByTimestamp(t *testing.T) {
	readings := series(func() []float64 {
		v := make([]float64, 20)
		for i := 0; i < 10; i++ {
			v[i] = 30
		}
		for i := 10; i < 20; i++ {
			v[i] = 40
		}
		return v
	}()...)

	// shuffle deterministically; Detect must re-sort on timestamps
	for i := 0; i < len(readings); i += 2 {
		j := len(readings) - 1 - i
		readings[i], readings[j] = readings[j], readings[i]
	}

	drifted, magnitude := Detect(readings, 10)
	require.True(t, drifted)
	require.Equal(t, 33.33, *magnitude)
}
