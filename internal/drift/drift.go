package drift

import (
	"math"
	"sort"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/stats"
)

const (
	DefaultWindowSize = 10

	// relative drift beyond this percentage counts as degradation
	magnitudeThreshold = 20.0
)

// Detect compares the mean of the earliest windowSize readings against the
// mean of the latest windowSize readings to spot slow baseline shift. It
// needs at least 2*windowSize readings and a non-zero baseline mean; anything
// less yields (false, nil), not an error. The returned magnitude is a percent
// of the absolute baseline mean, rounded to 2 decimals, so sub-zero baselines
// (winter soil temperatures) shift the same way positive ones do.
func Detect(readings []domain.SensorReading, windowSize int) (bool, *float64) {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if len(readings) < 2*windowSize {
		return false, nil
	}

	sorted := make([]domain.SensorReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	first := windowMean(sorted[:windowSize])
	last := windowMean(sorted[len(sorted)-windowSize:])
	if first == 0 {
		return false, nil
	}

	magnitude := stats.Round2(math.Abs(last-first) / math.Abs(first) * 100)
	return magnitude > magnitudeThreshold, &magnitude
}

func windowMean(readings []domain.SensorReading) float64 {
	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	return sum / float64(len(readings))
}
