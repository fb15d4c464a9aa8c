package quality

import (
	"time"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/outlier"
)

// DefaultInterval is the nominal reporting interval assumed when the device
// registry supplies nothing better: one reading every 15 minutes (96/day).
const DefaultInterval = 15 * time.Minute

// Weights of the three sub-scores; they sum to 100.
const (
	completenessWeight = 50.0
	accuracyWeight     = 30.0
	timelinessWeight   = 20.0
)

// Scorer combines completeness, accuracy and timeliness into a 0-100 data
// quality score for a set of readings from one device.
type Scorer struct {
	detector *outlier.Detector
	interval time.Duration
}

func NewScorer(detector *outlier.Detector, interval time.Duration) *Scorer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scorer{detector: detector, interval: interval}
}

// ExpectedCount is the number of readings the nominal interval predicts for a
// window of the given span.
func (s *Scorer) ExpectedCount(span time.Duration) int {
	if span <= 0 {
		return 0
	}
	return int(span / s.interval)
}

// Score evaluates readings against an expected count, with timeliness judged
// relative to now. An empty set scores 0. The result is the unrounded sum of
// the weighted sub-scores, clamped to [0,100]; callers round at the boundary.
func (s *Scorer) Score(readings []domain.SensorReading, expectedCount int, now time.Time) float64 {
	if len(readings) == 0 {
		return 0
	}

	completeness := completenessWeight
	if expectedCount > 0 {
		completeness = completenessWeight * float64(len(readings)) / float64(expectedCount)
		if completeness > completenessWeight {
			completeness = completenessWeight
		}
	}

	outlierRatio := float64(len(s.detector.Detect(readings, outlier.MethodThreshold))) / float64(len(readings))
	accuracy := accuracyWeight * (1 - outlierRatio)

	total := completeness + accuracy + s.timeliness(readings, now)
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

func (s *Scorer) timeliness(readings []domain.SensorReading, now time.Time) float64 {
	var latest time.Time
	for _, r := range readings {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	age := now.Sub(latest)
	switch {
	case age <= time.Hour:
		return timelinessWeight
	case age <= 6*time.Hour:
		return 15
	case age <= 24*time.Hour:
		return 10
	}
	return 0
}
