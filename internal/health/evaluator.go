package health

import (
	"sort"
	"time"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/drift"
	"github.com/kafaat/sahool-sensors/internal/outlier"
	"github.com/kafaat/sahool-sensors/internal/quality"
	"github.com/kafaat/sahool-sensors/internal/stats"
	"github.com/kafaat/sahool-sensors/internal/threshold"
)

const (
	DefaultWindow = 24 * time.Hour

	criticalQuality = 30.0
	warningQuality  = 60.0
	criticalUptime  = 50.0
	warningUptime   = 80.0
	warningOutlier  = 10.0
	lowBatteryLevel = 20.0
	weakSignalLevel = -90.0
)

// Options tune one evaluator instance. Zero values fall back to defaults.
type Options struct {
	// Window is the evaluation span readings are expected to cover.
	Window time.Duration
	// ExpectedReadings overrides the count derived from the nominal
	// reporting interval, e.g. from the device registry.
	ExpectedReadings int
	// DriftWindowSize is the sub-window length for drift comparison.
	DriftWindowSize int
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.DriftWindowSize <= 0 {
		o.DriftWindowSize = drift.DefaultWindowSize
	}
	return o
}

// Evaluator derives a health verdict for one device from its recent reading
// window. Each evaluation is a fresh stateless classification; callers track
// state-over-time externally if they need it.
type Evaluator struct {
	catalog  *threshold.Catalog
	detector *outlier.Detector
	scorer   *quality.Scorer
	opts     Options
	now      func() time.Time
}

func NewEvaluator(catalog *threshold.Catalog, detector *outlier.Detector, scorer *quality.Scorer, opts Options) *Evaluator {
	return &Evaluator{
		catalog:  catalog,
		detector: detector,
		scorer:   scorer,
		opts:     opts.withDefaults(),
		now:      time.Now,
	}
}

// WithNow fixes the evaluation clock; used by tests.
func (e *Evaluator) WithNow(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate classifies one device from its reading window. An empty window
// means the device is offline; partial or degraded inputs downgrade the
// verdict instead of failing.
func (e *Evaluator) Evaluate(deviceID, fieldID, sensorType string, readings []domain.SensorReading) domain.SensorHealth {
	now := e.now()

	expected := e.opts.ExpectedReadings
	if expected <= 0 {
		expected = e.scorer.ExpectedCount(e.opts.Window)
	}

	health := domain.SensorHealth{
		DeviceID:            deviceID,
		FieldID:             fieldID,
		SensorType:          sensorType,
		Timestamp:           now,
		ExpectedReadings24h: expected,
		ReadingsCount24h:    len(readings),
		Alerts:              []string{},
		RecommendationsAr:   []string{},
		RecommendationsEn:   []string{},
	}

	if len(readings) == 0 {
		health.Status = domain.StatusOffline
		health.Alerts = append(health.Alerts, "No readings received in the evaluation window")
		recommend(&health,
			"تحقق من طاقة الجهاز واتصاله بالشبكة",
			"Check device power and network connectivity")
		return health
	}

	sorted := make([]domain.SensorReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	latest := sorted[len(sorted)-1]

	health.DataQualityScore = stats.Round2(e.scorer.Score(sorted, expected, now))
	health.UptimePercentage = uptime(len(sorted), expected)

	flags := e.detector.Detect(sorted, outlier.MethodThreshold)
	health.OutlierPercentage = stats.Round2(float64(len(flags)) / float64(len(sorted)) * 100)
	health.ConsecutiveErrors, health.LastSuccessfulReading = trailingErrors(sorted, flags)

	if battery, ok := latest.Battery(); ok {
		health.BatteryLevel = &battery
	}
	if signal, ok := latest.SignalStrength(); ok {
		health.SignalStrength = &signal
	}

	health.DriftDetected, health.DriftMagnitude = drift.Detect(sorted, e.opts.DriftWindowSize)

	health.Status = classify(health)
	e.annotate(&health, sorted)
	return health
}

// classify applies the status priority rule; the first match wins.
func classify(h domain.SensorHealth) domain.HealthStatus {
	switch {
	case h.DataQualityScore < criticalQuality || h.UptimePercentage < criticalUptime:
		return domain.StatusCritical
	case h.DriftDetected:
		return domain.StatusDriftDetected
	case h.DataQualityScore < warningQuality || h.UptimePercentage < warningUptime || h.OutlierPercentage > warningOutlier:
		return domain.StatusWarning
	}
	return domain.StatusHealthy
}

func uptime(count, expected int) float64 {
	if expected <= 0 {
		return 100
	}
	pct := float64(count) / float64(expected) * 100
	if pct > 100 {
		pct = 100
	}
	return stats.Round2(pct)
}

// trailingErrors counts flagged readings at the tail of the time-sorted
// window and finds the most recent clean reading.
func trailingErrors(sorted []domain.SensorReading, flags []outlier.Flag) (int, *time.Time) {
	flagged := make(map[int]bool, len(flags))
	for _, f := range flags {
		flagged[f.Index] = true
	}

	consecutive := 0
	for i := len(sorted) - 1; i >= 0 && flagged[i]; i-- {
		consecutive++
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		if !flagged[i] {
			ts := sorted[i].Timestamp
			return consecutive, &ts
		}
	}
	return consecutive, nil
}
