package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/outlier"
	"github.com/kafaat/sahool-sensors/internal/quality"
	"github.com/kafaat/sahool-sensors/internal/stats"
)

// BucketKey identifies one aggregation bucket. Mixed batches are split by
// (field, sensor type) internally, so the key carries both alongside the
// bucket label.
type BucketKey struct {
	FieldID    string
	SensorType string
	Bucket     string
}

// Aggregator groups readings into time buckets and computes the windowed
// summary for each. It holds no mutable state; one instance is safe for
// concurrent use across aggregation requests.
type Aggregator struct {
	detector *outlier.Detector
	scorer   *quality.Scorer
	now      func() time.Time
}

type Option func(*Aggregator)

// WithNow overrides the clock used for bucket data-quality timeliness.
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func New(detector *outlier.Detector, scorer *quality.Scorer, opts ...Option) *Aggregator {
	a := &Aggregator{detector: detector, scorer: scorer, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate buckets readings by granularity and returns one AggregatedData
// per (field, sensor type, bucket). Output depends only on the reading set
// and granularity, never on input order.
func (a *Aggregator) Aggregate(readings []domain.SensorReading, g domain.Granularity) (map[BucketKey]domain.AggregatedData, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid granularity %q", g)
	}

	groups := make(map[BucketKey][]domain.SensorReading)
	for _, r := range readings {
		start := bucketStart(r.Timestamp, g)
		key := BucketKey{
			FieldID:    r.FieldID,
			SensorType: r.SensorType,
			Bucket:     bucketLabel(start, g),
		}
		groups[key] = append(groups[key], r)
	}

	now := a.now()
	out := make(map[BucketKey]domain.AggregatedData, len(groups))
	for key, group := range groups {
		out[key] = a.aggregateBucket(key, group, g, now)
	}
	return out, nil
}

func (a *Aggregator) aggregateBucket(key BucketKey, group []domain.SensorReading, g domain.Granularity, now time.Time) domain.AggregatedData {
	sortReadings(group)

	start := bucketStart(group[0].Timestamp, g)
	end := bucketEnd(start, g)

	data := domain.AggregatedData{
		FieldID:        key.FieldID,
		SensorType:     key.SensorType,
		TimeRangeStart: start,
		TimeRangeEnd:   end,
		Granularity:    g,
		Count:          len(group),
		Devices:        distinctDevices(group),
	}

	values := make([]float64, len(group))
	for i, r := range group {
		values[i] = r.Value
	}
	if s, ok := stats.Compute(values); ok {
		data.Mean = stats.Round2p(&s.Mean)
		data.Median = stats.Round2p(&s.Median)
		data.Min = stats.Round2p(&s.Min)
		data.Max = stats.Round2p(&s.Max)
		data.Std = stats.Round2p(&s.Std)
		data.Percentile10 = stats.Round2p(&s.P10)
		data.Percentile25 = stats.Round2p(&s.P25)
		data.Percentile75 = stats.Round2p(&s.P75)
		data.Percentile90 = stats.Round2p(&s.P90)
	}

	data.OutlierCount = len(a.detector.Detect(group, outlier.MethodThreshold))
	data.RateOfChange = rateOfChange(group)

	if domain.IsAccumulating(key.SensorType) {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		data.CumulativeSum = stats.Round2p(&sum)
	}

	expected := a.scorer.ExpectedCount(end.Sub(start))
	if missing := expected - len(group); missing > 0 {
		data.MissingCount = missing
	}
	data.DataQualityScore = stats.Round2(a.scorer.Score(group, expected, now))

	return data
}

// rateOfChange is (last-first)/elapsed hours over the time-sorted bucket;
// nil with fewer than 2 readings or zero elapsed time.
func rateOfChange(sorted []domain.SensorReading) *float64 {
	if len(sorted) < 2 {
		return nil
	}
	first := sorted[0]
	last := sorted[len(sorted)-1]
	hours := last.Timestamp.Sub(first.Timestamp).Hours()
	if hours == 0 {
		return nil
	}
	rate := (last.Value - first.Value) / hours
	return stats.Round2p(&rate)
}

// sortReadings orders by timestamp with deterministic tie-breaks so repeated
// aggregation of the same set is bit-identical.
func sortReadings(readings []domain.SensorReading) {
	sort.Slice(readings, func(i, j int) bool {
		a, b := readings[i], readings[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.DeviceID != b.DeviceID {
			return a.DeviceID < b.DeviceID
		}
		return a.Value < b.Value
	})
}

func distinctDevices(readings []domain.SensorReading) []string {
	seen := make(map[string]struct{}, len(readings))
	devices := make([]string, 0, len(readings))
	for _, r := range readings {
		if _, ok := seen[r.DeviceID]; ok {
			continue
		}
		seen[r.DeviceID] = struct{}{}
		devices = append(devices, r.DeviceID)
	}
	sort.Strings(devices)
	return devices
}

// bucketStart truncates a timestamp to its bucket boundary in UTC. Weekly
// buckets start on the ISO-8601 Monday; the same ISO week definition is used
// for labels and range reconstruction.
func bucketStart(ts time.Time, g domain.Granularity) time.Time {
	t := ts.UTC()
	switch g {
	case domain.GranularityHourly:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	case domain.GranularityDaily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case domain.GranularityWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7
		}
		return day.AddDate(0, 0, -(wd - 1))
	case domain.GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func bucketEnd(start time.Time, g domain.Granularity) time.Time {
	switch g {
	case domain.GranularityHourly:
		return start.Add(time.Hour)
	case domain.GranularityDaily:
		return start.AddDate(0, 0, 1)
	case domain.GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case domain.GranularityMonthly:
		return start.AddDate(0, 1, 0)
	}
	return start
}

func bucketLabel(start time.Time, g domain.Granularity) string {
	switch g {
	case domain.GranularityHourly:
		return start.Format("2006-01-02 15:00")
	case domain.GranularityDaily:
		return start.Format("2006-01-02")
	case domain.GranularityWeekly:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case domain.GranularityMonthly:
		return start.Format("2006-01")
	}
	return start.Format(time.RFC3339)
}
