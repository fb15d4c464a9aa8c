package domain

import (
	"context"
	"time"
)

type Granularity string

const (
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityHourly, GranularityDaily, GranularityWeekly, GranularityMonthly:
		return true
	}
	return false
}

type DataStore interface {
	InsertBatch(ctx context.Context, data []SensorReading) error
	GetReadings(ctx context.Context, query ReadingQuery) ([]SensorReading, error)
	Close() error
}

// ReadingQuery selects raw readings for aggregation or health evaluation.
// Empty string fields match everything.
type ReadingQuery struct {
	DeviceID   string    `json:"device_id,omitempty"`
	FieldID    string    `json:"field_id,omitempty"`
	SensorType string    `json:"sensor_type,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type AggregateQuery struct {
	ReadingQuery
	Granularity Granularity `json:"granularity"`
}

// AggregatedData is the windowed summary for one field, sensor type and time
// bucket. When Count is zero every statistical field is nil; that is the
// defined "no data" result, not an error.
type AggregatedData struct {
	FieldID          string                 `json:"field_id"`
	SensorType       string                 `json:"sensor_type"`
	TimeRangeStart   time.Time              `json:"time_range_start"`
	TimeRangeEnd     time.Time              `json:"time_range_end"`
	Granularity      Granularity            `json:"granularity"`
	Mean             *float64               `json:"mean"`
	Median           *float64               `json:"median"`
	Min              *float64               `json:"min"`
	Max              *float64               `json:"max"`
	Std              *float64               `json:"std"`
	Count            int                    `json:"count"`
	Percentile10     *float64               `json:"percentile_10"`
	Percentile25     *float64               `json:"percentile_25"`
	Percentile75     *float64               `json:"percentile_75"`
	Percentile90     *float64               `json:"percentile_90"`
	RateOfChange     *float64               `json:"rate_of_change"`
	CumulativeSum    *float64               `json:"cumulative_sum"`
	DataQualityScore float64                `json:"data_quality_score"`
	OutlierCount     int                    `json:"outlier_count"`
	MissingCount     int                    `json:"missing_count"`
	Devices          []string               `json:"devices"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}
