package outlier

import (
	"math"

	"github.com/kafaat/sahool-sensors/internal/domain"
	"github.com/kafaat/sahool-sensors/internal/stats"
	"github.com/kafaat/sahool-sensors/internal/threshold"
)

type Method string

const (
	MethodZScore    Method = "zscore"
	MethodIQR       Method = "iqr"
	MethodThreshold Method = "threshold"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Flag marks one reading, by index into the input slice, as anomalous.
// Detection never mutates the readings themselves.
type Flag struct {
	Index    int
	Severity Severity
}

// Options tune the statistical methods. The z-score threshold and the IQR
// multiplier are distinct parameters with distinct defaults.
type Options struct {
	ZScoreThreshold float64
	IQRMultiplier   float64
}

func (o Options) withDefaults() Options {
	if o.ZScoreThreshold <= 0 {
		o.ZScoreThreshold = 3.0
	}
	if o.IQRMultiplier <= 0 {
		o.IQRMultiplier = 1.5
	}
	return o
}

type Detector struct {
	catalog *threshold.Catalog
	opts    Options
}

func NewDetector(catalog *threshold.Catalog, opts Options) *Detector {
	return &Detector{catalog: catalog, opts: opts.withDefaults()}
}

// Detect flags anomalous readings using the given method. The statistical
// methods need at least 3 readings and return no flags below that; an input
// too small to judge is not an error.
func (d *Detector) Detect(readings []domain.SensorReading, method Method) []Flag {
	switch method {
	case MethodZScore:
		return d.detectZScore(readings)
	case MethodIQR:
		return d.detectIQR(readings)
	case MethodThreshold:
		return d.detectThreshold(readings)
	}
	return nil
}

func (d *Detector) detectZScore(readings []domain.SensorReading) []Flag {
	if len(readings) < 3 {
		return nil
	}
	values := valuesOf(readings)
	mean := stats.Mean(values)
	std := stats.Std(values)
	if std == 0 {
		// degenerate distribution, nothing is anomalous
		return nil
	}

	var flags []Flag
	for i, v := range values {
		if math.Abs(v-mean)/std > d.opts.ZScoreThreshold {
			flags = append(flags, Flag{Index: i, Severity: SeverityWarning})
		}
	}
	return flags
}

func (d *Detector) detectIQR(readings []domain.SensorReading) []Flag {
	if len(readings) < 3 {
		return nil
	}
	values := valuesOf(readings)
	q1 := stats.Percentile(values, 25)
	q3 := stats.Percentile(values, 75)
	iqr := q3 - q1
	lower := q1 - d.opts.IQRMultiplier*iqr
	upper := q3 + d.opts.IQRMultiplier*iqr

	var flags []Flag
	for i, v := range values {
		if v < lower || v > upper {
			flags = append(flags, Flag{Index: i, Severity: SeverityWarning})
		}
	}
	return flags
}

func (d *Detector) detectThreshold(readings []domain.SensorReading) []Flag {
	var flags []Flag
	for i, r := range readings {
		entry, ok := d.catalog.Lookup(r.SensorType)
		if !ok {
			// no threshold defined means in range
			continue
		}
		switch {
		case entry.CriticalMin != nil && r.Value < *entry.CriticalMin,
			entry.CriticalMax != nil && r.Value > *entry.CriticalMax:
			flags = append(flags, Flag{Index: i, Severity: SeverityCritical})
		case r.Value < entry.MinValue || r.Value > entry.MaxValue:
			flags = append(flags, Flag{Index: i, Severity: SeverityWarning})
		}
	}
	return flags
}

func valuesOf(readings []domain.SensorReading) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	return values
}
