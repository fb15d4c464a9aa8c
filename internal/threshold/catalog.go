package threshold

import (
	"fmt"
	"strings"
)

// Entry defines the acceptable and critical value ranges for one sensor type.
// Warning bounds are [MinValue, MaxValue]; critical bounds are optional and
// sit outside the warning range.
type Entry struct {
	SensorType    string   `json:"sensor_type" mapstructure:"sensor_type"`
	MinValue      float64  `json:"min_value" mapstructure:"min_value"`
	MaxValue      float64  `json:"max_value" mapstructure:"max_value"`
	CriticalMin   *float64 `json:"critical_min" mapstructure:"critical_min"`
	CriticalMax   *float64 `json:"critical_max" mapstructure:"critical_max"`
	Unit          string   `json:"unit" mapstructure:"unit"`
	DescriptionEn string   `json:"description_en" mapstructure:"description_en"`
	DescriptionAr string   `json:"description_ar" mapstructure:"description_ar"`
}

// RangeString renders the recommended range for display, e.g. "20-80 %".
func (e Entry) RangeString() string {
	return fmt.Sprintf("%v-%v %s", e.MinValue, e.MaxValue, e.Unit)
}

// Catalog is a read-only table of per-sensor-type thresholds. It is built
// once at startup and safe for concurrent lookups.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog returns a catalog seeded with the default regional entries,
// replaced or extended by the given overrides.
func NewCatalog(overrides ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(defaults)+len(overrides))}
	for _, e := range defaults {
		c.entries[strings.ToLower(e.SensorType)] = e
	}
	for _, e := range overrides {
		key := strings.ToLower(e.SensorType)
		if key == "" {
			continue
		}
		e.SensorType = key
		c.entries[key] = e
	}
	return c
}

// Lookup returns the entry for a sensor type. A missing entry means "no
// constraint defined", not a failure.
func (c *Catalog) Lookup(sensorType string) (Entry, bool) {
	e, ok := c.entries[strings.ToLower(sensorType)]
	return e, ok
}

// Entries returns all entries for read-only exposure to collaborators.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

func ptr(v float64) *float64 { return &v }

// Default ranges reflect arid-region field agronomy; deployments retune them
// through the thresholds config section rather than a rebuild.
var defaults = []Entry{
	{
		SensorType:    "soil_moisture",
		MinValue:      20,
		MaxValue:      80,
		CriticalMin:   ptr(10),
		CriticalMax:   ptr(90),
		Unit:          "%",
		DescriptionEn: "Volumetric soil moisture",
		DescriptionAr: "رطوبة التربة الحجمية",
	},
	{
		SensorType:    "soil_temperature",
		MinValue:      10,
		MaxValue:      35,
		CriticalMin:   ptr(0),
		CriticalMax:   ptr(45),
		Unit:          "°C",
		DescriptionEn: "Soil temperature at root depth",
		DescriptionAr: "درجة حرارة التربة عند عمق الجذور",
	},
	{
		SensorType:    "temperature",
		MinValue:      5,
		MaxValue:      42,
		CriticalMin:   ptr(-2),
		CriticalMax:   ptr(50),
		Unit:          "°C",
		DescriptionEn: "Ambient air temperature",
		DescriptionAr: "درجة حرارة الهواء المحيط",
	},
	{
		SensorType:    "humidity",
		MinValue:      30,
		MaxValue:      85,
		CriticalMin:   ptr(15),
		CriticalMax:   ptr(95),
		Unit:          "%",
		DescriptionEn: "Relative air humidity",
		DescriptionAr: "الرطوبة النسبية للهواء",
	},
	{
		SensorType:    "salinity",
		MinValue:      0,
		MaxValue:      4,
		CriticalMax:   ptr(8),
		Unit:          "dS/m",
		DescriptionEn: "Soil water salinity (EC)",
		DescriptionAr: "ملوحة مياه التربة",
	},
	{
		SensorType:    "ph",
		MinValue:      5.5,
		MaxValue:      8,
		CriticalMin:   ptr(4.5),
		CriticalMax:   ptr(9),
		Unit:          "pH",
		DescriptionEn: "Soil pH",
		DescriptionAr: "حموضة التربة",
	},
	{
		SensorType:    "rainfall",
		MinValue:      0,
		MaxValue:      50,
		CriticalMax:   ptr(100),
		Unit:          "mm",
		DescriptionEn: "Rainfall per reporting period",
		DescriptionAr: "كمية الأمطار لكل فترة قياس",
	},
	{
		SensorType:    "wind_speed",
		MinValue:      0,
		MaxValue:      15,
		CriticalMax:   ptr(25),
		Unit:          "m/s",
		DescriptionEn: "Wind speed",
		DescriptionAr: "سرعة الرياح",
	},
	{
		SensorType:    "battery",
		MinValue:      20,
		MaxValue:      100,
		CriticalMin:   ptr(10),
		Unit:          "%",
		DescriptionEn: "Device battery level",
		DescriptionAr: "مستوى بطارية الجهاز",
	},
}
