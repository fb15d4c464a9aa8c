package threshold

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupDefaults(t *testing.T) {
	c := NewCatalog()

	e, ok := c.Lookup("soil_moisture")
	require.True(t, ok)
	require.Equal(t, 20.0, e.MinValue)
	require.Equal(t, 80.0, e.MaxValue)
	require.NotNil(t, e.CriticalMin)
	require.Equal(t, 10.0, *e.CriticalMin)

	// lookup is case-insensitive
	_, ok = c.Lookup("Soil_Moisture")
	require.True(t, ok)
}

func TestLookupUnknownType(t *testing.T) {
	c := NewCatalog()
	_, ok := c.Lookup("leaf_wetness")
	require.False(t, ok)
}

func TestOverrides(t *testing.T) {
	c := NewCatalog(
		Entry{SensorType: "Soil_Moisture", MinValue: 30, MaxValue: 70, Unit: "%"},
		Entry{SensorType: "co2", MinValue: 300, MaxValue: 1200, Unit: "ppm"},
	)

	e, ok := c.Lookup("soil_moisture")
	require.True(t, ok)
	require.Equal(t, 30.0, e.MinValue)
	require.Nil(t, e.CriticalMin)

	e, ok = c.Lookup("co2")
	require.True(t, ok)
	require.Equal(t, 1200.0, e.MaxValue)

	// untouched defaults survive
	_, ok = c.Lookup("ph")
	require.True(t, ok)
}

func TestRangeString(t *testing.T) {
	c := NewCatalog()
	e, _ := c.Lookup("soil_moisture")
	require.Equal(t, "20-80 %", e.RangeString())
}
