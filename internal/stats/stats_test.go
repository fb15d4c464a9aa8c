package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeEmpty(t *testing.T) {
	_, ok := Compute(nil)
	require.False(t, ok)

	_, ok = Compute([]float64{})
	require.False(t, ok)
}

func TestComputeSingleSample(t *testing.T) {
	s, ok := Compute([]float64{42.5})
	require.True(t, ok)
	require.Equal(t, 42.5, s.Mean)
	require.Equal(t, 42.5, s.Median)
	require.Equal(t, 42.5, s.Min)
	require.Equal(t, 42.5, s.Max)
	require.Equal(t, 0.0, s.Std)
	require.Equal(t, 42.5, s.P10)
	require.Equal(t, 42.5, s.P90)
	require.Equal(t, 1, s.Count)
}

func TestPercentileInterpolation(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	// k = 4*0.10 = 0.4 -> 1 + 0.4*(2-1)
	require.InDelta(t, 1.4, Percentile(values, 10), 1e-9)
	require.InDelta(t, 2.0, Percentile(values, 25), 1e-9)
	require.InDelta(t, 4.0, Percentile(values, 75), 1e-9)
	require.InDelta(t, 4.6, Percentile(values, 90), 1e-9)
	require.InDelta(t, 1.0, Percentile(values, 0), 1e-9)
	require.InDelta(t, 5.0, Percentile(values, 100), 1e-9)
}

func TestP50MatchesMedian(t *testing.T) {
	cases := [][]float64{
		{7},
		{3, 9},
		{1, 2, 3, 4, 5},
		{10, 12, 11, 13, 1000},
		{2.5, 2.5, 2.5, 2.5},
		{-4, 0, 8, 15, 16, 23, 42},
	}
	for _, values := range cases {
		s, ok := Compute(values)
		require.True(t, ok)
		require.InDelta(t, s.Median, Percentile(values, 50), 1e-9)
	}
}

func TestPercentileOrdering(t *testing.T) {
	cases := [][]float64{
		{5},
		{1, 1000},
		{3, 1, 4, 1, 5, 9, 2, 6},
		{-10, -5, 0, 5, 10, 100},
	}
	for _, values := range cases {
		s, ok := Compute(values)
		require.True(t, ok)
		require.LessOrEqual(t, s.Min, s.P10)
		require.LessOrEqual(t, s.P10, s.P25)
		require.LessOrEqual(t, s.P25, s.Median)
		require.LessOrEqual(t, s.Median, s.P75)
		require.LessOrEqual(t, s.P75, s.P90)
		require.LessOrEqual(t, s.P90, s.Max)
	}
}

func TestPopulationStd(t *testing.T) {
	// mean 4, squared deviations (4+0+4)/3
	s, ok := Compute([]float64{2, 4, 6})
	require.True(t, ok)
	require.InDelta(t, 1.632993, s.Std, 1e-6)
}

func TestComputeOrderIndependent(t *testing.T) {
	a, _ := Compute([]float64{5, 1, 3, 2, 4})
	b, _ := Compute([]float64{1, 2, 3, 4, 5})
	require.Equal(t, a, b)
}

func TestRound2(t *testing.T) {
	require.Equal(t, 33.33, Round2(100.0/3))
	require.Equal(t, 1.4, Round2(1.4000000001))
	require.Nil(t, Round2p(nil))
	v := 2.005
	require.NotNil(t, Round2p(&v))
}
