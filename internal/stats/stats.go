package stats

import (
	"math"
	"sort"
)

// Summary holds the descriptive statistics for one sample set. Values are
// unrounded; callers round at the output boundary with Round2 so derived
// quantities (rates, cumulative sums) do not compound rounding error.
type Summary struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64
	P10    float64
	P25    float64
	P75    float64
	P90    float64
	Count  int
}

// Compute returns the summary for values. ok is false for an empty input;
// that is the defined "no data" case, not an error.
func Compute(values []float64) (Summary, bool) {
	n := len(values)
	if n == 0 {
		return Summary{}, false
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		Mean:   Mean(sorted),
		Median: medianSorted(sorted),
		Min:    sorted[0],
		Max:    sorted[n-1],
		P10:    percentileSorted(sorted, 10),
		P25:    percentileSorted(sorted, 25),
		P75:    percentileSorted(sorted, 75),
		P90:    percentileSorted(sorted, 90),
		Count:  n,
	}
	s.Std = stdAround(sorted, s.Mean)
	return s, true
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Std is the population standard deviation; 0 for a single sample.
func Std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stdAround(values, Mean(values))
}

func stdAround(values []float64, mean float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Percentile estimates percentile p in [0,100] by linear interpolation on the
// sorted sample: k=(n-1)*p/100, f=floor(k), c=k-f, result sorted[f] when f+1
// runs past the end, else sorted[f]+c*(sorted[f+1]-sorted[f]).
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	k := float64(n-1) * p / 100
	f := math.Floor(k)
	c := k - f
	i := int(f)
	if i+1 >= n {
		return sorted[i]
	}
	return sorted[i] + c*(sorted[i+1]-sorted[i])
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Round2 rounds to 2 decimal places for boundary output.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round2p rounds a value in place behind a pointer, passing nil through.
func Round2p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
