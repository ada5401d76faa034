// Package telemetry collects frame timing and trail statistics for the
// engine: a rolling perf window, percentile summaries, and optional CSV
// output for offline analysis.
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile computes the p-th percentile (0..1) of values with linear
// interpolation. The input does not need to be sorted.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) == 1 {
		return values[0]
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	frac := idx - float64(lo)
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}

// Quantiles returns the p50/p90/p99 of values using gonum's empirical
// quantile estimator.
func Quantiles(values []float64) (p50, p90, p99 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	p99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	return p50, p90, p99
}

// TrailStats is one periodic snapshot of the trail for telemetry.csv.
type TrailStats struct {
	Frame          int64   `csv:"frame"`
	SimTimeSec     float64 `csv:"sim_time"`
	ActivePreset   string  `csv:"preset"`
	Monitors       int     `csv:"monitors"`
	Particles      int     `csv:"particles"`
	SamplesDrained int     `csv:"samples_drained"`
	SamplesDropped uint64  `csv:"samples_dropped"`
}
