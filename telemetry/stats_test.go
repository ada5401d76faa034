package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"unsorted input", []float64{5, 1, 4, 2, 3}, 0.5, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.values, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestQuantiles(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}
	p50, p90, p99 := Quantiles(values)

	if math.Abs(p50-50) > 1 {
		t.Errorf("p50 = %v, want ~50", p50)
	}
	if math.Abs(p90-90) > 1 {
		t.Errorf("p90 = %v, want ~90", p90)
	}
	if math.Abs(p99-99) > 1 {
		t.Errorf("p99 = %v, want ~99", p99)
	}
}

func TestQuantilesEmpty(t *testing.T) {
	p50, p90, p99 := Quantiles(nil)
	if p50 != 0 || p90 != 0 || p99 != 0 {
		t.Error("empty input should return all zeros")
	}
}
