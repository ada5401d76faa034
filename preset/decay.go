package preset

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Named decay curves.
const (
	CurveLinear     = "linear"
	CurveEaseOut    = "ease_out"
	CurveSmoothstep = "smoothstep"
)

// DecayPoint is one control point of a custom decay curve: the opacity and
// scale multiplier at a normalized age.
type DecayPoint struct {
	Age   float64 `yaml:"age"`
	Value float64 `yaml:"value"`
}

// DecaySpec selects a decay curve: a named curve, or a custom control-point
// list fitted with a monotone cubic. Points take precedence when present.
type DecaySpec struct {
	Curve  string       `yaml:"curve,omitempty"`
	Points []DecayPoint `yaml:"points,omitempty"`
}

// Curve is a compiled decay curve: normalized age in [0,1] to an
// opacity/scale multiplier that reaches 0 by age 1.
type Curve struct {
	eval func(float64) float64
}

// At evaluates the curve. Ages at or past 1 always yield 0, so no particle
// persists visually beyond its lifetime.
func (c *Curve) At(age float64) float64 {
	if age >= 1 {
		return 0
	}
	if age < 0 {
		age = 0
	}
	v := c.eval(age)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Compile builds the evaluable curve. Control points are sorted by age and
// fitted with a Fritsch-Butland monotone cubic, so the fitted curve cannot
// overshoot the points and the fade stays monotonic.
func (s DecaySpec) Compile() (*Curve, error) {
	if len(s.Points) > 0 {
		return compilePoints(s.Points)
	}
	switch s.Curve {
	case CurveLinear, "":
		return &Curve{eval: func(a float64) float64 { return 1 - a }}, nil
	case CurveEaseOut:
		return &Curve{eval: func(a float64) float64 {
			inv := 1 - a
			return inv * inv
		}}, nil
	case CurveSmoothstep:
		return &Curve{eval: func(a float64) float64 {
			inv := 1 - a
			return inv * inv * (3 - 2*inv)
		}}, nil
	default:
		return nil, fmt.Errorf("unknown decay curve %q", s.Curve)
	}
}

func compilePoints(points []DecayPoint) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("decay needs at least 2 points, got %d", len(points))
	}

	pts := make([]DecayPoint, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].Age < pts[j].Age })

	xs := make([]float64, 0, len(pts)+2)
	ys := make([]float64, 0, len(pts)+2)
	if pts[0].Age > 0 {
		xs = append(xs, 0)
		ys = append(ys, pts[0].Value)
	}
	for _, pt := range pts {
		if len(xs) > 0 && pt.Age <= xs[len(xs)-1] {
			return nil, fmt.Errorf("decay points must have distinct ages (duplicate at %g)", pt.Age)
		}
		xs = append(xs, pt.Age)
		ys = append(ys, pt.Value)
	}
	if xs[len(xs)-1] < 1 {
		xs = append(xs, 1)
		ys = append(ys, 0)
	}

	var fb interp.FritschButland
	if err := fb.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting decay curve: %w", err)
	}
	return &Curve{eval: fb.Predict}, nil
}
