package preset

import (
	"fmt"
	"math"
	"sort"
)

// Domain bounds. Spawn rate and pool cap are clamped so a hostile document
// can't push a frame past its budget.
const (
	MaxSpawnRate    = 2000.0
	MinLifetime     = 0.05
	MaxLifetime     = 30.0
	MaxParticleCap  = 20000
	MaxSize         = 256.0
	MaxInitialSpeed = 5000.0
	MaxDrag         = 50.0
	MaxGravity      = 5000.0
)

// Warning is a non-fatal validation finding: an out-of-range field that was
// clamped into its domain. Warnings are surfaced to the caller for display
// and never block operation.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// ValidationError is a fatal document error: structurally malformed input
// that cannot be clamped into a playable preset. The load fails; a
// previously active preset stays in effect.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid preset: %v", e.Err)
	}
	return fmt.Sprintf("invalid preset field %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks and normalizes a preset in place: missing optional fields
// get defaults, out-of-range numeric fields are clamped and reported, and
// the decay curve is compiled. A nil error with warnings means the preset
// is playable; a ValidationError means it is not.
func Validate(p *Preset) ([]Warning, error) {
	var warnings []Warning
	clamp := func(field string, v *float64, lo, hi float64) {
		switch {
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			warnings = append(warnings, Warning{field, fmt.Sprintf("not a finite number, reset to %g", lo)})
			*v = lo
		case *v < lo:
			warnings = append(warnings, Warning{field, fmt.Sprintf("%g below minimum %g, clamped", *v, lo)})
			*v = lo
		case *v > hi:
			warnings = append(warnings, Warning{field, fmt.Sprintf("%g above maximum %g, clamped", *v, hi)})
			*v = hi
		}
	}

	if p.Name == "" {
		p.Name = "Unnamed"
		warnings = append(warnings, Warning{"name", "missing, defaulted to Unnamed"})
	}
	if p.Version == 0 {
		p.Version = 1
	}

	if p.SpawnRate == 0 {
		p.SpawnRate = Default().SpawnRate
	}
	clamp("spawn_rate", &p.SpawnRate, 0, MaxSpawnRate)

	if p.Lifetime == 0 {
		p.Lifetime = Default().Lifetime
	}
	clamp("lifetime", &p.Lifetime, MinLifetime, MaxLifetime)

	if p.MaxParticles == 0 {
		p.MaxParticles = Default().MaxParticles
	}
	if p.MaxParticles < 1 {
		warnings = append(warnings, Warning{"max_particles", fmt.Sprintf("%d below minimum 1, clamped", p.MaxParticles)})
		p.MaxParticles = 1
	}
	if p.MaxParticles > MaxParticleCap {
		warnings = append(warnings, Warning{"max_particles", fmt.Sprintf("%d above maximum %d, clamped", p.MaxParticles, MaxParticleCap)})
		p.MaxParticles = MaxParticleCap
	}

	if p.Size == 0 {
		p.Size = Default().Size
	}
	clamp("size", &p.Size, 0.5, MaxSize)
	clamp("initial_speed", &p.InitialSpeed, 0, MaxInitialSpeed)
	clamp("speed_jitter", &p.SpeedJitter, 0, 1)
	clamp("direction_jitter", &p.DirectionJitter, 0, 2*math.Pi)
	clamp("drag", &p.Drag, 0, MaxDrag)
	clamp("gravity", &p.Gravity, -MaxGravity, MaxGravity)

	warnings = append(warnings, normalizeColor(&p.Color)...)

	decayWarnings, err := normalizeDecay(&p.Decay)
	warnings = append(warnings, decayWarnings...)
	if err != nil {
		return warnings, &ValidationError{Field: "decay", Err: err}
	}
	curve, err := p.Decay.Compile()
	if err != nil {
		return warnings, &ValidationError{Field: "decay", Err: err}
	}
	p.curve = curve

	return warnings, nil
}

func normalizeColor(c *ColorSpec) []Warning {
	var warnings []Warning
	zero := RGBA{}
	if c.Start == zero && c.End == zero && len(c.Stops) == 0 {
		def := Default()
		c.Start = def.Color.Start
		c.End = def.Color.End
	}
	clampRGBA := func(field string, v *RGBA) {
		for i := range v {
			if v[i] < 0 || v[i] > 1 {
				warnings = append(warnings, Warning{field, fmt.Sprintf("component %g outside [0,1], clamped", v[i])})
				if v[i] < 0 {
					v[i] = 0
				} else {
					v[i] = 1
				}
			}
		}
	}
	clampRGBA("color.start", &c.Start)
	clampRGBA("color.end", &c.End)
	for i := range c.Stops {
		clampRGBA(fmt.Sprintf("color.stops[%d]", i), &c.Stops[i].Value)
		if c.Stops[i].At < 0 || c.Stops[i].At > 1 {
			warnings = append(warnings, Warning{
				fmt.Sprintf("color.stops[%d].at", i),
				fmt.Sprintf("%g outside [0,1], clamped", c.Stops[i].At),
			})
			if c.Stops[i].At < 0 {
				c.Stops[i].At = 0
			} else {
				c.Stops[i].At = 1
			}
		}
	}
	// Gradient evaluation walks the stops in ascending age order.
	sort.SliceStable(c.Stops, func(i, j int) bool { return c.Stops[i].At < c.Stops[j].At })
	return warnings
}

// normalizeDecay clamps control points into domain, sorts them by age, and
// enforces a non-increasing fade that reaches zero by end of life, so no
// particle brightens mid-life or persists indefinitely.
func normalizeDecay(d *DecaySpec) ([]Warning, error) {
	var warnings []Warning
	if len(d.Points) == 0 {
		if d.Curve == "" {
			d.Curve = CurveEaseOut
		}
		return warnings, nil
	}
	for i := range d.Points {
		pt := &d.Points[i]
		if math.IsNaN(pt.Age) || math.IsNaN(pt.Value) {
			return warnings, fmt.Errorf("point %d is not a number", i)
		}
		if pt.Age < 0 || pt.Age > 1 {
			warnings = append(warnings, Warning{
				fmt.Sprintf("decay.points[%d].age", i),
				fmt.Sprintf("%g outside [0,1], clamped", pt.Age),
			})
			pt.Age = math.Min(1, math.Max(0, pt.Age))
		}
		if pt.Value < 0 || pt.Value > 1 {
			warnings = append(warnings, Warning{
				fmt.Sprintf("decay.points[%d].value", i),
				fmt.Sprintf("%g outside [0,1], clamped", pt.Value),
			})
			pt.Value = math.Min(1, math.Max(0, pt.Value))
		}
	}
	sort.Slice(d.Points, func(i, j int) bool { return d.Points[i].Age < d.Points[j].Age })

	runMin := d.Points[0].Value
	for i := 1; i < len(d.Points); i++ {
		if d.Points[i].Value > runMin {
			warnings = append(warnings, Warning{
				fmt.Sprintf("decay.points[%d].value", i),
				fmt.Sprintf("%g rises above earlier value %g, clamped for a non-increasing fade", d.Points[i].Value, runMin),
			})
			d.Points[i].Value = runMin
			continue
		}
		runMin = d.Points[i].Value
	}

	last := &d.Points[len(d.Points)-1]
	if last.Age >= 1 && last.Value > 0 {
		warnings = append(warnings, Warning{
			"decay.points",
			fmt.Sprintf("final value %g at age 1 forced to 0 for full fade", last.Value),
		})
		last.Value = 0
	}
	return warnings, nil
}
