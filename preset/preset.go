// Package preset defines the trail preset data model: the named, versioned
// record of a trail's visual and behavioral parameters, its YAML codec, and
// its validation contract.
package preset

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Shape identifies the primitive drawn for each particle.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapeStar
	ShapeSpark
)

var shapeNames = map[Shape]string{
	ShapeCircle:   "circle",
	ShapeSquare:   "square",
	ShapeTriangle: "triangle",
	ShapeStar:     "star",
	ShapeSpark:    "spark",
}

// String returns the shape's document name.
func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// ParseShape resolves a document shape name. Unknown names are a fatal
// document error, never defaulted.
func ParseShape(name string) (Shape, error) {
	for s, n := range shapeNames {
		if n == name {
			return s, nil
		}
	}
	return ShapeCircle, fmt.Errorf("unknown shape %q", name)
}

// MarshalYAML encodes the shape as its document name.
func (s Shape) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes a shape from its document name.
func (s *Shape) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseShape(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Preset is the immutable recipe for a trail: how particles are emitted,
// how they move, and how they fade. "Editing" a preset means constructing a
// new instance; the simulation never observes a partially-updated preset.
type Preset struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
	Shape   Shape  `yaml:"shape"`

	// Emission
	SpawnRate    float64 `yaml:"spawn_rate"`    // particles per second
	Lifetime     float64 `yaml:"lifetime"`      // seconds until full fade
	MaxParticles int     `yaml:"max_particles"` // pool cap per monitor

	// Motion
	Size            float64 `yaml:"size"`             // base size in DIPs
	InitialSpeed    float64 `yaml:"initial_speed"`    // px/s at spawn
	SpeedJitter     float64 `yaml:"speed_jitter"`     // 0..1 fraction of initial speed
	DirectionJitter float64 `yaml:"direction_jitter"` // radians of spread
	Drag            float64 `yaml:"drag"`             // 1/s exponential decay of velocity
	Gravity         float64 `yaml:"gravity"`          // px/s², positive is down

	Color ColorSpec `yaml:"color"`
	Decay DecaySpec `yaml:"decay"`

	// Monitors maps monitor IDs to an enable flag. Absent IDs are enabled.
	Monitors map[string]bool `yaml:"monitors,omitempty"`

	// Extra preserves unknown top-level fields across a load/serialize
	// round trip, so preset packs can carry asset references this version
	// doesn't understand.
	Extra map[string]any `yaml:",inline"`

	curve *Curve
}

// Default returns the built-in preset: a soft white trail.
func Default() *Preset {
	p := &Preset{
		Name:            "Default",
		Version:         1,
		Shape:           ShapeCircle,
		SpawnRate:       120,
		Lifetime:        0.6,
		MaxParticles:    4096,
		Size:            4,
		InitialSpeed:    30,
		SpeedJitter:     0.5,
		DirectionJitter: 2 * math.Pi,
		Drag:            3,
		Color: ColorSpec{
			Start: RGBA{1, 1, 1, 1},
			End:   RGBA{1, 1, 1, 0},
		},
		Decay: DecaySpec{Curve: CurveEaseOut},
	}
	p.curve, _ = p.Decay.Compile()
	return p
}

// EnabledOn reports whether the preset should emit and render on the given
// monitor. Monitors not listed in the document are enabled.
func (p *Preset) EnabledOn(monitorID string) bool {
	if p.Monitors == nil {
		return true
	}
	enabled, ok := p.Monitors[monitorID]
	if !ok {
		return true
	}
	return enabled
}

// DecayAt evaluates the preset's compiled decay curve at a normalized age
// in [0,1). The same evaluation drives both opacity and scale, and the
// renderer computes age exactly the way the simulation does, so the two
// never disagree.
func (p *Preset) DecayAt(age float64) float64 {
	if p.curve == nil {
		// Not validated yet; fall back to linear fade.
		if age >= 1 {
			return 0
		}
		return 1 - age
	}
	return p.curve.At(age)
}
