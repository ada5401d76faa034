package preset

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RGBA is a color with float components in [0,1].
type RGBA [4]float32

// Lerp linearly interpolates between two colors.
func (c RGBA) Lerp(other RGBA, t float32) RGBA {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return other
	}
	var out RGBA
	for i := range c {
		out[i] = c[i] + (other[i]-c[i])*t
	}
	return out
}

// MarshalYAML encodes the color as a flow sequence: [r, g, b, a].
func (c RGBA) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range c {
		node.Content = append(node.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Value: fmt.Sprintf("%g", v),
		})
	}
	return node, nil
}

// UnmarshalYAML decodes a [r, g, b, a] sequence. A three-element sequence
// gets full opacity.
func (c *RGBA) UnmarshalYAML(value *yaml.Node) error {
	var parts []float32
	if err := value.Decode(&parts); err != nil {
		return err
	}
	switch len(parts) {
	case 3:
		copy(c[:3], parts)
		c[3] = 1
	case 4:
		copy(c[:], parts)
	default:
		return fmt.Errorf("color needs 3 or 4 components, got %d", len(parts))
	}
	return nil
}

// ColorStop is one gradient stop at a normalized particle age.
type ColorStop struct {
	At    float32 `yaml:"at"`
	Value RGBA    `yaml:"value"`
}

// ColorSpec describes particle color over a particle's lifetime: either a
// start/end pair or an explicit stop list. Stops take precedence when
// present.
type ColorSpec struct {
	Start RGBA        `yaml:"start"`
	End   RGBA        `yaml:"end"`
	Stops []ColorStop `yaml:"stops,omitempty"`
}

// At evaluates the gradient at a normalized age in [0,1].
func (s *ColorSpec) At(age float32) RGBA {
	if age < 0 {
		age = 0
	}
	if age > 1 {
		age = 1
	}
	if len(s.Stops) == 0 {
		return s.Start.Lerp(s.End, age)
	}
	stops := s.Stops
	if age <= stops[0].At {
		return stops[0].Value
	}
	for i := 1; i < len(stops); i++ {
		if age <= stops[i].At {
			span := stops[i].At - stops[i-1].At
			if span <= 0 {
				return stops[i].Value
			}
			t := (age - stops[i-1].At) / span
			return stops[i-1].Value.Lerp(stops[i].Value, t)
		}
	}
	return stops[len(stops)-1].Value
}
