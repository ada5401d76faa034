package preset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parses, validates and normalizes a preset document. An unparsable
// document or an unknown shape is a fatal ValidationError; out-of-range
// fields are clamped and reported as warnings alongside a usable preset.
func Load(data []byte) (*Preset, []Warning, error) {
	p := &Preset{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, nil, &ValidationError{Err: fmt.Errorf("parsing document: %w", err)}
	}
	warnings, err := Validate(p)
	if err != nil {
		return nil, warnings, err
	}
	return p, warnings, nil
}

// LoadFile is Load for a file on disk.
func LoadFile(path string) (*Preset, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading preset file: %w", err)
	}
	return Load(data)
}

// Serialize encodes the preset as a YAML document. Unknown fields captured
// at load time are re-emitted, so load(serialize(p)) round-trips any valid
// preset including its forward-compatible extras.
func (p *Preset) Serialize() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling preset: %w", err)
	}
	return data, nil
}
