// Package renderer converts a particle pool snapshot into canvas draw
// commands for one overlay surface. It owns no simulation state: every
// frame it re-reads the pool, so a preset hot-swap simply renders under the
// new rules on the next frame.
package renderer

import "github.com/softtrail/serpentines/platform"

// Viewport maps virtual-desktop coordinates onto one monitor's surface.
// Particle sizes are specified in DIPs and scaled by the monitor's DPI, so
// a preset looks the same physical size on mixed-DPI setups.
type Viewport struct {
	// Monitor top-left in virtual-desktop pixels
	OriginX, OriginY float64

	// DPI scale factor (1.0 at 96 DPI)
	Scale float64
}

// NewViewport builds the viewport for a monitor.
func NewViewport(m platform.Monitor) Viewport {
	return Viewport{
		OriginX: float64(m.X),
		OriginY: float64(m.Y),
		Scale:   m.Scale(),
	}
}

// ToSurface converts a virtual-desktop point to surface-local pixels.
func (v Viewport) ToSurface(x, y float64) (sx, sy float32) {
	return float32(x - v.OriginX), float32(y - v.OriginY)
}

// SizeScale converts a DIP length to surface pixels.
func (v Viewport) SizeScale(dips float64) float32 {
	return float32(dips * v.Scale)
}
