// Package sim owns the live particle pools and advances them. The advance
// step is a pure function of its inputs: the same preset, elapsed time and
// cursor path produce the same trajectories on any machine, because the
// integrator is exact in time and all randomness comes from seeded noise.
package sim

import "github.com/softtrail/serpentines/preset"

// Position is a particle's location in virtual-desktop pixels.
type Position struct {
	X, Y float64
}

// Velocity is a particle's velocity in pixels per second.
type Velocity struct {
	X, Y float64
}

// Life pins a particle to the recipe active at its spawn. A preset swap
// never retroactively mutates a live particle; it finishes its life under
// the recipe it was born with.
type Life struct {
	Spawn    float64 // simulation time of birth, seconds
	Lifetime float64
	Recipe   *preset.Preset
}

// CursorPoint is one cursor position within a frame, in virtual-desktop
// pixels. The engine converts platform samples into these per monitor.
type CursorPoint struct {
	X, Y float64
}
