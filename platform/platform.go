// Package platform defines the overlay surface abstraction: the contract an
// OS binding must provide for the engine to composite a transparent,
// click-through, always-on-top particle trail over the desktop.
package platform

import (
	"context"
	"time"
)

// MonitorID identifies a monitor across attach/detach cycles.
type MonitorID string

// Monitor describes one display in virtual-desktop coordinates.
type Monitor struct {
	ID     MonitorID
	X, Y   int // top-left corner in virtual-desktop pixels
	Width  int
	Height int
	DPI    float64 // effective DPI; 96 means no scaling
}

// Scale returns the monitor's DPI scale factor relative to 96 DPI.
func (m Monitor) Scale() float64 {
	if m.DPI <= 0 {
		return 1.0
	}
	return m.DPI / 96.0
}

// Contains reports whether a virtual-desktop point lies on this monitor.
func (m Monitor) Contains(x, y float64) bool {
	return x >= float64(m.X) && x < float64(m.X+m.Width) &&
		y >= float64(m.Y) && y < float64(m.Y+m.Height)
}

// CursorSample is one timestamped cursor position in virtual-desktop
// coordinates. Samples are pushed by the input source and consumed once by
// the engine; they are never retained beyond a frame.
type CursorSample struct {
	X, Y    float64
	Time    time.Time
	Monitor MonitorID
}

// EventKind discriminates monitor topology events.
type EventKind uint8

const (
	MonitorAttached EventKind = iota
	MonitorDetached
)

// Event reports a monitor topology change.
type Event struct {
	Kind    EventKind
	Monitor Monitor
}

// Color is an 8-bit RGBA color for canvas primitives.
type Color struct {
	R, G, B, A uint8
}

// Canvas is the draw-command sink a surface exposes between Begin and End.
// All coordinates are surface-local pixels.
type Canvas interface {
	FillCircle(x, y, radius float32, c Color)
	FillRect(x, y, w, h float32, c Color)
	FillTriangle(x1, y1, x2, y2, x3, y3 float32, c Color)
	Line(x1, y1, x2, y2, thick float32, c Color)
}

// Surface is one per-monitor overlay rendering target.
// Begin/End bracket one frame; Canvas is only valid between them.
type Surface interface {
	Monitor() Monitor
	Begin()
	Clear()
	Canvas() Canvas
	End()
	Close() error
}

// HUD is an optional surface extension for drawing a debug panel on top of
// the trail. Bindings that cannot draw widgets simply don't implement it.
type HUD interface {
	DrawHUD(title string, lines []string)
}

// Platform is the capability set an OS binding provides. Any conforming
// implementation is substitutable without the engine or simulation changing
// behavior.
//
// Failure policy: a CreateSurface error isolates that monitor only, while a
// StartInput error is fatal to the whole engine (no trail without cursor
// data). Both honor the context deadline as their bounded attempt window.
type Platform interface {
	// Monitors enumerates the current display topology.
	Monitors(ctx context.Context) ([]Monitor, error)

	// CreateSurface creates a transparent, click-through, topmost surface
	// bound to the given monitor.
	CreateSurface(ctx context.Context, m Monitor) (Surface, error)

	// Events delivers monitor attach/detach notifications. The channel is
	// owned by the platform and closed on Close.
	Events() <-chan Event

	// StartInput registers the global cursor feed. The sink may be called
	// from an OS-owned thread and must not block; it is called with the
	// latest cursor position, not a backlog.
	StartInput(ctx context.Context, sink func(CursorSample)) error

	// StopInput unregisters the cursor feed.
	StopInput() error

	Close() error
}
