package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/renderer"
	"github.com/softtrail/serpentines/sim"
)

// monitorContext bundles the per-monitor overlay state: the monitor's
// bounds, its own particle pool, its own surface, and the cursor path
// collected for the current frame. Contexts are independent; one failing
// or detaching never touches the others.
type monitorContext struct {
	monitor  platform.Monitor
	surface  platform.Surface
	pool     *sim.Pool
	viewport renderer.Viewport

	// cursor path for the frame in progress, reset after every advance
	path []sim.CursorPoint
}

// newMonitorContext creates the surface and pool for one monitor. The
// context deadline bounds the surface creation attempt.
func newMonitorContext(ctx context.Context, plat platform.Platform, m platform.Monitor, seed int64) (*monitorContext, error) {
	surface, err := plat.CreateSurface(ctx, m)
	if err != nil {
		return nil, &platform.SurfaceError{Monitor: m.ID, Err: err}
	}
	return &monitorContext{
		monitor:  m,
		surface:  surface,
		pool:     sim.NewPool(seed),
		viewport: renderer.NewViewport(m),
	}, nil
}

func (mc *monitorContext) close() {
	if err := mc.surface.Close(); err != nil {
		slog.Warn("closing overlay surface", "monitor", mc.monitor.ID, "error", err)
	}
}

// isUnavailable reports whether an error means the monitor vanished
// between enumeration and use. Callers treat it as a detach, not a crash.
func isUnavailable(err error) bool {
	return errors.Is(err, platform.ErrUnavailable)
}
