package platform

import (
	"context"
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// topologyPollFrames is how often the binding re-enumerates monitors to
// synthesize attach/detach events. Polling happens on the render thread
// because raylib calls have window-thread affinity.
const topologyPollFrames = 60

// Raylib is the reference overlay binding. It drives a single raylib
// window configured transparent, undecorated, topmost, unfocused and
// mouse-passthrough, which gives a click-through overlay without any
// OS-specific code here.
//
// raylib owns exactly one window, so this binding serves one surface; a
// second CreateSurface fails with a SurfaceError that the engine isolates.
// Multi-surface setups need a multi-window binding behind the same
// interface.
type Raylib struct {
	title   string
	events  chan Event
	sink    func(CursorSample)
	surface *raylibSurface
	known   []Monitor
	inited  bool
}

// NewRaylib creates the binding. The window is created lazily on the first
// Monitors or CreateSurface call.
func NewRaylib(title string) *Raylib {
	return &Raylib{
		title:  title,
		events: make(chan Event, 8),
	}
}

// ensureInit creates the hidden 1x1 window raylib needs before any monitor
// query works. CreateSurface later resizes it onto the target monitor.
func (r *Raylib) ensureInit() error {
	if r.inited {
		return nil
	}
	rl.SetConfigFlags(rl.FlagWindowTransparent |
		rl.FlagWindowUndecorated |
		rl.FlagWindowTopmost |
		rl.FlagWindowUnfocused |
		rl.FlagWindowMousePassthrough)
	rl.InitWindow(1, 1, r.title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("raylib window initialization failed")
	}
	r.inited = true
	return nil
}

// Monitors enumerates the current display topology.
func (r *Raylib) Monitors(ctx context.Context) ([]Monitor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ensureInit(); err != nil {
		return nil, err
	}
	monitors := enumerate()
	r.known = monitors
	return monitors, nil
}

func enumerate() []Monitor {
	count := rl.GetMonitorCount()
	monitors := make([]Monitor, 0, count)
	scale := rl.GetWindowScaleDPI()
	for i := 0; i < count; i++ {
		pos := rl.GetMonitorPosition(i)
		monitors = append(monitors, Monitor{
			ID:     MonitorID(fmt.Sprintf("monitor-%d", i)),
			X:      int(pos.X),
			Y:      int(pos.Y),
			Width:  rl.GetMonitorWidth(i),
			Height: rl.GetMonitorHeight(i),
			DPI:    float64(scale.X) * 96,
		})
	}
	return monitors
}

// CreateSurface binds the window to the given monitor.
func (r *Raylib) CreateSurface(ctx context.Context, m Monitor) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.surface != nil {
		return nil, fmt.Errorf("raylib binding supports a single overlay surface")
	}
	if err := r.ensureInit(); err != nil {
		return nil, err
	}

	current := enumerate()
	found := false
	for _, known := range current {
		if known.ID == m.ID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrUnavailable
	}

	rl.SetWindowSize(m.Width, m.Height)
	rl.SetWindowPosition(m.X, m.Y)

	r.surface = &raylibSurface{plat: r, monitor: m}
	return r.surface, nil
}

// Events delivers monitor attach/detach notifications.
func (r *Raylib) Events() <-chan Event {
	return r.events
}

// StartInput registers the cursor sink. raylib input is poll-based: the
// surface samples the mouse once per frame inside Begin, which is exactly
// the latest-value push the engine expects.
func (r *Raylib) StartInput(ctx context.Context, sink func(CursorSample)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.inited {
		return fmt.Errorf("input requested before window initialization")
	}
	r.sink = sink
	return nil
}

// StopInput unregisters the cursor sink.
func (r *Raylib) StopInput() error {
	r.sink = nil
	return nil
}

// Close destroys the window and the event channel.
func (r *Raylib) Close() error {
	if r.surface != nil {
		r.surface.closed = true
		r.surface = nil
	}
	if r.inited {
		rl.CloseWindow()
		r.inited = false
	}
	close(r.events)
	return nil
}

// pollTopology diffs the monitor list against the last enumeration and
// emits attach/detach events. Events are dropped if the engine is a full
// channel behind; the next poll re-detects the same difference.
func (r *Raylib) pollTopology() {
	current := enumerate()

	for _, old := range r.known {
		still := false
		for _, m := range current {
			if m.ID == old.ID {
				still = true
				break
			}
		}
		if !still {
			select {
			case r.events <- Event{Kind: MonitorDetached, Monitor: old}:
			default:
			}
		}
	}
	for _, m := range current {
		fresh := true
		for _, old := range r.known {
			if old.ID == m.ID {
				fresh = false
				break
			}
		}
		if fresh {
			select {
			case r.events <- Event{Kind: MonitorAttached, Monitor: m}:
			default:
			}
		}
	}
	r.known = current
}

// raylibSurface is the one overlay window as a Surface.
type raylibSurface struct {
	plat    *Raylib
	monitor Monitor
	frames  int
	closed  bool
}

func (s *raylibSurface) Monitor() Monitor { return s.monitor }

func (s *raylibSurface) Begin() {
	rl.BeginDrawing()

	// Window-local mouse position is monitor-local because the window
	// covers the monitor; offset into virtual-desktop coordinates.
	if s.plat.sink != nil {
		pos := rl.GetMousePosition()
		s.plat.sink(CursorSample{
			X:       float64(pos.X) + float64(s.monitor.X),
			Y:       float64(pos.Y) + float64(s.monitor.Y),
			Time:    time.Now(),
			Monitor: s.monitor.ID,
		})
	}

	s.frames++
	if s.frames%topologyPollFrames == 0 {
		s.plat.pollTopology()
	}
}

func (s *raylibSurface) Clear() {
	rl.ClearBackground(rl.Blank)
}

func (s *raylibSurface) Canvas() Canvas { return raylibCanvas{} }

func (s *raylibSurface) End() {
	rl.EndDrawing()
}

func (s *raylibSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.plat.surface = nil
	return nil
}

// DrawHUD renders the debug panel with raygui widgets.
func (s *raylibSurface) DrawHUD(title string, lines []string) {
	height := float32(28 + len(lines)*20 + 8)
	gui.Panel(rl.Rectangle{X: 12, Y: 12, Width: 240, Height: height}, title)
	for i, line := range lines {
		gui.Label(rl.Rectangle{X: 20, Y: float32(40 + i*20), Width: 224, Height: 18}, line)
	}
}

// raylibCanvas issues raylib draw calls. Valid only between Begin and End.
type raylibCanvas struct{}

func (raylibCanvas) FillCircle(x, y, radius float32, c Color) {
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, radius, toRaylib(c))
}

func (raylibCanvas) FillRect(x, y, w, h float32, c Color) {
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, toRaylib(c))
}

func (raylibCanvas) FillTriangle(x1, y1, x2, y2, x3, y3 float32, c Color) {
	rl.DrawTriangle(
		rl.Vector2{X: x1, Y: y1},
		rl.Vector2{X: x2, Y: y2},
		rl.Vector2{X: x3, Y: y3},
		toRaylib(c),
	)
}

func (raylibCanvas) Line(x1, y1, x2, y2, thick float32, c Color) {
	rl.DrawLineEx(rl.Vector2{X: x1, Y: y1}, rl.Vector2{X: x2, Y: y2}, thick, toRaylib(c))
}

func toRaylib(c Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
