// Package engine owns the frame cadence: it pulls cursor input, steps the
// particle simulation, drives the renderer, and applies pending preset and
// topology changes between frames. A single dedicated goroutine runs the
// loop; everything else talks to it through the request mailbox and the
// cursor queue.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/softtrail/serpentines/config"
	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/preset"
	"github.com/softtrail/serpentines/renderer"
	"github.com/softtrail/serpentines/sim"
	"github.com/softtrail/serpentines/telemetry"
)

// jitterSeed is the default noise seed. A fixed default keeps a preset's
// visual identity reproducible across machines; the config can override it.
const jitterSeed = 42

type requestKind uint8

const (
	reqApplyPreset requestKind = iota
	reqPause
	reqResume
	reqStop
)

type request struct {
	kind   requestKind
	id     string
	preset *preset.Preset
}

// Options configures a new engine.
type Options struct {
	Platform platform.Platform
	Library  *preset.Library
	Config   *config.Config
	Output   *telemetry.OutputManager

	// MaxFrames stops the loop after N rendered frames. 0 means unlimited.
	MaxFrames int64
}

// Engine drives the overlay. Construct with New, run with Run, and control
// from other goroutines through the facade methods (ApplyPreset, Pause,
// Resume, Stop, Status) — those never touch the pools or renderer
// directly.
type Engine struct {
	plat platform.Platform
	lib  *preset.Library
	cfg  *config.Config
	out  *telemetry.OutputManager

	state    atomic.Int32
	queue    *cursorQueue
	requests chan request

	// Loop-goroutine state. Never accessed from facade methods.
	contexts  map[platform.MonitorID]*monitorContext
	active    *preset.Preset
	activeID  string
	trail     *renderer.Trail
	perf      *telemetry.PerfCollector
	events    <-chan platform.Event
	simTime   float64
	frame     int64
	maxFrames int64
	lastTime  time.Time
	samples   []platform.CursorSample

	// Mirror of loop state for Status(), refreshed once per frame.
	statusMu sync.Mutex
	status   Status
}

// New creates an engine in the Stopped state.
func New(opts Options) (*Engine, error) {
	if opts.Platform == nil {
		return nil, fmt.Errorf("engine: platform is required")
	}
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	windowFrames := int(cfg.Derived.StatsInterval / cfg.Derived.FrameInterval)
	e := &Engine{
		plat:      opts.Platform,
		lib:       opts.Library,
		cfg:       cfg,
		out:       opts.Output,
		queue:     newCursorQueue(cfg.Engine.QueueSize),
		requests:  make(chan request, 32),
		contexts:  make(map[platform.MonitorID]*monitorContext),
		trail:     renderer.NewTrail(),
		perf:      telemetry.NewPerfCollector(windowFrames),
		active:    preset.Default(),
		activeID:  "default",
		maxFrames: opts.MaxFrames,
	}
	if opts.Library != nil && cfg.Presets.Active != "" {
		if p, ok := opts.Library.Get(cfg.Presets.Active); ok {
			e.active = p
			e.activeID = cfg.Presets.Active
		}
	}
	return e, nil
}

// Run starts the engine and blocks until the context is canceled, Stop is
// requested, or startup fails. It must be called from the goroutine that
// owns the platform (for bindings with thread affinity, the main
// goroutine).
func (e *Engine) Run(ctx context.Context) error {
	if !e.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		return fmt.Errorf("engine: already running")
	}

	if err := e.start(ctx); err != nil {
		e.teardown()
		e.state.Store(int32(StateStopped))
		e.publishStatus()
		return err
	}

	e.state.Store(int32(StateRunning))
	slog.Info("engine running",
		"monitors", len(e.contexts),
		"preset", e.activeID,
		"target_fps", e.cfg.Screen.TargetFPS,
	)

	err := e.loop(ctx)

	e.state.Store(int32(StateStopping))
	e.publishStatus()
	e.teardown()
	e.state.Store(int32(StateStopped))
	e.publishStatus()
	return err
}

// start enumerates monitors, builds Monitor Contexts, and registers the
// input hook. A per-monitor surface failure is isolated; only zero usable
// surfaces or an input hook failure abort startup.
func (e *Engine) start(ctx context.Context) error {
	monitors, err := e.plat.Monitors(ctx)
	if err != nil {
		return fmt.Errorf("enumerating monitors: %w", err)
	}
	if len(monitors) == 0 {
		return fmt.Errorf("no monitors available")
	}

	for _, m := range monitors {
		e.attachMonitor(ctx, m)
	}
	if len(e.contexts) == 0 {
		return fmt.Errorf("no overlay surface could be created on any of %d monitors", len(monitors))
	}

	inputCtx, cancel := context.WithTimeout(ctx, e.cfg.Derived.InputTimeout)
	defer cancel()
	if err := e.plat.StartInput(inputCtx, e.queue.push); err != nil {
		return &platform.InputHookError{Err: err}
	}
	e.events = e.plat.Events()
	return nil
}

// attachMonitor creates a context for m within the configured attempt
// window. Failures are logged and isolated.
func (e *Engine) attachMonitor(ctx context.Context, m platform.Monitor) {
	surfaceCtx, cancel := context.WithTimeout(ctx, e.cfg.Derived.SurfaceTimeout)
	defer cancel()

	mc, err := newMonitorContext(surfaceCtx, e.plat, m, e.seed())
	if err != nil {
		if isUnavailable(err) {
			slog.Info("monitor vanished before surface creation", "monitor", m.ID)
		} else {
			slog.Error("overlay surface creation failed", "monitor", m.ID, "error", err)
			e.noteWarning(err.Error())
		}
		return
	}
	e.contexts[m.ID] = mc
	slog.Info("overlay attached",
		"monitor", m.ID,
		"bounds", fmt.Sprintf("%dx%d@%d,%d", m.Width, m.Height, m.X, m.Y),
		"dpi", m.DPI,
	)
}

func (e *Engine) detachMonitor(id platform.MonitorID) {
	mc, ok := e.contexts[id]
	if !ok {
		return
	}
	mc.close()
	delete(e.contexts, id)
	slog.Info("overlay detached", "monitor", id)
}

func (e *Engine) seed() int64 {
	if e.cfg.Engine.Seed != 0 {
		return e.cfg.Engine.Seed
	}
	return jitterSeed
}

// loop runs frames until stop: input, pending changes, advance, render,
// pace. Pending preset and topology changes are applied only at the frame
// boundary, never mid-frame.
func (e *Engine) loop(ctx context.Context) error {
	var lastStats time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		e.perf.StartFrame()
		frameStart := time.Now()

		var dt float64
		if !e.lastTime.IsZero() {
			dt = frameStart.Sub(e.lastTime).Seconds()
			if dt > e.cfg.Engine.MaxFrameDT {
				dt = e.cfg.Engine.MaxFrameDT
			}
		}
		e.lastTime = frameStart

		e.perf.StartPhase(telemetry.PhaseInput)
		e.samples = e.queue.drain(e.samples[:0])
		e.routeSamples()

		e.perf.StartPhase(telemetry.PhaseApply)
		stop := e.applyPending(ctx)
		if stop {
			return nil
		}

		running := State(e.state.Load()) == StateRunning
		if running {
			e.perf.StartPhase(telemetry.PhaseAdvance)
			e.advanceContexts(dt)

			e.perf.StartPhase(telemetry.PhaseRender)
			e.renderContexts()

			e.simTime += dt
			e.frame++
			if e.maxFrames > 0 && e.frame >= e.maxFrames {
				slog.Info("frame limit reached", "frames", e.frame)
				return nil
			}
		} else {
			// Paused: drop routed paths so resume doesn't replay them.
			for _, mc := range e.contexts {
				mc.path = mc.path[:0]
			}
		}

		e.publishStatus()

		if e.cfg.Derived.StatsInterval > 0 && frameStart.Sub(lastStats) >= e.cfg.Derived.StatsInterval {
			e.emitStats()
			lastStats = frameStart
		}

		e.perf.StartPhase(telemetry.PhasePresent)
		e.pace(frameStart)
		e.perf.EndFrame()
	}
}

// routeSamples distributes drained cursor samples to their monitor
// contexts. Samples for unknown (e.g. just-detached) monitors are dropped;
// nothing spawns into a destroyed context's pool.
func (e *Engine) routeSamples() {
	for _, s := range e.samples {
		mc, ok := e.contexts[s.Monitor]
		if !ok {
			for _, candidate := range e.contexts {
				if candidate.monitor.Contains(s.X, s.Y) {
					mc = candidate
					break
				}
			}
			if mc == nil {
				continue
			}
		}
		mc.path = append(mc.path, sim.CursorPoint{X: s.X, Y: s.Y})
	}
}

// applyPending consumes the request mailbox and platform topology events.
// Returns true when a stop was requested.
func (e *Engine) applyPending(ctx context.Context) bool {
	for {
		select {
		case req := <-e.requests:
			switch req.kind {
			case reqApplyPreset:
				e.active = req.preset
				e.activeID = req.id
				slog.Info("preset applied", "preset", req.id, "name", req.preset.Name)
			case reqPause:
				if e.state.CompareAndSwap(int32(StateRunning), int32(StatePaused)) {
					e.clearSurfaces()
					slog.Info("engine paused")
				}
			case reqResume:
				if e.state.CompareAndSwap(int32(StatePaused), int32(StateRunning)) {
					// Forget stale cursor anchors so resuming doesn't emit
					// a streak from the pre-pause position.
					for _, mc := range e.contexts {
						mc.pool.ResetAnchor()
					}
					slog.Info("engine resumed")
				}
			case reqStop:
				return true
			}
		case ev, ok := <-e.events:
			if !ok {
				e.events = nil
				continue
			}
			switch ev.Kind {
			case platform.MonitorAttached:
				if _, exists := e.contexts[ev.Monitor.ID]; !exists {
					e.attachMonitor(ctx, ev.Monitor)
				}
			case platform.MonitorDetached:
				e.detachMonitor(ev.Monitor.ID)
			}
		default:
			return false
		}
	}
}

// advanceContexts steps every pool. A panic in one context's frame work is
// logged and skipped; a single bad frame never takes down the engine.
func (e *Engine) advanceContexts(dt float64) {
	for id, mc := range e.contexts {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("skipping frame for monitor", "monitor", id, "panic", r)
				}
			}()
			path := mc.path
			if !e.active.EnabledOn(string(id)) {
				path = nil // disabled monitors still age out their remnants
			}
			sim.Advance(mc.pool, e.active, dt, path)
		}()
		mc.path = mc.path[:0]
	}
}

func (e *Engine) renderContexts() {
	for id, mc := range e.contexts {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("skipping render for monitor", "monitor", id, "panic", r)
				}
			}()
			mc.surface.Begin()
			mc.surface.Clear()
			e.trail.Render(mc.surface.Canvas(), mc.pool, mc.viewport)
			if e.cfg.Debug.HUD {
				e.drawHUD(mc)
			}
			mc.surface.End()
		}()
	}
}

func (e *Engine) drawHUD(mc *monitorContext) {
	hud, ok := mc.surface.(platform.HUD)
	if !ok {
		return
	}
	stats := e.perf.Stats()
	hud.DrawHUD("serpentines", []string{
		fmt.Sprintf("state: %s", State(e.state.Load())),
		fmt.Sprintf("preset: %s", e.activeID),
		fmt.Sprintf("particles: %d", mc.pool.Len()),
		fmt.Sprintf("fps: %.0f  p99: %s", stats.FPS, stats.P99Frame.Round(time.Microsecond)),
		fmt.Sprintf("dropped samples: %d", e.queue.droppedCount()),
	})
}

func (e *Engine) clearSurfaces() {
	for _, mc := range e.contexts {
		mc.surface.Begin()
		mc.surface.Clear()
		mc.surface.End()
	}
}

// pace sleeps out the remainder of the frame interval.
func (e *Engine) pace(frameStart time.Time) {
	remaining := e.cfg.Derived.FrameInterval - time.Since(frameStart)
	if remaining > 0 {
		time.Sleep(remaining)
	}
}

func (e *Engine) emitStats() {
	stats := e.perf.Stats()
	particles := 0
	for _, mc := range e.contexts {
		particles += mc.pool.Len()
	}
	stats.LogStats()
	if err := e.out.WritePerf(stats, e.frame); err != nil {
		slog.Warn("writing perf csv", "error", err)
	}
	row := telemetry.TrailStats{
		Frame:          e.frame,
		SimTimeSec:     e.simTime,
		ActivePreset:   e.activeID,
		Monitors:       len(e.contexts),
		Particles:      particles,
		SamplesDrained: len(e.samples),
		SamplesDropped: e.queue.droppedCount(),
	}
	if err := e.out.WriteTrail(row); err != nil {
		slog.Warn("writing telemetry csv", "error", err)
	}
}

// teardown drains and destroys all Monitor Contexts. Nothing is torn down
// mid-frame; the loop has already exited when this runs.
func (e *Engine) teardown() {
	if err := e.plat.StopInput(); err != nil {
		slog.Warn("stopping input hook", "error", err)
	}
	for id := range e.contexts {
		e.detachMonitor(id)
	}
}
