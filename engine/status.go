package engine

import (
	"fmt"

	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/preset"
)

// Status is the snapshot the control panel and tray consume. They get this
// and the facade methods below, nothing deeper: collaborators never touch
// the particle pools or the renderer.
type Status struct {
	State          State
	ActivePreset   string
	Monitors       []platform.MonitorID
	Particles      int
	Warnings       []string
	DroppedSamples uint64
}

// publishStatus refreshes the status mirror. Called from the loop
// goroutine once per frame and around state transitions.
func (e *Engine) publishStatus() {
	monitors := make([]platform.MonitorID, 0, len(e.contexts))
	particles := 0
	for id, mc := range e.contexts {
		monitors = append(monitors, id)
		particles += mc.pool.Len()
	}

	e.statusMu.Lock()
	e.status.State = State(e.state.Load())
	e.status.ActivePreset = e.activeID
	e.status.Monitors = monitors
	e.status.Particles = particles
	e.status.DroppedSamples = e.queue.droppedCount()
	e.statusMu.Unlock()
}

// noteWarning appends a user-visible warning to the status. Warnings
// accumulate and are exposed but never block operation.
func (e *Engine) noteWarning(msg string) {
	e.statusMu.Lock()
	e.status.Warnings = append(e.status.Warnings, msg)
	e.statusMu.Unlock()
}

// Status returns the most recent engine snapshot. Safe from any goroutine.
func (e *Engine) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	s := e.status
	s.Monitors = append([]platform.MonitorID(nil), e.status.Monitors...)
	s.Warnings = append([]string(nil), e.status.Warnings...)
	return s
}

// Presets lists the library contents. Safe from any goroutine.
func (e *Engine) Presets() []preset.Entry {
	if e.lib == nil {
		return []preset.Entry{{ID: "default", Name: "Default"}}
	}
	return e.lib.List()
}

// ApplyPreset requests a switch to the library preset with the given ID.
// The swap is applied atomically at the next frame boundary; the
// simulation never observes a partially-updated preset, and particles
// already in flight finish under their spawn recipe.
func (e *Engine) ApplyPreset(id string) error {
	if e.lib == nil {
		return fmt.Errorf("engine: no preset library")
	}
	p, ok := e.lib.Get(id)
	if !ok {
		return fmt.Errorf("engine: unknown preset %q", id)
	}
	return e.post(request{kind: reqApplyPreset, id: id, preset: p})
}

// Pause halts emission, advance and render but keeps Monitor Contexts
// alive for instant resume.
func (e *Engine) Pause() error {
	return e.post(request{kind: reqPause})
}

// Resume returns a paused engine to Running.
func (e *Engine) Resume() error {
	return e.post(request{kind: reqResume})
}

// Stop asks the loop to shut down cooperatively. Run returns after all
// Monitor Contexts are drained and destroyed.
func (e *Engine) Stop() error {
	return e.post(request{kind: reqStop})
}

func (e *Engine) post(req request) error {
	select {
	case e.requests <- req:
		return nil
	default:
		return fmt.Errorf("engine: request mailbox full")
	}
}
