package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/softtrail/serpentines/platform"
	"github.com/softtrail/serpentines/preset"
)

// fakePlatform is an in-memory Platform for engine tests. Unlike the
// single-window reference binding it supports any number of surfaces, so
// multi-monitor behavior is testable.
type fakePlatform struct {
	mu          sync.Mutex
	monitors    []platform.Monitor
	events      chan platform.Event
	sink        func(platform.CursorSample)
	surfaceErrs map[platform.MonitorID]error
	inputErr    error
	surfaces    int
}

func newFakePlatform(monitors ...platform.Monitor) *fakePlatform {
	return &fakePlatform{
		monitors:    monitors,
		events:      make(chan platform.Event, 8),
		surfaceErrs: map[platform.MonitorID]error{},
	}
}

func (f *fakePlatform) Monitors(ctx context.Context) ([]platform.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.Monitor, len(f.monitors))
	copy(out, f.monitors)
	return out, nil
}

func (f *fakePlatform) CreateSurface(ctx context.Context, m platform.Monitor) (platform.Surface, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.surfaceErrs[m.ID]; err != nil {
		return nil, err
	}
	f.surfaces++
	return &fakeSurface{monitor: m}, nil
}

func (f *fakePlatform) Events() <-chan platform.Event {
	return f.events
}

func (f *fakePlatform) StartInput(ctx context.Context, sink func(platform.CursorSample)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inputErr != nil {
		return f.inputErr
	}
	f.sink = sink
	return nil
}

func (f *fakePlatform) StopInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sink = nil
	return nil
}

func (f *fakePlatform) Close() error { return nil }

func (f *fakePlatform) push(s platform.CursorSample) {
	f.mu.Lock()
	sink := f.sink
	f.mu.Unlock()
	if sink != nil {
		sink(s)
	}
}

type fakeSurface struct {
	monitor platform.Monitor
}

func (s *fakeSurface) Monitor() platform.Monitor { return s.monitor }
func (s *fakeSurface) Begin()                    {}
func (s *fakeSurface) Clear()                    {}
func (s *fakeSurface) Canvas() platform.Canvas   { return fakeCanvas{} }
func (s *fakeSurface) End()                      {}
func (s *fakeSurface) Close() error              { return nil }

type fakeCanvas struct{}

func (fakeCanvas) FillCircle(x, y, radius float32, c platform.Color)             {}
func (fakeCanvas) FillRect(x, y, w, h float32, c platform.Color)                 {}
func (fakeCanvas) FillTriangle(x1, y1, x2, y2, x3, y3 float32, c platform.Color) {}
func (fakeCanvas) Line(x1, y1, x2, y2, thick float32, c platform.Color)          {}

func testMonitor(i int) platform.Monitor {
	return platform.Monitor{
		ID:     platform.MonitorID(fmt.Sprintf("fake-%d", i)),
		X:      i * 1920,
		Width:  1920,
		Height: 1080,
		DPI:    96,
	}
}

// startEngine runs the engine in a goroutine and waits for it to leave
// Starting. The cleanup stops it and surfaces the Run error.
func startEngine(t *testing.T, e *Engine) <-chan error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("engine did not shut down")
		}
	})

	waitFor(t, func() bool { return e.Status().State == StateRunning })
	return done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestEngineLifecycle(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	if e.Status().State != StateStopped {
		t.Fatal("new engine should be Stopped")
	}

	startEngine(t, e)

	if err := e.Pause(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return e.Status().State == StatePaused })

	if err := e.Resume(); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return e.Status().State == StateRunning })
}

func TestEngineStop(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	done := startEngine(t, e)

	if err := e.Stop(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cooperative stop", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if got := e.Status().State; got != StateStopped {
		t.Errorf("state after stop = %v, want Stopped", got)
	}
}

func TestEngineRejectsDoubleRun(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	startEngine(t, e)

	if err := e.Run(context.Background()); err == nil {
		t.Error("second Run() succeeded, want error")
	}
}

func TestEngineNoMonitors(t *testing.T) {
	plat := newFakePlatform()
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err == nil {
		t.Error("Run() with zero monitors succeeded, want error")
	}
}

// One monitor failing surface creation must not block the others.
func TestSurfaceFailureIsolation(t *testing.T) {
	plat := newFakePlatform(testMonitor(0), testMonitor(1), testMonitor(2))
	plat.surfaceErrs["fake-1"] = errors.New("compositor refused")

	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	startEngine(t, e)

	status := e.Status()
	if len(status.Monitors) != 2 {
		t.Errorf("active monitors = %d, want 2", len(status.Monitors))
	}
	if len(status.Warnings) == 0 {
		t.Error("surface failure produced no warning")
	}
}

func TestAllSurfacesFailAbortsStartup(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	plat.surfaceErrs["fake-0"] = errors.New("no compositor")

	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(context.Background()); err == nil {
		t.Error("Run() succeeded with zero usable surfaces, want error")
	}
}

func TestInputHookFailureIsFatal(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	plat.inputErr = errors.New("hook denied")

	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	err = e.Run(context.Background())
	var hookErr *platform.InputHookError
	if !errors.As(err, &hookErr) {
		t.Errorf("Run() error = %v, want *platform.InputHookError", err)
	}
}

func TestCursorSamplesGrowTrail(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	startEngine(t, e)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		x := 0.0
		for {
			select {
			case <-stop:
				return
			case <-time.After(time.Millisecond):
				plat.push(platform.CursorSample{
					X: x, Y: 500, Time: time.Now(), Monitor: "fake-0",
				})
				x += 5
			}
		}
	}()

	waitFor(t, func() bool { return e.Status().Particles > 0 })
}

func TestMonitorDetachAndReattach(t *testing.T) {
	m0, m1 := testMonitor(0), testMonitor(1)
	plat := newFakePlatform(m0, m1)
	e, err := New(Options{Platform: plat})
	if err != nil {
		t.Fatal(err)
	}
	startEngine(t, e)
	waitFor(t, func() bool { return len(e.Status().Monitors) == 2 })

	plat.events <- platform.Event{Kind: platform.MonitorDetached, Monitor: m1}
	waitFor(t, func() bool { return len(e.Status().Monitors) == 1 })

	plat.events <- platform.Event{Kind: platform.MonitorAttached, Monitor: m1}
	waitFor(t, func() bool { return len(e.Status().Monitors) == 2 })
}

func TestApplyPreset(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "glow.yaml"), []byte("name: Glow\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := preset.OpenLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}

	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat, Library: lib})
	if err != nil {
		t.Fatal(err)
	}
	startEngine(t, e)

	if err := e.ApplyPreset("nope"); err == nil {
		t.Error("ApplyPreset(nope) succeeded, want error")
	}
	if got := e.Status().ActivePreset; got != "default" {
		t.Errorf("active preset = %q after failed apply, want default", got)
	}

	if err := e.ApplyPreset("glow"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return e.Status().ActivePreset == "glow" })
}

func TestMaxFramesStopsRun(t *testing.T) {
	plat := newFakePlatform(testMonitor(0))
	e, err := New(Options{Platform: plat, MaxFrames: 10})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop at the frame limit")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "stopped"},
		{StateStarting, "starting"},
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{StateStopping, "stopping"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
