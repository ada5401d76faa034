package platform

import (
	"context"
	"math"
	"sync"
	"time"
)

// Headless is a windowless Platform for benchmarks and soak runs. It
// exposes one virtual 1920x1080 monitor, discards all drawing, and drives
// the cursor sink from a generator goroutine tracing a Lissajous figure so
// the simulation sees realistic continuous motion.
type Headless struct {
	monitor Monitor
	events  chan Event

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHeadless creates the virtual platform.
func NewHeadless() *Headless {
	return &Headless{
		monitor: Monitor{
			ID:     "virtual-0",
			Width:  1920,
			Height: 1080,
			DPI:    96,
		},
		events: make(chan Event, 8),
	}
}

func (h *Headless) Monitors(ctx context.Context) ([]Monitor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []Monitor{h.monitor}, nil
}

func (h *Headless) CreateSurface(ctx context.Context, m Monitor) (Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ID != h.monitor.ID {
		return nil, ErrUnavailable
	}
	return &headlessSurface{monitor: m}, nil
}

func (h *Headless) Events() <-chan Event {
	return h.events
}

// StartInput runs the cursor generator until StopInput or Close.
func (h *Headless) StartInput(ctx context.Context, sink func(CursorSample)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return nil
	}

	genCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})

	go h.generate(genCtx, sink)
	return nil
}

func (h *Headless) StopInput() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	h.cancel = nil
	h.done = nil
	return nil
}

func (h *Headless) Close() error {
	h.StopInput()
	close(h.events)
	return nil
}

// generate emits cursor samples at 240 Hz sweeping the virtual monitor.
func (h *Headless) generate(ctx context.Context, sink func(CursorSample)) {
	defer close(h.done)

	ticker := time.NewTicker(time.Second / 240)
	defer ticker.Stop()

	cx := float64(h.monitor.Width) / 2
	cy := float64(h.monitor.Height) / 2
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			sink(CursorSample{
				X:       cx + cx*0.8*math.Sin(t*1.3),
				Y:       cy + cy*0.8*math.Sin(t*2.1+math.Pi/3),
				Time:    now,
				Monitor: h.monitor.ID,
			})
		}
	}
}

type headlessSurface struct {
	monitor Monitor
}

func (s *headlessSurface) Monitor() Monitor { return s.monitor }
func (s *headlessSurface) Begin()           {}
func (s *headlessSurface) Clear()           {}
func (s *headlessSurface) Canvas() Canvas   { return headlessCanvas{} }
func (s *headlessSurface) End()             {}
func (s *headlessSurface) Close() error     { return nil }

type headlessCanvas struct{}

func (headlessCanvas) FillCircle(x, y, radius float32, c Color)             {}
func (headlessCanvas) FillRect(x, y, w, h float32, c Color)                 {}
func (headlessCanvas) FillTriangle(x1, y1, x2, y2, x3, y3 float32, c Color) {}
func (headlessCanvas) Line(x1, y1, x2, y2, thick float32, c Color)          {}
