package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one engine frame.
const (
	PhaseInput   = "input"
	PhaseApply   = "apply"
	PhaseAdvance = "advance"
	PhaseRender  = "render"
	PhasePresent = "present"
)

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameDuration time.Duration
	Phases        map[string]time.Duration
}

// PerfCollector tracks frame timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to aggregate over (e.g. 144 for 1 second at
// 144 fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 120
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		FrameDuration: now.Sub(p.frameStart),
		Phases:        p.currentPhases,
	}

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated frame statistics over the window.
type PerfStats struct {
	AvgFrame time.Duration
	MinFrame time.Duration
	MaxFrame time.Duration
	P50Frame time.Duration
	P99Frame time.Duration

	// Phase breakdown (average durations and share of frame time)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	FPS float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total time.Duration
	var minFrame, maxFrame time.Duration
	phaseSum := make(map[string]time.Duration)
	durations := make([]float64, 0, p.sampleCount)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameDuration
		durations = append(durations, float64(s.FrameDuration))

		if i == 0 || s.FrameDuration < minFrame {
			minFrame = s.FrameDuration
		}
		if s.FrameDuration > maxFrame {
			maxFrame = s.FrameDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var fps float64
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgFrame: avg,
		MinFrame: minFrame,
		MaxFrame: maxFrame,
		P50Frame: time.Duration(Percentile(durations, 0.5)),
		P99Frame: time.Duration(Percentile(durations, 0.99)),
		PhaseAvg: phaseAvg,
		PhasePct: phasePct,
		FPS:      fps,
	}
}

// LogStats emits the window statistics via slog.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrame.Microseconds(),
		"min_frame_us", s.MinFrame.Microseconds(),
		"max_frame_us", s.MaxFrame.Microseconds(),
		"p50_frame_us", s.P50Frame.Microseconds(),
		"p99_frame_us", s.P99Frame.Microseconds(),
		"fps", int(s.FPS),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, "pct_"+phase, pct)
	}
	slog.Info("frame stats", attrs...)
}

// ToCSV converts the stats to a flat CSV row.
func (s PerfStats) ToCSV(frame int64) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:      frame,
		AvgFrameUs: s.AvgFrame.Microseconds(),
		MinFrameUs: s.MinFrame.Microseconds(),
		MaxFrameUs: s.MaxFrame.Microseconds(),
		P50FrameUs: s.P50Frame.Microseconds(),
		P99FrameUs: s.P99Frame.Microseconds(),
		FPS:        s.FPS,
		InputUs:    s.PhaseAvg[PhaseInput].Microseconds(),
		ApplyUs:    s.PhaseAvg[PhaseApply].Microseconds(),
		AdvanceUs:  s.PhaseAvg[PhaseAdvance].Microseconds(),
		RenderUs:   s.PhaseAvg[PhaseRender].Microseconds(),
		PresentUs:  s.PhaseAvg[PhasePresent].Microseconds(),
	}
}

// PerfStatsCSV is the flattened CSV schema for perf.csv.
type PerfStatsCSV struct {
	Frame      int64   `csv:"frame"`
	AvgFrameUs int64   `csv:"avg_frame_us"`
	MinFrameUs int64   `csv:"min_frame_us"`
	MaxFrameUs int64   `csv:"max_frame_us"`
	P50FrameUs int64   `csv:"p50_frame_us"`
	P99FrameUs int64   `csv:"p99_frame_us"`
	FPS        float64 `csv:"fps"`
	InputUs    int64   `csv:"input_us"`
	ApplyUs    int64   `csv:"apply_us"`
	AdvanceUs  int64   `csv:"advance_us"`
	RenderUs   int64   `csv:"render_us"`
	PresentUs  int64   `csv:"present_us"`
}
