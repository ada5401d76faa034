package sim

import (
	"math"

	"github.com/softtrail/serpentines/preset"
)

// Advance steps the pool by dt seconds under the active preset, emitting
// along the cursor path sampled since the last frame.
//
// Emission happens on a fixed wall-clock cadence (1/spawn_rate apart)
// carried across frames, and integration is closed-form in dt, so splitting
// a span of time into any sequence of frames produces the same particles on
// the same trajectories. A dt of zero is a no-op; an empty path performs
// only aging and removal.
func Advance(p *Pool, active *preset.Preset, dt float64, path []CursorPoint) {
	if dt <= 0 {
		return
	}
	end := p.now + dt

	// A lowered cap applies immediately, oldest first.
	for p.live > active.MaxParticles {
		if !p.evictOldest() {
			break
		}
	}

	if len(path) > 0 {
		p.emit(active, dt, end, path)
		p.lastX = path[len(path)-1].X
		p.lastY = path[len(path)-1].Y
		p.hasLast = true
	} else {
		// Idle cursor: skip the emission window entirely so resuming
		// movement doesn't burst-fill the backlog.
		p.nextEmit = end
	}

	// Integrate particles that existed before this frame. Ones spawned
	// above were already advanced from their birth instant to frame end.
	query := p.filter.Query()
	for query.Next() {
		pos, vel, life := query.Get()
		if life.Spawn >= p.now {
			continue
		}
		integrate(pos, vel, life.Recipe, dt)
	}

	p.now = end
	p.removeAged()
}

// emit spawns particles along the frame's cursor polyline at the preset's
// cadence, each at its interpolated sub-frame position and timestamp. The
// polyline is anchored at the previous frame's last sample so a fast cursor
// leaves no gaps between frames.
func (p *Pool) emit(active *preset.Preset, dt, end float64, path []CursorPoint) {
	rate := active.SpawnRate
	if rate <= 0 {
		p.nextEmit = end
		return
	}

	line := path
	if p.hasLast {
		line = make([]CursorPoint, 0, len(path)+1)
		line = append(line, CursorPoint{p.lastX, p.lastY})
		line = append(line, path...)
	}

	if p.nextEmit < p.now {
		p.nextEmit = p.now
	}
	interval := 1 / rate
	for p.nextEmit < end {
		t := p.nextEmit
		frac := (t - p.now) / dt
		x, y, dirX, dirY, moving := pointAlong(line, frac)

		speed := active.InitialSpeed * p.jitter.speedFactor(t, active.SpeedJitter)
		var angle float64
		if moving {
			angle = math.Atan2(dirY, dirX) + p.jitter.angleOffset(t, active.DirectionJitter)
		} else {
			angle = p.jitter.freeAngle(t)
		}

		pos := Position{X: x, Y: y}
		vel := Velocity{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)}
		life := Life{Spawn: t, Lifetime: active.Lifetime, Recipe: active}

		// Advance the newborn from its birth instant to frame end.
		integrate(&pos, &vel, active, end-t)

		p.spawn(active.MaxParticles, pos, vel, life)
		p.nextEmit += interval
	}
}

// pointAlong maps a frame-time fraction onto the cursor polyline by arc
// length, returning the position, the local motion direction and whether
// the cursor actually moved.
func pointAlong(line []CursorPoint, frac float64) (x, y, dirX, dirY float64, moving bool) {
	if len(line) == 1 {
		return line[0].X, line[0].Y, 0, 0, false
	}

	total := 0.0
	for i := 1; i < len(line); i++ {
		total += math.Hypot(line[i].X-line[i-1].X, line[i].Y-line[i-1].Y)
	}
	if total == 0 {
		return line[0].X, line[0].Y, 0, 0, false
	}

	target := frac * total
	walked := 0.0
	for i := 1; i < len(line); i++ {
		dx := line[i].X - line[i-1].X
		dy := line[i].Y - line[i-1].Y
		seg := math.Hypot(dx, dy)
		if seg == 0 {
			continue
		}
		if walked+seg >= target {
			t := (target - walked) / seg
			return line[i-1].X + dx*t, line[i-1].Y + dy*t, dx / seg, dy / seg, true
		}
		walked += seg
	}
	// Rounding overshot the polyline: land on the endpoint, taking the
	// direction from the last segment of nonzero length.
	end := line[len(line)-1]
	for i := len(line) - 1; i >= 1; i-- {
		dx := line[i].X - line[i-1].X
		dy := line[i].Y - line[i-1].Y
		seg := math.Hypot(dx, dy)
		if seg == 0 {
			continue
		}
		return end.X, end.Y, dx / seg, dy / seg, true
	}
	return end.X, end.Y, 0, 0, false
}

// integrate advances one particle by dt using the closed-form solution of
// linear drag with constant gravity:
//
//	v(t) = v∞ + (v0 − v∞)·e^(−drag·t)        v∞ = gravity/drag
//	x(t) = x0 + v∞·t + (v0 − v∞)·(1 − e^(−drag·t))/drag
//
// Being exact in t (not a per-step approximation) is what makes particle
// trajectories independent of frame pacing.
func integrate(pos *Position, vel *Velocity, recipe *preset.Preset, dt float64) {
	drag := recipe.Drag
	g := recipe.Gravity

	if drag <= 0 {
		pos.X += vel.X * dt
		pos.Y += vel.Y*dt + 0.5*g*dt*dt
		vel.Y += g * dt
		return
	}

	e := math.Exp(-drag * dt)
	k := (1 - e) / drag
	termY := g / drag

	pos.X += vel.X * k
	pos.Y += termY*dt + (vel.Y-termY)*k
	vel.X *= e
	vel.Y = termY + (vel.Y-termY)*e
}
