package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/softtrail/serpentines/preset"
)

// Pool is the bounded live-particle container for one monitor. Storage is
// an archetype world: particle slots are recycled by handle instead of
// heap-allocated per particle, which keeps per-frame cost flat. Spawn order
// is tracked in a FIFO ring for oldest-first eviction when the cap is hit,
// so the trail degrades gracefully under load instead of growing unbounded.
type Pool struct {
	world  *ecs.World
	mapper *ecs.Map3[Position, Velocity, Life]
	filter *ecs.Filter3[Position, Velocity, Life]

	// Spawn-order FIFO. Entries may reference entities already removed by
	// aging; eviction skips those. head indexes the oldest candidate.
	fifo []ecs.Entity
	head int
	live int

	jitter jitterSource

	now      float64 // simulation time, advanced only by Advance
	nextEmit float64 // absolute time of the next scheduled emission
	lastX    float64
	lastY    float64
	hasLast  bool

	scratch []ecs.Entity // reused removal buffer
}

// NewPool creates an empty pool. The seed fixes the jitter noise field, so
// two pools with the same seed replay the same trail for the same inputs.
func NewPool(seed int64) *Pool {
	world := ecs.NewWorld()
	return &Pool{
		world:  world,
		mapper: ecs.NewMap3[Position, Velocity, Life](world),
		filter: ecs.NewFilter3[Position, Velocity, Life](world),
		jitter: newJitterSource(seed),
	}
}

// Len returns the number of live particles.
func (p *Pool) Len() int { return p.live }

// Now returns the pool's simulation clock in seconds.
func (p *Pool) Now() float64 { return p.now }

// Each calls fn for every live particle with its position, normalized age
// and spawn recipe. The renderer consumes this snapshot each frame; it sees
// exactly the ages the simulation computed.
func (p *Pool) Each(fn func(x, y float64, age float64, recipe *preset.Preset)) {
	query := p.filter.Query()
	for query.Next() {
		pos, _, life := query.Get()
		age := (p.now - life.Spawn) / life.Lifetime
		fn(pos.X, pos.Y, age, life.Recipe)
	}
}

// spawn adds one particle, evicting the oldest first if the cap is full.
func (p *Pool) spawn(cap int, pos Position, vel Velocity, life Life) {
	for p.live >= cap {
		if !p.evictOldest() {
			return
		}
	}
	entity := p.mapper.NewEntity(&pos, &vel, &life)
	p.fifo = append(p.fifo, entity)
	p.live++
}

// evictOldest removes the oldest live particle. Returns false if the pool
// is empty.
func (p *Pool) evictOldest() bool {
	for p.head < len(p.fifo) {
		entity := p.fifo[p.head]
		p.head++
		if p.world.Alive(entity) {
			p.mapper.Remove(entity)
			p.live--
			p.compact()
			return true
		}
	}
	p.compact()
	return false
}

// compact reclaims consumed FIFO prefix once it dominates the slice.
func (p *Pool) compact() {
	if p.head > 64 && p.head*2 > len(p.fifo) {
		n := copy(p.fifo, p.fifo[p.head:])
		p.fifo = p.fifo[:n]
		p.head = 0
	}
}

// removeAged removes every particle whose normalized age reached 1.
func (p *Pool) removeAged() {
	p.scratch = p.scratch[:0]
	query := p.filter.Query()
	for query.Next() {
		_, _, life := query.Get()
		if p.now-life.Spawn >= life.Lifetime {
			p.scratch = append(p.scratch, query.Entity())
		}
	}
	for _, entity := range p.scratch {
		p.mapper.Remove(entity)
		p.live--
	}
}

// ResetAnchor forgets the previous frame's cursor position, so the next
// emission starts a fresh path instead of bridging a gap.
func (p *Pool) ResetAnchor() {
	p.hasLast = false
}

// Clear removes all particles and resets the cursor anchor. The simulation
// clock is kept so spawn timestamps stay monotonic.
func (p *Pool) Clear() {
	p.scratch = p.scratch[:0]
	query := p.filter.Query()
	for query.Next() {
		p.scratch = append(p.scratch, query.Entity())
	}
	for _, entity := range p.scratch {
		p.mapper.Remove(entity)
	}
	p.live = 0
	p.fifo = p.fifo[:0]
	p.head = 0
	p.hasLast = false
}
