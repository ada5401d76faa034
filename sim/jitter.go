package sim

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise channels keep the three spawn parameters decorrelated.
const (
	jitterChannelSpeed = 0.0
	jitterChannelAngle = 37.0
	jitterChannelSpin  = 74.0
)

// jitterTimeScale spreads consecutive spawn times across the noise field so
// back-to-back particles don't share a jitter value.
const jitterTimeScale = 113.0

// jitterSource derives per-particle spawn randomness from seeded simplex
// noise keyed on spawn time. Unlike a stepped RNG, the value for a given
// spawn instant does not depend on how many frames it took to get there.
type jitterSource struct {
	noise opensimplex.Noise
}

func newJitterSource(seed int64) jitterSource {
	return jitterSource{noise: opensimplex.NewNormalized(seed)}
}

// speedFactor returns a multiplier in [1-jitter, 1+jitter].
func (j jitterSource) speedFactor(spawnTime, jitter float64) float64 {
	n := j.noise.Eval2(spawnTime*jitterTimeScale, jitterChannelSpeed)
	return 1 + jitter*(2*n-1)
}

// angleOffset returns an offset in [-spread/2, spread/2] radians.
func (j jitterSource) angleOffset(spawnTime, spread float64) float64 {
	n := j.noise.Eval2(spawnTime*jitterTimeScale, jitterChannelAngle)
	return spread * (n - 0.5)
}

// freeAngle returns a full-circle angle for particles spawned without a
// motion direction (stationary cursor).
func (j jitterSource) freeAngle(spawnTime float64) float64 {
	n := j.noise.Eval2(spawnTime*jitterTimeScale, jitterChannelSpin)
	return 2 * math.Pi * n
}
