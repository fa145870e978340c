package generator

import (
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/voxelforge/terragen/world"
)

// Random is a small deterministic generator used for all generation
// randomness. Every cell derives its own instance from the world seed, so no
// global entropy ever reaches the pipeline and identical seeds reproduce
// identical worlds.
type Random struct {
	state uint64
}

// NewRandom creates a generator from the seed passed.
func NewRandom(seed int64) *Random {
	return &Random{state: uint64(seed)}
}

// CellSeed derives the seed for a cell from the world seed and the cell's
// region coordinates.
func CellSeed(worldSeed int64, pos world.RegionPos) int64 {
	h := fnv1a.Init64
	h = fnv1a.AddUint64(h, uint64(worldSeed))
	h = fnv1a.AddUint64(h, uint64(uint32(pos[0])))
	h = fnv1a.AddUint64(h, uint64(uint32(pos[1])))
	return int64(h)
}

// ChunkSeed derives a per-chunk seed from a cell seed, used where systems
// want chunk-local randomness independent of iteration order.
func ChunkSeed(cellSeed int64, pos world.ChunkPos) int64 {
	h := fnv1a.Init64
	h = fnv1a.AddUint64(h, uint64(cellSeed))
	h = fnv1a.AddUint64(h, uint64(uint32(pos[0])))
	h = fnv1a.AddUint64(h, uint64(uint32(pos[1])))
	return int64(h)
}

// Uint64 advances the generator and returns 64 random bits (splitmix64).
func (r *Random) Uint64() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Int63 returns a non-negative random int64.
func (r *Random) Int63() int64 {
	return int64(r.Uint64() >> 1)
}

// Intn returns a random int in [0, n). n must be positive.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		panic("generator: Intn with non-positive n")
	}
	return int(r.Uint64() % uint64(n))
}

// Range returns a random int in [min, max], inclusive on both ends.
func (r *Random) Range(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + r.Intn(max-min+1)
}

// Float64 returns a random float64 in [0, 1).
func (r *Random) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Chance reports true with probability p.
func (r *Random) Chance(p float64) bool {
	return r.Float64() < p
}
