package generator

import (
	"sort"

	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

// Cell is the unit of parallel generation: the chunks of one region that
// fall inside the configured world area, together with the feature tables
// and the seeded generator the cell's systems share. A Cell is owned by a
// single worker and never shared.
type Cell struct {
	Region world.RegionPos
	Rand   *Random
	Noise  *simplexField

	seed       int64
	height     int
	waterLevel int
	buffers    map[world.ChunkPos]*chunk.Buffer
	heights    map[[2]int]int
	features   *Features
}

// simplexField bundles the independent noise fields the built-in systems
// sample. Splitting the seed per field keeps the fields uncorrelated.
type simplexField struct {
	Terrain *simplex
	Caves   *simplex
}

// NewCell creates a cell for the region passed, with air-filled buffers for
// each chunk position given. The cell's own seed is derived from the world
// seed and the region coordinates. Height <= 0 defaults to
// chunk.DefaultHeight.
func NewCell(region world.RegionPos, chunks []world.ChunkPos, worldSeed int64, height, waterLevel int) *Cell {
	if height <= 0 {
		height = chunk.DefaultHeight
	}
	seed := CellSeed(worldSeed, region)
	c := &Cell{
		Region:     region,
		Rand:       NewRandom(seed),
		seed:       seed,
		height:     height,
		waterLevel: waterLevel,
		buffers:    make(map[world.ChunkPos]*chunk.Buffer, len(chunks)),
		heights:    make(map[[2]int]int),
		features:   NewFeatures(),
	}
	// The noise fields depend on the world seed alone: every cell samples
	// the same fields, so terrain is continuous across cell borders.
	c.Noise = &simplexField{
		Terrain: newSimplex(NewRandom(worldSeed)),
		Caves:   newSimplex(NewRandom(worldSeed ^ 0x1f2e3d4c5b6a79)),
	}
	for _, pos := range chunks {
		c.buffers[pos] = chunk.New(pos, height)
	}
	return c
}

// Features returns the cell's feature entity tables.
func (c *Cell) Features() *Features { return c.features }

// Height returns the vertical extent of the cell's chunks.
func (c *Cell) Height() int { return c.height }

// WaterLevel returns the water surface height of the cell.
func (c *Cell) WaterLevel() int { return c.waterLevel }

// Seed returns the cell's derived seed. It differs per cell of the same
// world, so feature randomness never repeats across regions.
func (c *Cell) Seed() int64 { return c.seed }

// Chunks returns the cell's chunk positions in deterministic order, x before
// z.
func (c *Cell) Chunks() []world.ChunkPos {
	out := make([]world.ChunkPos, 0, len(c.buffers))
	for pos := range c.buffers {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Buffer returns the buffer of the chunk position passed, if the chunk
// belongs to the cell.
func (c *Cell) Buffer(pos world.ChunkPos) (*chunk.Buffer, bool) {
	b, ok := c.buffers[pos]
	return b, ok
}

// Block returns the block at the world coordinates passed. The second
// return value is false outside the cell.
func (c *Cell) Block(p raster.Point) (chunk.BlockState, bool) {
	b, x, z, ok := c.resolve(p)
	if !ok || p[1] < 0 || p[1] >= c.height {
		return chunk.Air, false
	}
	s, err := b.Block(x, p[1], z)
	if err != nil {
		return chunk.Air, false
	}
	return s, true
}

// Set places a block at the world coordinates passed. Points outside the
// cell are clipped silently: features near a cell edge may extend past it,
// and cross-cell writes are disallowed by design.
func (c *Cell) Set(p raster.Point, s chunk.BlockState) {
	b, x, z, ok := c.resolve(p)
	if !ok || p[1] < 0 || p[1] >= c.height {
		return
	}
	_ = b.SetBlock(x, p[1], z, s)
}

// SetIfAir places a block only where the buffer currently holds air.
func (c *Cell) SetIfAir(p raster.Point, s chunk.BlockState) {
	if cur, ok := c.Block(p); ok && cur == chunk.Air {
		c.Set(p, s)
	}
}

// SurfaceHeight returns the terrain height recorded for the column, or -1
// when the column is unknown. The terrain stage records heights as it
// builds columns; later stages use them for feature placement.
func (c *Cell) SurfaceHeight(x, z int) int {
	if h, ok := c.heights[[2]int{x, z}]; ok {
		return h
	}
	return -1
}

// SetSurfaceHeight records the terrain height of the column.
func (c *Cell) SetSurfaceHeight(x, z, h int) {
	c.heights[[2]int{x, z}] = h
}

func (c *Cell) resolve(p raster.Point) (b *chunk.Buffer, x, z int, ok bool) {
	cp := world.ChunkPos{int32(floorDiv(p[0], chunk.Width)), int32(floorDiv(p[2], chunk.Width))}
	b, ok = c.buffers[cp]
	if !ok {
		return nil, 0, 0, false
	}
	return b, mod(p[0], chunk.Width), mod(p[2], chunk.Width), true
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
