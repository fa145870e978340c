package generator

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

// Decoration finishes a cell: ore veins in the stone body, trees on grass
// and tall grass scatter. Trees are spawned as decoration-stage features;
// ores and grass write the buffers directly because they replace or test
// existing blocks rather than stamping a shape unconditionally.
type Decoration struct{}

func (Decoration) Name() string { return "decoration" }
func (Decoration) Stage() Stage { return StageDecoration }

// oreVein describes one ore type: how many veins to attempt per chunk, the
// vein size and the maximum height the ore occurs at.
type oreVein struct {
	block    uint8
	attempts int
	size     int
	maxY     int
}

var oreVeins = []oreVein{
	{BlockCoalOre, 6, 9, 96},
	{BlockIronOre, 4, 6, 48},
	{BlockGoldOre, 1, 5, 24},
	{BlockDiamondOre, 1, 4, 12},
}

func (Decoration) Run(c *Cell) error {
	for _, pos := range c.Chunks() {
		r := NewRandom(ChunkSeed(c.Seed(), pos) ^ 0x6f3a)
		placeOres(c, pos, r)
		placeTrees(c, pos, r)
		placeGrass(c, pos, r)
	}
	return nil
}

// placeOres grows ore veins as ellipsoids along a random axis, replacing
// stone only.
func placeOres(c *Cell, pos world.ChunkPos, r *Random) {
	for _, vein := range oreVeins {
		maxY := vein.maxY
		if maxY >= c.Height() {
			maxY = c.Height() - 1
		}
		for i := 0; i < vein.attempts; i++ {
			origin := mgl64.Vec3{
				float64(int(pos[0])*chunk.Width + r.Intn(chunk.Width)),
				float64(r.Range(2, maxY)),
				float64(int(pos[1])*chunk.Width + r.Intn(chunk.Width)),
			}
			angle := r.Float64() * 2 * math.Pi
			axis := mgl64.Vec3{math.Cos(angle), (r.Float64() - 0.5) / 2, math.Sin(angle)}.
				Mul(float64(vein.size) / 2)

			start, end := origin.Sub(axis), origin.Add(axis)
			for j := 0; j <= vein.size; j++ {
				t := float64(j) / float64(vein.size)
				centre := start.Add(end.Sub(start).Mul(t))
				// Veins are thickest in the middle.
				radius := (math.Sin(t*math.Pi) + 1) * float64(vein.size) / 16

				growBlob(c, centre, radius, vein.block)
			}
		}
	}
}

// growBlob replaces the stone within radius of centre with the ore block.
func growBlob(c *Cell, centre mgl64.Vec3, radius float64, block uint8) {
	ri := int(math.Ceil(radius))
	for dx := -ri; dx <= ri; dx++ {
		for dy := -ri; dy <= ri; dy++ {
			for dz := -ri; dz <= ri; dz++ {
				p := raster.Point{
					int(math.Floor(centre.X())) + dx,
					int(math.Floor(centre.Y())) + dy,
					int(math.Floor(centre.Z())) + dz,
				}
				d := mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}.Sub(centre)
				if d.Len() > radius {
					continue
				}
				if s, ok := c.Block(p); ok && s.ID == BlockStone {
					c.Set(p, state(block))
				}
			}
		}
	}
}

// placeTrees spawns trunk and canopy features on grass columns. The canopy
// is spawned before the trunk so the trunk column wins where they overlap.
func placeTrees(c *Cell, pos world.ChunkPos, r *Random) {
	attempts := r.Range(0, 3)
	for i := 0; i < attempts; i++ {
		wx := int(pos[0])*chunk.Width + r.Intn(chunk.Width)
		wz := int(pos[1])*chunk.Width + r.Intn(chunk.Width)
		h := c.SurfaceHeight(wx, wz)
		if h <= c.WaterLevel() || h < 0 {
			continue
		}
		if s, ok := c.Block(raster.Point{wx, h, wz}); !ok || s.ID != BlockGrass {
			continue
		}
		trunk := r.Range(4, 6)
		if h+trunk+3 >= c.Height() {
			continue
		}
		base := raster.Point{wx, h + 1, wz}

		c.Features().Spawn(Feature{
			Position: base,
			Shape: VolumeShape{Volume: raster.Sphere{
				Center: raster.Point{0, trunk, 0},
				Radius: 2,
			}},
			Palette: Palette{state(BlockLeaves)},
			Stage:   StageDecoration,
		})
		c.Features().Spawn(Feature{
			Position: base,
			Shape:    LineShape{B: raster.Point{0, trunk - 1, 0}},
			Palette:  Palette{state(BlockLog)},
			Stage:    StageDecoration,
		})
	}
}

// placeGrass scatters tall grass on free grass columns.
func placeGrass(c *Cell, pos world.ChunkPos, r *Random) {
	attempts := r.Range(4, 12)
	for i := 0; i < attempts; i++ {
		wx := int(pos[0])*chunk.Width + r.Intn(chunk.Width)
		wz := int(pos[1])*chunk.Width + r.Intn(chunk.Width)
		h := c.SurfaceHeight(wx, wz)
		if h <= c.WaterLevel() || h < 0 || h+1 >= c.Height() {
			continue
		}
		if s, ok := c.Block(raster.Point{wx, h, wz}); !ok || s.ID != BlockGrass {
			continue
		}
		c.SetIfAir(raster.Point{wx, h + 1, wz}, chunk.BlockState{ID: BlockTallGrass, Data: 1})
	}
}
