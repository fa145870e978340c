package generator

import (
	"github.com/voxelforge/terragen/world/chunk"
)

// Terrain builds the base heightmap of a cell: bedrock floor, stone body,
// soil cover and water up to the cell's water level. It records the surface
// height of every column for the later stages.
type Terrain struct{}

func (Terrain) Name() string { return "terrain" }
func (Terrain) Stage() Stage { return StageTerrain }

func (Terrain) Run(c *Cell) error {
	base := float64(c.WaterLevel())
	// Keep a couple of layers of headroom for decoration on shallow worlds.
	amplitude := float64(c.Height()-c.WaterLevel()) / 3
	if amplitude > 24 {
		amplitude = 24
	}

	for _, pos := range c.Chunks() {
		b, _ := c.Buffer(pos)
		for x := 0; x < chunk.Width; x++ {
			for z := 0; z < chunk.Width; z++ {
				wx, wz := int(pos[0])*chunk.Width+x, int(pos[1])*chunk.Width+z

				n := c.Noise.Terrain.octave2D(float64(wx)/96, float64(wz)/96, 4, 0.5)
				h := int(base + n*amplitude)
				if h < 2 {
					h = 2
				}
				if h > c.Height()-4 {
					h = c.Height() - 4
				}

				for y := 0; y <= h; y++ {
					var s chunk.BlockState
					switch {
					case y == 0:
						s = state(BlockBedrock)
					case y < h-3:
						s = state(BlockStone)
					case y < h:
						s = state(BlockDirt)
					case h <= c.WaterLevel():
						s = state(BlockSand)
					default:
						s = state(BlockGrass)
					}
					if err := b.SetBlock(x, y, z, s); err != nil {
						return err
					}
				}
				for y := h + 1; y <= c.WaterLevel() && y < c.Height(); y++ {
					if err := b.SetBlock(x, y, z, state(BlockWater)); err != nil {
						return err
					}
				}
				c.SetSurfaceHeight(wx, wz, h)
			}
		}
	}
	return nil
}
