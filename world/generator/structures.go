package generator

import (
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

// Structures places ruined buildings on flat dry ground and connects them
// with gravel paths. Foundations are polygon footprints, walls are extruded
// borders and paths are line features, all spawned for the structures stage.
type Structures struct{}

func (Structures) Name() string { return "structures" }
func (Structures) Stage() Stage { return StageStructures }

func (Structures) Run(c *Cell) error {
	stone := Palette{state(BlockCobble), state(BlockMossyCobble)}
	gravel := Palette{state(BlockGravel)}

	var sites []raster.Point
	for _, pos := range c.Chunks() {
		r := NewRandom(ChunkSeed(c.Seed(), pos) ^ 0x5715)
		if !r.Chance(0.08) {
			continue
		}

		wx := int(pos[0])*chunk.Width + r.Range(4, chunk.Width-5)
		wz := int(pos[1])*chunk.Width + r.Range(4, chunk.Width-5)
		h := c.SurfaceHeight(wx, wz)
		if h <= c.WaterLevel() || !flatAround(c, wx, wz, h) {
			continue
		}

		half := r.Range(2, 4)
		site := raster.Point{wx, h, wz}
		sites = append(sites, site)

		footprint := raster.Polygon{
			{-half, -half}, {half, -half}, {half, half}, {-half, half},
		}
		c.Features().Spawn(Feature{
			Position: site,
			Shape:    FootprintShape{Footprint: footprint, Y: 0},
			Palette:  stone,
			Stage:    StageStructures,
		})

		// Ruined walls: corner pillars of uneven height.
		for _, corner := range [][2]int{{-half, -half}, {half, -half}, {half, half}, {-half, half}} {
			top := r.Range(1, 4)
			c.Features().Spawn(Feature{
				Position: site,
				Shape: LineShape{
					A: raster.Point{corner[0], 1, corner[1]},
					B: raster.Point{corner[0], top, corner[1]},
				},
				Palette: stone,
				Stage:   StageStructures,
			})
		}
	}

	for i := 1; i < len(sites); i++ {
		c.Features().Spawn(Feature{
			Position: sites[i-1],
			Shape:    LineShape{B: sites[i].Sub(sites[i-1])},
			Palette:  gravel,
			Stage:    StageStructures,
		})
	}
	return nil
}

// flatAround reports whether the columns around (x, z) are within one block
// of the height passed. Unknown columns at the cell edge do not count
// against flatness.
func flatAround(c *Cell, x, z, h int) bool {
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			sh := c.SurfaceHeight(x+dx, z+dz)
			if sh < 0 {
				continue
			}
			if sh < h-1 || sh > h+1 {
				return false
			}
		}
	}
	return true
}
