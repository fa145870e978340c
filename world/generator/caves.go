package generator

import (
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

// Caves carves tunnel systems below the surface. Each tunnel is a random
// walk whose segments and bulbs are spawned as carving-stage features with an
// air palette, so the actual carving happens when the stage is stamped.
type Caves struct{}

func (Caves) Name() string { return "caves" }
func (Caves) Stage() Stage { return StageCarving }

func (Caves) Run(c *Cell) error {
	air := Palette{chunk.Air}
	for _, pos := range c.Chunks() {
		r := NewRandom(ChunkSeed(c.Seed(), pos))
		if !r.Chance(0.3) {
			continue
		}

		wx := int(pos[0])*chunk.Width + r.Intn(chunk.Width)
		wz := int(pos[1])*chunk.Width + r.Intn(chunk.Width)
		surface := c.SurfaceHeight(wx, wz)
		if surface < 8 {
			continue
		}
		cur := raster.Point{wx, r.Range(4, surface-4), wz}

		segments := r.Range(3, 8)
		for i := 0; i < segments; i++ {
			delta := raster.Point{
				r.Range(-8, 8),
				r.Range(-3, 2),
				r.Range(-8, 8),
			}
			next := cur.Add(delta)
			if next[1] < 2 {
				next[1] = 2
			}
			if next[1] > surface-3 {
				next[1] = surface - 3
			}

			c.Features().Spawn(Feature{
				Position: cur,
				Shape:    LineShape{B: next.Sub(cur)},
				Palette:  air,
				Stage:    StageCarving,
			})
			c.Features().Spawn(Feature{
				Position: next,
				Shape:    VolumeShape{Volume: raster.Sphere{Radius: r.Range(1, 3)}},
				Palette:  air,
				Stage:    StageCarving,
			})
			cur = next
		}
	}
	return nil
}
