package generator

import (
	"io"
	"log/slog"
	"testing"

	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

func quietPipeline(systems []System) *Pipeline {
	return NewPipeline(PipelineConfig{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Systems: systems,
	})
}

func testCell(seed int64) *Cell {
	chunks := []world.ChunkPos{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	return NewCell(world.RegionPos{0, 0}, chunks, seed, 64, 20)
}

func TestFeaturesSpawnGetDestroy(t *testing.T) {
	f := NewFeatures()
	a := f.Spawn(Feature{Position: raster.Point{1, 2, 3}, Stage: StageCarving})
	b := f.Spawn(Feature{Position: raster.Point{4, 5, 6}, Stage: StageDecoration})
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}

	feat, ok := f.Get(a)
	if !ok || feat.Position != (raster.Point{1, 2, 3}) {
		t.Fatalf("Get(%d) = %v, %v", a, feat, ok)
	}

	f.Destroy(a)
	if _, ok := f.Get(a); ok {
		t.Fatalf("Get(%d) succeeded after Destroy", a)
	}
	if feat, ok := f.Get(b); !ok || feat.Position != (raster.Point{4, 5, 6}) {
		t.Fatalf("Get(%d) = %v, %v after swap-remove", b, feat, ok)
	}
	if f.Len() != 1 {
		t.Fatalf("Len() = %d after Destroy, want 1", f.Len())
	}
	// Destroying twice must be a no-op.
	f.Destroy(a)
	if f.Len() != 1 {
		t.Fatalf("Len() = %d after double Destroy, want 1", f.Len())
	}
}

func TestFeaturesForStageOrder(t *testing.T) {
	f := NewFeatures()
	var want []EntityID
	for i := 0; i < 16; i++ {
		stage := StageDecoration
		if i%2 == 0 {
			stage = StageCarving
		}
		id := f.Spawn(Feature{Stage: stage})
		if stage == StageCarving {
			want = append(want, id)
		}
	}
	// Holes in the id space must not disturb iteration order.
	f.Destroy(want[1])
	want = append(want[:1], want[2:]...)

	var got []EntityID
	f.ForStage(StageCarving, func(id EntityID, _ Feature) { got = append(got, id) })
	if len(got) != len(want) {
		t.Fatalf("ForStage visited %d entities, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ForStage order %v, want %v", got, want)
		}
	}
}

type recordingSystem struct {
	name  string
	stage Stage
	log   *[]string
}

func (s recordingSystem) Name() string { return s.name }
func (s recordingSystem) Stage() Stage { return s.stage }
func (s recordingSystem) Run(c *Cell) error {
	*s.log = append(*s.log, s.name)
	return nil
}

func TestPipelineStageOrder(t *testing.T) {
	var order []string
	// Registered deliberately out of stage order.
	p := quietPipeline([]System{
		recordingSystem{"deco", StageDecoration, &order},
		recordingSystem{"terrain-b", StageTerrain, &order},
		recordingSystem{"carve", StageCarving, &order},
		recordingSystem{"terrain-a", StageTerrain, &order},
	})
	if err := p.Generate(testCell(1)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"terrain-b", "terrain-a", "carve", "deco"}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ran %v, want %v", order, want)
		}
	}
}

type spawnSystem struct {
	stage Stage
	feat  Feature
}

func (s spawnSystem) Name() string { return "spawn" }
func (s spawnSystem) Stage() Stage { return s.stage }
func (s spawnSystem) Run(c *Cell) error {
	c.Features().Spawn(s.feat)
	return nil
}

func TestPipelineStampsAndConsumesFeatures(t *testing.T) {
	c := testCell(7)
	feat := Feature{
		Position: raster.Point{8, 10, 8},
		Shape:    LineShape{B: raster.Point{3, 0, 0}},
		Palette:  Palette{state(BlockCobble)},
		Stage:    StageStructures,
	}
	p := quietPipeline([]System{spawnSystem{StageStructures, feat}})
	if err := p.Generate(c); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for x := 8; x <= 11; x++ {
		s, ok := c.Block(raster.Point{x, 10, 8})
		if !ok || s.ID != BlockCobble {
			t.Fatalf("block at %d: %v, %v, want cobble", x, s, ok)
		}
	}
	if c.Features().Len() != 0 {
		t.Fatalf("%d features left after stamping, want 0", c.Features().Len())
	}
}

func TestPipelineStampsLaterStageFeaturesLater(t *testing.T) {
	c := testCell(7)
	// A terrain-stage system spawning a decoration feature: the feature must
	// survive until the decoration stage is stamped, not before.
	feat := Feature{
		Position: raster.Point{4, 4, 4},
		Shape:    VolumeShape{Volume: raster.Box{Max: raster.Point{1, 1, 1}}},
		Palette:  Palette{state(BlockPlanks)},
		Stage:    StageDecoration,
	}
	probe := func(c *Cell) bool {
		s, ok := c.Block(raster.Point{4, 4, 4})
		return ok && s.ID == BlockPlanks
	}
	var duringCarving bool
	p := quietPipeline([]System{
		spawnSystem{StageTerrain, feat},
		probeSystem{StageCarving, func(c *Cell) { duringCarving = probe(c) }},
	})
	if err := p.Generate(c); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if duringCarving {
		t.Fatalf("decoration feature stamped before its stage")
	}
	if !probe(c) {
		t.Fatalf("decoration feature not stamped at end of run")
	}
}

type probeSystem struct {
	stage Stage
	fn    func(c *Cell)
}

func (s probeSystem) Name() string { return "probe" }
func (s probeSystem) Stage() Stage { return s.stage }
func (s probeSystem) Run(c *Cell) error {
	s.fn(c)
	return nil
}

func TestDefaultPipelineDeterministic(t *testing.T) {
	a, b := testCell(42), testCell(42)
	p := quietPipeline(nil)
	if err := p.Generate(a); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := p.Generate(b); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, pos := range a.Chunks() {
		ba, _ := a.Buffer(pos)
		bb, _ := b.Buffer(pos)
		if !ba.Equal(bb) {
			t.Fatalf("chunk %v differs between runs of the same seed", pos)
		}
	}

	other := testCell(43)
	if err := p.Generate(other); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	same := true
	for _, pos := range a.Chunks() {
		ba, _ := a.Buffer(pos)
		bo, _ := other.Buffer(pos)
		if !ba.Equal(bo) {
			same = false
		}
	}
	if same {
		t.Fatalf("different seeds produced identical cells")
	}
}

func TestDefaultPipelineTerrainShape(t *testing.T) {
	c := testCell(3)
	if err := quietPipeline(nil).Generate(c); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, pos := range c.Chunks() {
		b, _ := c.Buffer(pos)
		for x := 0; x < chunk.Width; x++ {
			for z := 0; z < chunk.Width; z++ {
				if s, _ := b.Block(x, 0, z); s.ID != BlockBedrock {
					t.Fatalf("chunk %v column %d,%d: floor is %d, want bedrock", pos, x, z, s.ID)
				}
				wx := int(pos[0])*chunk.Width + x
				wz := int(pos[1])*chunk.Width + z
				if h := c.SurfaceHeight(wx, wz); h < 2 || h >= c.Height() {
					t.Fatalf("column %d,%d: surface height %d out of range", wx, wz, h)
				}
			}
		}
	}
}

func TestNoiseSharedAcrossCells(t *testing.T) {
	a := NewCell(world.RegionPos{0, 0}, []world.ChunkPos{{31, 0}}, 42, 64, 20)
	b := NewCell(world.RegionPos{1, 0}, []world.ChunkPos{{32, 0}}, 42, 64, 20)

	// Both cells must sample identical noise fields, so terrain built from
	// them joins seamlessly at the region border.
	for _, p := range [][2]float64{{511.5 / 96, 3.2}, {512.5 / 96, 3.2}, {-0.7, 12.9}} {
		va := a.Noise.Terrain.octave2D(p[0], p[1], 4, 0.5)
		vb := b.Noise.Terrain.octave2D(p[0], p[1], 4, 0.5)
		if va != vb {
			t.Fatalf("terrain noise at %v: %v vs %v across cells", p, va, vb)
		}
		if ca, cb := a.Noise.Caves.noise3D(p[0], 0.5, p[1]), b.Noise.Caves.noise3D(p[0], 0.5, p[1]); ca != cb {
			t.Fatalf("cave noise at %v: %v vs %v across cells", p, ca, cb)
		}
	}

	// Feature randomness still differs per cell.
	if a.Seed() == b.Seed() {
		t.Fatalf("neighbouring cells share a seed")
	}
	if a.Rand.Uint64() == b.Rand.Uint64() {
		t.Fatalf("neighbouring cells share a random stream")
	}
}

func TestCellSetClipsOutsideCell(t *testing.T) {
	c := testCell(1)
	c.Set(raster.Point{-1, 10, 0}, state(BlockStone))
	c.Set(raster.Point{0, -1, 0}, state(BlockStone))
	c.Set(raster.Point{0, c.Height(), 0}, state(BlockStone))
	c.Set(raster.Point{chunk.Width * 2, 10, 0}, state(BlockStone))

	if s, ok := c.Block(raster.Point{0, 10, 0}); !ok || s != chunk.Air {
		t.Fatalf("in-cell block affected by clipped writes: %v, %v", s, ok)
	}
	if _, ok := c.Block(raster.Point{-1, 10, 0}); ok {
		t.Fatalf("Block succeeded outside the cell")
	}
}

func TestSeedDerivation(t *testing.T) {
	a := CellSeed(1, world.RegionPos{0, 0})
	b := CellSeed(1, world.RegionPos{0, 1})
	d := CellSeed(2, world.RegionPos{0, 0})
	if a == b || a == d {
		t.Fatalf("cell seeds collide: %d %d %d", a, b, d)
	}
	if a != CellSeed(1, world.RegionPos{0, 0}) {
		t.Fatalf("CellSeed not deterministic")
	}
	if ChunkSeed(a, world.ChunkPos{0, 0}) == ChunkSeed(a, world.ChunkPos{0, 1}) {
		t.Fatalf("chunk seeds collide")
	}
}

func TestRandomRange(t *testing.T) {
	r := NewRandom(9)
	for i := 0; i < 1000; i++ {
		if v := r.Range(-3, 5); v < -3 || v > 5 {
			t.Fatalf("Range(-3, 5) = %d", v)
		}
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64() = %v", v)
		}
	}
	a, b := NewRandom(5), NewRandom(5)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("identical seeds diverged at step %d", i)
		}
	}
}
