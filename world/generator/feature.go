package generator

import (
	"sort"

	"github.com/brentp/intintmap"
	"github.com/voxelforge/terragen/world/chunk"
	"github.com/voxelforge/terragen/world/raster"
)

// EntityID identifies a feature entity within one cell's tables.
type EntityID int64

// Shape describes the spatial extent of a feature: a line segment, a polygon
// footprint or a volume primitive. Shape points are relative to the
// feature's Position; stamping translates them into world coordinates.
type Shape interface {
	// points returns the lattice points covered by the shape, relative to
	// the feature position.
	points() []raster.Point
}

// LineShape is a 3D line segment between two lattice points.
type LineShape struct {
	A, B raster.Point
}

func (s LineShape) points() []raster.Point { return raster.Line(s.A, s.B).Points() }

// FootprintShape is a polygon footprint extruded upwards from a base height.
type FootprintShape struct {
	Footprint raster.Polygon
	Y         int
	// Height is the number of layers stamped upwards from Y. Zero stamps a
	// single layer.
	Height int
}

func (s FootprintShape) points() []raster.Point {
	base := s.Footprint.Fill(s.Y)
	if s.Height <= 0 {
		return base
	}
	pts := make([]raster.Point, 0, len(base)*(s.Height+1))
	for dy := 0; dy <= s.Height; dy++ {
		for _, p := range base {
			pts = append(pts, raster.Point{p[0], p[1] + dy, p[2]})
		}
	}
	return pts
}

// VolumeShape wraps a raster volume primitive such as a sphere or box.
type VolumeShape struct {
	Volume raster.Volume
}

func (s VolumeShape) points() []raster.Point { return s.Volume.Points() }

// Palette is the ordered material palette of a feature. Stamping picks the
// first entry unless a system asks for a random pick.
type Palette []chunk.BlockState

// Pick returns a deterministic random entry of the palette.
func (p Palette) Pick(r *Random) chunk.BlockState {
	if len(p) == 0 {
		return chunk.Air
	}
	if len(p) == 1 {
		return p[0]
	}
	return p[r.Intn(len(p))]
}

// Feature is one procedural feature entity: its components are stored
// column-wise in the cell's Features tables.
type Feature struct {
	Position raster.Point
	Shape    Shape
	Palette  Palette
	Stage    Stage
}

// Features is the entity-component storage of one cell. Components live in
// dense parallel slices; an id-to-row table keeps lookups cheap while rows
// are swap-removed on destroy. Iteration is always in ascending entity id
// order to keep generation deterministic.
type Features struct {
	nextID int64
	rows   *intintmap.Map

	ids       []EntityID
	positions []raster.Point
	shapes    []Shape
	palettes  []Palette
	stages    []Stage
}

// NewFeatures creates empty feature tables.
func NewFeatures() *Features {
	return &Features{rows: intintmap.New(256, 0.6)}
}

// Len returns the number of live entities.
func (f *Features) Len() int { return len(f.ids) }

// Spawn creates a feature entity and returns its id.
func (f *Features) Spawn(feat Feature) EntityID {
	id := EntityID(f.nextID)
	f.nextID++
	f.rows.Put(int64(id), int64(len(f.ids)))
	f.ids = append(f.ids, id)
	f.positions = append(f.positions, feat.Position)
	f.shapes = append(f.shapes, feat.Shape)
	f.palettes = append(f.palettes, feat.Palette)
	f.stages = append(f.stages, feat.Stage)
	return id
}

// Get returns the components of the entity, if it is live.
func (f *Features) Get(id EntityID) (Feature, bool) {
	row, ok := f.rows.Get(int64(id))
	if !ok {
		return Feature{}, false
	}
	return f.at(int(row)), true
}

// Destroy removes the entity. The last row is swapped into the hole, so
// destruction is O(1).
func (f *Features) Destroy(id EntityID) {
	row64, ok := f.rows.Get(int64(id))
	if !ok {
		return
	}
	row, last := int(row64), len(f.ids)-1
	if row != last {
		f.ids[row] = f.ids[last]
		f.positions[row] = f.positions[last]
		f.shapes[row] = f.shapes[last]
		f.palettes[row] = f.palettes[last]
		f.stages[row] = f.stages[last]
		f.rows.Put(int64(f.ids[row]), int64(row))
	}
	f.ids = f.ids[:last]
	f.positions = f.positions[:last]
	f.shapes = f.shapes[:last]
	f.palettes = f.palettes[:last]
	f.stages = f.stages[:last]
	f.rows.Del(int64(id))
}

// ForStage calls fn for every entity tagged with the stage, in ascending id
// order. fn may destroy the entity it was called with.
func (f *Features) ForStage(stage Stage, fn func(id EntityID, feat Feature)) {
	matched := make([]EntityID, 0, len(f.ids))
	for i, id := range f.ids {
		if f.stages[i] == stage {
			matched = append(matched, id)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })
	for _, id := range matched {
		if feat, ok := f.Get(id); ok {
			fn(id, feat)
		}
	}
}

func (f *Features) at(row int) Feature {
	return Feature{
		Position: f.positions[row],
		Shape:    f.shapes[row],
		Palette:  f.palettes[row],
		Stage:    f.stages[row],
	}
}
