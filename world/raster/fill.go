package raster

import (
	"math"
	"sort"
)

// Polygon is a closed footprint on the XZ plane, described by its vertices
// in order. The final vertex connects back to the first.
type Polygon [][2]int

// Fill returns the lattice points interior to the polygon at the height
// passed. A cell belongs to the interior when its centre lies inside the
// polygon (even-odd rule); the convention is therefore inclusive on minimum
// edges and exclusive on maximum edges, so adjacent polygons sharing an edge
// never produce the same cell twice.
func (poly Polygon) Fill(y int) []Point {
	if len(poly) < 3 {
		return nil
	}
	minZ, maxZ := poly[0][1], poly[0][1]
	for _, v := range poly {
		if v[1] < minZ {
			minZ = v[1]
		}
		if v[1] > maxZ {
			maxZ = v[1]
		}
	}

	var pts []Point
	xs := make([]float64, 0, len(poly))
	for z := minZ; z < maxZ; z++ {
		// Sample the scanline through the cell centres of row z.
		zc := float64(z) + 0.5
		xs = xs[:0]
		for i, v1 := range poly {
			v2 := poly[(i+1)%len(poly)]
			z1, z2 := float64(v1[1]), float64(v2[1])
			if z1 == z2 {
				continue
			}
			if (zc >= z1 && zc < z2) || (zc >= z2 && zc < z1) {
				x1, x2 := float64(v1[0]), float64(v2[0])
				xs = append(xs, x1+(zc-z1)*(x2-x1)/(z2-z1))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			// Cells whose centre x+0.5 falls in [xs[i], xs[i+1]).
			from := int(math.Ceil(xs[i] - 0.5))
			to := int(math.Ceil(xs[i+1] - 0.5))
			for x := from; x < to; x++ {
				pts = append(pts, Point{x, y, z})
			}
		}
	}
	return pts
}

// Border returns the rasterized outline of the polygon at the height passed,
// tracing each edge with the line rasterizer.
func (poly Polygon) Border(y int) []Point {
	if len(poly) < 2 {
		return nil
	}
	var pts []Point
	seen := make(map[Point]struct{})
	for i, v1 := range poly {
		v2 := poly[(i+1)%len(poly)]
		for _, p := range Line(Point{v1[0], y, v1[1]}, Point{v2[0], y, v2[1]}).Points() {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			pts = append(pts, p)
		}
	}
	return pts
}

// Flood performs a breadth-first area fill from the start point across the
// six face neighbours, visiting only points for which inside returns true.
// It stops after limit points to bound the fill on open boundaries; limit
// <= 0 means no limit. The returned order is deterministic.
func Flood(start Point, inside func(Point) bool, limit int) []Point {
	if !inside(start) {
		return nil
	}
	var steps = [6]Point{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	visited := map[Point]struct{}{start: {}}
	queue := []Point{start}
	out := make([]Point, 0, 64)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			return out
		}
		for _, s := range steps {
			n := p.Add(s)
			if _, ok := visited[n]; ok {
				continue
			}
			if !inside(n) {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return out
}
