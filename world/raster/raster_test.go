package raster

import "testing"

func TestLineEndpoints(t *testing.T) {
	cases := [][2]Point{
		{{0, 0, 0}, {10, 0, 0}},
		{{0, 0, 0}, {3, 7, 2}},
		{{5, 5, 5}, {-4, 9, -12}},
		{{1, 2, 3}, {1, 2, 3}},
		{{0, 0, 0}, {4, 4, 4}}, // exact axis tie
	}
	for _, c := range cases {
		pts := Line(c[0], c[1]).Points()
		if len(pts) == 0 {
			t.Fatalf("line %v -> %v produced no points", c[0], c[1])
		}
		if pts[0] != c[0] {
			t.Fatalf("line %v -> %v starts at %v", c[0], c[1], pts[0])
		}
		if pts[len(pts)-1] != c[1] {
			t.Fatalf("line %v -> %v ends at %v", c[0], c[1], pts[len(pts)-1])
		}
	}
}

func TestLineConnectivity(t *testing.T) {
	pts := Line(Point{-3, 2, 8}, Point{14, -9, 1}).Points()
	for i := 1; i < len(pts); i++ {
		for axis := 0; axis < 3; axis++ {
			if d := abs(pts[i][axis] - pts[i-1][axis]); d > 1 {
				t.Fatalf("points %v and %v are not 26-connected", pts[i-1], pts[i])
			}
		}
		if pts[i] == pts[i-1] {
			t.Fatalf("duplicate consecutive point %v", pts[i])
		}
	}
}

func TestLineDeterministicAndRestartable(t *testing.T) {
	a, b := Point{0, 0, 0}, Point{6, 6, 3}
	it := Line(a, b)
	first := it.Points()
	second := it.Points() // Points resets internally

	if len(first) != len(second) {
		t.Fatalf("restarted iteration has different length")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("restarted iteration diverges at %d: %v vs %v", i, first[i], second[i])
		}
	}

	// A fresh iterator over the same endpoints must match too.
	third := Line(a, b).Points()
	for i := range first {
		if first[i] != third[i] {
			t.Fatalf("repeated invocation diverges at %d", i)
		}
	}
}

func TestLineAxisTieBreak(t *testing.T) {
	// Equal deltas on all axes: the driving axis must be x, so the second
	// point advances all axes together (pure diagonal).
	pts := Line(Point{0, 0, 0}, Point{3, 3, 3}).Points()
	if len(pts) != 4 {
		t.Fatalf("expected 4 points on exact diagonal, got %d", len(pts))
	}
	for i, p := range pts {
		if p != (Point{i, i, i}) {
			t.Fatalf("diagonal point %d is %v", i, p)
		}
	}
}

func TestPolygonFillSquare(t *testing.T) {
	// Unit square [0,4)x[0,4): half-open convention yields exactly 16 cells.
	poly := Polygon{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	pts := poly.Fill(7)
	if len(pts) != 16 {
		t.Fatalf("expected 16 interior cells, got %d", len(pts))
	}
	for _, p := range pts {
		if p[1] != 7 {
			t.Fatalf("fill produced wrong height %v", p)
		}
		if p[0] < 0 || p[0] >= 4 || p[2] < 0 || p[2] >= 4 {
			t.Fatalf("fill leaked outside square: %v", p)
		}
	}
}

func TestPolygonFillAdjacentNoOverlap(t *testing.T) {
	left := Polygon{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	right := Polygon{{4, 0}, {8, 0}, {8, 4}, {4, 4}}
	seen := make(map[Point]struct{})
	for _, p := range left.Fill(0) {
		seen[p] = struct{}{}
	}
	for _, p := range right.Fill(0) {
		if _, ok := seen[p]; ok {
			t.Fatalf("adjacent polygons both produced cell %v", p)
		}
	}
}

func TestPolygonFillTriangle(t *testing.T) {
	poly := Polygon{{0, 0}, {8, 0}, {0, 8}}
	pts := poly.Fill(0)
	if len(pts) == 0 {
		t.Fatalf("triangle fill empty")
	}
	for _, p := range pts {
		// All cell centres must satisfy x+z < 8 for this triangle.
		if float64(p[0])+0.5+float64(p[2])+0.5 >= 8 {
			t.Fatalf("cell %v outside triangle", p)
		}
	}
}

func TestPolygonBorderClosed(t *testing.T) {
	poly := Polygon{{0, 0}, {5, 0}, {5, 5}, {0, 5}}
	border := poly.Border(3)
	if len(border) != 20 {
		t.Fatalf("expected 20 unique border cells for a 6x6 outline, got %d", len(border))
	}
}

func TestSpherePoints(t *testing.T) {
	s := Sphere{Center: Point{10, 10, 10}, Radius: 2}
	pts := s.Points()
	if len(pts) == 0 {
		t.Fatalf("sphere produced no points")
	}
	for _, p := range pts {
		if !s.Contains(p) {
			t.Fatalf("point %v outside its own sphere", p)
		}
	}
	// The centre and the six axis extremes are part of the shell.
	want := []Point{{10, 10, 10}, {12, 10, 10}, {8, 10, 10}, {10, 12, 10}, {10, 8, 10}, {10, 10, 12}, {10, 10, 8}}
	for _, w := range want {
		found := false
		for _, p := range pts {
			if p == w {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected sphere to contain %v", w)
		}
	}
}

func TestBoxPoints(t *testing.T) {
	b := Box{Min: Point{0, 0, 0}, Max: Point{2, 3, 2}}
	if got := len(b.Points()); got != 12 {
		t.Fatalf("expected 12 points, got %d", got)
	}
	if b.Contains(Point{2, 0, 0}) {
		t.Fatalf("max bound must be exclusive")
	}
	if !b.Contains(Point{1, 2, 1}) {
		t.Fatalf("interior point reported outside")
	}
}

func TestFloodBounded(t *testing.T) {
	inside := func(p Point) bool {
		return Box{Min: Point{0, 0, 0}, Max: Point{4, 1, 4}}.Contains(p)
	}
	pts := Flood(Point{1, 0, 1}, inside, 0)
	if len(pts) != 16 {
		t.Fatalf("expected flood to cover 16 cells, got %d", len(pts))
	}

	limited := Flood(Point{1, 0, 1}, inside, 5)
	if len(limited) != 5 {
		t.Fatalf("expected flood limit of 5, got %d", len(limited))
	}

	if got := Flood(Point{9, 9, 9}, inside, 0); got != nil {
		t.Fatalf("flood from outside must be empty, got %d points", len(got))
	}
}

func TestFloodDeterministic(t *testing.T) {
	inside := func(p Point) bool {
		return Box{Min: Point{0, 0, 0}, Max: Point{3, 3, 3}}.Contains(p)
	}
	a := Flood(Point{0, 0, 0}, inside, 0)
	b := Flood(Point{0, 0, 0}, inside, 0)
	if len(a) != len(b) {
		t.Fatalf("flood runs differ in length")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("flood order diverges at %d", i)
		}
	}
}
