package raster

// Volume is a filled volume primitive that can enumerate its lattice points
// and answer membership queries.
type Volume interface {
	Points() []Point
	Contains(Point) bool
}

// Box is an axis-aligned volume primitive. Min is inclusive, Max exclusive
// on every axis.
type Box struct {
	Min, Max Point
}

// Points returns the lattice points inside the box in x-fastest order.
func (b Box) Points() []Point {
	var pts []Point
	for y := b.Min[1]; y < b.Max[1]; y++ {
		for z := b.Min[2]; z < b.Max[2]; z++ {
			for x := b.Min[0]; x < b.Max[0]; x++ {
				pts = append(pts, Point{x, y, z})
			}
		}
	}
	return pts
}

// Contains reports whether the point lies inside the box.
func (b Box) Contains(p Point) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// Sphere is a ball volume primitive around a centre point. A lattice point
// belongs to the sphere when its squared distance to the centre is at most
// r*(r+1), which includes the boundary shell (equivalent to a real radius of
// r+0.5 up to rounding).
type Sphere struct {
	Center Point
	Radius int
}

// Points returns the lattice points of the sphere in x-fastest order.
func (s Sphere) Points() []Point {
	r := s.Radius
	if r < 0 {
		return nil
	}
	limit := r*r + r
	var pts []Point
	for y := -r; y <= r; y++ {
		for z := -r; z <= r; z++ {
			for x := -r; x <= r; x++ {
				if x*x+y*y+z*z <= limit {
					pts = append(pts, s.Center.Add(Point{x, y, z}))
				}
			}
		}
	}
	return pts
}

// Contains reports whether the point lies inside the sphere.
func (s Sphere) Contains(p Point) bool {
	dx, dy, dz := p[0]-s.Center[0], p[1]-s.Center[1], p[2]-s.Center[2]
	return dx*dx+dy*dy+dz*dz <= s.Radius*s.Radius+s.Radius
}
