// Package raster holds the discrete geometry used to stamp features into
// voxel buffers: 3D line rasterization, polygon and volume fills and a
// bounded flood fill. All functions are pure over coordinates; callers stamp
// the returned lattice points into a buffer themselves.
package raster

import "golang.org/x/exp/constraints"

// Point is an integer lattice point, ordered x, y, z.
type Point [3]int

// X returns the x component of the point.
func (p Point) X() int { return p[0] }

// Y returns the y component of the point.
func (p Point) Y() int { return p[1] }

// Z returns the z component of the point.
func (p Point) Z() int { return p[2] }

// Add returns the component-wise sum of two points.
func (p Point) Add(q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Sub returns the component-wise difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

func abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func sign[T constraints.Signed](v T) T {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
