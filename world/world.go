// Package world holds the coordinate types and the error taxonomy shared by
// the storage and generation packages.
package world

import "errors"

var (
	// ErrCorruptData is returned when stored bytes cannot be interpreted:
	// truncated tag data, inconsistent container headers or array length
	// mismatches. Corruption is never repaired silently.
	ErrCorruptData = errors.New("corrupt data")
	// ErrUnsupportedFormat is returned when a container or blob declares a
	// compression scheme or format version this build does not handle.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrOutOfBounds is returned on buffer access outside the declared
	// dimensions. It indicates a bug in a generation rule rather than bad
	// input data.
	ErrOutOfBounds = errors.New("out of bounds")
)

// ChunkPos holds the position of a chunk. The first value is the X
// coordinate, the second the Z coordinate. Y is absent: chunks cover the full
// world height.
type ChunkPos [2]int32

// X returns the X coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Z returns the Z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[1] }

// RegionPos holds the position of a region, a 32x32 square of chunks backed
// by one container file.
type RegionPos [2]int32

// X returns the X coordinate of the region position.
func (p RegionPos) X() int32 { return p[0] }

// Z returns the Z coordinate of the region position.
func (p RegionPos) Z() int32 { return p[1] }

// RegionOf returns the position of the region that the chunk position passed
// falls in.
func RegionOf(pos ChunkPos) RegionPos {
	return RegionPos{pos[0] >> 5, pos[1] >> 5}
}

// Chunk returns the global position of the chunk at local coordinates
// (x, z) within the region. Both must be in the range [0, 32).
func (p RegionPos) Chunk(x, z int32) ChunkPos {
	return ChunkPos{p[0]<<5 | x, p[1]<<5 | z}
}
