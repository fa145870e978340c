// Package chunk implements the in-memory voxel buffer for one chunk column
// and its conversion to and from the tag tree form that is persisted.
package chunk

import (
	"fmt"

	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/nbt"
)

const (
	// Width is the horizontal extent of a chunk on both the X and Z axis.
	Width = 16
	// DefaultHeight is the vertical extent used when no height is
	// configured.
	DefaultHeight = 128
)

// BlockState is the state of a single voxel: a block type and an auxiliary
// data value.
type BlockState struct {
	ID   uint8
	Data uint8
}

// Air is the zero block state. Fresh buffers are filled with it.
var Air = BlockState{}

// Buffer is a dense 16 x height x 16 grid of block states. It is owned by
// exactly one generation pipeline at a time and handed off to the codec for
// persistence; it is not safe for concurrent mutation.
//
// Blocks are stored in two parallel byte channels in y-major order:
//
//	index = (y*16 + z)*16 + x
//
// The layout is part of the persisted format and must not change.
type Buffer struct {
	pos    world.ChunkPos
	height int
	blocks []byte
	data   []byte
}

// New creates an air-filled buffer for the chunk position passed with the
// height given. A height of 0 defaults to DefaultHeight.
func New(pos world.ChunkPos, height int) *Buffer {
	if height <= 0 {
		height = DefaultHeight
	}
	n := Width * Width * height
	return &Buffer{
		pos:    pos,
		height: height,
		blocks: make([]byte, n),
		data:   make([]byte, n),
	}
}

// Pos returns the chunk position of the buffer.
func (b *Buffer) Pos() world.ChunkPos { return b.pos }

// Height returns the vertical extent of the buffer.
func (b *Buffer) Height() int { return b.height }

// Contains reports whether local coordinates fall inside the buffer.
func (b *Buffer) Contains(x, y, z int) bool {
	return x >= 0 && x < Width && z >= 0 && z < Width && y >= 0 && y < b.height
}

// Block returns the block state at the local coordinates passed.
func (b *Buffer) Block(x, y, z int) (BlockState, error) {
	if !b.Contains(x, y, z) {
		return Air, b.boundsErr(x, y, z)
	}
	i := b.index(x, y, z)
	return BlockState{ID: b.blocks[i], Data: b.data[i]}, nil
}

// SetBlock stores the block state at the local coordinates passed.
func (b *Buffer) SetBlock(x, y, z int, s BlockState) error {
	if !b.Contains(x, y, z) {
		return b.boundsErr(x, y, z)
	}
	i := b.index(x, y, z)
	b.blocks[i] = s.ID
	b.data[i] = s.Data
	return nil
}

// HighestBlock returns the y coordinate of the highest non-air block in the
// column (x, z), or -1 for an empty column.
func (b *Buffer) HighestBlock(x, z int) int {
	if x < 0 || x >= Width || z < 0 || z >= Width {
		return -1
	}
	for y := b.height - 1; y >= 0; y-- {
		if b.blocks[b.index(x, y, z)] != 0 {
			return y
		}
	}
	return -1
}

// Equal reports whether two buffers hold the same position, dimensions and
// voxel content.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.pos != other.pos || b.height != other.height {
		return false
	}
	return string(b.blocks) == string(other.blocks) && string(b.data) == string(other.data)
}

func (b *Buffer) index(x, y, z int) int {
	return (y*Width+z)*Width + x
}

func (b *Buffer) boundsErr(x, y, z int) error {
	return fmt.Errorf("chunk %v: block (%d, %d, %d) outside 16x%dx16: %w",
		b.pos, x, y, z, b.height, world.ErrOutOfBounds)
}

// ToTag packs the buffer into the compound form that the region codec
// persists. The two channels are written as byte arrays in the documented
// y-major layout.
func (b *Buffer) ToTag() *nbt.Compound {
	c := nbt.NewCompound()
	c.Set("xPos", nbt.Int(b.pos[0]))
	c.Set("zPos", nbt.Int(b.pos[1]))
	c.Set("yHeight", nbt.Int(int32(b.height)))
	c.Set("LastUpdate", nbt.Long(0))
	c.Set("TerrainPopulated", nbt.Byte(1))
	c.Set("Status", nbt.String("full"))
	blocks := make(nbt.ByteArray, len(b.blocks))
	copy(blocks, b.blocks)
	data := make(nbt.ByteArray, len(b.data))
	copy(data, b.data)
	c.Set("Blocks", blocks)
	c.Set("Data", data)
	return c
}

// FromTag rebuilds a buffer from its compound form. Channel lengths that do
// not match the declared dimensions fail with world.ErrCorruptData.
func FromTag(c *nbt.Compound) (*Buffer, error) {
	x, okX := c.Int("xPos")
	z, okZ := c.Int("zPos")
	height, okH := c.Int("yHeight")
	if !okX || !okZ || !okH || height <= 0 {
		return nil, fmt.Errorf("chunk tag: missing or invalid position/height fields: %w", world.ErrCorruptData)
	}
	blocks, okB := c.ByteArray("Blocks")
	data, okD := c.ByteArray("Data")
	if !okB || !okD {
		return nil, fmt.Errorf("chunk tag: missing block channels: %w", world.ErrCorruptData)
	}
	want := Width * Width * int(height)
	if len(blocks) != want || len(data) != want {
		return nil, fmt.Errorf("chunk tag: channel lengths %d/%d do not match declared 16x%dx16 volume (%d): %w",
			len(blocks), len(data), height, want, world.ErrCorruptData)
	}
	b := New(world.ChunkPos{x, z}, int(height))
	copy(b.blocks, blocks)
	copy(b.data, data)
	return b, nil
}
