package generator

import "github.com/voxelforge/terragen/world/chunk"

// Block type ids used by the built-in systems. The data value channel
// carries per-type auxiliary state, e.g. the species of a log or the growth
// stage of a plant.
const (
	BlockAir         uint8 = 0
	BlockStone       uint8 = 1
	BlockGrass       uint8 = 2
	BlockDirt        uint8 = 3
	BlockCobble      uint8 = 4
	BlockPlanks      uint8 = 5
	BlockBedrock     uint8 = 7
	BlockWater       uint8 = 9
	BlockSand        uint8 = 12
	BlockGravel      uint8 = 13
	BlockGoldOre     uint8 = 14
	BlockIronOre     uint8 = 15
	BlockCoalOre     uint8 = 16
	BlockLog         uint8 = 17
	BlockLeaves      uint8 = 18
	BlockTallGrass   uint8 = 31
	BlockMossyCobble uint8 = 48
	BlockDiamondOre  uint8 = 56
)

func state(id uint8) chunk.BlockState { return chunk.BlockState{ID: id} }
