// Package terragen generates voxel worlds in batch: it runs the generation
// pipeline over a rectangle of chunks and persists the result through the
// region container codec.
package terragen

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/generator"
	"github.com/voxelforge/terragen/world/region"
)

// Area is the rectangle of chunks to generate, inclusive on all bounds.
type Area struct {
	MinX, MinZ int32
	MaxX, MaxZ int32
}

// Contains reports whether the chunk position lies inside the area.
func (a Area) Contains(pos world.ChunkPos) bool {
	return pos[0] >= a.MinX && pos[0] <= a.MaxX && pos[1] >= a.MinZ && pos[1] <= a.MaxZ
}

// Chunks returns the number of chunks in the area.
func (a Area) Chunks() int {
	if a.MaxX < a.MinX || a.MaxZ < a.MinZ {
		return 0
	}
	return int(a.MaxX-a.MinX+1) * int(a.MaxZ-a.MinZ+1)
}

// Config contains options for running a generation batch.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// Name is the name of the world, written to the level metadata.
	Name string
	// Output is the world directory. Region containers and the level
	// metadata are created inside it.
	Output string
	// Seed is the world seed all cell seeds derive from.
	Seed int64
	// Area is the rectangle of chunks to generate. Regions overlapping the
	// area are generated cell by cell; chunks outside the area are left
	// absent in their containers.
	Area Area
	// Height is the vertical extent of generated chunks. If 0, the default
	// chunk height is used.
	Height int
	// WaterLevel is the height water fills up to in generated terrain.
	WaterLevel int
	// Workers is the number of cells generated concurrently. If 0 or lower,
	// the worker count is derived from the host's available CPUs.
	Workers int
	// IORetries is the number of times a cell whose persistence failed with
	// an IO error is retried before the cell is reported failed. Corrupt or
	// out-of-bounds errors are never retried.
	IORetries int
	// FailFast aborts pending cells after the first cell failure. Cells
	// already in flight run to completion either way.
	FailFast bool
	// Systems overrides the generation systems run over each cell. If
	// empty, the default terrain, carving, structures and decoration
	// systems are used.
	Systems []generator.System
	// Journal is the path of the resume journal store. If empty, no journal
	// is kept and every cell is generated unconditionally.
	Journal string
	// Compression is the payload compression scheme of written containers,
	// one of the region package's scheme constants. 0 defaults to zlib.
	Compression byte
	// Now is the clock used for container timestamps and the level
	// metadata. If nil, time.Now is used. Fixing the clock makes a batch
	// byte-for-byte reproducible.
	Now func() time.Time
}

// UserConfig is the user configuration of the generator CLI. It is
// serialised to config.toml and converted to a Config by calling
// UserConfig.Config().
type UserConfig struct {
	World struct {
		// Name is the name of the world written to the level metadata.
		Name string
		// Folder is the directory the generated world is written to.
		Folder string
		// Seed seeds the generator. A decimal integer is used as-is; any
		// other string is hashed to a 64-bit seed.
		Seed string
		// Height is the vertical extent of generated chunks. 0 selects the
		// default height.
		Height int
		// WaterLevel is the water surface height of generated terrain.
		WaterLevel int
	}
	Area struct {
		// MinX, MinZ, MaxX and MaxZ bound the generated chunk rectangle,
		// inclusive on all sides.
		MinX, MinZ int32
		MaxX, MaxZ int32
	}
	Generation struct {
		// Workers is the number of regions generated concurrently. 0 selects
		// a default based on the host's CPU count.
		Workers int
		// IORetries is how often a region whose write failed with an IO
		// error is retried.
		IORetries int
		// FailFast stops the batch at the first failed region instead of
		// continuing with the remaining ones.
		FailFast bool
		// Compression is the payload compression of region containers,
		// "zlib" or "gzip".
		Compression string
	}
	Resume struct {
		// Enabled keeps a journal of completed regions, so that an
		// interrupted batch continues where it stopped when rerun.
		Enabled bool
		// Folder is the directory of the journal store.
		Folder string
	}
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.Name = "World"
	c.World.Folder = "world"
	c.World.Seed = "0"
	c.World.WaterLevel = 62
	c.Area.MinX, c.Area.MinZ = -8, -8
	c.Area.MaxX, c.Area.MaxZ = 7, 7
	c.Generation.IORetries = 2
	c.Generation.Compression = "zlib"
	c.Resume.Folder = "journal"
	return c
}

// Config converts a UserConfig to a Config, so that it may be used for
// running a batch. An error is returned if a field does not parse.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:        log,
		Name:       uc.World.Name,
		Output:     uc.World.Folder,
		Height:     uc.World.Height,
		WaterLevel: uc.World.WaterLevel,
		Area: Area{
			MinX: uc.Area.MinX, MinZ: uc.Area.MinZ,
			MaxX: uc.Area.MaxX, MaxZ: uc.Area.MaxZ,
		},
		Workers:   uc.Generation.Workers,
		IORetries: uc.Generation.IORetries,
		FailFast:  uc.Generation.FailFast,
	}
	conf.Seed = parseSeed(uc.World.Seed)
	if conf.Area.MaxX < conf.Area.MinX || conf.Area.MaxZ < conf.Area.MinZ {
		return conf, fmt.Errorf("parse area: empty chunk rectangle %+v", conf.Area)
	}
	switch strings.ToLower(strings.TrimSpace(uc.Generation.Compression)) {
	case "", "zlib":
		conf.Compression = region.CompressionZlib
	case "gzip":
		conf.Compression = region.CompressionGzip
	default:
		return conf, fmt.Errorf("parse compression: unknown scheme %q", uc.Generation.Compression)
	}
	if uc.Resume.Enabled {
		conf.Journal = uc.Resume.Folder
	}
	return conf, nil
}

// parseSeed interprets a seed string: decimal integers are used directly so
// numeric seeds stay portable, anything else is hashed to 64 bits.
func parseSeed(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return int64(xxhash.Sum64String(s))
}
