// Package level reads and writes the world metadata document stored next to
// the region containers.
package level

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/nbt"
)

// FileName is the name of the metadata file inside a world directory.
const FileName = "level.dat"

// Data is the world metadata: the name and seed a world was generated with
// and the spawn point readers should start at.
type Data struct {
	Name       string
	Seed       int64
	SpawnX     int32
	SpawnY     int32
	SpawnZ     int32
	LastPlayed int64
}

// Save writes the metadata as a gzip tag tree to dir/level.dat. The document
// root holds a single "Data" compound, the framing external readers expect.
func Save(dir string, d Data) error {
	data := nbt.NewCompound()
	data.Set("LevelName", nbt.String(d.Name))
	data.Set("RandomSeed", nbt.Long(d.Seed))
	data.Set("SpawnX", nbt.Int(d.SpawnX))
	data.Set("SpawnY", nbt.Int(d.SpawnY))
	data.Set("SpawnZ", nbt.Int(d.SpawnZ))
	data.Set("LastPlayed", nbt.Long(d.LastPlayed))

	root := nbt.NewCompound()
	root.Set("Data", data)

	b, err := nbt.EncodeGzip("", root)
	if err != nil {
		return fmt.Errorf("level: encode: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), b, 0644); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return nil
}

// Load reads the metadata from dir/level.dat.
func Load(dir string) (Data, error) {
	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return Data{}, fmt.Errorf("level: %w", err)
	}
	_, root, err := nbt.DecodeGzip(b)
	if err != nil {
		return Data{}, fmt.Errorf("level: decode: %w", err)
	}
	data, ok := root.Compound("Data")
	if !ok {
		return Data{}, fmt.Errorf("level: missing Data compound: %w", world.ErrCorruptData)
	}

	var d Data
	name, ok := data.String("LevelName")
	if !ok {
		return Data{}, fmt.Errorf("level: missing LevelName: %w", world.ErrCorruptData)
	}
	d.Name = name
	seed, ok := data.Long("RandomSeed")
	if !ok {
		return Data{}, fmt.Errorf("level: missing RandomSeed: %w", world.ErrCorruptData)
	}
	d.Seed = seed
	if v, ok := data.Int("SpawnX"); ok {
		d.SpawnX = v
	}
	if v, ok := data.Int("SpawnY"); ok {
		d.SpawnY = v
	}
	if v, ok := data.Int("SpawnZ"); ok {
		d.SpawnZ = v
	}
	if v, ok := data.Long("LastPlayed"); ok {
		d.LastPlayed = v
	}
	return d, nil
}
