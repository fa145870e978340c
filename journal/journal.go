// Package journal records which cells of a generation batch have been
// completed, so an interrupted batch can be resumed without regenerating
// finished regions.
package journal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/google/uuid"
	"github.com/voxelforge/terragen/world"
)

// Record is one completion entry: the run that completed the cell and when.
type Record struct {
	Run       uuid.UUID
	Completed time.Time
}

// Journal is a LevelDB-backed set of completed cells. It is safe for
// concurrent use by the driver's workers.
type Journal struct {
	db *leveldb.DB
}

// Open opens or creates the journal store at the path passed.
func Open(path string) (*Journal, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("journal: open %v: %w", path, err)
	}
	return &Journal{db: db}, nil
}

// Done reports whether the cell has a completion record.
func (j *Journal) Done(pos world.RegionPos) (bool, error) {
	_, err := j.db.Get(key(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("journal: read %v: %w", pos, err)
	}
	return true, nil
}

// Get returns the completion record of the cell, if one exists.
func (j *Journal) Get(pos world.RegionPos) (Record, bool, error) {
	v, err := j.db.Get(key(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("journal: read %v: %w", pos, err)
	}
	if len(v) != 24 {
		return Record{}, false, fmt.Errorf("journal: record for %v has %v bytes: %w", pos, len(v), world.ErrCorruptData)
	}
	var r Record
	copy(r.Run[:], v[:16])
	r.Completed = time.Unix(int64(binary.BigEndian.Uint64(v[16:])), 0).UTC()
	return r, true, nil
}

// MarkDone writes a completion record for the cell.
func (j *Journal) MarkDone(pos world.RegionPos, r Record) error {
	v := make([]byte, 24)
	copy(v, r.Run[:])
	binary.BigEndian.PutUint64(v[16:], uint64(r.Completed.Unix()))
	if err := j.db.Put(key(pos), v, nil); err != nil {
		return fmt.Errorf("journal: write %v: %w", pos, err)
	}
	return nil
}

// Close releases the underlying store.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}

func key(pos world.RegionPos) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint32(k, uint32(pos[0]))
	binary.BigEndian.PutUint32(k[4:], uint32(pos[1]))
	return k
}
