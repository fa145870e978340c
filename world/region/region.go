// Package region implements the chunked container file format: a fixed
// offset/sector table followed by sector-aligned, compression-wrapped chunk
// payloads. One container holds up to 32x32 chunks.
package region

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/nbt"
)

const (
	// SectorSize is the allocation unit of the container file.
	SectorSize = 4096
	// headerSectors covers the location table and the timestamp table.
	headerSectors = 2
	// slots is the chunk capacity of one container.
	slots = 32 * 32
)

// Compression schemes recognised in chunk payload headers.
const (
	CompressionGzip byte = 1
	CompressionZlib byte = 2
)

// Options configures a Region on Open.
type Options struct {
	// Compression is the scheme used for chunks written through this
	// instance. Zero defaults to CompressionZlib.
	Compression byte
	// Now supplies the modification timestamp recorded on writes. Nil
	// defaults to the wall clock. Batch runs that must produce
	// byte-identical output inject a fixed clock here.
	Now func() time.Time
}

// Region provides random access to the chunks of one container file. A
// Region is not safe for concurrent use: the driver guarantees a single
// owner per container file.
type Region struct {
	f      *os.File
	scheme byte
	now    func() time.Time

	loc        [slots]location
	timestamps [slots]uint32
	// free holds sector runs vacated by rewrites, available for reuse.
	// The file is never truncated while open; unreferenced sectors are
	// only ever handed out again.
	free []run
	// end is the current file size in sectors.
	end uint32

	dirty  bool
	closed bool
}

type location struct {
	offset uint32 // in sectors from the start of the file
	count  uint8
}

type run struct {
	start, count uint32
}

// Open opens the container file at the path passed, creating an empty
// container if it does not exist. The header tables are read into memory so
// chunk lookups need no further seeks.
func Open(path string, opts Options) (*Region, error) {
	if opts.Compression == 0 {
		opts.Compression = CompressionZlib
	}
	if opts.Compression != CompressionGzip && opts.Compression != CompressionZlib {
		return nil, fmt.Errorf("region: open %s: compression scheme %d: %w", path, opts.Compression, world.ErrUnsupportedFormat)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", path, err)
	}
	r := &Region{f: f, scheme: opts.Compression, now: opts.Now, end: headerSectors}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		// Fresh container: reserve the header sectors immediately so a
		// crash before the first flush still leaves a readable file.
		if err := r.writeHeader(); err != nil {
			_ = f.Close()
			return nil, err
		}
		return r, nil
	}
	if err := r.readHeader(info.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Region) readHeader(size int64) error {
	if size < headerSectors*SectorSize {
		return fmt.Errorf("region: header shorter than %d bytes: %w", headerSectors*SectorSize, world.ErrCorruptData)
	}
	header := make([]byte, headerSectors*SectorSize)
	if _, err := r.f.ReadAt(header, 0); err != nil {
		return fmt.Errorf("region: read header: %w", err)
	}
	r.end = uint32((size + SectorSize - 1) / SectorSize)

	used := make([]bool, r.end)
	for i := uint32(0); i < headerSectors; i++ {
		used[i] = true
	}
	for i := 0; i < slots; i++ {
		entry := binary.BigEndian.Uint32(header[i*4:])
		loc := location{offset: entry >> 8, count: uint8(entry)}
		if loc.offset == 0 && loc.count == 0 {
			continue
		}
		if loc.offset < headerSectors || loc.count == 0 || uint32(loc.offset)+uint32(loc.count) > r.end {
			return fmt.Errorf("region: slot %d holds invalid sector run [%d, %d): %w",
				i, loc.offset, loc.offset+uint32(loc.count), world.ErrCorruptData)
		}
		r.loc[i] = loc
		r.timestamps[i] = binary.BigEndian.Uint32(header[SectorSize+i*4:])
		for s := loc.offset; s < loc.offset+uint32(loc.count); s++ {
			used[s] = true
		}
	}
	// Sectors referenced by no slot are reclaimable.
	for s := uint32(headerSectors); s < r.end; s++ {
		if used[s] {
			continue
		}
		start := s
		for s < r.end && !used[s] {
			s++
		}
		r.free = append(r.free, run{start: start, count: s - start})
	}
	return nil
}

// ReadChunk reads and decodes the chunk at local coordinates (x, z), both in
// [0, 32). The second return value is false if the slot is empty.
func (r *Region) ReadChunk(x, z int) (*nbt.Compound, bool, error) {
	idx, err := slotIndex(x, z)
	if err != nil {
		return nil, false, err
	}
	loc := r.loc[idx]
	if loc.offset == 0 {
		return nil, false, nil
	}
	raw := make([]byte, uint32(loc.count)*SectorSize)
	if _, err := r.f.ReadAt(raw, int64(loc.offset)*SectorSize); err != nil {
		return nil, false, fmt.Errorf("region: read chunk (%d, %d): %w", x, z, err)
	}
	length := binary.BigEndian.Uint32(raw)
	if length < 1 || length > uint32(len(raw))-4 {
		return nil, false, fmt.Errorf("region: chunk (%d, %d) declares %d payload bytes in a %d sector allocation: %w",
			x, z, length, loc.count, world.ErrCorruptData)
	}
	scheme, compressed := raw[4], raw[5:4+length]

	payload, err := decompress(scheme, compressed)
	if err != nil {
		return nil, false, fmt.Errorf("region: chunk (%d, %d): %w", x, z, err)
	}
	_, c, err := nbt.Decode(payload)
	if err != nil {
		return nil, false, fmt.Errorf("region: chunk (%d, %d): %w", x, z, err)
	}
	return c, true, nil
}

// WriteChunk serialises, compresses and stores the chunk at local
// coordinates (x, z). The previous allocation is reused when the new blob
// still fits; otherwise the blob moves to reclaimed or appended sectors and
// the old run joins the free set. The header tables are only persisted on
// Flush or Close.
func (r *Region) WriteChunk(x, z int, c *nbt.Compound) error {
	idx, err := slotIndex(x, z)
	if err != nil {
		return err
	}
	if r.closed {
		return fmt.Errorf("region: write chunk (%d, %d): container closed", x, z)
	}
	raw, err := nbt.Encode("", c)
	if err != nil {
		return fmt.Errorf("region: write chunk (%d, %d): %w", x, z, err)
	}
	compressed, err := compress(r.scheme, raw)
	if err != nil {
		return err
	}
	blob := make([]byte, 5+len(compressed))
	binary.BigEndian.PutUint32(blob, uint32(len(compressed))+1) // +1 for the scheme byte
	blob[4] = r.scheme
	copy(blob[5:], compressed)

	needed := uint32((len(blob) + SectorSize - 1) / SectorSize)
	if needed > 255 {
		return fmt.Errorf("region: chunk (%d, %d) needs %d sectors, limit 255: %w", x, z, needed, world.ErrUnsupportedFormat)
	}

	old := r.loc[idx]
	var target run
	switch {
	case old.count != 0 && needed <= uint32(old.count):
		// Fits in place; keep the full run allocated to the slot.
		target = run{start: old.offset, count: uint32(old.count)}
	default:
		target = r.allocate(needed)
		if old.count != 0 {
			r.release(run{start: old.offset, count: uint32(old.count)})
		}
	}

	padded := make([]byte, target.count*SectorSize)
	copy(padded, blob)
	if _, err := r.f.WriteAt(padded, int64(target.start)*SectorSize); err != nil {
		return fmt.Errorf("region: write chunk (%d, %d): %w", x, z, err)
	}
	r.loc[idx] = location{offset: target.start, count: uint8(target.count)}
	r.timestamps[idx] = uint32(r.now().Unix())
	r.dirty = true
	return nil
}

// DeleteChunk clears the slot at (x, z) and releases its sectors. Deleted
// slots have zeroed location and timestamp entries.
func (r *Region) DeleteChunk(x, z int) error {
	idx, err := slotIndex(x, z)
	if err != nil {
		return err
	}
	if loc := r.loc[idx]; loc.count != 0 {
		r.release(run{start: loc.offset, count: uint32(loc.count)})
	}
	r.loc[idx] = location{}
	r.timestamps[idx] = 0
	r.dirty = true
	return nil
}

// Timestamp returns the stored modification time of the slot at (x, z), or
// the zero time if the slot is empty.
func (r *Region) Timestamp(x, z int) time.Time {
	idx, err := slotIndex(x, z)
	if err != nil || r.timestamps[idx] == 0 {
		return time.Time{}
	}
	return time.Unix(int64(r.timestamps[idx]), 0)
}

// Flush persists the in-memory location and timestamp tables.
func (r *Region) Flush() error {
	if !r.dirty {
		return nil
	}
	if err := r.writeHeader(); err != nil {
		return err
	}
	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("region: sync: %w", err)
	}
	r.dirty = false
	return nil
}

// Close flushes pending table updates and releases the file handle. It is
// safe to call on all exit paths; the first error wins.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	flushErr := r.Flush()
	closeErr := r.f.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("region: close: %w", closeErr)
	}
	return nil
}

func (r *Region) writeHeader() error {
	header := make([]byte, headerSectors*SectorSize)
	for i, loc := range r.loc {
		binary.BigEndian.PutUint32(header[i*4:], loc.offset<<8|uint32(loc.count))
		binary.BigEndian.PutUint32(header[SectorSize+i*4:], r.timestamps[i])
	}
	if _, err := r.f.WriteAt(header, 0); err != nil {
		return fmt.Errorf("region: write header: %w", err)
	}
	return nil
}

// allocate returns a sector run of the size requested, preferring reclaimed
// runs over growing the file.
func (r *Region) allocate(count uint32) run {
	for i, fr := range r.free {
		if fr.count < count {
			continue
		}
		if fr.count == count {
			r.free = append(r.free[:i], r.free[i+1:]...)
			return fr
		}
		r.free[i] = run{start: fr.start + count, count: fr.count - count}
		return run{start: fr.start, count: count}
	}
	alloc := run{start: r.end, count: count}
	r.end += count
	return alloc
}

// release returns a run to the free set, merging it with adjacent runs.
func (r *Region) release(freed run) {
	for i, fr := range r.free {
		if fr.start+fr.count == freed.start {
			r.free[i].count += freed.count
			return
		}
		if freed.start+freed.count == fr.start {
			r.free[i] = run{start: freed.start, count: fr.count + freed.count}
			return
		}
	}
	r.free = append(r.free, freed)
}

func slotIndex(x, z int) (int, error) {
	if x < 0 || x >= 32 || z < 0 || z >= 32 {
		return 0, fmt.Errorf("region: chunk coordinates (%d, %d) outside 32x32 grid: %w", x, z, world.ErrOutOfBounds)
	}
	return x + z*32, nil
}

func compress(scheme byte, b []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	var (
		w   io.WriteCloser
		err error
	)
	switch scheme {
	case CompressionGzip:
		w = gzip.NewWriter(buf)
	case CompressionZlib:
		w = zlib.NewWriter(buf)
	default:
		return nil, fmt.Errorf("region: compression scheme %d: %w", scheme, world.ErrUnsupportedFormat)
	}
	if _, err = w.Write(b); err != nil {
		return nil, fmt.Errorf("region: compress: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, fmt.Errorf("region: compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(scheme byte, b []byte) ([]byte, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	switch scheme {
	case CompressionGzip:
		rc, err = gzip.NewReader(bytes.NewReader(b))
	case CompressionZlib:
		rc, err = zlib.NewReader(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("compression scheme %d: %w", scheme, world.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("compressed stream header: %w", world.ErrCorruptData)
	}
	defer rc.Close()
	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("compressed stream: %w", world.ErrCorruptData)
	}
	return payload, nil
}
