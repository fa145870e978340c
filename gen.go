package terragen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/voxelforge/terragen/journal"
	"github.com/voxelforge/terragen/world"
	"github.com/voxelforge/terragen/world/generator"
	"github.com/voxelforge/terragen/world/level"
	"github.com/voxelforge/terragen/world/nbt"
	"github.com/voxelforge/terragen/world/region"
)

// ErrorKind is the coarse classification of a cell failure reported in a
// Summary.
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindCorrupt     ErrorKind = "corrupt"
	KindBounds      ErrorKind = "out_of_bounds"
	KindUnsupported ErrorKind = "unsupported_format"
	KindIO          ErrorKind = "io"
)

// Classify maps an error to its kind. Errors outside the codec taxonomy are
// treated as IO errors, the only kind the driver retries.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, world.ErrCorruptData):
		return KindCorrupt
	case errors.Is(err, world.ErrOutOfBounds):
		return KindBounds
	case errors.Is(err, world.ErrUnsupportedFormat):
		return KindUnsupported
	}
	return KindIO
}

// CellResult is the outcome of one cell of a batch.
type CellResult struct {
	Region world.RegionPos
	// Chunks is the number of chunks generated and written for the cell.
	Chunks int
	// Digest is a content hash over the serialised chunks of the cell, in
	// chunk order. Equal digests mean byte-equal chunk payloads.
	Digest uint64
	// Skipped is true when the cell was not generated, either because the
	// resume journal recorded it as complete or because the batch was
	// aborted before the cell started.
	Skipped bool
	Err     error
	Kind    ErrorKind
}

// Summary is the result of a generation batch.
type Summary struct {
	// Run identifies the batch. Journal records written by the batch carry
	// this id.
	Run  uuid.UUID
	Seed int64
	// Results holds one entry per cell, ordered by region coordinates.
	Results []CellResult
	// Generated, Failed and Skipped count the cells by outcome.
	Generated, Failed, Skipped int
	Duration                   time.Duration
}

// cell is one unit of work: a region and the chunks of it inside the area.
type cell struct {
	region world.RegionPos
	chunks []world.ChunkPos
}

// Generate runs the batch described by the config and returns a summary of
// the outcome per cell. Cell failures are isolated: they are reported in the
// summary and, unless FailFast is set, do not stop other cells. The returned
// error is non-nil only when the batch could not run at all or when FailFast
// aborted it.
func (conf Config) Generate(ctx context.Context) (Summary, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Now == nil {
		conf.Now = time.Now
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.GOMAXPROCS(0)
	}

	start := conf.Now()
	sum := Summary{Run: uuid.New(), Seed: conf.Seed}

	if err := os.MkdirAll(conf.Output, 0777); err != nil {
		return sum, fmt.Errorf("terragen: create output: %w", err)
	}
	var jnl *journal.Journal
	if conf.Journal != "" {
		var err error
		if jnl, err = journal.Open(conf.Journal); err != nil {
			return sum, fmt.Errorf("terragen: %w", err)
		}
		defer jnl.Close()
	}

	cells := conf.cells()
	pipeline := generator.NewPipeline(generator.PipelineConfig{
		Logger:  conf.Log,
		Systems: conf.Systems,
	})
	conf.Log.Info("starting batch",
		"run", sum.Run, "seed", conf.Seed,
		"cells", len(cells), "chunks", conf.Area.Chunks(), "workers", conf.Workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []CellResult
		jobs    = make(chan cell)
	)
	record := func(res CellResult) {
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
	}
	for i := 0; i < conf.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				// Cells not yet started are dropped on cancellation;
				// in-flight cells always run to completion.
				if ctx.Err() != nil {
					record(CellResult{Region: c.region, Skipped: true, Err: ctx.Err()})
					continue
				}
				res := conf.runCell(jnl, pipeline, c, sum.Run)
				if res.Err != nil {
					conf.Log.Error("cell failed",
						"regionX", c.region[0], "regionZ", c.region[1],
						"kind", string(res.Kind), "err", res.Err)
					if conf.FailFast {
						cancel()
					}
				}
				record(res)
			}
		}()
	}
	for _, c := range cells {
		jobs <- c
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i].Region, results[j].Region
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	sum.Results = results
	for _, res := range results {
		switch {
		case res.Skipped:
			sum.Skipped++
		case res.Err != nil:
			sum.Failed++
		default:
			sum.Generated++
		}
	}
	sum.Duration = conf.Now().Sub(start)

	var err error
	if conf.FailFast && sum.Failed > 0 {
		err = firstError(results)
	}
	if err == nil && sum.Failed == 0 {
		if lerr := conf.writeLevel(); lerr != nil {
			err = lerr
		}
	}
	conf.Log.Info("batch finished",
		"run", sum.Run, "generated", sum.Generated, "failed", sum.Failed,
		"skipped", sum.Skipped, "duration", sum.Duration)
	return sum, err
}

// cells splits the configured area into per-region work units, ordered by
// region coordinates.
func (conf Config) cells() []cell {
	byRegion := make(map[world.RegionPos][]world.ChunkPos)
	for x := conf.Area.MinX; x <= conf.Area.MaxX; x++ {
		for z := conf.Area.MinZ; z <= conf.Area.MaxZ; z++ {
			pos := world.ChunkPos{x, z}
			rp := world.RegionOf(pos)
			byRegion[rp] = append(byRegion[rp], pos)
		}
	}
	cells := make([]cell, 0, len(byRegion))
	for rp, chunks := range byRegion {
		cells = append(cells, cell{region: rp, chunks: chunks})
	}
	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i].region, cells[j].region
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	return cells
}

// runCell generates one cell and persists it, retrying IO failures up to the
// configured retry budget.
func (conf Config) runCell(jnl *journal.Journal, pipeline *generator.Pipeline, c cell, run uuid.UUID) CellResult {
	res := CellResult{Region: c.region}
	if jnl != nil {
		done, err := jnl.Done(c.region)
		if err != nil {
			res.Err, res.Kind = err, Classify(err)
			return res
		}
		if done {
			res.Skipped = true
			return res
		}
	}

	gc := generator.NewCell(c.region, c.chunks, conf.Seed, conf.Height, conf.WaterLevel)
	if err := pipeline.Generate(gc); err != nil {
		res.Err, res.Kind = err, Classify(err)
		return res
	}

	for attempt := 0; ; attempt++ {
		digest, err := conf.writeCell(gc, c)
		if err == nil {
			res.Chunks, res.Digest = len(c.chunks), digest
			break
		}
		if Classify(err) != KindIO || attempt >= conf.IORetries {
			res.Err, res.Kind = err, Classify(err)
			return res
		}
		conf.Log.Warn("retrying cell write",
			"regionX", c.region[0], "regionZ", c.region[1],
			"attempt", attempt+1, "err", err)
	}

	if jnl != nil {
		if err := jnl.MarkDone(c.region, journal.Record{Run: run, Completed: conf.Now()}); err != nil {
			res.Err, res.Kind = err, Classify(err)
		}
	}
	return res
}

// writeCell serialises the cell's buffers into its region container and
// returns a digest over the chunk payloads in chunk order.
func (conf Config) writeCell(gc *generator.Cell, c cell) (uint64, error) {
	path := filepath.Join(conf.Output, regionFileName(c.region))
	r, err := region.Open(path, region.Options{Compression: conf.Compression, Now: conf.Now})
	if err != nil {
		return 0, err
	}

	digest := xxhash.New()
	for _, pos := range gc.Chunks() {
		b, _ := gc.Buffer(pos)
		tag := b.ToTag()
		raw, err := nbt.Encode("", tag)
		if err != nil {
			_ = r.Close()
			return 0, err
		}
		_, _ = digest.Write(raw)

		lx, lz := int(pos[0]-c.region[0]*32), int(pos[1]-c.region[1]*32)
		if err := r.WriteChunk(lx, lz, tag); err != nil {
			_ = r.Close()
			return 0, err
		}
	}
	if err := r.Close(); err != nil {
		return 0, err
	}
	return digest.Sum64(), nil
}

// writeLevel writes the level metadata with the spawn at the centre of the
// generated area.
func (conf Config) writeLevel() error {
	cx := (conf.Area.MinX + conf.Area.MaxX) / 2
	cz := (conf.Area.MinZ + conf.Area.MaxZ) / 2
	return level.Save(conf.Output, level.Data{
		Name:       conf.Name,
		Seed:       conf.Seed,
		SpawnX:     cx*16 + 8,
		SpawnY:     int32(conf.WaterLevel) + 1,
		SpawnZ:     cz*16 + 8,
		LastPlayed: conf.Now().Unix(),
	})
}

func firstError(results []CellResult) error {
	for _, res := range results {
		if res.Err != nil && !res.Skipped {
			return res.Err
		}
	}
	return nil
}

// regionFileName returns the file name of the container holding the region.
func regionFileName(pos world.RegionPos) string {
	return fmt.Sprintf("r.%d.%d.mca", pos[0], pos[1])
}
