package generator

import (
	"fmt"
	"log/slog"
	"sort"
)

// System is one generation rule pass. Systems read entity components and
// buffer state and write buffer state or spawn feature entities for their
// own or later stages. Within a stage, systems run in registration order;
// stage ordering is the sole cross-system correctness mechanism, so systems
// of the same stage must not write overlapping buffer regions.
type System interface {
	Name() string
	Stage() Stage
	Run(c *Cell) error
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Logger *slog.Logger
	// Systems holds the generation systems. Order is preserved within a
	// stage; systems of later stages always run after earlier stages
	// regardless of registration order.
	Systems []System
}

// Pipeline runs an ordered sequence of generation stages over one cell at a
// time. It holds no cell state, so one pipeline may be shared by all
// workers.
type Pipeline struct {
	log    *slog.Logger
	stages [stageCount][]System
}

// NewPipeline creates a pipeline from the config passed. Without explicit
// systems the default terrain, carving, structures and decoration systems
// are installed.
func NewPipeline(conf PipelineConfig) *Pipeline {
	if conf.Logger == nil {
		conf.Logger = slog.Default()
	}
	if conf.Systems == nil {
		conf.Systems = DefaultSystems()
	}
	p := &Pipeline{log: conf.Logger}
	for _, sys := range conf.Systems {
		p.stages[sys.Stage()] = append(p.stages[sys.Stage()], sys)
	}
	return p
}

// Generate runs all stages over the cell in order. After the systems of a
// stage complete, the features tagged with that stage are stamped into the
// cell's buffers and destroyed. The first system error aborts the cell.
func (p *Pipeline) Generate(c *Cell) error {
	for _, stage := range Stages() {
		for _, sys := range p.stages[stage] {
			if err := sys.Run(c); err != nil {
				return fmt.Errorf("generator: stage %v: system %s: %w", stage, sys.Name(), err)
			}
		}
		p.stamp(c, stage)
		p.log.Debug("generation stage complete",
			"regionX", c.Region[0], "regionZ", c.Region[1],
			"stage", stage.String(), "pendingFeatures", c.features.Len())
	}
	return nil
}

// stamp writes all features of the stage into the cell's buffers and
// destroys them. Features are consumed exactly once and never persisted.
func (p *Pipeline) stamp(c *Cell, stage Stage) {
	var stamped []EntityID
	c.features.ForStage(stage, func(id EntityID, feat Feature) {
		material := feat.Palette.Pick(c.Rand)
		for _, pt := range feat.Shape.points() {
			c.Set(pt.Add(feat.Position), material)
		}
		stamped = append(stamped, id)
	})
	sort.Slice(stamped, func(i, j int) bool { return stamped[i] < stamped[j] })
	for _, id := range stamped {
		c.features.Destroy(id)
	}
}

// DefaultSystems returns the built-in generation systems in stage order.
func DefaultSystems() []System {
	return []System{
		Terrain{},
		Caves{},
		Structures{},
		Decoration{},
	}
}
