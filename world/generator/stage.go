package generator

// Stage is an ordered phase of the generation pipeline. A later stage never
// runs before all systems of earlier stages completed for the same cell,
// because later stages depend on blocks placed earlier.
type Stage uint8

const (
	StageTerrain Stage = iota
	StageCarving
	StageStructures
	StageDecoration
	stageCount
)

// Stages returns all stages in execution order.
func Stages() []Stage {
	return []Stage{StageTerrain, StageCarving, StageStructures, StageDecoration}
}

// String returns the name of the stage.
func (s Stage) String() string {
	switch s {
	case StageTerrain:
		return "terrain"
	case StageCarving:
		return "carving"
	case StageStructures:
		return "structures"
	case StageDecoration:
		return "decoration"
	}
	return "unknown"
}
