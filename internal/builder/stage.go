package builder

// Stage is the position of a build in its Configuring -> Building sequence
type Stage int

const (
	StagePlanned Stage = iota
	StageConfiguring
	StageBuilding
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePlanned:
		return "planned"
	case StageConfiguring:
		return "configure"
	case StageBuilding:
		return "build"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
