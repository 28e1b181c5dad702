package history

import (
	"errors"
	"time"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

// Record is one build attempt of one extension
type Record struct {
	// ID is assigned by the store, increasing with every record
	ID uint64 `json:"id"`

	Extension string `json:"extension"`
	SourceDir string `json:"source_dir"`
	BuildTemp string `json:"build_temp"`
	OutputDir string `json:"output_dir"`

	// Full argv of the configure and build steps
	Configure []string `json:"configure"`
	Build     []string `json:"build"`

	// Fingerprint identifies the planned argv, see Fingerprint
	Fingerprint string `json:"fingerprint"`

	// Stage is the last stage reached ("configure", "build", "done")
	Stage   string `json:"stage"`
	Success bool   `json:"success"`

	// ExitCode is cmake's exit status when a cmake step failed, 0 otherwise.
	// -1 means cmake could not be run at all.
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Artifacts lists shared libraries present in OutputDir after the build
	Artifacts []string `json:"artifacts,omitempty"`
}

// Duration returns how long the build took
func (r Record) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// NewRecord captures the outcome of executing plan. result may be nil when
// the build failed before running anything.
func NewRecord(plan *builder.Plan, result *builder.Result, buildErr error, started, finished time.Time) *Record {
	rec := &Record{
		Extension:   plan.Target.Name,
		SourceDir:   plan.Target.SourceDir,
		BuildTemp:   plan.Target.BuildTemp,
		OutputDir:   plan.Target.OutputDir,
		Configure:   plan.Configure.Argv(),
		Build:       plan.Build.Argv(),
		Fingerprint: Fingerprint(plan.Configure.Argv(), plan.Build.Argv()),
		Stage:       builder.StagePlanned.String(),
		ExitCode:    toolExitCode(buildErr),
		Started:     started,
		Finished:    finished,
	}

	if result != nil {
		rec.Stage = result.Stage.String()
		rec.Success = result.Success && buildErr == nil
	}

	if buildErr != nil {
		rec.Error = buildErr.Error()
	}

	return rec
}

func toolExitCode(err error) int {
	var toolErr *builder.ToolError
	if errors.As(err, &toolErr) {
		return toolErr.ExitCode
	}

	return 0
}
