package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

func testPlan() *builder.Plan {
	return &builder.Plan{
		Target: builder.BuildTarget{Name: "gescpp", SourceDir: "/proj", BuildTemp: "/tmp/build", OutputDir: "/out"},
		Configure: builder.Invocation{
			Name: "cmake",
			Args: []string{"/proj", "-DCMAKE_BUILD_TYPE=Release"},
			Dir:  "/tmp/build",
		},
		Build: builder.Invocation{Name: "cmake", Args: []string{"--build", "."}, Dir: "/tmp/build"},
	}
}

func TestNewRecord_Success(t *testing.T) {
	start := time.Now()
	plan := testPlan()
	result := &builder.Result{Plan: plan, Stage: builder.StageDone, Success: true}

	rec := NewRecord(plan, result, nil, start, start.Add(time.Second))

	assert.Equal(t, "gescpp", rec.Extension)
	assert.Equal(t, []string{"cmake", "/proj", "-DCMAKE_BUILD_TYPE=Release"}, rec.Configure)
	assert.Equal(t, []string{"cmake", "--build", "."}, rec.Build)
	assert.Equal(t, "done", rec.Stage)
	assert.True(t, rec.Success)
	assert.Equal(t, 0, rec.ExitCode)
	assert.Empty(t, rec.Error)
	assert.Equal(t, Fingerprint(rec.Configure, rec.Build), rec.Fingerprint)
}

func TestNewRecord_ConfigureFailed(t *testing.T) {
	plan := testPlan()
	result := &builder.Result{Plan: plan, Stage: builder.StageConfiguring}
	err := &builder.ToolError{Stage: builder.StageConfiguring, ExitCode: 1, Err: errors.New("exit status 1")}

	rec := NewRecord(plan, result, err, time.Now(), time.Now())

	assert.Equal(t, "configure", rec.Stage)
	assert.False(t, rec.Success)
	assert.Equal(t, 1, rec.ExitCode)
	assert.Contains(t, rec.Error, "cmake configure step failed")
}

func TestNewRecord_NoResult(t *testing.T) {
	err := &builder.ConfigError{Field: "source_dir", Err: errors.New("missing")}

	rec := NewRecord(testPlan(), nil, err, time.Now(), time.Now())

	assert.Equal(t, "planned", rec.Stage)
	assert.False(t, rec.Success)
	assert.Equal(t, 0, rec.ExitCode)
	assert.Contains(t, rec.Error, "missing")
}

func TestNewRecord_ExitCodeOnlyFromCMake(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"environment", &builder.EnvironmentError{Component: "torch", Err: builder.ErrTorchNotFound}, 0},
		{"config", &builder.ConfigError{Field: "python_version", Err: errors.New("bad")}, 0},
		{"build step", &builder.ToolError{Stage: builder.StageBuilding, ExitCode: 2, Err: errors.New("exit status 2")}, 2},
		{"not started", &builder.ToolError{Stage: builder.StageConfiguring, ExitCode: -1, Err: errors.New("no such file")}, -1},
		{"wrapped", fmt.Errorf("extension gescpp: %w", &builder.ToolError{Stage: builder.StageBuilding, ExitCode: 9, Err: errors.New("exit status 9")}), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(testPlan(), nil, tt.err, time.Now(), time.Now())
			assert.Equal(t, tt.want, rec.ExitCode)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"cmake", "/proj"}, []string{"cmake", "--build", "."})
	b := Fingerprint([]string{"cmake", "/proj"}, []string{"cmake", "--build", "."})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	// Argument boundaries matter
	c := Fingerprint([]string{"cmake /proj"}, []string{"cmake", "--build", "."})
	assert.NotEqual(t, a, c)

	d := Fingerprint([]string{"cmake", "/proj"}, []string{"cmake", "--build", ".", "-j4"})
	assert.NotEqual(t, a, d)
}
