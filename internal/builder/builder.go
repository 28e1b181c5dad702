// Package builder turns one extension target and an explicit Environment into
// the two cmake invocations (configure, then build) that produce the native
// library, and runs them.
package builder

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Norgate-AV/extbuild/internal/utils"
)

// DefaultCMake is the cmake program used when Options.CMake is empty
const DefaultCMake = "cmake"

// Executor runs a single external process to completion.
// Implementations must inherit the caller's standard streams.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) error
}

// Options are the per-build knobs that do not come from the Environment
type Options struct {
	CMake    string
	Debug    bool
	Parallel int
}

// Result describes how far a build got
type Result struct {
	Plan    *Plan
	Stage   Stage
	Success bool
}

// Builder plans and executes extension builds
type Builder struct {
	env  *Environment
	exec Executor
	opts Options

	mkdirAll func(path string, perm os.FileMode) error
	stat     func(path string) (os.FileInfo, error)
}

// New creates a builder. env and exec must be non-nil.
func New(env *Environment, exec Executor, opts Options) *Builder {
	if opts.CMake == "" {
		opts.CMake = DefaultCMake
	}

	return &Builder{
		env:      env,
		exec:     exec,
		opts:     opts,
		mkdirAll: os.MkdirAll,
		stat:     os.Stat,
	}
}

// Plan resolves target into a Plan without touching the filesystem or
// running anything other than the Environment's own queries.
func (b *Builder) Plan(ctx context.Context, target BuildTarget) (*Plan, error) {
	t, err := target.resolve()
	if err != nil {
		return nil, err
	}

	tc, err := ResolveToolchain(ctx, b.env, b.opts.Debug)
	if err != nil {
		return nil, err
	}

	pf := DetectPlatformFlags(b.env, b.opts.Parallel)
	outDir := utils.EnsureTrailingSeparator(t.OutputDir)

	configureArgs := ConfigureArgs(outDir, *tc, pf)
	buildArgs := BuildArgs(pf)

	return &Plan{
		Target:        t,
		Toolchain:     *tc,
		Platform:      pf,
		ConfigureArgs: configureArgs,
		BuildArgs:     buildArgs,
		Configure: Invocation{
			Name: b.opts.CMake,
			Args: append([]string{t.SourceDir}, configureArgs...),
			Dir:  t.BuildTemp,
		},
		Build: Invocation{
			Name: b.opts.CMake,
			Args: append([]string{"--build", "."}, buildArgs...),
			Dir:  t.BuildTemp,
		},
	}, nil
}

// Build plans and executes target. On failure the returned Result, when
// non-nil, records the stage that failed.
func (b *Builder) Build(ctx context.Context, target BuildTarget) (*Result, error) {
	plan, err := b.Plan(ctx, target)
	if err != nil {
		return nil, err
	}

	return b.Execute(ctx, plan)
}

// Execute runs a plan: configure, then build, both inside the build temp directory
func (b *Builder) Execute(ctx context.Context, plan *Plan) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("extension", plan.Target.Name).Logger()
	result := &Result{Plan: plan, Stage: StagePlanned}

	if _, err := b.stat(plan.Target.SourceDir); err != nil {
		return result, &ConfigError{Field: "source_dir", Err: err}
	}

	for _, dir := range []string{plan.Target.BuildTemp, plan.Target.OutputDir} {
		if err := b.mkdirAll(dir, 0o755); err != nil {
			return result, &ConfigError{Field: "directory", Err: fmt.Errorf("failed to create %s: %w", dir, err)}
		}
	}

	steps := []struct {
		stage Stage
		inv   Invocation
	}{
		{StageConfiguring, plan.Configure},
		{StageBuilding, plan.Build},
	}

	for _, step := range steps {
		result.Stage = step.stage
		logger.Info().Str("stage", step.stage.String()).Str("dir", step.inv.Dir).Msg(step.inv.String())

		if err := b.exec.Execute(ctx, step.inv); err != nil {
			logger.Error().Err(err).Str("stage", step.stage.String()).Msg("cmake step failed")
			return result, newToolError(step.stage, err)
		}
	}

	result.Stage = StageDone
	result.Success = true
	logger.Info().Str("output", plan.Target.OutputDir).Msg("extension built")

	return result, nil
}
