package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/extbuild/internal/builder"
	"github.com/Norgate-AV/extbuild/internal/cmake"
	"github.com/Norgate-AV/extbuild/internal/config"
	"github.com/Norgate-AV/extbuild/internal/history"
	"github.com/Norgate-AV/extbuild/internal/logging"
	"github.com/Norgate-AV/extbuild/internal/manifest"
	"github.com/Norgate-AV/extbuild/internal/toolchain"
)

// Seams for tests
var (
	newExecutor = func(stdout, stderr io.Writer) builder.Executor {
		r := cmake.NewRunner()
		r.Stdout = stdout
		r.Stderr = stderr

		return r
	}
	hostEnvironment           = toolchain.Host
	checkTool                 = cmake.CheckTool
	logOutput       io.Writer = os.Stderr
)

func newBuildCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "build [MANIFEST|DIR]",
		Short: "Configure and build the declared extensions",
		Long: `Build every extension declared in extbuild.hcl (or only the one selected
with --extension). Each extension is configured with cmake in its own build
directory, then built; the first failure stops the run.`,
		Args:         maxArgs(1),
		RunE:         runBuild,
		SilenceUsage: true,
	}

	addBuildFlags(c)
	c.Flags().Bool("no-history", false, "Do not record this build in the history database")

	return c
}

func addBuildFlags(c *cobra.Command) {
	c.Flags().String("cmake", "", "cmake program to run")
	c.Flags().String("python", "", "Python interpreter to build for")
	c.Flags().String("torch-cmake-path", "", "PyTorch CMake prefix path (skips probing the interpreter)")
	c.Flags().BoolP("debug", "g", false, "Build with CMAKE_BUILD_TYPE=Debug")
	c.Flags().IntP("parallel", "j", 0, "Number of parallel build jobs")
	c.Flags().String("build-lib", "", "Directory for compiled libraries")
	c.Flags().String("build-temp", "", "Directory for cmake build trees")
	c.Flags().StringP("extension", "e", "", "Only build the named extension")
}

// session is everything a build or plan command resolves before touching cmake
type session struct {
	cfg      *config.Config
	manifest *manifest.Manifest
	exts     []manifest.Extension
	env      *builder.Environment
	exec     builder.Executor
	builder  *builder.Builder
	ctx      context.Context
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := config.NewLoader().LoadForBuild(cmd.Flags(), args)
	if err != nil {
		return nil, &builder.ConfigError{Field: "config", Err: err}
	}

	logger := logging.New(logOutput, cfg.LogLevel, cfg.LogFormat)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx)

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	path, err := manifest.Locate(arg)
	if err != nil {
		return nil, &builder.ConfigError{Field: "manifest", Err: err}
	}

	m, err := manifest.Load(path)
	if err != nil {
		return nil, &builder.ConfigError{Field: "manifest", Err: err}
	}

	only, _ := cmd.Flags().GetString("extension")
	exts, err := m.Select(only)
	if err != nil {
		return nil, &builder.ConfigError{Field: "extension", Err: err}
	}

	logger.Debug().
		Str("manifest", path).
		Str("package", m.Package.Name).
		Str("version", m.Package.Version).
		Int("extensions", len(exts)).
		Msg("loaded manifest")

	s := &session{
		cfg:      cfg,
		manifest: m,
		exts:     exts,
		env:      hostEnvironment(toolchain.Options{Python: cfg.PythonPath, TorchCMakePath: cfg.TorchCMakePath}),
		exec:     newExecutor(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		ctx:      ctx,
	}
	s.builder = builder.New(s.env, s.exec, s.options(cfg.CMakePath))

	return s, nil
}

func (s *session) options(cmakePath string) builder.Options {
	return builder.Options{
		CMake:    cmakePath,
		Debug:    s.cfg.Debug,
		Parallel: s.cfg.Parallel,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	cmakePath, err := checkTool(s.cfg.CMakePath)
	if err != nil {
		return &builder.EnvironmentError{Component: "cmake", Err: err}
	}
	s.builder = builder.New(s.env, s.exec, s.options(cmakePath))

	store := openHistory(s)
	if store != nil {
		defer store.Close()
	}

	out := cmd.OutOrStdout()

	for _, ext := range s.exts {
		plan, err := s.builder.Plan(s.ctx, ext.Target(s.cfg.BuildLib, s.cfg.BuildTemp))
		if err != nil {
			return fmt.Errorf("extension %s: %w", ext.Name, err)
		}

		if s.cfg.Verbose {
			printPlan(out, plan)
		}

		started := time.Now()
		result, err := s.builder.Execute(s.ctx, plan)
		record(s.ctx, store, plan, result, err, started)

		if err != nil {
			return fmt.Errorf("extension %s: %w", ext.Name, err)
		}

		fmt.Fprintf(out, "%s %s -> %s\n", color.GreenString("built"), ext.Name, plan.Target.OutputDir)
	}

	return nil
}

func openHistory(s *session) *history.Store {
	if s.cfg.NoHistory {
		return nil
	}

	store, err := history.Open(s.cfg.HistoryDir)
	if err != nil {
		zerolog.Ctx(s.ctx).Warn().Err(err).Msg("build history disabled")
		return nil
	}

	return store
}

func record(ctx context.Context, store *history.Store, plan *builder.Plan, result *builder.Result, buildErr error, started time.Time) {
	if store == nil {
		return
	}

	logger := zerolog.Ctx(ctx)
	rec := history.NewRecord(plan, result, buildErr, started, time.Now())

	artifacts, err := history.CollectArtifacts(plan.Target.OutputDir, lastComponent(plan.Target.Name))
	if err != nil {
		logger.Warn().Err(err).Msg("failed to list build outputs")
	}
	rec.Artifacts = artifacts

	if _, err := store.Append(rec); err != nil {
		logger.Warn().Err(err).Msg("failed to record build")
	}
}

// lastComponent returns the module's own name from a dotted path
func lastComponent(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}

	return name
}
