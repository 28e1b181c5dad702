package cmake

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc func() error
}

func (m *mockCommander) Run() error {
	return m.runFunc()
}

func TestRunner_Execute_PassesInvocation(t *testing.T) {
	r := NewRunner()

	var gotDir, gotName string
	var gotArgs []string
	r.execCommand = func(ctx context.Context, dir, name string, args ...string) Commander {
		gotDir, gotName, gotArgs = dir, name, args
		return &mockCommander{runFunc: func() error { return nil }}
	}

	inv := builder.Invocation{Name: "cmake", Args: []string{"--build", ".", "-j4"}, Dir: "/tmp/build"}
	require.NoError(t, r.Execute(context.Background(), inv))

	assert.Equal(t, "/tmp/build", gotDir)
	assert.Equal(t, "cmake", gotName)
	assert.Equal(t, []string{"--build", ".", "-j4"}, gotArgs)
}

func TestRunner_Execute_NonExitError(t *testing.T) {
	r := NewRunner()
	r.execCommand = func(ctx context.Context, dir, name string, args ...string) Commander {
		return &mockCommander{runFunc: func() error { return fmt.Errorf("command not found") }}
	}

	err := r.Execute(context.Background(), builder.Invocation{Name: "cmake"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to run cmake")
	assert.Contains(t, err.Error(), "command not found")
}

func TestRunner_Execute_ExitCodeSurvivesWrapping(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	r := NewRunner()
	r.execCommand = func(ctx context.Context, dir, name string, args ...string) Commander {
		return exec.CommandContext(ctx, "/bin/sh", "-c", "exit 3")
	}

	err := r.Execute(context.Background(), builder.Invocation{Name: "cmake"})
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "cmake exited with code 3")
}

func TestRunner_Execute_RealProcessInheritsStreams(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	var stdout bytes.Buffer
	r := NewRunner()
	r.Stdout = &stdout

	dir := t.TempDir()
	inv := builder.Invocation{Name: "/bin/sh", Args: []string{"-c", "pwd"}, Dir: dir}
	require.NoError(t, r.Execute(context.Background(), inv))

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(bytes.TrimSpace(stdout.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCheckTool(t *testing.T) {
	_, err := CheckTool("definitely-not-a-real-cmake-binary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cmake not found")
}

func TestNewRunner(t *testing.T) {
	r := NewRunner()
	assert.NotNil(t, r)
	assert.NotNil(t, r.execCommand)
}
