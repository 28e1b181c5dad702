package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan_PrintsInvocationsWithoutRunning(t *testing.T) {
	dir, exec := setupProject(t, true)
	checkTool = func(name string) (string, error) {
		t.Fatal("plan must not look up cmake")
		return "", nil
	}

	out, err := run(t, "plan", dir, "-e", "gescpp")
	require.NoError(t, err)

	assert.Empty(t, exec.calls)
	assert.Contains(t, out, "gescpp")
	assert.Contains(t, out, "Mode:      Release")
	assert.Contains(t, out, "Configure: cmake "+dir)
	assert.Contains(t, out, "-DPYTHON_VERSION=311")
	assert.Contains(t, out, "Build:     cmake --build .")
}
