package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealMainReportsScenarioErrorToLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "collide.log")
	scenarioPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte("blocks:\n  a: {mass: 0}\n"), 0o644))

	t.Setenv("COLLIDE_LOG_FILE", logPath)
	t.Setenv("COLLIDE_SCENARIO", "")

	assert.Equal(t, 1, realMain([]string{"-scenario", scenarioPath}))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scenario rejected")
	assert.Contains(t, string(data), "mass A")
}

func TestRealMainRejectsUnknownFlag(t *testing.T) {
	t.Setenv("COLLIDE_LOG_FILE", "")
	assert.Equal(t, 2, realMain([]string{"-nope"}))
}
