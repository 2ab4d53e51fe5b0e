package main

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCommand_MissingDatabaseURL(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "serve")
	cmd.Env = envWithout("DATABASE_URL", "GEMINI_API_KEY")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "database URL is required")
}

func TestServeCommand_InvalidSchedule(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "serve",
		"--db-url", "postgres://localhost:5432/insights",
		"--api-key", "test-key",
		"--schedule", "not a cron expression")
	output, err := cmd.CombinedOutput()

	// The invalid expression must surface before anything connects.
	assert.Error(t, err)
	assert.Contains(t, string(output), "not a cron expression")
}

func TestHelpListsSubcommands(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "--help")
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err)
	assert.Contains(t, string(output), "serve")
	assert.Contains(t, string(output), "refresh")
	assert.Contains(t, string(output), "status")
}
