package main

import (
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// envWithout returns the current environment with the named variables removed.
func envWithout(names ...string) []string {
	var env []string
outer:
	for _, e := range os.Environ() {
		for _, name := range names {
			if strings.HasPrefix(e, name+"=") {
				continue outer
			}
		}
		env = append(env, e)
	}
	return env
}

func TestRefreshCommand_MissingDatabaseURL(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "refresh")
	cmd.Env = envWithout("DATABASE_URL", "GEMINI_API_KEY")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "database URL is required")
}

func TestRefreshCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "refresh",
		"--db-url", "postgres://localhost:5432/insights")
	cmd.Env = envWithout("GEMINI_API_KEY")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "API key is required")
}

func TestRefreshCommand_BadConfigFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "refresh", "--config", "does-not-exist.json")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "does-not-exist.json")
}
