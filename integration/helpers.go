//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDBPath creates a temporary database path for testing
func TempDBPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "journeys.db")
}

// SeedDir writes a small agent catalog into a temp directory and returns it
func SeedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	seed := `agents:
  - id: agent-research
    name: Research Scout
    description: Gathers market and competitor data
    category: research
    keywords: [research, survey, market]
    installed: true
  - id: agent-budget
    name: Budget Analyst
    description: Reviews costs and approvals
    category: finance
    keywords: [budget, cost, invoice]
    installed: true
`
	if err := os.WriteFile(filepath.Join(dir, "agents.yaml"), []byte(seed), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return dir
}
