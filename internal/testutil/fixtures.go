// Package testutil provides test helper utilities for skillforge tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillforge-dev/skillforge/internal/domain"
)

// TempHome creates a temporary SKILLFORGE_HOME with the given files and
// returns its path. Files is a map of relative path -> content.
// The directory is automatically cleaned up when the test finishes.
func TempHome(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// ConfigFiles returns a config.yaml pointing at apiURL with logs and state
// kept inside the home directory. Capture is disabled.
func ConfigFiles(apiURL string) map[string]string {
	return AudioConfigFiles(apiURL, "")
}

// AudioConfigFiles is ConfigFiles with cat as the capture command, so a
// recording yields the contents of audioFile. An empty audioFile disables
// capture.
func AudioConfigFiles(apiURL, audioFile string) map[string]string {
	audio := "audio:\n  command: \"\"\n"
	if audioFile != "" {
		audio = fmt.Sprintf("audio:\n  command: cat\n  args: [%q]\n", audioFile)
	}
	return map[string]string{
		".skillforge/config.yaml": fmt.Sprintf(`version: 1
api:
  base_url: %s
  request_timeout: 5
  voice_timeout: 5
%slog:
  level: debug
ui:
  default_track: arrays
`, apiURL, audio),
	}
}

// ArraysTrack returns the fixture track served by Backend.
func ArraysTrack() domain.Track {
	return domain.Track{
		ID:          "arrays",
		Name:        "Arrays & Hashing",
		Description: "Warm-up problems on arrays and hash maps.",
		Tasks:       []domain.Exercise{TwoSum(), ContainsDuplicate()},
	}
}

// TwoSum returns an exercise with two hints and a solution.
func TwoSum() domain.Exercise {
	return domain.Exercise{
		ID:                  "two-sum",
		Title:               "Two Sum",
		Type:                domain.TypeCoding,
		Difficulty:          domain.DifficultyEasy,
		Points:              10,
		Description:         "Return indices of the two numbers that add up to target.",
		StarterCode:         "def two_sum(nums, target):\n    pass\n",
		Hints:               []string{"Use a hash map.", "Store each complement as you go."},
		SolutionExplanation: "One pass with a map from value to index.",
	}
}

// ContainsDuplicate returns an exercise without hints or difficulty.
func ContainsDuplicate() domain.Exercise {
	return domain.Exercise{
		ID:          "contains-duplicate",
		Title:       "Contains Duplicate",
		Type:        domain.TypeCoding,
		Points:      15,
		Description: "Return true if any value appears twice.",
		StarterCode: "def contains_duplicate(nums):\n    pass\n",
	}
}
