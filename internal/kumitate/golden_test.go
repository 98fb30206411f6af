package kumitate

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

var update = flag.Bool("update", false, "update golden files")

// TestGoldenGeneration generates code for each testdata package and compares
// the result against its expected.golden file. Directories without a golden
// file hold error cases and are covered by the processor tests.
func TestGoldenGeneration(t *testing.T) {
	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("failed to read testdata directory: %v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		testName := entry.Name()
		if _, err := os.Stat(filepath.Join("testdata", testName, "expected.golden")); os.IsNotExist(err) {
			continue
		}

		t.Run(testName, func(t *testing.T) {
			runGoldenTest(t, testName)
		})
	}
}

func runGoldenTest(t *testing.T, testName string) {
	t.Helper()

	srcDir := filepath.Join("testdata", testName)
	generatedPath := filepath.Join(srcDir, "kumitate_gumi.go")

	// A stale generated file from an earlier failed run would be loaded as
	// part of the package, so drop it before generating.
	_ = os.Remove(generatedPath)
	defer func() {
		_ = os.Remove(generatedPath)
	}()

	processor := NewProcessor("kumitate_gumi.go")
	if err := processor.ProcessPatterns([]string{"./" + filepath.ToSlash(srcDir)}); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	actual, err := os.ReadFile(generatedPath)
	if err != nil {
		t.Fatalf("failed to read generated file: %v", err)
	}

	goldenPath := filepath.Join(srcDir, "expected.golden")
	if *update {
		if err := os.WriteFile(goldenPath, actual, 0o644); err != nil {
			t.Fatalf("failed to update golden file: %v", err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("missing golden file: %s", goldenPath)
	}

	if string(actual) != string(expected) {
		t.Errorf("output mismatch:\n--- want ---\n%s\n--- got ---\n%s", expected, actual)
	}
}
