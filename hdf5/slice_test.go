package hdf5

import (
	"os"
	"path/filepath"
	"testing"
)

// sliceTestFile creates a file with a 4x3 float dataset, values 0..11 in
// row-major order.
func sliceTestFile(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	testFile := filepath.Join(tmpDir, "slice.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i)
	}
	if _, err := f.Root().CreateFloatDataset("grid", []uint64{4, 3}, values); err != nil {
		t.Fatalf("CreateFloatDataset failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return testFile
}

func TestReadSlice(t *testing.T) {
	testFile := sliceTestFile(t)

	f, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	ds, err := f.OpenDataset("/grid")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	// Middle 2x2 block: rows 1-2, cols 1-2
	var block []float64
	if err := ds.ReadSlice(&block, []uint64{1, 1}, []uint64{2, 2}); err != nil {
		t.Fatalf("ReadSlice failed: %v", err)
	}
	want := []float64{4, 5, 7, 8}
	if len(block) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(block))
	}
	for i := range want {
		if block[i] != want[i] {
			t.Errorf("block[%d]: expected %v, got %v", i, want[i], block[i])
		}
	}
}

func TestReadRows(t *testing.T) {
	testFile := sliceTestFile(t)

	f, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	ds, err := f.OpenDataset("/grid")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	var rows []float64
	if err := ds.ReadRows(&rows, 2, 2); err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	want := []float64{6, 7, 8, 9, 10, 11}
	if len(rows) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("rows[%d]: expected %v, got %v", i, want[i], rows[i])
		}
	}
}

func TestCreateStringDataset(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "strings.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	labels := []string{"left", "right", "left"}
	if _, err := f.Root().CreateStringDataset("labels", labels); err != nil {
		t.Fatalf("CreateStringDataset failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	ds, err := f2.OpenDataset("/labels")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	if !ds.IsString() {
		t.Error("Expected IsString to be true")
	}
	got, err := ds.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if len(got) != 3 || got[0] != "left" || got[1] != "right" {
		t.Errorf("Unexpected strings: %v", got)
	}
}
