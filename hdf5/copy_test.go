package hdf5

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	srcFile := filepath.Join(tmpDir, "src.h5")
	dstFile := filepath.Join(tmpDir, "dst.h5")

	src, err := Create(srcFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := src.Root().SetAttr("title", "original"); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	g, err := src.Root().CreateGroup("session")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := g.SetAttr("rate", 100.0); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if _, err := g.CreateFloatDataset("data", []uint64{2, 2}, []float64{1, 2, 3, 4}); err != nil {
		t.Fatalf("CreateFloatDataset failed: %v", err)
	}
	if _, err := g.CreateStringDataset("labels", []string{"x", "y"}); err != nil {
		t.Fatalf("CreateStringDataset failed: %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := CopyFile(srcFile, dstFile); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	dst, err := Open(dstFile)
	if err != nil {
		t.Fatalf("Open copy failed: %v", err)
	}
	defer dst.Close()

	title, err := dst.Root().Attr("title").ReadScalarString()
	if err != nil {
		t.Fatalf("ReadScalarString failed: %v", err)
	}
	if title != "original" {
		t.Errorf("Expected title %q, got %q", "original", title)
	}

	g2, err := dst.OpenGroup("/session")
	if err != nil {
		t.Fatalf("OpenGroup failed: %v", err)
	}
	rate, err := g2.Attr("rate").ReadScalarFloat64()
	if err != nil {
		t.Fatalf("ReadScalarFloat64 failed: %v", err)
	}
	if rate != 100.0 {
		t.Errorf("Expected rate 100.0, got %v", rate)
	}

	ds, err := dst.OpenDataset("/session/data")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	shape := ds.Shape()
	if len(shape) != 2 || shape[0] != 2 || shape[1] != 2 {
		t.Errorf("Unexpected shape: %v", shape)
	}
	values, err := ds.ReadFloat64()
	if err != nil {
		t.Fatalf("ReadFloat64 failed: %v", err)
	}
	if len(values) != 4 || values[0] != 1 || values[3] != 4 {
		t.Errorf("Unexpected values: %v", values)
	}

	labels, err := dst.OpenDataset("/session/labels")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	got, err := labels.ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("Unexpected labels: %v", got)
	}
}

// Copying a file that links into another file materializes the linked
// objects in the copy.
func TestCopyFileMaterializesLinks(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hdf5-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	baseFile := filepath.Join(tmpDir, "base.h5")
	linkFile := filepath.Join(tmpDir, "linker.h5")
	copyFile := filepath.Join(tmpDir, "copy.h5")

	base, err := Create(baseFile)
	if err != nil {
		t.Fatalf("Create base failed: %v", err)
	}
	if _, err := base.Root().CreateDataset("shared", []float64{5, 6, 7}); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	if err := base.Close(); err != nil {
		t.Fatalf("Close base failed: %v", err)
	}

	linker, err := Create(linkFile)
	if err != nil {
		t.Fatalf("Create linker failed: %v", err)
	}
	if err := linker.Root().CreateExternalLink("shared", "base.h5", "/shared"); err != nil {
		t.Fatalf("CreateExternalLink failed: %v", err)
	}
	if err := linker.Close(); err != nil {
		t.Fatalf("Close linker failed: %v", err)
	}

	if err := CopyFile(linkFile, copyFile); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	// Remove the base file: the copy must stand on its own.
	if err := os.Remove(baseFile); err != nil {
		t.Fatalf("Remove base failed: %v", err)
	}

	cp, err := Open(copyFile)
	if err != nil {
		t.Fatalf("Open copy failed: %v", err)
	}
	defer cp.Close()

	ds, err := cp.OpenDataset("/shared")
	if err != nil {
		t.Fatalf("OpenDataset in copy failed: %v", err)
	}
	values, err := ds.ReadFloat64()
	if err != nil {
		t.Fatalf("ReadFloat64 failed: %v", err)
	}
	if len(values) != 3 || values[0] != 5 || values[2] != 7 {
		t.Errorf("Unexpected values: %v", values)
	}
}
