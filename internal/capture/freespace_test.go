package capture

import (
	"path/filepath"
	"testing"
)

func TestDiskFreeSpacerReportsNonZeroForExistingDir(t *testing.T) {
	dir := t.TempDir()
	free, err := DiskFreeSpacer(filepath.Join(dir, "out.wav"))
	if err != nil {
		t.Fatalf("DiskFreeSpacer: %v", err)
	}
	if free == 0 {
		t.Error("expected non-zero free space for a real temp directory")
	}
}

func TestDiskFreeSpacerErrorsOnMissingParent(t *testing.T) {
	if _, err := DiskFreeSpacer("/no/such/parent/dir/out.wav"); err == nil {
		t.Error("expected an error for a nonexistent parent directory")
	}
}
