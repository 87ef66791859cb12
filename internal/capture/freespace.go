package capture

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// DiskFreeSpacer reports free space on the filesystem that would hold
// path (statfs on its parent directory, since the file itself may not
// exist yet), the production FreeSpacer a Recorder is normally
// constructed with.
func DiskFreeSpacer(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
