package probe

import (
	"context"
	"os"
	"path/filepath"
)

// DiskProbe reports capacity of the filesystem holding Dir.
type DiskProbe struct {
	Dir string
}

func NewDiskProbe(dir string) *DiskProbe {
	return &DiskProbe{Dir: dir}
}

func (d *DiskProbe) FreeSpaceBytes(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	free, _, err := statfs(d.existingDir())

	return free, err
}

func (d *DiskProbe) TotalSpaceBytes(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	_, total, err := statfs(d.existingDir())

	return total, err
}

// existingDir walks up from Dir to the nearest directory that exists, so the
// probe works before the download directory is created.
func (d *DiskProbe) existingDir() string {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}

	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}

		dir = parent
	}
}
