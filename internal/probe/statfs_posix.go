//go:build linux || darwin || freebsd

package probe

import "golang.org/x/sys/unix"

func statfs(dir string) (free, total int64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return 0, 0, err
	}

	bsize := int64(st.Bsize)

	return int64(st.Bavail) * bsize, int64(st.Blocks) * bsize, nil
}
