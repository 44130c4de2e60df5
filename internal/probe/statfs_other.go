//go:build !linux && !darwin && !freebsd

package probe

func statfs(string) (int64, int64, error) {
	return 0, 0, ErrUnsupported
}
