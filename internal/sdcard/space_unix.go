//go:build unix

package sdcard

import "golang.org/x/sys/unix"

func statSpace(root string) (Space, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(root, &st); err != nil {
		return Space{}, err
	}
	// Field types differ between platforms.
	bsize := uint64(st.Bsize) //nolint:gosec // block size is positive
	return Space{
		Total: uint64(st.Blocks) * bsize,
		Free:  uint64(st.Bavail) * bsize, //nolint:gosec // never negative
	}, nil
}
