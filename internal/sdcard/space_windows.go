//go:build windows

package sdcard

import "golang.org/x/sys/windows"

func statSpace(root string) (Space, error) {
	dir, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return Space{}, err
	}
	var free, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(dir, &free, &total, &totalFree); err != nil {
		return Space{}, err
	}
	return Space{Total: total, Free: free}, nil
}
