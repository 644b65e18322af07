//go:build linux || darwin

package source

import "golang.org/x/sys/unix"

// adviseSequential tells the kernel each worker reads its region front to back.
func adviseSequential(b []byte) error {
	return unix.Madvise(b, unix.MADV_SEQUENTIAL)
}
