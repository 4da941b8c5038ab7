//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package pool

import "golang.org/x/sys/unix"

// allocDirect maps anonymous memory outside the Go heap. If the kernel refuses
// the mapping, heap memory is used and mapped is false.
func allocDirect(size int) (buf []byte, mapped bool) {
	if size == 0 {
		return []byte{}, false
	}

	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return make([]byte, size), false
	}

	return buf, true
}

func freeDirect(buf []byte, mapped bool) {
	if !mapped {
		return
	}
	if err := unix.Munmap(buf); err != nil {
		panic("pool: munmap: " + err.Error())
	}
}
