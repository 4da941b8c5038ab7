//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package pool

func allocDirect(size int) (buf []byte, mapped bool) {
	return make([]byte, size), false
}

func freeDirect([]byte, bool) {}
