//go:build linux

package watch

import "unsafe"

func ptrAt(buf []byte, off int) unsafe.Pointer {
	return unsafe.Pointer(&buf[off])
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}
