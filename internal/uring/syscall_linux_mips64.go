//go:build linux && (mips64 || mips64le)

package uring

import (
	"syscall"
	"unsafe"
)

// mips64 places the generic syscall table at a 5000 offset.
const (
	sysIOUringSetup    = 5425
	sysIOUringEnter    = 5426
	sysIOUringRegister = 5427
)

func setup(entries uint32, p *params) (int, error) {
	fd, _, errno := syscall.Syscall(sysIOUringSetup, uintptr(entries), uintptr(unsafe.Pointer(p)), 0)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

func enter(fd int, toSubmit, minComplete, flags uint32) (int, syscall.Errno) {
	r, _, errno := syscall.Syscall6(sysIOUringEnter, uintptr(fd), uintptr(toSubmit), uintptr(minComplete), uintptr(flags), 0, 0)
	return int(r), errno
}

func register(fd int, opcode uint32, arg unsafe.Pointer, nrArgs uint32) syscall.Errno {
	_, _, errno := syscall.Syscall6(sysIOUringRegister, uintptr(fd), uintptr(opcode), uintptr(arg), uintptr(nrArgs), 0, 0)
	return errno
}
