//go:build !linux

package uring

import (
	"syscall"
	"unsafe"
)

func setup(entries uint32, p *params) (int, error) {
	return -1, syscall.ENOSYS
}

func enter(fd int, toSubmit, minComplete, flags uint32) (int, syscall.Errno) {
	return 0, syscall.ENOSYS
}

func register(fd int, opcode uint32, arg unsafe.Pointer, nrArgs uint32) syscall.Errno {
	return syscall.ENOSYS
}
