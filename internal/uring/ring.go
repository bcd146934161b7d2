package uring

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"syscall"
	"unsafe"
)

// rawRing is the default Ring backend: direct io_uring_setup/enter/register
// syscalls against an mmap'd SQ/CQ, no cgo and no third-party dependency.
type rawRing struct {
	fd      int
	p       params
	sqeMem  []byte
	ringMem []byte

	sqHead, sqTail *uint32
	sqMask         uint32
	sqEntries      uint32
	sqArray        *uint32
	sqes           []sqe

	cqHead, cqTail *uint32
	cqMask         uint32
	cqes           []cqe

	registered bool
}

func newRawRing(cfg Config) (Ring, error) {
	depth := cfg.depth()
	p := params{}
	if cfg.SQPoll {
		p.Flags |= setupSQPoll
		p.SqThreadIdle = 1000
	}

	fd, err := setup(depth, &p)
	if err != nil {
		return nil, fmt.Errorf("uring: io_uring_setup: %w", err)
	}
	if p.Features&featSingleMmap == 0 {
		syscall.Close(fd)
		return nil, fmt.Errorf("uring: kernel lacks IORING_FEAT_SINGLE_MMAP (need Linux 5.4+)")
	}

	r := &rawRing{fd: fd, p: p}

	pageSize := uint32(syscall.Getpagesize())
	sqRingSize := p.SqOff.Array + p.SqEntries*4
	cqRingSize := p.CqOff.Cqes + p.CqEntries*uint32(unsafe.Sizeof(cqe{}))
	ringSize := sqRingSize
	if cqRingSize > ringSize {
		ringSize = cqRingSize
	}
	ringSize = (ringSize + pageSize - 1) &^ (pageSize - 1)

	ringMem, err := syscall.Mmap(fd, 0, int(ringSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED|syscall.MAP_POPULATE)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("uring: mmap ring: %w", err)
	}
	r.ringMem = ringMem

	sqeSize := p.SqEntries * uint32(unsafe.Sizeof(sqe{}))
	sqeMem, err := syscall.Mmap(fd, 0x10000000, int(sqeSize), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED|syscall.MAP_POPULATE)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("uring: mmap sqes: %w", err)
	}
	r.sqeMem = sqeMem

	r.sqHead = (*uint32)(unsafe.Pointer(&ringMem[p.SqOff.Head]))
	r.sqTail = (*uint32)(unsafe.Pointer(&ringMem[p.SqOff.Tail]))
	r.sqMask = *(*uint32)(unsafe.Pointer(&ringMem[p.SqOff.RingMask]))
	r.sqEntries = *(*uint32)(unsafe.Pointer(&ringMem[p.SqOff.RingEntries]))
	r.sqArray = (*uint32)(unsafe.Pointer(&ringMem[p.SqOff.Array]))
	r.sqes = unsafe.Slice((*sqe)(unsafe.Pointer(&sqeMem[0])), p.SqEntries)

	r.cqHead = (*uint32)(unsafe.Pointer(&ringMem[p.CqOff.Head]))
	r.cqTail = (*uint32)(unsafe.Pointer(&ringMem[p.CqOff.Tail]))
	r.cqMask = *(*uint32)(unsafe.Pointer(&ringMem[p.CqOff.RingMask]))
	r.cqes = unsafe.Slice((*cqe)(unsafe.Pointer(&ringMem[p.CqOff.Cqes])), p.CqEntries)

	return r, nil
}

func (r *rawRing) peekSQE() *sqe {
	tail := atomic.LoadUint32(r.sqTail)
	head := atomic.LoadUint32(r.sqHead)
	if tail-head >= r.sqEntries {
		return nil
	}
	idx := tail & r.sqMask
	s := &r.sqes[idx]
	*s = sqe{}
	arrayPtr := (*uint32)(unsafe.Pointer(uintptr(unsafe.Pointer(r.sqArray)) + uintptr(idx)*4))
	*arrayPtr = idx
	return s
}

func (r *rawRing) advanceSQ() {
	atomic.AddUint32(r.sqTail, 1)
}

func (r *rawRing) PrepareWrite(fd int32, fixedFile bool, buf []byte, offset int64, userData uint64) error {
	s := r.peekSQE()
	if s == nil {
		return ErrRingFull
	}
	s.Opcode = opWrite
	s.Fd = fd
	s.Off = uint64(offset)
	s.UserData = userData
	if len(buf) > 0 {
		s.Addr = uint64(uintptr(unsafe.Pointer(&buf[0])))
		s.Len = uint32(len(buf))
	}
	if fixedFile {
		s.Flags |= sqeFixedFile
	}
	r.advanceSQ()
	return nil
}

func (r *rawRing) PrepareFsync(fd int32, fixedFile bool, dataOnly bool, userData uint64) error {
	s := r.peekSQE()
	if s == nil {
		return ErrRingFull
	}
	s.Opcode = opFsync
	s.Fd = fd
	s.UserData = userData
	if dataOnly {
		s.OpcodeFlags = fsyncDataSync
	}
	if fixedFile {
		s.Flags |= sqeFixedFile
	}
	r.advanceSQ()
	return nil
}

func (r *rawRing) pendingSQEs() uint32 {
	return atomic.LoadUint32(r.sqTail) - atomic.LoadUint32(r.sqHead)
}

func (r *rawRing) Submit() (uint32, error) {
	toSubmit := r.pendingSQEs()
	if toSubmit == 0 {
		return 0, nil
	}
	for {
		n, errno := enter(r.fd, toSubmit, 0, 0)
		if errno == syscall.EINTR {
			continue
		}
		if errno != 0 {
			return uint32(n), errno
		}
		return uint32(n), nil
	}
}

func (r *rawRing) PeekCompletion() (uint64, int32, bool) {
	head := atomic.LoadUint32(r.cqHead)
	tail := atomic.LoadUint32(r.cqTail)
	if head == tail {
		return 0, 0, false
	}
	c := &r.cqes[head&r.cqMask]
	ud, res := c.UserData, c.Res
	atomic.AddUint32(r.cqHead, 1)
	return ud, res, true
}

func (r *rawRing) WaitCompletion() (uint64, int32, error) {
	head := atomic.LoadUint32(r.cqHead)
	tail := atomic.LoadUint32(r.cqTail)
	for head == tail {
		_, errno := enter(r.fd, 0, 1, enterGetEvents)
		if errno == syscall.EINTR || errno == syscall.EAGAIN {
			runtime.Gosched()
			tail = atomic.LoadUint32(r.cqTail)
			continue
		}
		if errno != 0 {
			return 0, 0, errno
		}
		tail = atomic.LoadUint32(r.cqTail)
	}
	c := &r.cqes[head&r.cqMask]
	ud, res := c.UserData, c.Res
	atomic.AddUint32(r.cqHead, 1)
	return ud, res, nil
}

func (r *rawRing) RegisterFiles(fds []int32) error {
	if len(fds) == 0 {
		return fmt.Errorf("uring: RegisterFiles requires at least one fd")
	}
	errno := register(r.fd, registerFiles, unsafe.Pointer(&fds[0]), uint32(len(fds)))
	if errno != 0 {
		return fmt.Errorf("uring: register files: %w", errno)
	}
	r.registered = true
	return nil
}

func (r *rawRing) UnregisterFiles() error {
	if !r.registered {
		return nil
	}
	errno := register(r.fd, unregisterFiles, nil, 0)
	r.registered = false
	if errno != 0 {
		return fmt.Errorf("uring: unregister files: %w", errno)
	}
	return nil
}

func (r *rawRing) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.ringMem != nil {
		if err := syscall.Munmap(r.ringMem); err != nil && firstErr == nil {
			firstErr = err
		}
		r.ringMem = nil
	}
	if r.sqeMem != nil {
		if err := syscall.Munmap(r.sqeMem); err != nil && firstErr == nil {
			firstErr = err
		}
		r.sqeMem = nil
	}
	if r.fd >= 0 {
		if err := syscall.Close(r.fd); err != nil && firstErr == nil {
			firstErr = err
		}
		r.fd = -1
	}
	return firstErr
}
