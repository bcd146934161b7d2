//go:build giouring

package uring

import (
	"fmt"
	"unsafe"

	giouring "github.com/pawelgaczynski/giouring"
)

// gioRing adapts github.com/pawelgaczynski/giouring's liburing-style API to
// the Ring interface. Opt in with -tags giouring to have that library set up
// the ring and prepare SQEs instead of the default hand-rolled rawRing.
type gioRing struct {
	ring *giouring.Ring
}

func newGioRing(cfg Config) (Ring, error) {
	flags := uint32(0)
	if cfg.SQPoll {
		flags |= giouring.IORING_SETUP_SQPOLL
	}
	r, err := giouring.CreateRing(cfg.depth(), flags)
	if err != nil {
		return nil, fmt.Errorf("uring: giouring.CreateRing: %w", err)
	}
	return &gioRing{ring: r}, nil
}

func (g *gioRing) PrepareWrite(fd int32, fixedFile bool, buf []byte, offset int64, userData uint64) error {
	sqe := g.ring.GetSQE()
	if sqe == nil {
		return ErrRingFull
	}
	if len(buf) > 0 {
		sqe.PrepareWrite(fd, uintptr(unsafe.Pointer(&buf[0])), uint32(len(buf)), uint64(offset))
	} else {
		sqe.PrepareWrite(fd, 0, 0, uint64(offset))
	}
	if fixedFile {
		sqe.Flags |= giouring.IOSQE_FIXED_FILE
	}
	sqe.UserData = userData
	return nil
}

func (g *gioRing) PrepareFsync(fd int32, fixedFile bool, dataOnly bool, userData uint64) error {
	sqe := g.ring.GetSQE()
	if sqe == nil {
		return ErrRingFull
	}
	flags := uint32(0)
	if dataOnly {
		flags = giouring.IORING_FSYNC_DATASYNC
	}
	sqe.PrepareFsync(fd, flags)
	if fixedFile {
		sqe.Flags |= giouring.IOSQE_FIXED_FILE
	}
	sqe.UserData = userData
	return nil
}

func (g *gioRing) Submit() (uint32, error) {
	n, err := g.ring.Submit()
	if err != nil {
		return uint32(n), fmt.Errorf("uring: giouring submit: %w", err)
	}
	return uint32(n), nil
}

func (g *gioRing) PeekCompletion() (uint64, int32, bool) {
	var cqe *giouring.CompletionQueueEvent
	if err := g.ring.PeekCQE(&cqe); err != nil || cqe == nil {
		return 0, 0, false
	}
	ud, res := cqe.UserData, cqe.Res
	g.ring.CQESeen(cqe)
	return ud, res, true
}

func (g *gioRing) WaitCompletion() (uint64, int32, error) {
	cqe, err := g.ring.WaitCQE()
	if err != nil {
		return 0, 0, fmt.Errorf("uring: giouring wait: %w", err)
	}
	ud, res := cqe.UserData, cqe.Res
	g.ring.CQESeen(cqe)
	return ud, res, nil
}

func (g *gioRing) RegisterFiles(fds []int32) error {
	if err := g.ring.RegisterFiles(fds); err != nil {
		return fmt.Errorf("uring: giouring register files: %w", err)
	}
	return nil
}

func (g *gioRing) UnregisterFiles() error {
	if err := g.ring.UnregisterFiles(); err != nil {
		return fmt.Errorf("uring: giouring unregister files: %w", err)
	}
	return nil
}

func (g *gioRing) Close() error {
	g.ring.QueueExit()
	return nil
}
