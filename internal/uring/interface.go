package uring

import (
	"errors"
)

// ErrRingFull is returned when the submission queue has no free slot.
var ErrRingFull = errors.New("uring: submission queue full")

// Ring is the interface the async file sink drives. Two implementations
// exist: the default pure-Go rawRing (this package, always available) and
// an optional giouring-backed ring built with -tags giouring.
type Ring interface {
	// PrepareWrite stages a write SQE without submitting it. fd is either a
	// raw file descriptor or, when fixedFile is true, an index into the
	// registered file table. offset -1 means "append" (delegate positioning
	// to the file description's own offset). Returns ErrRingFull if the
	// submission queue has no space.
	PrepareWrite(fd int32, fixedFile bool, buf []byte, offset int64, userData uint64) error

	// PrepareFsync stages an fsync (or fdatasync, when dataOnly) SQE.
	PrepareFsync(fd int32, fixedFile bool, dataOnly bool, userData uint64) error

	// Submit flushes all staged SQEs to the kernel in a single syscall and
	// returns the number accepted.
	Submit() (uint32, error)

	// PeekCompletion returns one ready completion without blocking. ok is
	// false if none is available.
	PeekCompletion() (userData uint64, res int32, ok bool)

	// WaitCompletion blocks until at least one completion is available.
	WaitCompletion() (userData uint64, res int32, err error)

	// RegisterFiles registers a fixed-file table. Required before using
	// fixedFile=true in PrepareWrite/PrepareFsync.
	RegisterFiles(fds []int32) error

	// UnregisterFiles drops the fixed-file table. Safe to call repeatedly.
	UnregisterFiles() error

	// Close tears down the ring. Idempotent.
	Close() error
}

// Config configures a Ring.
type Config struct {
	QueueDepth uint32 // SQ/CQ depth, default 512
	SQPoll     bool   // kernel-side SQ polling
}

const defaultQueueDepth = 512

func (c Config) depth() uint32 {
	if c.QueueDepth == 0 {
		return defaultQueueDepth
	}
	return c.QueueDepth
}

// NewRing constructs the default pure-Go backend.
func NewRing(cfg Config) (Ring, error) {
	return newRawRing(cfg)
}

// NewGIoRing constructs the optional github.com/pawelgaczynski/giouring
// backend, available only when built with -tags giouring.
func NewGIoRing(cfg Config) (Ring, error) {
	return newGioRing(cfg)
}
