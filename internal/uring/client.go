package uring

import (
	"fmt"
	"sync"

	"github.com/go-asynclog/asynclog/internal/diag"
)

// completeBatch is the opportunistic, non-blocking harvest size checked
// before each write submission.
const completeBatch = 24

// writeRequest is the owned state of one in-flight write: the caller's
// buffer (kept alive until the CQE confirms the kernel is done with it)
// plus the offset it was issued at, for error logging.
type writeRequest struct {
	buf    []byte
	offset int64
}

// Client drives a Ring through the write_async/fsync_and_wait protocol: it
// owns pending()'s bookkeeping, fixed-file registration, and batched
// submission, using a ticket table instead of the C idiom of stashing a raw
// pointer in user_data — Go's GC offers no such round-trip guarantee.
type Client struct {
	ring  Ring
	depth uint32

	submitBatch uint32

	mu       sync.Mutex
	pending  uint32
	nextTick uint64
	inflight map[uint64]writeRequest

	fixedFile bool
}

// NewClient wraps ring with the batching/ticketing bookkeeping described on
// Client. depth must match the Ring's configured queue
// depth; it determines the SUBMIT_BATCH threshold (depth/2).
func NewClient(ring Ring, depth uint32) *Client {
	if depth == 0 {
		depth = defaultQueueDepth
	}
	return &Client{
		ring:        ring,
		depth:       depth,
		submitBatch: depth / 2,
		inflight:    make(map[uint64]writeRequest, depth),
	}
}

// RegisterFds registers fds as the fixed-file table; subsequent
// WriteAsync/FsyncAndWait calls may then address them by index.
func (c *Client) RegisterFds(fds []int32) error {
	if err := c.ring.RegisterFiles(fds); err != nil {
		return err
	}
	c.fixedFile = true
	return nil
}

// UnregisterFds drops the fixed-file table. Safe to call repeatedly.
func (c *Client) UnregisterFds() error {
	c.fixedFile = false
	return c.ring.UnregisterFiles()
}

// WriteAsync issues an asynchronous write of buf at offset (-1 delegates
// positioning to the kernel, i.e. append) to fdOrIndex. buf is copied into
// the request so the caller's buffer may be reused or returned to a pool
// immediately after this call returns.
func (c *Client) WriteAsync(fdOrIndex int32, buf []byte, offset int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending >= completeBatch {
		c.harvestLocked()
	}

	owned := make([]byte, len(buf))
	copy(owned, buf)

	ticket := c.nextTick
	for {
		err := c.ring.PrepareWrite(fdOrIndex, c.fixedFile, owned, offset, ticket)
		if err == nil {
			break
		}
		if err != ErrRingFull {
			return fmt.Errorf("uring: prepare write: %w", err)
		}
		// SQ full: drain completions blockingly to make room, then retry.
		ud, res, werr := c.ring.WaitCompletion()
		if werr != nil {
			return fmt.Errorf("uring: drain for space: %w", werr)
		}
		c.settleTicketLocked(ud, res)
		c.harvestLocked()
	}
	c.nextTick++
	c.inflight[ticket] = writeRequest{buf: owned, offset: offset}

	if c.pending >= c.submitBatch {
		if _, err := c.ring.Submit(); err != nil {
			diag.Warn("async write submit failed", "error", err)
			delete(c.inflight, ticket)
			return nil
		}
	}
	c.pending++
	return nil
}

// FsyncAndWait issues an fsync (or fdatasync, when dataOnly) as a durability
// barrier: on return every previously issued WriteAsync has been
// acknowledged by the kernel and flushed per the requested mode.
func (c *Client) FsyncAndWait(fdOrIndex int32, dataOnly bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	const fsyncUserData = ^uint64(0) // reserved ticket value, never issued to a write
	if err := c.ring.PrepareFsync(fdOrIndex, c.fixedFile, dataOnly, fsyncUserData); err != nil {
		return fmt.Errorf("uring: prepare fsync: %w", err)
	}
	if _, err := c.ring.Submit(); err != nil {
		return fmt.Errorf("uring: submit fsync: %w", err)
	}

	fsyncDone := false
	for c.pending > 0 || !fsyncDone {
		ud, res, err := c.ring.WaitCompletion()
		if err != nil {
			return fmt.Errorf("uring: drain on fsync barrier: %w", err)
		}
		if ud == fsyncUserData {
			fsyncDone = true
			if res < 0 {
				diag.Warn("fsync failed", "fd", fdOrIndex, "res", res)
			}
			continue
		}
		c.settleTicketLocked(ud, res)
	}
	return nil
}

// Pending returns the number of writes submitted but not yet completed.
func (c *Client) Pending() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close drains all pending completions, unregisters files, and tears down
// the ring. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	for c.pending > 0 {
		ud, res, err := c.ring.WaitCompletion()
		if err != nil {
			break
		}
		c.settleTicketLocked(ud, res)
	}
	c.mu.Unlock()

	_ = c.UnregisterFds()
	return c.ring.Close()
}

// harvestLocked opportunistically drains ready completions without
// blocking. Called with c.mu held.
func (c *Client) harvestLocked() {
	for i := 0; i < completeBatch; i++ {
		ud, res, ok := c.ring.PeekCompletion()
		if !ok {
			return
		}
		c.settleTicketLocked(ud, res)
	}
}

// settleTicketLocked retires one completed write. A negative res is a
// kernel error; a short write (0 <= res < len(buf)) is reported but not
// retried — the caller already moved on by the time the CQE arrives, and
// there is no buffered remainder to resubmit against. Both are swallowed
// rather than propagated, per the write_async contract.
func (c *Client) settleTicketLocked(ticket uint64, res int32) {
	req, ok := c.inflight[ticket]
	if !ok {
		return
	}
	delete(c.inflight, ticket)
	if c.pending > 0 {
		c.pending--
	}
	switch {
	case res < 0:
		diag.Warn("async write failed", "offset", req.offset, "bytes", len(req.buf), "res", res)
	case int(res) < len(req.buf):
		diag.Warn("async write short", "offset", req.offset, "wanted", len(req.buf), "wrote", res)
	}
}
