package ring

import "sync/atomic"

// SPSC is a bounded single-producer/single-consumer ring buffer.
//
// One slot is always sacrificed to disambiguate empty from full: the ring
// is full when (tail+1) mod capacity == head. Capacity is rounded up to
// the next power of two so wraparound is a mask instead of a modulo.
//
// The producer's release store on tail synchronizes with the consumer's
// acquire load of tail; the consumer's release store on head synchronizes
// with the producer's acquire load of head. Calling TryPush from two
// goroutines concurrently is undefined — SPSC means exactly one producer.
type SPSC[T any] struct {
	_    cacheLinePad
	head atomic.Uint64 // consumer-owned
	_    cacheLinePad
	tail atomic.Uint64 // producer-owned
	_    cacheLinePad

	buf  []T
	mask uint64
}

// NewSPSC creates an SPSC ring holding at least capacity-1 live elements.
// capacity is rounded up to the next power of two and must be >= 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		capacity = 2
	}
	n := nextPow2(uint64(capacity))
	return &SPSC[T]{
		buf:  make([]T, n),
		mask: n - 1,
	}
}

// TryPush attempts to publish v. Returns false if the ring is full.
// Producer-only; never blocks, never panics.
func (r *SPSC[T]) TryPush(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load() // acquire: see consumer's most recent free slot
	if r.full(tail, head) {
		return false
	}
	r.buf[tail&r.mask] = v
	r.tail.Store(tail + 1) // release: publish the value before the index
	return true
}

func (r *SPSC[T]) full(tail, head uint64) bool {
	return tail-head >= r.mask
}

// TryPop attempts to dequeue the oldest element. Returns the zero value and
// false if the ring is empty. Consumer-only.
func (r *SPSC[T]) TryPop() (T, bool) {
	head := r.head.Load()
	tail := r.tail.Load() // acquire: see producer's most recent publish
	if head == tail {
		var zero T
		return zero, false
	}
	v := r.buf[head&r.mask]
	var zero T
	r.buf[head&r.mask] = zero // drop the reference so the consumer doesn't pin memory
	r.head.Store(head + 1)    // release: free the slot after reading it
	return v, true
}

// Len returns an approximate, monotonic-under-SPSC-use occupancy.
func (r *SPSC[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Empty reports whether the ring was observed empty.
func (r *SPSC[T]) Empty() bool {
	return r.Len() == 0
}

// Cap returns the usable capacity (one less than the backing slice length).
func (r *SPSC[T]) Cap() int {
	return len(r.buf) - 1
}

func nextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}
