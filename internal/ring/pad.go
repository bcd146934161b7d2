// Package ring implements the two bounded lock-free queue disciplines the
// logger pipeline is built on: a single-producer/single-consumer ring for
// the single-threaded logger, and a ticket-gated multi-producer/
// multi-consumer ring for the multi-threaded logger.
package ring

// cacheLinePad separates hot atomic fields that different goroutines spin
// on so they don't false-share a cache line.
type cacheLinePad [64]byte
