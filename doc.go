// Package asynclog is an asynchronous logging engine: emit-site calls are
// rendered off the caller's critical path by a drain goroutine, consuming
// a lock-free bounded ring shared with the application's producer(s).
//
// Logger is the single-threaded front end, backed by an SPSC ring, for a
// caller that already serializes its own emit calls. MTLogger is the
// multi-threaded front end, backed by an MPMC ring, safe for concurrent
// use from any number of goroutines; under sustained overload it applies
// back-pressure to producers rather than dropping records.
//
// Three Sink implementations are provided: Console writes to stdout,
// StandardFile is a synchronous file sink, and AsyncFile issues every
// write through an io_uring-class asynchronous I/O ring with SQ polling,
// for durability without blocking the drain goroutine on individual
// write(2) calls.
package asynclog
