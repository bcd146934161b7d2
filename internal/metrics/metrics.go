// Package metrics provides atomic counters and a latency histogram for the
// logging engine's own operation, never for data shipped by the sinks it
// instruments.
package metrics

import "sync/atomic"

// latencyBucketsNs are the histogram bucket upper bounds, in nanoseconds,
// for the capture-to-sink-write-return latency.
var latencyBucketsNs = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numBuckets = 8

// Metrics tracks in-process counters for a single Logger or MTLogger.
// All fields are safe for concurrent use from the front-end goroutines and
// the drain goroutine simultaneously.
type Metrics struct {
	Enqueued     atomic.Uint64 // jobs successfully pushed onto the ring
	Dropped      atomic.Uint64 // jobs dropped because the ring was full
	Processed    atomic.Uint64 // jobs popped and handed to the sink
	SinkErrors   atomic.Uint64 // sink Write calls that returned an error
	BytesWritten atomic.Uint64 // bytes successfully accepted by the sink

	totalLatencyNs atomic.Uint64
	latencyCount   atomic.Uint64
	buckets        [numBuckets]atomic.Uint64
}

// New returns a zeroed Metrics.
func New() *Metrics {
	return &Metrics{}
}

// RecordEnqueue increments Enqueued, or Dropped when ok is false.
func (m *Metrics) RecordEnqueue(ok bool) {
	if ok {
		m.Enqueued.Add(1)
	} else {
		m.Dropped.Add(1)
	}
}

// RecordSink records the outcome of handing one job to a sink: bytes written,
// the capture-to-write latency, and whether the sink call succeeded.
func (m *Metrics) RecordSink(bytes uint64, latencyNs uint64, err bool) {
	m.Processed.Add(1)
	if err {
		m.SinkErrors.Add(1)
	} else {
		m.BytesWritten.Add(bytes)
	}
	m.totalLatencyNs.Add(latencyNs)
	m.latencyCount.Add(1)
	for i, bound := range latencyBucketsNs {
		if latencyNs <= bound {
			m.buckets[i].Add(1)
		}
	}
}

// Snapshot is a point-in-time, allocation-free copy of a Metrics.
type Snapshot struct {
	Enqueued     uint64
	Dropped      uint64
	Processed    uint64
	SinkErrors   uint64
	BytesWritten uint64
	AvgLatencyNs uint64
	Histogram    [numBuckets]uint64
}

// Snapshot reads all counters into a Snapshot.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Enqueued:     m.Enqueued.Load(),
		Dropped:      m.Dropped.Load(),
		Processed:    m.Processed.Load(),
		SinkErrors:   m.SinkErrors.Load(),
		BytesWritten: m.BytesWritten.Load(),
	}
	if n := m.latencyCount.Load(); n > 0 {
		s.AvgLatencyNs = m.totalLatencyNs.Load() / n
	}
	for i := range s.Histogram {
		s.Histogram[i] = m.buckets[i].Load()
	}
	return s
}

// Reset zeroes all counters. Intended for tests.
func (m *Metrics) Reset() {
	m.Enqueued.Store(0)
	m.Dropped.Store(0)
	m.Processed.Store(0)
	m.SinkErrors.Store(0)
	m.BytesWritten.Store(0)
	m.totalLatencyNs.Store(0)
	m.latencyCount.Store(0)
	for i := range m.buckets {
		m.buckets[i].Store(0)
	}
}
