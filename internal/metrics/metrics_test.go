package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordEnqueue(t *testing.T) {
	m := New()
	m.RecordEnqueue(true)
	m.RecordEnqueue(true)
	m.RecordEnqueue(false)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Enqueued)
	assert.Equal(t, uint64(1), snap.Dropped)
}

func TestRecordSinkSuccessAndError(t *testing.T) {
	m := New()
	m.RecordSink(100, 5_000, false)
	m.RecordSink(50, 15_000, true)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Processed)
	assert.Equal(t, uint64(1), snap.SinkErrors)
	assert.Equal(t, uint64(100), snap.BytesWritten)
	assert.Equal(t, uint64(10_000), snap.AvgLatencyNs)
}

func TestHistogramBucketing(t *testing.T) {
	m := New()
	m.RecordSink(1, 500, false)    // falls in every bucket
	m.RecordSink(1, 50_000, false) // falls in buckets >= 100us

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.Histogram[0]) // 1us bucket: only the 500ns sample
	assert.Equal(t, uint64(2), snap.Histogram[2]) // 100us bucket: both samples
}

func TestReset(t *testing.T) {
	m := New()
	m.RecordEnqueue(true)
	m.RecordSink(10, 1000, false)
	m.Reset()

	snap := m.Snapshot()
	assert.Equal(t, uint64(0), snap.Enqueued)
	assert.Equal(t, uint64(0), snap.Processed)
	assert.Equal(t, uint64(0), snap.BytesWritten)
}
