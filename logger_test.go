package asynclog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForLines(t *testing.T, sink *MockSink, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.Lines()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d lines, got %d", n, len(sink.Lines()))
}

func TestLoggerInitDefaultsToConsole(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	require.NoError(t, l.Init(LevelInfo, nil))
	defer l.Stop()
	assert.NotNil(t, l.sink)
}

func TestLoggerEmitsToSink(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	sink := NewMockSink()
	require.NoError(t, l.Init(LevelInfo, sink))
	defer l.Stop()

	l.Info(42, "hello %s", "world")
	waitForLines(t, sink, 1)

	line := sink.LineStrings()[0]
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "hello world")
	assert.Contains(t, line, ":42]")
}

func TestLoggerSuppressesBelowThreshold(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	sink := NewMockSink()
	require.NoError(t, l.Init(LevelWarn, sink))
	defer l.Stop()

	l.Debug(1, "should not appear")
	l.Info(2, "should not appear either")
	l.Warn(3, "this one counts")
	waitForLines(t, sink, 1)

	assert.Equal(t, 1, len(sink.Lines()))
	assert.Contains(t, sink.LineStrings()[0], "this one counts")
}

func TestLoggerSetLevelRejectedWhileRunning(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	require.NoError(t, l.Init(LevelInfo, NewMockSink()))
	defer l.Stop()

	err := l.SetLevel(LevelDebug)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeInvalidState))
}

func TestLoggerSetSinkRejectedWhileRunning(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	require.NoError(t, l.Init(LevelInfo, NewMockSink()))
	defer l.Stop()

	err := l.SetSink(NewMockSink())
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeInvalidState))
}

func TestLoggerSetLevelAndSinkAllowedWhileStopped(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	require.NoError(t, l.SetLevel(LevelDebug))
	require.NoError(t, l.SetSink(NewMockSink()))
}

func TestLoggerReInitStopsPreviousDrain(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	first := NewMockSink()
	require.NoError(t, l.Init(LevelInfo, first))

	l.Info(1, "to first sink")
	waitForLines(t, first, 1)

	second := NewMockSink()
	require.NoError(t, l.Init(LevelInfo, second))
	defer l.Stop()

	l.Info(2, "to second sink")
	waitForLines(t, second, 1)

	assert.Equal(t, 1, len(first.Lines()))
	assert.Equal(t, 1, len(second.Lines()))
}

func TestLoggerStopDrainsPendingRecords(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	sink := NewMockSink()
	require.NoError(t, l.Init(LevelInfo, sink))

	for i := 0; i < 50; i++ {
		l.Info(i, "line %d", i)
	}
	require.NoError(t, l.Stop())

	assert.Equal(t, 50, len(sink.Lines()))
}

func TestLoggerMetricsTrackEnqueueAndProcess(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	sink := NewMockSink()
	require.NoError(t, l.Init(LevelInfo, sink))

	l.Info(1, "a")
	l.Info(2, "b")
	require.NoError(t, l.Stop())

	snap := l.Metrics()
	assert.Equal(t, uint64(2), snap.Enqueued)
	assert.Equal(t, uint64(2), snap.Processed)
	assert.Equal(t, uint64(0), snap.SinkErrors)
}

func TestLoggerMetricsTrackSinkErrors(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	sink := NewMockSink()
	sink.WriteErr = assert.AnError
	require.NoError(t, l.Init(LevelInfo, sink))

	l.Info(1, "a")
	require.NoError(t, l.Stop())

	snap := l.Metrics()
	assert.Equal(t, uint64(1), snap.SinkErrors)
}

func TestLoggerStopIdempotent(t *testing.T) {
	l := NewLogger(LoggerConfig{})
	require.NoError(t, l.Init(LevelInfo, NewMockSink()))
	require.NoError(t, l.Stop())
	require.NoError(t, l.Stop())
}
