package asynclog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageLevelInitAndEmit(t *testing.T) {
	sink := NewMockSink()
	require.NoError(t, Init(LevelInfo, sink))
	defer Stop()

	Info("package-level %s", "call")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(sink.Lines()) == 0 {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, 1, len(sink.Lines()))

	line := sink.LineStrings()[0]
	assert.Contains(t, line, "package-level call")
	assert.Contains(t, line, "[INFO]")
	// the file should be this test file, proving runtime.Caller skip depth
	// lands on the actual call site rather than facade.go itself.
	assert.Contains(t, line, "facade_test.go")
}
