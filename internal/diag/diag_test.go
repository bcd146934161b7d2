package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	d := New(&Config{Level: LevelWarn, Output: &buf})

	d.Debug("should not appear")
	d.Info("should not appear either")
	assert.Empty(t, buf.String())

	d.Warn("heads up", "op", "fsync")
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Contains(t, buf.String(), "op=fsync")
}

func TestDefaultRoutesThroughSetDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&Config{Level: LevelDebug, Output: &buf}))
	defer SetDefault(prev)

	Error("boom", "errno", 5)
	assert.Contains(t, buf.String(), "[ERROR] boom errno=5")
}
