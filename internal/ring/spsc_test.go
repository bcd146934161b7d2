package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPSCFIFO(t *testing.T) {
	r := NewSPSC[int](16)
	for i := 0; i < 10; i++ {
		require.True(t, r.TryPush(i))
	}
	for i := 0; i < 10; i++ {
		v, ok := r.TryPop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := r.TryPop()
	assert.False(t, ok)
}

func TestSPSCBoundedness(t *testing.T) {
	r := NewSPSC[int](8)
	for i := 0; i < r.Cap(); i++ {
		require.True(t, r.TryPush(i), "push %d should succeed", i)
	}
	assert.False(t, r.TryPush(999), "ring should report full after capacity-1 pushes")

	_, ok := r.TryPop()
	require.True(t, ok)
	assert.True(t, r.TryPush(999), "popping one slot should free room for another push")
}

func TestSPSCConcurrentProducerConsumer(t *testing.T) {
	const n = 100_000
	r := NewSPSC[int](1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		next := 0
		for next < n {
			v, ok := r.TryPop()
			if !ok {
				continue
			}
			assert.Equal(t, next, v)
			next++
		}
	}()
	for i := 0; i < n; i++ {
		for !r.TryPush(i) {
		}
	}
	<-done
}
