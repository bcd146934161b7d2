package ring

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPMCSingleProducerOrder(t *testing.T) {
	q := NewMPMC[int](16)
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, q.Pop())
	}
}

func TestMPMCLiveness(t *testing.T) {
	const producers = 8
	const perProducer = 10_000
	const total = producers * perProducer

	q := NewMPMC[int](256)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	received := make([]int, 0, total)
	var mu sync.Mutex
	var consumerWG sync.WaitGroup
	const consumers = 4
	consumerWG.Add(consumers)
	count := 0
	var countMu sync.Mutex
	for c := 0; c < consumers; c++ {
		go func() {
			defer consumerWG.Done()
			for {
				countMu.Lock()
				if count >= total {
					countMu.Unlock()
					return
				}
				count++
				countMu.Unlock()

				v := q.Pop()
				mu.Lock()
				received = append(received, v)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	consumerWG.Wait()

	require.Len(t, received, total)
	sort.Ints(received)
	for i := 0; i < total; i++ {
		assert.Equal(t, i, received[i])
	}
}

func TestMPMCTryPopEmpty(t *testing.T) {
	q := NewMPMC[int](4)
	_, ok := q.TryPop()
	assert.False(t, ok)

	q.Push(42)
	v, ok := q.TryPop()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestMPMCPerProducerOrder(t *testing.T) {
	const producers = 4
	const perProducer = 2000
	q := NewMPMC[[2]int](128) // [producerID, seq]

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push([2]int{p, i})
			}
		}(p)
	}

	lastSeen := make(map[int]int)
	for i := 0; i < producers; i++ {
		lastSeen[i] = -1
	}
	for i := 0; i < producers*perProducer; i++ {
		v := q.Pop()
		pid, seq := v[0], v[1]
		assert.Equal(t, lastSeen[pid]+1, seq, "producer %d out of order", pid)
		lastSeen[pid] = seq
	}
	wg.Wait()
}
