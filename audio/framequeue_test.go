package audio

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(vals ...int16) []Sample {
	res := make([]Sample, 0, len(vals))
	for _, v := range vals {
		res = append(res, Sample{v, -v})
	}
	return res
}

func TestFrameQueueFIFO(t *testing.T) {
	q := NewFrameQueue(16)

	assert.Equal(t, 3, q.Push(samples(1, 2, 3)))
	assert.Equal(t, 2, q.Push(samples(4, 5)))
	assert.Equal(t, 5, q.Len())

	buf := make([]Sample, 4)
	require.Equal(t, 4, q.Pop(buf))
	assert.Equal(t, samples(1, 2, 3, 4), buf)

	buf = make([]Sample, 4)
	require.Equal(t, 1, q.Pop(buf))
	assert.Equal(t, samples(5)[0], buf[0])
	assert.Equal(t, Sample{}, buf[1], "slots beyond the returned count must not be touched")
	assert.Equal(t, 0, q.Len())
}

func TestFrameQueuePopEmpty(t *testing.T) {
	q := NewFrameQueue(4)
	assert.Equal(t, 0, q.Pop(make([]Sample, 8)))
	assert.Equal(t, 0, q.Pop(nil))
}

func TestFrameQueueDropsNewestOnOverflow(t *testing.T) {
	q := NewFrameQueue(4)

	assert.Equal(t, 3, q.Push(samples(1, 2, 3)))
	assert.Equal(t, 1, q.Push(samples(4, 5, 6)))
	assert.Equal(t, 0, q.Push(samples(7)))
	assert.Equal(t, 4, q.Len())

	buf := make([]Sample, 4)
	require.Equal(t, 4, q.Pop(buf))
	assert.Equal(t, samples(1, 2, 3, 4), buf)

	// space is available again
	assert.Equal(t, 2, q.Push(samples(8, 9)))
	buf = make([]Sample, 2)
	require.Equal(t, 2, q.Pop(buf))
	assert.Equal(t, samples(8, 9), buf)
}

func TestFrameQueueCopiesPushedSamples(t *testing.T) {
	q := NewFrameQueue(4)
	in := samples(1, 2)
	q.Push(in)
	in[0] = Sample{99, 99}

	buf := make([]Sample, 2)
	q.Pop(buf)
	assert.Equal(t, samples(1, 2), buf)
}

func TestFrameQueueFlush(t *testing.T) {
	q := NewFrameQueue(8)
	q.Push(samples(1, 2, 3))
	q.Pop(make([]Sample, 1)) // leaves a partially consumed chunk
	q.Flush()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Pop(make([]Sample, 4)))
	assert.Equal(t, 8, q.Push(samples(1, 2, 3, 4, 5, 6, 7, 8)))
}

func TestFrameQueueInvalidCapacity(t *testing.T) {
	assert.Panics(t, func() { NewFrameQueue(0) })
	assert.Panics(t, func() { NewFrameQueue(-1) })
}

func TestFrameQueueSingleProducerSingleConsumer(t *testing.T) {
	const total = 20000
	q := NewFrameQueue(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		next := 0
		for next < total {
			chunk := make([]Sample, 0, 7)
			for i := next; i < total && len(chunk) < 7; i++ {
				chunk = append(chunk, Sample{int16(i % 32768), int16(i / 32768)})
			}
			next += q.Push(chunk)
			runtime.Gosched()
		}
	}()

	received := 0
	buf := make([]Sample, 5)
	for received < total {
		n := q.Pop(buf)
		for _, s := range buf[:n] {
			want := Sample{int16(received % 32768), int16(received / 32768)}
			if s != want {
				t.Fatalf("sample %d: expected %v, got %v", received, want, s)
			}
			received++
		}
		if n == 0 {
			runtime.Gosched()
		}
	}

	wg.Wait()
	assert.Equal(t, 0, q.Len())
}
