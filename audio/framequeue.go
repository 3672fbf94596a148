package audio

import (
	"fmt"
	"sync"

	ringBuffer "github.com/dh1tw/golang-ring"
)

// FrameQueue is a bounded FIFO of stereo sample pairs which sits between
// the producer (emulated hardware) and the consumer (host audio callback).
// Neither Push nor Pop ever block on the other side; both only hold the
// queue lock for the time it takes to copy the samples.
//
// When the queue is full, Push drops the newest samples and keeps the
// already buffered ones.
type FrameQueue struct {
	sync.Mutex
	ring     ringBuffer.Ring // chunks of []Sample
	head     []Sample        // partially consumed chunk
	length   int
	capacity int
}

// NewFrameQueue returns a FrameQueue which can buffer up to capacity
// stereo sample pairs. It panics if capacity is < 1.
func NewFrameQueue(capacity int) *FrameQueue {
	if capacity < 1 {
		panic(fmt.Sprintf("audio: invalid frame queue capacity %d", capacity))
	}
	q := &FrameQueue{
		capacity: capacity,
	}
	// every chunk holds at least one sample pair
	q.ring.SetCapacity(capacity)
	return q
}

// Push appends the samples to the queue and returns the amount of sample
// pairs which have been accepted. Samples which do not fit anymore into
// the queue are discarded.
func (q *FrameQueue) Push(samples []Sample) int {
	q.Lock()
	defer q.Unlock()

	n := min(len(samples), q.capacity-q.length)
	if n <= 0 {
		return 0
	}

	chunk := make([]Sample, n)
	copy(chunk, samples)
	q.ring.Enqueue(chunk)
	q.length += n

	return n
}

// Pop removes up to len(buf) sample pairs from the queue and copies them
// into buf. It returns the amount of sample pairs written. If less data is
// available than requested, the queue is empty afterwards.
func (q *FrameQueue) Pop(buf []Sample) int {
	q.Lock()
	defer q.Unlock()

	written := 0
	for written < len(buf) {
		if len(q.head) == 0 {
			data := q.ring.Dequeue()
			if data == nil {
				break
			}
			q.head = data.([]Sample)
		}
		n := copy(buf[written:], q.head)
		q.head = q.head[n:]
		written += n
	}
	q.length -= written

	return written
}

// Len returns the amount of buffered sample pairs.
func (q *FrameQueue) Len() int {
	q.Lock()
	defer q.Unlock()
	return q.length
}

// Capacity returns the maximum amount of sample pairs the queue can hold.
func (q *FrameQueue) Capacity() int {
	return q.capacity
}

// Flush discards all buffered samples.
func (q *FrameQueue) Flush() {
	q.Lock()
	defer q.Unlock()

	q.head = nil
	q.length = 0
	q.ring = ringBuffer.Ring{}
	q.ring.SetCapacity(q.capacity)
}
