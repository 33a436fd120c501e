package queue

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrInvalidCapacity is returned by New when the capacity is not positive.
var ErrInvalidCapacity = errors.New("queue: capacity must be positive")

// item is a queue slot: either a value or the end-of-stream marker.
type item[T any] struct {
	value T
	eos   bool
}

// Queue is a fixed-capacity FIFO with blocking Put and Get.
//
// Storage is a circular buffer. The head (next read) and tail (next write)
// indices are guarded by separate mutexes, and two token channels count the
// free and filled slots. Put blocks while the queue is full and Get blocks
// while it is empty, which is the only backpressure in the pipeline.
//
// A producer ends its stream with Close, which enqueues a single
// end-of-stream marker behind the last value. Get reports the marker with
// ok == false.
type Queue[T any] struct {
	data []item[T]

	headMu sync.Mutex
	head   int
	tailMu sync.Mutex
	tail   int

	free   chan struct{} // one token per empty slot
	filled chan struct{} // one token per occupied slot

	closed atomic.Bool // marker enqueued
	ended  atomic.Bool // marker dequeued
}

// New creates a queue holding at most capacity items.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	q := &Queue[T]{
		data:   make([]item[T], capacity),
		free:   make(chan struct{}, capacity),
		filled: make(chan struct{}, capacity),
	}
	for i := 0; i < capacity; i++ {
		q.free <- struct{}{}
	}
	return q, nil
}

// Put appends v, blocking until a slot is free.
// Put panics if the queue has already been closed.
func (q *Queue[T]) Put(v T) {
	if q.closed.Load() {
		panic("queue: put on closed queue")
	}
	q.put(item[T]{value: v})
}

// Close appends the end-of-stream marker, blocking until a slot is free.
// Closing a queue twice panics.
func (q *Queue[T]) Close() {
	if !q.closed.CompareAndSwap(false, true) {
		panic("queue: close of closed queue")
	}
	q.put(item[T]{eos: true})
}

func (q *Queue[T]) put(it item[T]) {
	<-q.free

	q.tailMu.Lock()
	q.data[q.tail] = it
	q.tail = (q.tail + 1) % len(q.data)
	q.tailMu.Unlock()

	q.filled <- struct{}{}
}

// Get removes and returns the oldest item, blocking until one is available.
// ok is false once the end-of-stream marker is reached. The marker is never
// removed, so every consumer, including one already blocked in Get, sees it.
func (q *Queue[T]) Get() (v T, ok bool) {
	if q.ended.Load() {
		return v, false
	}

	<-q.filled

	q.headMu.Lock()
	it := q.data[q.head]
	if it.eos {
		q.headMu.Unlock()
		q.ended.Store(true)
		q.filled <- struct{}{} // leave the marker for the next waiter
		return v, false
	}
	q.data[q.head] = item[T]{} // release references held by the slot
	q.head = (q.head + 1) % len(q.data)
	q.headMu.Unlock()

	q.free <- struct{}{}

	return it.value, true
}

// Cap returns the fixed capacity of the queue.
func (q *Queue[T]) Cap() int { return len(q.data) }

// Len returns the number of items currently queued, including the
// end-of-stream marker. The value is a snapshot and may be stale.
func (q *Queue[T]) Len() int { return len(q.filled) }
