package stream

import (
	"errors"
	"io"
	"sync"

	"github.com/pspoerri/lzwpipe/internal/queue"
)

// ErrClosed is returned by WriteByte after Close.
var ErrClosed = errors.New("stream: write to closed writer")

// Writer decouples an io.Writer from its producer. WriteByte fills a chunk
// in the caller's goroutine; full chunks go through a single slot to a
// goroutine that writes them out.
type Writer struct {
	slot   *queue.Queue[[]byte]
	cur    []byte
	done   chan struct{}
	closed bool

	mu  sync.Mutex
	err error // first write error, set by the background goroutine
}

// NewWriter starts a background writer for w.
func NewWriter(w io.Writer) *Writer {
	slot, _ := queue.New[[]byte](1)
	sw := &Writer{
		slot: slot,
		cur:  make([]byte, 0, ChunkSize),
		done: make(chan struct{}),
	}
	go sw.drain(w)
	return sw
}

func (sw *Writer) drain(w io.Writer) {
	defer close(sw.done)
	for {
		data, ok := sw.slot.Get()
		if !ok {
			return
		}
		if sw.failed() != nil {
			continue
		}
		if _, err := w.Write(data); err != nil {
			sw.mu.Lock()
			sw.err = err
			sw.mu.Unlock()
		}
	}
}

func (sw *Writer) failed() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.err
}

// WriteByte buffers b. It reports an earlier write failure, if any.
func (sw *Writer) WriteByte(b byte) error {
	if sw.closed {
		return ErrClosed
	}
	sw.cur = append(sw.cur, b)
	if len(sw.cur) == ChunkSize {
		if err := sw.failed(); err != nil {
			sw.cur = sw.cur[:0]
			return err
		}
		sw.slot.Put(sw.cur)
		sw.cur = make([]byte, 0, ChunkSize)
	}
	return nil
}

// Close hands over the buffered bytes, waits until everything has been
// written and returns the first write error. It does not close the
// underlying writer.
func (sw *Writer) Close() error {
	if sw.closed {
		return sw.failed()
	}
	sw.closed = true
	if len(sw.cur) > 0 {
		sw.slot.Put(sw.cur)
		sw.cur = nil
	}
	sw.slot.Close()
	<-sw.done
	return sw.failed()
}
