package stream

import (
	"io"
	"sync"

	"github.com/pspoerri/lzwpipe/internal/queue"
)

// ChunkSize is the number of bytes moved per handoff.
const ChunkSize = 32 * 1024

// chunk is one handoff between the I/O goroutine and the caller. A chunk
// with a non-nil err is the last one.
type chunk struct {
	data []byte
	err  error
}

// Reader decouples an io.Reader from its consumer. A goroutine reads ahead
// into a single slot while the caller takes bytes one at a time with
// ReadByte.
type Reader struct {
	slot *queue.Queue[chunk]
	cur  []byte
	err  error
	done chan struct{}
	once sync.Once
}

// NewReader starts reading r in the background.
func NewReader(r io.Reader) *Reader {
	slot, _ := queue.New[chunk](1)
	sr := &Reader{slot: slot, done: make(chan struct{})}
	go sr.fill(r)
	return sr
}

func (sr *Reader) fill(r io.Reader) {
	defer close(sr.done)
	defer sr.slot.Close()
	for {
		buf := make([]byte, ChunkSize)
		n, err := r.Read(buf)
		if n > 0 {
			sr.slot.Put(chunk{data: buf[:n]})
		}
		if err != nil {
			sr.slot.Put(chunk{err: err})
			return
		}
	}
}

// ReadByte returns the next byte, io.EOF at the end of the input, or the
// error the underlying reader failed with.
func (sr *Reader) ReadByte() (byte, error) {
	for len(sr.cur) == 0 {
		if sr.err != nil {
			return 0, sr.err
		}
		c, ok := sr.slot.Get()
		if !ok {
			sr.err = io.EOF
			continue
		}
		if c.err != nil {
			sr.err = c.err
			continue
		}
		sr.cur = c.data
	}
	b := sr.cur[0]
	sr.cur = sr.cur[1:]
	return b, nil
}

// Close discards unread input and waits for the background goroutine. It
// returns once the underlying reader has reported an error or io.EOF.
func (sr *Reader) Close() error {
	sr.once.Do(func() {
		for {
			if _, ok := sr.slot.Get(); !ok {
				break
			}
		}
		<-sr.done
	})
	return nil
}
