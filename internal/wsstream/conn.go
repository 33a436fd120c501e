package wsstream

// Byte streams over a websocket connection.
//
// Data travels as binary messages. An empty binary message marks the end of
// a stream, which leaves the connection open for the reply. Errors are
// reported with a close frame whose reason carries the message.

import (
	"errors"
	"fmt"
	"io"

	"github.com/gorilla/websocket"
)

// FrameSize is the largest payload sent in one message.
const FrameSize = 32 * 1024

var (
	// ErrUnexpectedMessage is returned when the peer sends a text message.
	ErrUnexpectedMessage = errors.New("wsstream: unexpected non-binary message")

	// ErrRemote wraps an error reported by the peer in a close frame.
	ErrRemote = errors.New("wsstream: remote error")
)

// Reader implements io.ByteReader over the binary messages of a connection.
// It returns io.EOF at the end-of-stream message or a normal close.
type Reader struct {
	conn *websocket.Conn
	cur  []byte
	err  error
}

// NewReader returns a Reader for conn. Only one goroutine may read from a
// connection at a time.
func NewReader(conn *websocket.Conn) *Reader {
	return &Reader{conn: conn}
}

func (r *Reader) ReadByte() (byte, error) {
	for len(r.cur) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.cur, r.err = readFrame(r.conn)
	}
	b := r.cur[0]
	r.cur = r.cur[1:]
	return b, nil
}

// readFrame returns the payload of the next binary message, or io.EOF for
// the end-of-stream message.
func readFrame(conn *websocket.Conn) ([]byte, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			if ce.Code == websocket.CloseNormalClosure {
				return nil, io.EOF
			}
			if ce.Code == websocket.CloseInternalServerErr {
				return nil, fmt.Errorf("%w: %s", ErrRemote, ce.Text)
			}
		}
		return nil, err
	}
	if mt != websocket.BinaryMessage {
		return nil, ErrUnexpectedMessage
	}
	if len(data) == 0 {
		return nil, io.EOF
	}
	return data, nil
}

// Writer implements io.ByteWriter, sending one binary message per FrameSize
// bytes. Close sends the remainder followed by the end-of-stream message.
type Writer struct {
	conn *websocket.Conn
	buf  []byte
}

// NewWriter returns a Writer for conn. Only one goroutine may write to a
// connection at a time.
func NewWriter(conn *websocket.Conn) *Writer {
	return &Writer{conn: conn, buf: make([]byte, 0, FrameSize)}
}

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	if len(w.buf) == FrameSize {
		return w.Flush()
	}
	return nil
}

// Flush sends the buffered bytes as one message.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	err := w.conn.WriteMessage(websocket.BinaryMessage, w.buf)
	w.buf = w.buf[:0]
	return err
}

// Close flushes and sends the end-of-stream message. The connection stays
// open.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.BinaryMessage, nil)
}
