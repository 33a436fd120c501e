package wsstream

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// Client sends data to a Handler and collects the reply.
type Client struct {
	Dialer       *websocket.Dialer
	WriteTimeout time.Duration // per message; 0 means none
}

// NewClient creates a client with a handshake timeout.
func NewClient(handshakeTimeout time.Duration) *Client {
	return &Client{
		Dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   FrameSize,
			WriteBufferSize:  FrameSize,
		},
	}
}

// Do streams data to url and returns everything the server sent back. The
// upload runs in its own goroutine so a large reply cannot stall it. When ctx
// ends before the reply is complete the connection is dropped and Do returns
// an error wrapping ctx.Err().
func (c *Client) Do(ctx context.Context, url string, data []byte) ([]byte, error) {
	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		conn.SetReadDeadline(deadline)
	}

	sent := make(chan error, 1)
	go func() {
		sent <- c.send(conn, data, deadline)
	}()

	var out []byte
	for {
		frame, err := readFrame(conn)
		if err == io.EOF {
			break
		}
		if err != nil {
			// The server may have hung up mid-upload; its reason is the
			// more useful error.
			<-sent
			if hasDeadline && !time.Now().Before(deadline) {
				<-ctx.Done() // the read deadline can fire first
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, fmt.Errorf("waiting for reply from %s: %w", url, ctxErr)
			}
			return out, err
		}
		out = append(out, frame...)
	}

	if err := <-sent; err != nil {
		return out, fmt.Errorf("failed to send data: %w", err)
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return out, nil
}

// send uploads data followed by the end-of-stream message. Writes never run
// past deadline unless it is zero.
func (c *Client) send(conn *websocket.Conn, data []byte, deadline time.Time) error {
	setDeadline := func() {
		d := deadline
		if c.WriteTimeout > 0 {
			if t := time.Now().Add(c.WriteTimeout); d.IsZero() || t.Before(d) {
				d = t
			}
		}
		if !d.IsZero() {
			conn.SetWriteDeadline(d)
		}
	}

	for len(data) > 0 {
		n := min(len(data), FrameSize)
		setDeadline()
		if err := conn.WriteMessage(websocket.BinaryMessage, data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	setDeadline()
	return conn.WriteMessage(websocket.BinaryMessage, nil)
}
