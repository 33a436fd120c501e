package pipeline

import (
	"fmt"
	"io"

	"github.com/pspoerri/lzwpipe/internal/lzw"
	"github.com/pspoerri/lzwpipe/internal/queue"
)

// Every stage closes its output queue exactly once, whatever happens, and a
// stage that fails keeps consuming its input until the end marker so the
// stages upstream of it can finish.

// readBytes forwards every byte of src to out.
func readBytes(src io.ByteReader, out *queue.Queue[byte], pb *progressBar) (int64, error) {
	defer out.Close()

	var n int64
	for {
		b, err := src.ReadByte()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("reading input: %w", err)
		}
		out.Put(b)
		n++
		pb.Add(1)
	}
}

// readCodes unpacks src into codes and forwards them to out.
func readCodes(src io.ByteReader, out *queue.Queue[uint16], pb *progressBar) (int64, error) {
	defer out.Close()

	cr := &countingReader{r: src, pb: pb}
	u := lzw.NewUnpacker(cr)
	for {
		c, err := u.ReadCode()
		if err == io.EOF {
			return cr.n, nil
		}
		if err != nil {
			return cr.n, fmt.Errorf("reading input: %w", err)
		}
		out.Put(c)
	}
}

// writeCodes packs the codes from in into dst, flushing the final byte.
func writeCodes(in *queue.Queue[uint16], dst io.ByteWriter) (int64, error) {
	cw := &countingWriter{w: dst}
	p := lzw.NewPacker(cw)
	for {
		c, ok := in.Get()
		if !ok {
			break
		}
		if err := p.WriteCode(c); err != nil {
			drain(in)
			return cw.n, fmt.Errorf("writing output: %w", err)
		}
	}
	if err := p.Flush(); err != nil {
		return cw.n, fmt.Errorf("writing output: %w", err)
	}
	return cw.n, nil
}

// writeBytes copies the bytes from in to dst.
func writeBytes(in *queue.Queue[byte], dst io.ByteWriter) (int64, error) {
	var n int64
	for {
		b, ok := in.Get()
		if !ok {
			return n, nil
		}
		if err := dst.WriteByte(b); err != nil {
			drain(in)
			return n, fmt.Errorf("writing output: %w", err)
		}
		n++
	}
}

func drain[T any](in *queue.Queue[T]) {
	for {
		if _, ok := in.Get(); !ok {
			return
		}
	}
}

type countingReader struct {
	r  io.ByteReader
	pb *progressBar
	n  int64
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
		c.pb.Add(1)
	}
	return b, err
}

type countingWriter struct {
	w io.ByteWriter
	n int64
}

func (c *countingWriter) WriteByte(b byte) error {
	if err := c.w.WriteByte(b); err != nil {
		return err
	}
	c.n++
	return nil
}
