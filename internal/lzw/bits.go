package lzw

import (
	"bytes"
	"io"
)

// Packer writes Width-bit codes MSB first into a byte stream.
type Packer struct {
	w   io.ByteWriter
	buf uint32 // pending bits, right aligned
	n   uint   // number of pending bits (always < 8 between calls)
}

// NewPacker returns a Packer writing to w.
func NewPacker(w io.ByteWriter) *Packer {
	return &Packer{w: w}
}

// WriteCode appends one code and writes every byte that is now complete.
func (p *Packer) WriteCode(code uint16) error {
	p.buf = p.buf<<Width | uint32(code)&codeMask
	p.n += Width
	for p.n >= 8 {
		if err := p.w.WriteByte(byte(p.buf >> (p.n - 8))); err != nil {
			return err
		}
		p.n -= 8
	}
	p.buf &= 1<<p.n - 1
	return nil
}

// Flush writes the trailing partial byte, if any, left aligned with zero
// padding in the low bits.
func (p *Packer) Flush() error {
	if p.n == 0 {
		return nil
	}
	b := byte(p.buf << (8 - p.n))
	p.buf, p.n = 0, 0
	return p.w.WriteByte(b)
}

// Unpacker reads Width-bit codes MSB first from a byte stream.
type Unpacker struct {
	r   io.ByteReader
	buf uint32
	n   uint
}

// NewUnpacker returns an Unpacker reading from r.
func NewUnpacker(r io.ByteReader) *Unpacker {
	return &Unpacker{r: r}
}

// ReadCode returns the next code. It returns io.EOF when the source ends
// with fewer than Width bits buffered; those bits are padding.
func (u *Unpacker) ReadCode() (uint16, error) {
	for u.n < Width {
		b, err := u.r.ReadByte()
		if err != nil {
			return 0, err
		}
		u.buf = u.buf<<8 | uint32(b)
		u.n += 8
	}
	code := uint16(u.buf >> (u.n - Width) & codeMask)
	u.n -= Width
	u.buf &= 1<<u.n - 1
	return code, nil
}

// PackedLen returns the number of bytes n codes occupy on the wire.
func PackedLen(n int) int {
	return (n*Width + 7) / 8
}

// Pack encodes codes into a new byte slice.
func Pack(codes []uint16) []byte {
	var buf bytes.Buffer
	buf.Grow(PackedLen(len(codes)))
	p := NewPacker(&buf)
	for _, c := range codes {
		p.WriteCode(c) // bytes.Buffer never fails
	}
	p.Flush()
	return buf.Bytes()
}

// Unpack decodes every complete code in data.
func Unpack(data []byte) []uint16 {
	codes := make([]uint16, 0, len(data)*8/Width)
	u := NewUnpacker(bytes.NewReader(data))
	for {
		c, err := u.ReadCode()
		if err != nil {
			return codes
		}
		codes = append(codes, c)
	}
}
