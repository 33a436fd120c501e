package lzw

import "fmt"

// tableEntry is one slot of the decoder's string table. A string is stored
// as the code of its prefix plus the final byte, so the table never holds
// more than one byte per code.
type tableEntry struct {
	prefix int  // code of the prefix string (-1 for literals)
	suffix byte // the byte added by this entry
	length int  // total length of the string
}

// decoder mirrors the compressor's dictionary, indexed by code.
type decoder struct {
	table [TableSize]tableEntry
	next  int // code the next learned string will get
	prev  int // previously emitted code, -1 right after start or reset
	buf   []byte
}

func newDecoder() *decoder {
	d := &decoder{buf: make([]byte, 0, TableSize)}
	for i := 0; i < Radix; i++ {
		d.table[i] = tableEntry{prefix: -1, suffix: byte(i), length: 1}
	}
	d.reset()
	return d
}

func (d *decoder) reset() {
	d.next = firstCode
	d.prev = -1
}

// expand writes the string for code into d.buf (filled back to front).
func (d *decoder) expand(code int) []byte {
	n := d.table[code].length
	d.buf = d.buf[:n]
	for i := n - 1; code >= 0; i-- {
		e := &d.table[code]
		d.buf[i] = e.suffix
		code = e.prefix
	}
	return d.buf
}

// decode returns the bytes for code and learns the string the compressor
// added when it emitted the previous code.
func (d *decoder) decode(code int) ([]byte, error) {
	if code > MaxCode {
		return nil, fmt.Errorf("%w: code %d exceeds %d bits", ErrCorrupt, code, Width)
	}
	if d.prev < 0 {
		// First code of a stream or after a reset: only literals are known.
		if code >= Radix {
			return nil, fmt.Errorf("%w: code %d before any string was learned", ErrCorrupt, code)
		}
		d.prev = code
		return d.expand(code), nil
	}

	var out []byte
	switch {
	case code < d.next:
		out = d.expand(code)
	case code == d.next:
		// The compressor used the entry it was defining in the same step:
		// the string is prev's string followed by its own first byte.
		prev := d.expand(d.prev)
		out = append(prev, prev[0])
	default:
		return nil, fmt.Errorf("%w: code %d, table holds %d", ErrCorrupt, code, d.next)
	}

	if d.next < TableSize {
		d.table[d.next] = tableEntry{
			prefix: d.prev,
			suffix: out[0],
			length: d.table[d.prev].length + 1,
		}
		d.next++
	}
	d.prev = code
	return out, nil
}

// Decompress reads codes from in until the end of its stream and writes the
// decoded bytes to out. out is closed on return, also on error.
//
// A corrupt code aborts decoding with an error wrapping ErrCorrupt. The
// remaining codes are drained from in so the producer is never left
// blocked; bytes already written to out stay written.
func Decompress(in Source[uint16], out Sink[byte]) (Stats, error) {
	defer out.Close()

	d := newDecoder()
	var st Stats
	for {
		code, ok := in.Get()
		if !ok {
			return st, nil
		}
		st.Codes++

		if code == ResetCode {
			d.reset()
			st.Resets++
			continue
		}

		s, err := d.decode(int(code))
		if err != nil {
			drain(in)
			return st, err
		}
		for _, b := range s {
			out.Put(b)
		}
		st.Bytes += int64(len(s))
	}
}

func drain[T any](in Source[T]) {
	for {
		if _, ok := in.Get(); !ok {
			return
		}
	}
}
