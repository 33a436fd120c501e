package lzw

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

// sliceSource feeds a fixed slice; Get reports the end once it is consumed.
type sliceSource[T any] struct {
	items []T
	reads int
}

func (s *sliceSource[T]) Get() (T, bool) {
	var zero T
	if s.reads >= len(s.items) {
		return zero, false
	}
	v := s.items[s.reads]
	s.reads++
	return v, true
}

// sliceSink collects everything written to it.
type sliceSink[T any] struct {
	items  []T
	closes int
}

func (s *sliceSink[T]) Put(v T) { s.items = append(s.items, v) }
func (s *sliceSink[T]) Close()  { s.closes++ }

func compressCodes(t *testing.T, data []byte) ([]uint16, Stats) {
	t.Helper()
	out := &sliceSink[uint16]{}
	st := Compress(&sliceSource[byte]{items: data}, out)
	if out.closes != 1 {
		t.Fatalf("Compress closed its output %d times, want 1", out.closes)
	}
	return out.items, st
}

func decompressCodes(t *testing.T, codes []uint16) ([]byte, Stats, error) {
	t.Helper()
	in := &sliceSource[uint16]{items: codes}
	out := &sliceSink[byte]{}
	st, err := Decompress(in, out)
	if out.closes != 1 {
		t.Fatalf("Decompress closed its output %d times, want 1", out.closes)
	}
	if in.reads != len(codes) {
		t.Fatalf("Decompress consumed %d of %d codes", in.reads, len(codes))
	}
	return out.items, st, err
}

func roundTrip(t *testing.T, data []byte) Stats {
	t.Helper()
	codes, cst := compressCodes(t, data)
	// Go through the wire format as well.
	codes = Unpack(Pack(codes))
	got, dst, err := decompressCodes(t, codes)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
	if cst.Bytes != int64(len(data)) || dst.Bytes != int64(len(data)) {
		t.Errorf("byte counts: compress %d, decompress %d, want %d", cst.Bytes, dst.Bytes, len(data))
	}
	if cst.Codes != dst.Codes || cst.Resets != dst.Resets {
		t.Errorf("stats disagree: compress %+v, decompress %+v", cst, dst)
	}
	return cst
}

func TestCompress_KnownCodes(t *testing.T) {
	tests := []struct {
		in   string
		want []uint16
	}{
		{"", nil},
		{"A", []uint16{'A'}},
		{"AB", []uint16{'A', 'B'}},
		{"ABABABA", []uint16{'A', 'B', 257, 259}},
		{"AAAAAAAAAA", []uint16{'A', 257, 258, 259}},
		{"TOBEORNOTTOBEORTOBEORNOT", []uint16{
			'T', 'O', 'B', 'E', 'O', 'R', 'N', 'O', 'T',
			257, 259, 261, 266, 260, 262, 264,
		}},
	}
	for _, tt := range tests {
		got, _ := compressCodes(t, []byte(tt.in))
		if len(got) != len(tt.want) {
			t.Errorf("Compress(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Compress(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}

func TestDecompress_KwKwK(t *testing.T) {
	// 257 is referenced in the same step that defines it.
	got, _, err := decompressCodes(t, []uint16{'A', 257, 258, 259})
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != "AAAAAAAAAA" {
		t.Fatalf("Decompress = %q, want 10 x 'A'", got)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 64*1024)
	rng.Read(random)

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 2000)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"single byte", []byte{0}},
		{"single 0xff", []byte{0xff}},
		{"ten A", bytes.Repeat([]byte("A"), 10)},
		{"long run", bytes.Repeat([]byte{0x7f}, 200000)},
		{"all bytes", allBytes()},
		{"text", text},
		{"random", random},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roundTrip(t, tt.data)
		})
	}
}

func allBytes() []byte {
	b := make([]byte, 0, 512)
	for i := 0; i < 512; i++ {
		b = append(b, byte(i))
	}
	return b
}

func TestRoundTrip_ForcesReset(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 256*1024)
	rng.Read(data)

	codes, st := compressCodes(t, data)
	if st.Resets == 0 {
		t.Fatal("expected at least one dictionary reset")
	}

	// Every reset marker is followed by a literal: the decoder has nothing
	// else to go on.
	resets := 0
	for i, c := range codes {
		if c != ResetCode {
			continue
		}
		resets++
		if i+1 < len(codes) && codes[i+1] >= Radix {
			t.Fatalf("code after reset at %d is %d, want a literal", i, codes[i+1])
		}
	}
	if int64(resets) != st.Resets {
		t.Fatalf("found %d reset markers, Stats.Resets = %d", resets, st.Resets)
	}
	for _, c := range codes {
		if c > MaxCode {
			t.Fatalf("code %d exceeds %d bits", c, Width)
		}
	}

	roundTrip(t, data)
}

func TestCompress_EveryCodeAssignedBeforeReset(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := make([]byte, 512*1024)
	rng.Read(data)

	codes, st := compressCodes(t, data)
	if st.Resets < 2 {
		t.Fatalf("Resets = %d, want at least 2", st.Resets)
	}

	// Each emitted code but the last of a segment learns one entry, so a
	// segment ends after TableSize-firstCode adds plus the code that found
	// the dictionary full.
	want := TableSize - firstCode + 1
	segment := 0
	for i, c := range codes {
		if c != ResetCode {
			segment++
			continue
		}
		if segment != want {
			t.Fatalf("reset at %d after %d codes, want %d", i, segment, want)
		}
		segment = 0
	}
}

func TestDecompress_Reset(t *testing.T) {
	got, st, err := decompressCodes(t, []uint16{'A', 'B', ResetCode, 'C', 257})
	// After the reset 257 is the KwKwK case again: "CC".
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != "ABCCC" {
		t.Fatalf("Decompress = %q, want \"ABCCC\"", got)
	}
	if st.Resets != 1 {
		t.Fatalf("Resets = %d, want 1", st.Resets)
	}
}

func TestDecompress_TrailingReset(t *testing.T) {
	got, _, err := decompressCodes(t, []uint16{'x', ResetCode})
	if err != nil || string(got) != "x" {
		t.Fatalf("Decompress = (%q, %v), want (\"x\", nil)", got, err)
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		codes []uint16
	}{
		{"non-literal first code", []uint16{300}},
		{"first code is next index", []uint16{257}},
		{"beyond next index", []uint16{'A', 'B', 400, 'C', 'D'}},
		{"non-literal after reset", []uint16{'A', 'B', 'C', ResetCode, 258}},
		{"too wide", []uint16{'A', 5000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decompressCodes(t, tt.codes)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestDecompress_CorruptKeepsEarlierOutput(t *testing.T) {
	got, _, err := decompressCodes(t, []uint16{'o', 'k', 999})
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}
	if string(got) != "ok" {
		t.Fatalf("output before corruption = %q, want \"ok\"", got)
	}
}

func BenchmarkCompress(b *testing.B) {
	data := bytes.Repeat([]byte("lorem ipsum dolor sit amet, consectetur adipiscing elit. "), 4096)
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		Compress(&sliceSource[byte]{items: data}, &sliceSink[uint16]{})
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := bytes.Repeat([]byte("lorem ipsum dolor sit amet, consectetur adipiscing elit. "), 4096)
	out := &sliceSink[uint16]{}
	Compress(&sliceSource[byte]{items: data}, out)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decompress(&sliceSource[uint16]{items: out.items}, &sliceSink[byte]{})
	}
}
