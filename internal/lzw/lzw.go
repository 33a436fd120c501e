package lzw

// Fixed-width LZW codec.
//
// Every code on the wire is Width bits wide. Codes below Radix stand for
// literal bytes, ResetCode tells the decoder to drop everything it has
// learned, and the remaining codes up to MaxCode are assigned to byte
// sequences as they are first seen. There is no header or end code: the
// stream ends where the bytes end.

import "errors"

const (
	Radix     = 256              // size of the literal alphabet
	Width     = 12               // bits per code
	ResetCode = Radix            // dictionary reset marker
	MaxCode   = (1 << Width) - 1 // largest code that fits in Width bits
	TableSize = 1 << Width       // number of code values
	firstCode = ResetCode + 1    // first dynamically assigned code
	codeMask  = uint32(MaxCode)
)

var (
	// ErrCorrupt reports a code that cannot have been produced by the
	// compressor at this point of the stream.
	ErrCorrupt = errors.New("lzw: corrupt input")

	// ErrDictionaryFull is returned by Dictionary.Add once every code has
	// been assigned. The caller is expected to emit ResetCode and Reset.
	ErrDictionaryFull = errors.New("lzw: dictionary full")

	// ErrInvalidCapacity is returned by NewDictionary for capacities that
	// cannot hold the literal entries plus the reset marker.
	ErrInvalidCapacity = errors.New("lzw: invalid dictionary capacity")
)

// Source is the input side of a stage: Get blocks for the next value and
// reports false once the stream has ended.
type Source[T any] interface {
	Get() (T, bool)
}

// Sink is the output side of a stage. Close marks the end of the stream and
// must be called exactly once, after the last Put.
type Sink[T any] interface {
	Put(v T)
	Close()
}

// Stats counts what an engine saw during one run.
type Stats struct {
	Bytes  int64 // uncompressed bytes consumed or produced
	Codes  int64 // codes produced or consumed, reset markers included
	Resets int64 // reset markers
}
