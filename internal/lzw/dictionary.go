package lzw

import "fmt"

// Root is the parent of the literal entries. Matching from Root means the
// current prefix is empty.
const Root = -1

// dictEntry is one trie node. The byte sequence it stands for is the
// sequence of its parent followed by symbol.
type dictEntry struct {
	parent int
	symbol byte
	code   uint16
}

// edge identifies a child by its parent entry and the symbol leading to it.
type edge struct {
	parent int
	symbol byte
}

// Dictionary is the compressor's prefix trie.
//
// Entries 0..Radix-1 are the literal bytes and survive Reset. Later entries
// are appended in the order they are learned; an entry's position in the
// trie and the code it is sent as are stored separately.
type Dictionary struct {
	entries  []dictEntry
	children map[edge]int
	capacity int
	lastCode uint16 // highest code handed out; ResetCode when nothing is learned
}

// NewDictionary creates a dictionary that assigns codes up to capacity-1.
func NewDictionary(capacity int) (*Dictionary, error) {
	if capacity <= firstCode || capacity > TableSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	d := &Dictionary{
		entries:  make([]dictEntry, Radix, capacity),
		children: make(map[edge]int, capacity-Radix),
		capacity: capacity,
	}
	for i := range Radix {
		d.entries[i] = dictEntry{parent: Root, symbol: byte(i), code: uint16(i)}
	}
	d.lastCode = ResetCode
	return d, nil
}

// Find returns the entry for parent's sequence extended by symbol.
func (d *Dictionary) Find(parent int, symbol byte) (int, bool) {
	if parent == Root {
		return int(symbol), true
	}
	i, ok := d.children[edge{parent, symbol}]
	return i, ok
}

// Full reports whether every code has been assigned.
func (d *Dictionary) Full() bool {
	return int(d.lastCode) >= d.capacity-1
}

// NextCode returns the code the next Add must use.
func (d *Dictionary) NextCode() uint16 {
	return d.lastCode + 1
}

// Add learns parent's sequence extended by symbol under code and returns the
// new entry's index. code must be NextCode().
func (d *Dictionary) Add(parent int, symbol byte, code uint16) (int, error) {
	if d.Full() {
		return 0, ErrDictionaryFull
	}
	if code != d.NextCode() {
		return 0, fmt.Errorf("lzw: add code %d, want %d", code, d.NextCode())
	}
	if parent < 0 || parent >= len(d.entries) {
		return 0, fmt.Errorf("lzw: add under unknown entry %d", parent)
	}
	i := len(d.entries)
	d.entries = append(d.entries, dictEntry{parent: parent, symbol: symbol, code: code})
	d.children[edge{parent, symbol}] = i
	d.lastCode = code
	return i, nil
}

// Code returns the wire code of entry i.
func (d *Dictionary) Code(i int) uint16 {
	return d.entries[i].code
}

// Sequence returns the bytes entry i stands for.
func (d *Dictionary) Sequence(i int) []byte {
	var rev []byte
	for ; i != Root; i = d.entries[i].parent {
		rev = append(rev, d.entries[i].symbol)
	}
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return rev
}

// Len returns the number of entries, literals included.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Reset forgets every learned sequence.
func (d *Dictionary) Reset() {
	d.entries = d.entries[:Radix]
	clear(d.children)
	d.lastCode = ResetCode
}
