package lzw

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewDictionary_InvalidCapacity(t *testing.T) {
	for _, c := range []int{0, Radix, firstCode, TableSize + 1} {
		if _, err := NewDictionary(c); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("NewDictionary(%d) error = %v, want ErrInvalidCapacity", c, err)
		}
	}
}

func TestDictionary_Literals(t *testing.T) {
	d, err := NewDictionary(TableSize)
	if err != nil {
		t.Fatalf("NewDictionary: %v", err)
	}
	if d.Len() != Radix {
		t.Fatalf("Len() = %d, want %d", d.Len(), Radix)
	}
	if d.NextCode() != firstCode {
		t.Fatalf("NextCode() = %d, want %d", d.NextCode(), firstCode)
	}
	for s := 0; s < Radix; s++ {
		i, ok := d.Find(Root, byte(s))
		if !ok {
			t.Fatalf("Find(Root, %d) not found", s)
		}
		if d.Code(i) != uint16(s) {
			t.Fatalf("Code(%d) = %d, want %d", i, d.Code(i), s)
		}
	}
	if _, ok := d.Find('a', 'b'); ok {
		t.Fatal("Find('a','b') found an entry in a fresh dictionary")
	}
}

func TestDictionary_AddAndFind(t *testing.T) {
	d, _ := NewDictionary(TableSize)

	a, _ := d.Find(Root, 'a')
	ab, err := d.Add(a, 'b', d.NextCode())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	abc, err := d.Add(ab, 'c', d.NextCode())
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if got, ok := d.Find(a, 'b'); !ok || got != ab {
		t.Errorf("Find(a, 'b') = (%d, %v), want (%d, true)", got, ok, ab)
	}
	if got, ok := d.Find(ab, 'c'); !ok || got != abc {
		t.Errorf("Find(ab, 'c') = (%d, %v), want (%d, true)", got, ok, abc)
	}
	if d.Code(ab) != firstCode || d.Code(abc) != firstCode+1 {
		t.Errorf("codes = %d, %d, want %d, %d", d.Code(ab), d.Code(abc), firstCode, firstCode+1)
	}
	// Index and code are independent: the reset marker has a code but no entry.
	if ab == int(d.Code(ab)) {
		t.Errorf("entry index %d unexpectedly equals its code", ab)
	}
	if got := d.Sequence(abc); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Sequence(abc) = %q, want \"abc\"", got)
	}
}

func TestDictionary_AddRejectsWrongCode(t *testing.T) {
	d, _ := NewDictionary(TableSize)
	if _, err := d.Add('a', 'b', firstCode+5); err == nil {
		t.Fatal("Add with a skipped code succeeded")
	}
	if _, err := d.Add(9999, 'b', d.NextCode()); err == nil {
		t.Fatal("Add under an unknown parent succeeded")
	}
}

func TestDictionary_FillAndReset(t *testing.T) {
	d, _ := NewDictionary(TableSize)

	added := 0
	parent := int('x')
	for !d.Full() {
		i, err := d.Add(parent, byte(added), d.NextCode())
		if err != nil {
			t.Fatalf("Add #%d: %v", added, err)
		}
		parent = i
		added++
	}
	if want := MaxCode - ResetCode; added != want {
		t.Fatalf("added %d entries before Full, want %d", added, want)
	}
	if d.Code(d.Len()-1) != MaxCode {
		t.Fatalf("last code = %d, want %d", d.Code(d.Len()-1), MaxCode)
	}
	if _, err := d.Add(parent, 0, d.NextCode()); !errors.Is(err, ErrDictionaryFull) {
		t.Fatalf("Add on full dictionary error = %v, want ErrDictionaryFull", err)
	}

	d.Reset()
	if d.Full() {
		t.Fatal("Full() after Reset")
	}
	if d.Len() != Radix || d.NextCode() != firstCode {
		t.Fatalf("after Reset: Len() = %d, NextCode() = %d", d.Len(), d.NextCode())
	}
	if _, ok := d.Find('x', 0); ok {
		t.Fatal("learned entry survived Reset")
	}
	if i, ok := d.Find(Root, 'x'); !ok || d.Code(i) != 'x' {
		t.Fatal("literal entry lost by Reset")
	}
}

func TestDictionary_SmallCapacity(t *testing.T) {
	d, err := NewDictionary(firstCode + 1)
	if err != nil {
		t.Fatalf("NewDictionary: %v", err)
	}
	if _, err := d.Add('a', 'a', d.NextCode()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !d.Full() {
		t.Fatal("expected Full() after filling codes up to capacity-1")
	}
}
