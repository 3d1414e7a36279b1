package data

import (
	"errors"
	"testing"
)

func expectOutOfRange(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("recovered %v, want an ErrIndexOutOfRange panic", r)
		}
	}()
	f()
}

func TestNibblePacking(t *testing.T) {
	a := NewNibbleArray(32)
	for i := 0; i < a.Len(); i++ {
		for v := 0; v < 16; v++ {
			neighbour := a.At(i ^ 1)
			a.SetAt(i, v)
			if got := a.At(i); got != v {
				t.Fatalf("At(%d) = %d after SetAt(%d, %d)", i, got, i, v)
			}
			if got := a.At(i ^ 1); got != neighbour {
				t.Fatalf("SetAt(%d) changed index %d from %d to %d", i, i^1, neighbour, got)
			}
		}
		a.SetAt(i, i%16)
	}
}

func TestNibbleLayout(t *testing.T) {
	raw := make([]byte, 2)
	a := WrapNibbleArray(raw)
	a.SetAt(0, 0x3)
	a.SetAt(1, 0xA)
	a.SetAt(3, 0x1F)
	if raw[0] != 0xA3 || raw[1] != 0xF0 {
		t.Errorf("backing bytes = %#x, want [0xa3 0xf0]", raw)
	}
	if a.Len() != 4 || a.DataWidth() != 4 {
		t.Errorf("Len = %d, DataWidth = %d", a.Len(), a.DataWidth())
	}
}

func TestPackedWidthAndClone(t *testing.T) {
	b := NewByteArray(4)
	i := NewIntArray(4)
	if b.DataWidth() != 8 || i.DataWidth() != 32 {
		t.Errorf("widths = %d, %d", b.DataWidth(), i.DataWidth())
	}
	b.SetAt(2, 200)
	c := b.Clone()
	c.SetAt(2, 7)
	if b.At(2) != 200 {
		t.Error("Clone shares storage")
	}
	Fill(b, 9)
	b.Clear()
	for n := 0; n < b.Len(); n++ {
		if b.At(n) != 0 {
			t.Fatalf("Clear left %d at %d", b.At(n), n)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	expectOutOfRange(t, func() { NewByteArray(4).At(4) })
	expectOutOfRange(t, func() { NewNibbleArray(4).SetAt(-1, 0) })
	expectOutOfRange(t, func() { NewXZYByteArray(2, 2, 2).Get(0, 2, 0) })
	expectOutOfRange(t, func() { NewYZXNibbleArray(2, 2, 2).Set(2, 0, 0, 1) })
}
