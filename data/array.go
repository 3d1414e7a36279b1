// Package data provides fixed-size packed numeric arrays and the coordinate views chunk storage
// is built from. Arrays can wrap storage owned by a tag tree, so writes through a view land
// directly in the tree.
package data

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

var ErrIndexOutOfRange = errors.New("data: index out of range")
var ErrDimensionMismatch = errors.New("data: dimension mismatch")

// IndexError is the panic value of every out of range access.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("data: index %d out of range [0:%d]", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// CoordError is the panic value of an out of range coordinate access.
type CoordError struct {
	Coords []int
	Dims   []int
}

func (e *CoordError) Error() string {
	return fmt.Sprintf("data: coordinates %v out of range for dimensions %v", e.Coords, e.Dims)
}

func (e *CoordError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Array is flat numeric storage. Out of range indexes panic with *IndexError, the same way
// slice indexing does.
type Array interface {
	Len() int
	// DataWidth is the number of bits each element holds.
	DataWidth() int
	At(i int) int
	SetAt(i, v int)
	Clear()
}

// Cloner is an Array that can deep copy itself into its own type.
type Cloner[S any] interface {
	Array
	Clone() S
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(&IndexError{Index: i, Len: n})
	}
}

// Packed stores one element of T per slot.
type Packed[T constraints.Integer] struct {
	data []T
}

type ByteArray = Packed[byte]
type IntArray = Packed[int32]

func NewPacked[T constraints.Integer](n int) *Packed[T] {
	return &Packed[T]{data: make([]T, n)}
}

// WrapPacked uses data as backing storage without copying it.
func WrapPacked[T constraints.Integer](data []T) *Packed[T] {
	return &Packed[T]{data: data}
}

func NewByteArray(n int) *ByteArray        { return NewPacked[byte](n) }
func WrapByteArray(data []byte) *ByteArray { return WrapPacked(data) }
func NewIntArray(n int) *IntArray          { return NewPacked[int32](n) }
func WrapIntArray(data []int32) *IntArray  { return WrapPacked(data) }
func (p *Packed[T]) Len() int              { return len(p.data) }
func (p *Packed[T]) Data() []T             { return p.data }

func (p *Packed[T]) DataWidth() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

func (p *Packed[T]) At(i int) int {
	checkIndex(i, len(p.data))
	return int(p.data[i])
}

func (p *Packed[T]) SetAt(i, v int) {
	checkIndex(i, len(p.data))
	p.data[i] = T(v)
}

func (p *Packed[T]) Clear() {
	for i := range p.data {
		p.data[i] = 0
	}
}

func (p *Packed[T]) Clone() *Packed[T] {
	out := make([]T, len(p.data))
	copy(out, p.data)
	return &Packed[T]{data: out}
}

// NibbleArray packs two 4-bit values per byte: even indexes in the low nibble, odd indexes in
// the high nibble.
type NibbleArray struct {
	data []byte
	n    int
}

// NewNibbleArray allocates storage for n nibbles.
func NewNibbleArray(n int) *NibbleArray {
	return &NibbleArray{data: make([]byte, (n+1)/2), n: n}
}

// WrapNibbleArray uses data as backing storage for 2*len(data) nibbles.
func WrapNibbleArray(data []byte) *NibbleArray {
	return &NibbleArray{data: data, n: len(data) * 2}
}

func (a *NibbleArray) Len() int       { return a.n }
func (a *NibbleArray) DataWidth() int { return 4 }
func (a *NibbleArray) Data() []byte   { return a.data }

func (a *NibbleArray) At(i int) int {
	checkIndex(i, a.n)
	b := a.data[i>>1]
	if i&1 == 1 {
		return int(b >> 4)
	}
	return int(b & 0xF)
}

// SetAt stores the low four bits of v.
func (a *NibbleArray) SetAt(i, v int) {
	checkIndex(i, a.n)
	nibble := byte(v) & 0xF
	j := i >> 1
	if i&1 == 1 {
		a.data[j] = a.data[j]&0x0F | nibble<<4
	} else {
		a.data[j] = a.data[j]&0xF0 | nibble
	}
}

func (a *NibbleArray) Clear() {
	for i := range a.data {
		a.data[i] = 0
	}
}

func (a *NibbleArray) Clone() *NibbleArray {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return &NibbleArray{data: out, n: a.n}
}

// Fill sets every element of a to v.
func Fill(a Array, v int) {
	for i, n := 0, a.Len(); i < n; i++ {
		a.SetAt(i, v)
	}
}
