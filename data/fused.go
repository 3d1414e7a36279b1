package data

import "fmt"

// FusedArray3 widens a base array with an overflow array holding the high bits:
// value = add<<blocks.DataWidth() | blocks. The overflow array is optional and is created
// through allocAdd the first time a value needs it.
type FusedArray3 struct {
	blocks   Array3
	add      Array3
	allocAdd func() Array3
}

func NewFusedArray3(blocks, add Array3, allocAdd func() Array3) (*FusedArray3, error) {
	if add != nil && (add.XDim() != blocks.XDim() || add.YDim() != blocks.YDim() || add.ZDim() != blocks.ZDim()) {
		return nil, fmt.Errorf("%w: add array is %dx%dx%d, blocks are %dx%dx%d", ErrDimensionMismatch,
			add.XDim(), add.YDim(), add.ZDim(), blocks.XDim(), blocks.YDim(), blocks.ZDim())
	}
	return &FusedArray3{blocks: blocks, add: add, allocAdd: allocAdd}, nil
}

func (f *FusedArray3) XDim() int             { return f.blocks.XDim() }
func (f *FusedArray3) YDim() int             { return f.blocks.YDim() }
func (f *FusedArray3) ZDim() int             { return f.blocks.ZDim() }
func (f *FusedArray3) Len() int              { return f.blocks.Len() }
func (f *FusedArray3) Index(x, y, z int) int { return f.blocks.Index(x, y, z) }
func (f *FusedArray3) Coords(i int) (x, y, z int) {
	return f.blocks.Coords(i)
}

// HasAdd reports whether the overflow array exists.
func (f *FusedArray3) HasAdd() bool { return f.add != nil }

func (f *FusedArray3) Add() Array3 { return f.add }

func (f *FusedArray3) DataWidth() int {
	if f.add != nil {
		return f.blocks.DataWidth() + f.add.DataWidth()
	}
	return f.blocks.DataWidth() + 4
}

func (f *FusedArray3) mask() int {
	return 1<<f.blocks.DataWidth() - 1
}

func (f *FusedArray3) At(i int) int {
	v := f.blocks.At(i)
	if f.add != nil {
		v |= f.add.At(i) << f.blocks.DataWidth()
	}
	return v
}

// SetAt stores the low DataWidth bits of v; higher bits are dropped and negative values wrap.
// Without an add array, and with no allocAdd to create one, only the base width is kept.
func (f *FusedArray3) SetAt(i, v int) {
	f.blocks.SetAt(i, v&f.mask())
	hi := v >> f.blocks.DataWidth()
	if f.add == nil {
		if hi == 0 || f.allocAdd == nil {
			return
		}
		f.add = f.allocAdd()
	}
	f.add.SetAt(i, hi)
}

func (f *FusedArray3) Get(x, y, z int) int { return f.At(f.Index(x, y, z)) }
func (f *FusedArray3) Set(x, y, z, v int)  { f.SetAt(f.Index(x, y, z), v) }

func (f *FusedArray3) Clear() {
	f.blocks.Clear()
	if f.add != nil {
		f.add.Clear()
	}
}
