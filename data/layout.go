package data

import "fmt"

// Array3 addresses an Array by (x, y, z). Every implementation maps coordinates to indexes
// bijectively: Coords(Index(x, y, z)) == (x, y, z).
type Array3 interface {
	Array
	XDim() int
	YDim() int
	ZDim() int
	Get(x, y, z int) int
	Set(x, y, z, v int)
	Index(x, y, z int) int
	Coords(i int) (x, y, z int)
}

// Array2 addresses an Array by (x, z).
type Array2 interface {
	Array
	XDim() int
	ZDim() int
	Get(x, z int) int
	Set(x, z, v int)
	Index(x, z int) int
	Coords(i int) (x, z int)
}

// view forwards the flat Array methods to the wrapped storage.
type view[S Cloner[S]] struct {
	s S
}

func (v view[S]) Len() int       { return v.s.Len() }
func (v view[S]) DataWidth() int { return v.s.DataWidth() }
func (v view[S]) At(i int) int   { return v.s.At(i) }
func (v view[S]) SetAt(i, x int) { v.s.SetAt(i, x) }
func (v view[S]) Clear()         { v.s.Clear() }
func (v view[S]) Storage() S     { return v.s }
func (v view[S]) clone() view[S] { return view[S]{s: v.s.Clone()} }

type dims3 struct {
	xdim, ydim, zdim int
}

func (d dims3) XDim() int { return d.xdim }
func (d dims3) YDim() int { return d.ydim }
func (d dims3) ZDim() int { return d.zdim }

func (d dims3) check(x, y, z int) {
	if x < 0 || x >= d.xdim || y < 0 || y >= d.ydim || z < 0 || z >= d.zdim {
		panic(&CoordError{Coords: []int{x, y, z}, Dims: []int{d.xdim, d.ydim, d.zdim}})
	}
}

func checkLen(n, xdim, ydim, zdim int) error {
	if xdim <= 0 || ydim <= 0 || zdim <= 0 || n != xdim*ydim*zdim {
		return fmt.Errorf("%w: %d elements for %dx%dx%d", ErrDimensionMismatch, n, xdim, ydim, zdim)
	}
	return nil
}

// XZY is the legacy chunk and schematic ordering: index = YDim*(x*ZDim + z) + y, so each
// vertical column is contiguous.
type XZY[S Cloner[S]] struct {
	view[S]
	dims3
}

// NewXZY views s as an xdim*ydim*zdim volume.
func NewXZY[S Cloner[S]](s S, xdim, ydim, zdim int) (*XZY[S], error) {
	if err := checkLen(s.Len(), xdim, ydim, zdim); err != nil {
		return nil, err
	}
	return &XZY[S]{view: view[S]{s}, dims3: dims3{xdim, ydim, zdim}}, nil
}

func (a *XZY[S]) Index(x, y, z int) int {
	a.check(x, y, z)
	return a.ydim*(x*a.zdim+z) + y
}

func (a *XZY[S]) Coords(i int) (x, y, z int) {
	checkIndex(i, a.Len())
	y = i % a.ydim
	i /= a.ydim
	z = i % a.zdim
	x = i / a.zdim
	return
}

func (a *XZY[S]) Get(x, y, z int) int { return a.At(a.Index(x, y, z)) }
func (a *XZY[S]) Set(x, y, z, v int)  { a.SetAt(a.Index(x, y, z), v) }
func (a *XZY[S]) Clone() *XZY[S]      { return &XZY[S]{view: a.clone(), dims3: a.dims3} }

// YZX is the per-section ordering: index = XDim*(y*ZDim + z) + x, so each horizontal layer is
// contiguous.
type YZX[S Cloner[S]] struct {
	view[S]
	dims3
}

// NewYZX views s as an xdim*ydim*zdim volume.
func NewYZX[S Cloner[S]](s S, xdim, ydim, zdim int) (*YZX[S], error) {
	if err := checkLen(s.Len(), xdim, ydim, zdim); err != nil {
		return nil, err
	}
	return &YZX[S]{view: view[S]{s}, dims3: dims3{xdim, ydim, zdim}}, nil
}

func (a *YZX[S]) Index(x, y, z int) int {
	a.check(x, y, z)
	return a.xdim*(y*a.zdim+z) + x
}

func (a *YZX[S]) Coords(i int) (x, y, z int) {
	checkIndex(i, a.Len())
	x = i % a.xdim
	i /= a.xdim
	z = i % a.zdim
	y = i / a.zdim
	return
}

func (a *YZX[S]) Get(x, y, z int) int { return a.At(a.Index(x, y, z)) }
func (a *YZX[S]) Set(x, y, z, v int)  { a.SetAt(a.Index(x, y, z), v) }
func (a *YZX[S]) Clone() *YZX[S]      { return &YZX[S]{view: a.clone(), dims3: a.dims3} }

// ZX is the column-map ordering used by height maps and biomes: index = z*XDim + x.
type ZX[S Cloner[S]] struct {
	view[S]
	xdim, zdim int
}

func NewZX[S Cloner[S]](s S, xdim, zdim int) (*ZX[S], error) {
	if err := checkLen(s.Len(), xdim, 1, zdim); err != nil {
		return nil, err
	}
	return &ZX[S]{view: view[S]{s}, xdim: xdim, zdim: zdim}, nil
}

func (a *ZX[S]) XDim() int { return a.xdim }
func (a *ZX[S]) ZDim() int { return a.zdim }

func (a *ZX[S]) Index(x, z int) int {
	if x < 0 || x >= a.xdim || z < 0 || z >= a.zdim {
		panic(&CoordError{Coords: []int{x, z}, Dims: []int{a.xdim, a.zdim}})
	}
	return z*a.xdim + x
}

func (a *ZX[S]) Coords(i int) (x, z int) {
	checkIndex(i, a.Len())
	return i % a.xdim, i / a.xdim
}

func (a *ZX[S]) Get(x, z int) int { return a.At(a.Index(x, z)) }
func (a *ZX[S]) Set(x, z, v int)  { a.SetAt(a.Index(x, z), v) }
func (a *ZX[S]) Clone() *ZX[S]    { return &ZX[S]{view: a.clone(), xdim: a.xdim, zdim: a.zdim} }

// The concrete layouts chunk storage binds to. Each ordering is its own type, so a call site
// written for one on-disk layout cannot be handed the other.
type (
	XZYByteArray   = XZY[*ByteArray]
	XZYNibbleArray = XZY[*NibbleArray]
	YZXByteArray   = YZX[*ByteArray]
	YZXNibbleArray = YZX[*NibbleArray]
	ZXByteArray    = ZX[*ByteArray]
	ZXIntArray     = ZX[*IntArray]
)

func NewXZYByteArray(xdim, ydim, zdim int) *XZYByteArray {
	a, _ := NewXZY(NewByteArray(xdim*ydim*zdim), xdim, ydim, zdim)
	return a
}

func WrapXZYByteArray(b []byte, xdim, ydim, zdim int) (*XZYByteArray, error) {
	return NewXZY(WrapByteArray(b), xdim, ydim, zdim)
}

func NewXZYNibbleArray(xdim, ydim, zdim int) *XZYNibbleArray {
	a, _ := NewXZY(NewNibbleArray(xdim*ydim*zdim), xdim, ydim, zdim)
	return a
}

func WrapXZYNibbleArray(b []byte, xdim, ydim, zdim int) (*XZYNibbleArray, error) {
	return NewXZY(WrapNibbleArray(b), xdim, ydim, zdim)
}

func NewYZXByteArray(xdim, ydim, zdim int) *YZXByteArray {
	a, _ := NewYZX(NewByteArray(xdim*ydim*zdim), xdim, ydim, zdim)
	return a
}

func WrapYZXByteArray(b []byte, xdim, ydim, zdim int) (*YZXByteArray, error) {
	return NewYZX(WrapByteArray(b), xdim, ydim, zdim)
}

func NewYZXNibbleArray(xdim, ydim, zdim int) *YZXNibbleArray {
	a, _ := NewYZX(NewNibbleArray(xdim*ydim*zdim), xdim, ydim, zdim)
	return a
}

func WrapYZXNibbleArray(b []byte, xdim, ydim, zdim int) (*YZXNibbleArray, error) {
	return NewYZX(WrapNibbleArray(b), xdim, ydim, zdim)
}

func WrapZXByteArray(b []byte, xdim, zdim int) (*ZXByteArray, error) {
	return NewZX(WrapByteArray(b), xdim, zdim)
}

func WrapZXIntArray(v []int32, xdim, zdim int) (*ZXIntArray, error) {
	return NewZX(WrapIntArray(v), xdim, zdim)
}
