package data

import "fmt"

// CompositeArray3 stacks fixed-height sections into one tall volume. Sections may be nil; a nil
// section reads as 0 and is allocated through alloc on the first non-zero write.
type CompositeArray3 struct {
	xdim, zdim    int
	sectionHeight int
	width         int
	sections      []Array3
	alloc         func(i int) Array3
}

// NewCompositeArray3 composes sections of xdim*sectionHeight*zdim holding width bits per
// element. The slice is owned by the composite from then on.
func NewCompositeArray3(xdim, sectionHeight, zdim, width int, sections []Array3, alloc func(i int) Array3) (*CompositeArray3, error) {
	if xdim <= 0 || sectionHeight <= 0 || zdim <= 0 || len(sections) == 0 {
		return nil, fmt.Errorf("%w: %d sections of %dx%dx%d", ErrDimensionMismatch, len(sections), xdim, sectionHeight, zdim)
	}
	for i, s := range sections {
		if s == nil {
			continue
		}
		if s.XDim() != xdim || s.YDim() != sectionHeight || s.ZDim() != zdim {
			return nil, fmt.Errorf("%w: section %d is %dx%dx%d, want %dx%dx%d", ErrDimensionMismatch,
				i, s.XDim(), s.YDim(), s.ZDim(), xdim, sectionHeight, zdim)
		}
		if s.DataWidth() != width {
			return nil, fmt.Errorf("%w: section %d holds %d bits, want %d", ErrDimensionMismatch, i, s.DataWidth(), width)
		}
	}
	return &CompositeArray3{
		xdim:          xdim,
		zdim:          zdim,
		sectionHeight: sectionHeight,
		width:         width,
		sections:      sections,
		alloc:         alloc,
	}, nil
}

func (c *CompositeArray3) XDim() int          { return c.xdim }
func (c *CompositeArray3) YDim() int          { return c.sectionHeight * len(c.sections) }
func (c *CompositeArray3) ZDim() int          { return c.zdim }
func (c *CompositeArray3) Len() int           { return c.xdim * c.YDim() * c.zdim }
func (c *CompositeArray3) SectionHeight() int { return c.sectionHeight }
func (c *CompositeArray3) SectionCount() int  { return len(c.sections) }

// Section returns section i, or nil if it was never allocated.
func (c *CompositeArray3) Section(i int) Array3 {
	checkIndex(i, len(c.sections))
	return c.sections[i]
}

func (c *CompositeArray3) Allocated(i int) bool {
	return c.Section(i) != nil
}

// SetSection replaces section i. A nil section drops the storage.
func (c *CompositeArray3) SetSection(i int, s Array3) {
	checkIndex(i, len(c.sections))
	c.sections[i] = s
}

func (c *CompositeArray3) DataWidth() int { return c.width }

func (c *CompositeArray3) check(x, y, z int) {
	if x < 0 || x >= c.xdim || y < 0 || y >= c.YDim() || z < 0 || z >= c.zdim {
		panic(&CoordError{Coords: []int{x, y, z}, Dims: []int{c.xdim, c.YDim(), c.zdim}})
	}
}

// Index orders the whole volume the way a single section does: x fastest, then z, then y.
func (c *CompositeArray3) Index(x, y, z int) int {
	c.check(x, y, z)
	return c.xdim*(y*c.zdim+z) + x
}

func (c *CompositeArray3) Coords(i int) (x, y, z int) {
	checkIndex(i, c.Len())
	x = i % c.xdim
	i /= c.xdim
	z = i % c.zdim
	y = i / c.zdim
	return
}

func (c *CompositeArray3) Get(x, y, z int) int {
	c.check(x, y, z)
	s := c.sections[y/c.sectionHeight]
	if s == nil {
		return 0
	}
	return s.Get(x, y%c.sectionHeight, z)
}

func (c *CompositeArray3) Set(x, y, z, v int) {
	c.check(x, y, z)
	i := y / c.sectionHeight
	s := c.sections[i]
	if s == nil {
		if v == 0 || c.alloc == nil {
			return
		}
		s = c.alloc(i)
		c.sections[i] = s
	}
	s.Set(x, y%c.sectionHeight, z, v)
}

func (c *CompositeArray3) At(i int) int {
	return c.Get(c.Coords(i))
}

func (c *CompositeArray3) SetAt(i, v int) {
	x, y, z := c.Coords(i)
	c.Set(x, y, z, v)
}

// Clear zeroes every allocated section. Sections stay allocated.
func (c *CompositeArray3) Clear() {
	for _, s := range c.sections {
		if s != nil {
			s.Clear()
		}
	}
}
