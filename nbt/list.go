package nbt

import "fmt"

// List is an ordered sequence of tags that all share the list's declared element type.
type List struct {
	elem  TagType
	items []Tag
}

// NewList creates a list of element type elem holding items. It panics if an item has a
// different type; use Add to grow a list from untrusted input.
func NewList(elem TagType, items ...Tag) *List {
	l := &List{elem: elem, items: make([]Tag, 0, len(items))}
	for _, item := range items {
		if err := l.Add(item); err != nil {
			panic(err)
		}
	}
	return l
}

func (l *List) Type() TagType { return TagList }

func (l *List) Copy() Tag {
	out := &List{elem: l.elem, items: make([]Tag, len(l.items))}
	for i, item := range l.items {
		out.items[i] = item.Copy()
	}
	return out
}

// ElemType returns the declared element type.
func (l *List) ElemType() TagType {
	return l.elem
}

func (l *List) Len() int {
	return len(l.items)
}

// Get returns the i'th element; it panics when i is out of range, like slice indexing.
func (l *List) Get(i int) Tag {
	return l.items[i]
}

func (l *List) check(tag Tag) error {
	if tag == nil {
		return fmt.Errorf("%w: nil list element", ErrTypeMismatch)
	}
	if l.elem == TagEnd && len(l.items) == 0 {
		// Empty lists are written with an End element type; the first element decides.
		l.elem = tag.Type()
	}
	if tag.Type() != l.elem {
		return fmt.Errorf("%w: list of %s cannot hold %s", ErrTypeMismatch, l.elem, tag.Type())
	}
	return nil
}

// Add appends tag, failing with ErrTypeMismatch if its type differs from the element type.
func (l *List) Add(tag Tag) error {
	if err := l.check(tag); err != nil {
		return err
	}
	l.items = append(l.items, tag)
	return nil
}

// Set replaces the i'th element. A failed Set leaves the list unchanged.
func (l *List) Set(i int, tag Tag) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(l.items))
	}
	if tag == nil || tag.Type() != l.elem {
		return l.check(tag)
	}
	l.items[i] = tag
	return nil
}

// Insert places tag at position i, shifting later elements.
func (l *List) Insert(i int, tag Tag) error {
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(l.items))
	}
	if err := l.check(tag); err != nil {
		return err
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = tag
	return nil
}

// Remove deletes the i'th element.
func (l *List) Remove(i int) {
	l.items = append(l.items[:i], l.items[i+1:]...)
}

// RemoveIf deletes every element for which fn returns true and reports how many were removed.
func (l *List) RemoveIf(fn func(Tag) bool) int {
	kept := l.items[:0]
	for _, item := range l.items {
		if !fn(item) {
			kept = append(kept, item)
		}
	}
	removed := len(l.items) - len(kept)
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
	return removed
}

// Clear removes all elements, keeping the element type.
func (l *List) Clear() {
	l.items = nil
}

// Items returns the backing elements. The slice must not be appended to.
func (l *List) Items() []Tag {
	return l.items
}
