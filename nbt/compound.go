package nbt

import "fmt"

// Compound is an ordered set of uniquely named tags. Insertion order is preserved so a decoded
// tree encodes back to the same bytes.
type Compound struct {
	names []string
	tags  map[string]Tag
}

func NewCompound() *Compound {
	return &Compound{tags: make(map[string]Tag)}
}

func (c *Compound) Type() TagType { return TagCompound }

func (c *Compound) Copy() Tag {
	out := &Compound{
		names: make([]string, len(c.names)),
		tags:  make(map[string]Tag, len(c.tags)),
	}
	copy(out.names, c.names)
	for name, tag := range c.tags {
		out.tags[name] = tag.Copy()
	}
	return out
}

func (c *Compound) Len() int {
	return len(c.names)
}

// Names returns the entry names in insertion order.
func (c *Compound) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Compound) Has(name string) bool {
	_, ok := c.tags[name]
	return ok
}

// Get returns the named entry or an error wrapping ErrKeyNotFound.
func (c *Compound) Get(name string) (Tag, error) {
	tag, ok := c.tags[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, name)
	}
	return tag, nil
}

// Lookup is the comma-ok form of Get.
func (c *Compound) Lookup(name string) (Tag, bool) {
	tag, ok := c.tags[name]
	return tag, ok
}

// Set stores tag under name. Replacing an entry keeps its position; new entries are appended.
func (c *Compound) Set(name string, tag Tag) {
	if tag == nil {
		panic("nbt: Set called with nil tag for " + name)
	}
	if c.tags == nil {
		c.tags = make(map[string]Tag)
	}
	if _, ok := c.tags[name]; !ok {
		c.names = append(c.names, name)
	}
	c.tags[name] = tag
}

// Delete removes the named entry and reports whether it existed.
func (c *Compound) Delete(name string) bool {
	if _, ok := c.tags[name]; !ok {
		return false
	}
	delete(c.tags, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	return true
}

// Each calls fn for every entry in insertion order until fn returns false.
func (c *Compound) Each(fn func(name string, tag Tag) bool) {
	for _, name := range c.names {
		if !fn(name, c.tags[name]) {
			return
		}
	}
}

// MergeFrom copies into c a deep copy of every entry of other whose name c does not already
// have. Entries already present in c always win; this is how preserved raw fields are put back
// onto a freshly rebuilt tree without clobbering what the typed layer just wrote.
func (c *Compound) MergeFrom(other *Compound) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		if c.Has(name) {
			continue
		}
		c.Set(name, other.tags[name].Copy())
	}
}

// Lookup returns the entry called name as variant T. It fails with ErrKeyNotFound when the entry
// is absent and ErrTypeMismatch when it holds a different variant.
func Lookup[T Tag](c *Compound, name string) (T, error) {
	tag, err := c.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	v, err := As[T](tag)
	if err != nil {
		return v, fmt.Errorf("%q: %w", name, err)
	}
	return v, nil
}

func (c *Compound) Byte(name string) (Byte, error)     { return Lookup[Byte](c, name) }
func (c *Compound) Short(name string) (Short, error)   { return Lookup[Short](c, name) }
func (c *Compound) Int(name string) (Int, error)       { return Lookup[Int](c, name) }
func (c *Compound) Long(name string) (Long, error)     { return Lookup[Long](c, name) }
func (c *Compound) Float(name string) (Float, error)   { return Lookup[Float](c, name) }
func (c *Compound) Double(name string) (Double, error) { return Lookup[Double](c, name) }
func (c *Compound) String(name string) (String, error) { return Lookup[String](c, name) }

func (c *Compound) ByteArray(name string) (ByteArray, error) {
	return Lookup[ByteArray](c, name)
}

func (c *Compound) IntArray(name string) (IntArray, error) {
	return Lookup[IntArray](c, name)
}

func (c *Compound) LongArray(name string) (LongArray, error) {
	return Lookup[LongArray](c, name)
}

func (c *Compound) ShortArray(name string) (ShortArray, error) {
	return Lookup[ShortArray](c, name)
}

func (c *Compound) List(name string) (*List, error) {
	return Lookup[*List](c, name)
}

func (c *Compound) Compound(name string) (*Compound, error) {
	return Lookup[*Compound](c, name)
}
