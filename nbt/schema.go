package nbt

// SchemaOptions modify how a Verifier treats an absent node.
type SchemaOptions uint8

const (
	// Optional nodes may be absent.
	Optional SchemaOptions = 1 << iota
	// CreateOnMissing nodes are inserted with their default value when absent.
	CreateOnMissing
)

func (o SchemaOptions) Has(flag SchemaOptions) bool {
	return o&flag != 0
}

// SchemaNode describes the expected shape of one named tag.
type SchemaNode interface {
	Name() string
	Options() SchemaOptions
	// DefaultTag builds the zero-valued tag CreateOnMissing inserts.
	DefaultTag() Tag
	verify(v *Verifier, path string, tag Tag) bool
}

type schemaBase struct {
	name string
	opts SchemaOptions
}

func (b schemaBase) Name() string           { return b.name }
func (b schemaBase) Options() SchemaOptions { return b.opts }

func joinOptions(opts []SchemaOptions) (o SchemaOptions) {
	for _, opt := range opts {
		o |= opt
	}
	return
}

// SchemaScalar expects a scalar tag of a fixed type.
type SchemaScalar struct {
	schemaBase
	typ TagType
}

func NewSchemaScalar(name string, typ TagType, opts ...SchemaOptions) *SchemaScalar {
	return &SchemaScalar{schemaBase{name, joinOptions(opts)}, typ}
}

func (s *SchemaScalar) TagType() TagType { return s.typ }

func (s *SchemaScalar) DefaultTag() Tag {
	tag, err := Zero(s.typ)
	if err != nil {
		panic(err)
	}
	return tag
}

// SchemaString expects a string, optionally with an exact value or a maximum byte length.
type SchemaString struct {
	schemaBase
	value  string
	maxLen int
}

func NewSchemaString(name string, opts ...SchemaOptions) *SchemaString {
	return &SchemaString{schemaBase: schemaBase{name, joinOptions(opts)}}
}

// WithValue requires the string to equal value; value is also the default.
func (s *SchemaString) WithValue(value string) *SchemaString {
	s.value = value
	return s
}

func (s *SchemaString) WithMaxLength(n int) *SchemaString {
	s.maxLen = n
	return s
}

func (s *SchemaString) DefaultTag() Tag {
	return String(s.value)
}

// SchemaArray expects one of the array tag types, optionally of an exact length.
type SchemaArray struct {
	schemaBase
	typ    TagType
	length int
}

func NewSchemaByteArray(name string, length int, opts ...SchemaOptions) *SchemaArray {
	return &SchemaArray{schemaBase{name, joinOptions(opts)}, TagByteArray, length}
}

func NewSchemaShortArray(name string, length int, opts ...SchemaOptions) *SchemaArray {
	return &SchemaArray{schemaBase{name, joinOptions(opts)}, TagShortArray, length}
}

func NewSchemaIntArray(name string, length int, opts ...SchemaOptions) *SchemaArray {
	return &SchemaArray{schemaBase{name, joinOptions(opts)}, TagIntArray, length}
}

func NewSchemaLongArray(name string, length int, opts ...SchemaOptions) *SchemaArray {
	return &SchemaArray{schemaBase{name, joinOptions(opts)}, TagLongArray, length}
}

func (s *SchemaArray) TagType() TagType { return s.typ }
func (s *SchemaArray) Length() int      { return s.length }

func (s *SchemaArray) DefaultTag() Tag {
	switch s.typ {
	case TagShortArray:
		return make(ShortArray, s.length)
	case TagIntArray:
		return make(IntArray, s.length)
	case TagLongArray:
		return make(LongArray, s.length)
	}
	return make(ByteArray, s.length)
}

func (s *SchemaArray) arrayLen(tag Tag) int {
	switch v := tag.(type) {
	case ByteArray:
		return len(v)
	case ShortArray:
		return len(v)
	case IntArray:
		return len(v)
	case LongArray:
		return len(v)
	}
	return -1
}

// SchemaList expects a list of a fixed element type, optionally of an exact length and with
// every element matching an element schema.
type SchemaList struct {
	schemaBase
	elem    TagType
	length  int
	element SchemaNode
}

func NewSchemaList(name string, elem TagType, opts ...SchemaOptions) *SchemaList {
	return &SchemaList{schemaBase: schemaBase{name, joinOptions(opts)}, elem: elem}
}

func (s *SchemaList) WithLength(n int) *SchemaList {
	s.length = n
	return s
}

// WithElement checks every element against element, whose own name is ignored.
func (s *SchemaList) WithElement(element SchemaNode) *SchemaList {
	s.element = element
	return s
}

func (s *SchemaList) ElemType() TagType { return s.elem }

func (s *SchemaList) DefaultTag() Tag {
	l := &List{elem: s.elem}
	for i := 0; i < s.length; i++ {
		var item Tag
		if s.element != nil {
			item = s.element.DefaultTag()
		} else {
			item, _ = Zero(s.elem)
		}
		l.items = append(l.items, item)
	}
	return l
}

// SchemaCompound expects a compound whose children match, in any order. Entries the schema
// does not mention are always allowed.
type SchemaCompound struct {
	schemaBase
	children []SchemaNode
}

func NewSchemaCompound(name string, children ...SchemaNode) *SchemaCompound {
	s := &SchemaCompound{schemaBase: schemaBase{name: name}}
	for _, child := range children {
		s.Add(child)
	}
	return s
}

// WithOptions sets the compound's own options.
func (s *SchemaCompound) WithOptions(opts ...SchemaOptions) *SchemaCompound {
	s.opts = joinOptions(opts)
	return s
}

// Add appends child, replacing an existing child of the same name in place.
func (s *SchemaCompound) Add(child SchemaNode) {
	for i, c := range s.children {
		if c.Name() == child.Name() {
			s.children[i] = child
			return
		}
	}
	s.children = append(s.children, child)
}

func (s *SchemaCompound) Children() []SchemaNode {
	out := make([]SchemaNode, len(s.children))
	copy(out, s.children)
	return out
}

// Child returns the child called name, or nil.
func (s *SchemaCompound) Child(name string) SchemaNode {
	for _, c := range s.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// MergeInto derives a schema from s: the result carries the name and options of overrides and
// s's children in order, with any child of overrides that shares a name replacing that child
// and the remaining children of overrides appended. Neither input is modified.
func (s *SchemaCompound) MergeInto(overrides *SchemaCompound) *SchemaCompound {
	out := &SchemaCompound{
		schemaBase: overrides.schemaBase,
		children:   make([]SchemaNode, 0, len(s.children)+len(overrides.children)),
	}
	out.children = append(out.children, s.children...)
	for _, child := range overrides.children {
		out.Add(child)
	}
	return out
}

// DefaultTag builds a compound holding the defaults of every non-optional child.
func (s *SchemaCompound) DefaultTag() Tag {
	c := NewCompound()
	for _, child := range s.children {
		if child.Options().Has(Optional) {
			continue
		}
		c.Set(child.Name(), child.DefaultTag())
	}
	return c
}
