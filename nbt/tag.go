// Package nbt implements the named binary tag tree used by Minecraft save files: an in-memory
// value model, a big-endian codec with selectable stream framing, and a schema verifier that can
// repair missing fields.
package nbt

import "fmt"

// TagType identifies the variant of a Tag. The numeric values are the on-disk type bytes.
type TagType byte

const (
	TagEnd       TagType = 0
	TagByte      TagType = 1
	TagShort     TagType = 2
	TagInt       TagType = 3
	TagLong      TagType = 4
	TagFloat     TagType = 5
	TagDouble    TagType = 6
	TagByteArray TagType = 7
	TagString    TagType = 8
	TagList      TagType = 9
	TagCompound  TagType = 10
	TagIntArray  TagType = 11
	TagLongArray TagType = 12

	// TagShortArray is not part of the vanilla format. Some older editors wrote it, so it is
	// understood on read and write.
	TagShortArray TagType = 100
)

func (t TagType) String() string {
	switch t {
	case TagEnd:
		return "TAG_End"
	case TagByte:
		return "TAG_Byte"
	case TagShort:
		return "TAG_Short"
	case TagInt:
		return "TAG_Int"
	case TagLong:
		return "TAG_Long"
	case TagFloat:
		return "TAG_Float"
	case TagDouble:
		return "TAG_Double"
	case TagByteArray:
		return "TAG_Byte_Array"
	case TagString:
		return "TAG_String"
	case TagList:
		return "TAG_List"
	case TagCompound:
		return "TAG_Compound"
	case TagIntArray:
		return "TAG_Int_Array"
	case TagLongArray:
		return "TAG_Long_Array"
	case TagShortArray:
		return "TAG_Short_Array"
	}
	return fmt.Sprintf("TAG_Unknown(%d)", byte(t))
}

// Valid reports whether t is a type byte the codec understands.
func (t TagType) Valid() bool {
	return t <= TagLongArray || t == TagShortArray
}

// Tag is a node of a tag tree. Every node is exclusively owned by its parent; Copy returns a
// clone that shares no storage with the receiver.
type Tag interface {
	Type() TagType
	Copy() Tag
}

type (
	End    struct{}
	Byte   int8
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
	String string

	// ByteArray is kept as unsigned bytes: every consumer of byte arrays in the save format
	// (block ids, nibble arrays, height maps) treats them as raw storage.
	ByteArray  []byte
	ShortArray []int16
	IntArray   []int32
	LongArray  []int64
)

func (End) Type() TagType    { return TagEnd }
func (Byte) Type() TagType   { return TagByte }
func (Short) Type() TagType  { return TagShort }
func (Int) Type() TagType    { return TagInt }
func (Long) Type() TagType   { return TagLong }
func (Float) Type() TagType  { return TagFloat }
func (Double) Type() TagType { return TagDouble }
func (String) Type() TagType { return TagString }

func (ByteArray) Type() TagType  { return TagByteArray }
func (ShortArray) Type() TagType { return TagShortArray }
func (IntArray) Type() TagType   { return TagIntArray }
func (LongArray) Type() TagType  { return TagLongArray }

func (t End) Copy() Tag    { return t }
func (t Byte) Copy() Tag   { return t }
func (t Short) Copy() Tag  { return t }
func (t Int) Copy() Tag    { return t }
func (t Long) Copy() Tag   { return t }
func (t Float) Copy() Tag  { return t }
func (t Double) Copy() Tag { return t }
func (t String) Copy() Tag { return t }

func (t ByteArray) Copy() Tag {
	out := make(ByteArray, len(t))
	copy(out, t)
	return out
}

func (t ShortArray) Copy() Tag {
	out := make(ShortArray, len(t))
	copy(out, t)
	return out
}

func (t IntArray) Copy() Tag {
	out := make(IntArray, len(t))
	copy(out, t)
	return out
}

func (t LongArray) Copy() Tag {
	out := make(LongArray, len(t))
	copy(out, t)
	return out
}

// Zero returns the zero-valued tag of the given type. Lists come back empty with TagEnd as
// their element type.
func Zero(t TagType) (Tag, error) {
	switch t {
	case TagEnd:
		return End{}, nil
	case TagByte:
		return Byte(0), nil
	case TagShort:
		return Short(0), nil
	case TagInt:
		return Int(0), nil
	case TagLong:
		return Long(0), nil
	case TagFloat:
		return Float(0), nil
	case TagDouble:
		return Double(0), nil
	case TagString:
		return String(""), nil
	case TagByteArray:
		return ByteArray{}, nil
	case TagShortArray:
		return ShortArray{}, nil
	case TagIntArray:
		return IntArray{}, nil
	case TagLongArray:
		return LongArray{}, nil
	case TagList:
		return NewList(TagEnd), nil
	case TagCompound:
		return NewCompound(), nil
	}
	return nil, fmt.Errorf("%w: unknown tag type %d", ErrMalformedTag, byte(t))
}

// As extracts the concrete variant T from tag, failing with ErrTypeMismatch when tag holds a
// different variant.
func As[T Tag](tag Tag) (T, error) {
	v, ok := tag.(T)
	if !ok {
		var want T
		got := "nil"
		if tag != nil {
			got = tag.Type().String()
		}
		return want, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, want.Type(), got)
	}
	return v, nil
}

// Equal reports whether a and b hold the same value. Compound entries must also appear in the
// same order.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *Compound:
		bv := b.(*Compound)
		if av.Len() != bv.Len() {
			return false
		}
		for i, name := range av.names {
			if bv.names[i] != name || !Equal(av.tags[name], bv.tags[name]) {
				return false
			}
		}
		return true
	case *List:
		bv := b.(*List)
		if av.elem != bv.elem || len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case ByteArray:
		return equalSlices(av, b.(ByteArray))
	case ShortArray:
		return equalSlices(av, b.(ShortArray))
	case IntArray:
		return equalSlices(av, b.(IntArray))
	case LongArray:
		return equalSlices(av, b.(LongArray))
	}
	return a == b
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
