package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encoder writes tag trees to an unframed byte stream. The whole tree is serialized into memory
// first and handed to the underlying writer in a single Write, so an encoding failure never
// leaves a partial tree behind.
type Encoder struct {
	w   io.Writer
	buf []byte
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes root as the named root compound.
func (e *Encoder) Encode(root *Compound, name string) (err error) {
	e.buf = e.buf[:0]
	if err = e.encodeRoot(root, name); err != nil {
		return &CodecError{Op: "encode", Err: err}
	}
	if _, err = e.w.Write(e.buf); err != nil {
		return &CodecError{Op: "write", Err: err}
	}
	return nil
}

// Marshal encodes root into a fresh, unframed byte slice.
func Marshal(root *Compound, name string) ([]byte, error) {
	e := &Encoder{}
	if err := e.encodeRoot(root, name); err != nil {
		return nil, &CodecError{Op: "encode", Err: err}
	}
	return e.buf, nil
}

func (e *Encoder) encodeRoot(root *Compound, name string) error {
	if root == nil {
		return fmt.Errorf("%w: nil root compound", ErrMalformedTag)
	}
	e.buf = append(e.buf, byte(TagCompound))
	if err := e.writeString(name); err != nil {
		return err
	}
	return e.writeCompound(root)
}

func (e *Encoder) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: string of %d bytes exceeds %d", ErrMalformedTag, len(s), math.MaxUint16)
	}
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(s)))
	e.buf = append(e.buf, s...)
	return nil
}

func (e *Encoder) writeLength(n int) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: length %d exceeds %d", ErrMalformedTag, n, math.MaxInt32)
	}
	e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(n))
	return nil
}

func (e *Encoder) writeCompound(c *Compound) error {
	for _, name := range c.names {
		tag := c.tags[name]
		e.buf = append(e.buf, byte(tag.Type()))
		if err := e.writeString(name); err != nil {
			return err
		}
		if err := e.writePayload(tag); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}
	}
	e.buf = append(e.buf, byte(TagEnd))
	return nil
}

func (e *Encoder) writeList(l *List) error {
	e.buf = append(e.buf, byte(l.elem))
	if err := e.writeLength(len(l.items)); err != nil {
		return err
	}
	for i, item := range l.items {
		if item.Type() != l.elem {
			return fmt.Errorf("[%d]: %w: list of %s holds %s", i, ErrTypeMismatch, l.elem, item.Type())
		}
		if err := e.writePayload(item); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

func (e *Encoder) writePayload(tag Tag) error {
	switch v := tag.(type) {
	case Byte:
		e.buf = append(e.buf, byte(v))
	case Short:
		e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(v))
	case Int:
		e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(v))
	case Long:
		e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(v))
	case Float:
		e.buf = binary.BigEndian.AppendUint32(e.buf, math.Float32bits(float32(v)))
	case Double:
		e.buf = binary.BigEndian.AppendUint64(e.buf, math.Float64bits(float64(v)))
	case String:
		return e.writeString(string(v))
	case ByteArray:
		if err := e.writeLength(len(v)); err != nil {
			return err
		}
		e.buf = append(e.buf, v...)
	case ShortArray:
		if err := e.writeLength(len(v)); err != nil {
			return err
		}
		for _, s := range v {
			e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(s))
		}
	case IntArray:
		if err := e.writeLength(len(v)); err != nil {
			return err
		}
		for _, i := range v {
			e.buf = binary.BigEndian.AppendUint32(e.buf, uint32(i))
		}
	case LongArray:
		if err := e.writeLength(len(v)); err != nil {
			return err
		}
		for _, l := range v {
			e.buf = binary.BigEndian.AppendUint64(e.buf, uint64(l))
		}
	case *List:
		return e.writeList(v)
	case *Compound:
		return e.writeCompound(v)
	default:
		return fmt.Errorf("%w: cannot encode %T", ErrMalformedTag, tag)
	}
	return nil
}
