package nbt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxDepth bounds List/Compound nesting so hostile input cannot exhaust the stack.
const maxDepth = 512

// readChunk caps how much is allocated ahead of data actually arriving for arrays whose length
// prefix came from the stream.
const readChunk = 64 << 10

// Decoder reads a tag tree from an unframed byte stream. Use NewReader first to strip a
// compression framing.
type Decoder struct {
	r       *bufio.Reader
	scratch [8]byte
	depth   int
}

func NewDecoder(r io.Reader) *Decoder {
	if br, ok := r.(*bufio.Reader); ok {
		return &Decoder{r: br}
	}
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads one named root compound.
func (d *Decoder) Decode() (name string, root *Compound, err error) {
	name, root, err = d.decodeRoot()
	if err != nil {
		return "", nil, &CodecError{Op: "decode", Err: err}
	}
	return name, root, nil
}

func (d *Decoder) decodeRoot() (name string, root *Compound, err error) {
	typ, err := d.readByte()
	if err != nil {
		return
	}
	if TagType(typ) != TagCompound {
		err = fmt.Errorf("%w: root is %s, not %s", ErrMalformedTag, TagType(typ), TagCompound)
		return
	}
	if name, err = d.readString(); err != nil {
		return
	}
	root, err = d.readCompound()
	return
}

// Unmarshal decodes an unframed tag tree held in memory.
func Unmarshal(data []byte) (name string, root *Compound, err error) {
	return NewDecoder(bytes.NewReader(data)).Decode()
}

func (d *Decoder) readPayload(typ TagType) (Tag, error) {
	switch typ {
	case TagByte:
		b, err := d.readByte()
		return Byte(int8(b)), err
	case TagShort:
		v, err := d.readUint16()
		return Short(int16(v)), err
	case TagInt:
		v, err := d.readUint32()
		return Int(int32(v)), err
	case TagLong:
		v, err := d.readUint64()
		return Long(int64(v)), err
	case TagFloat:
		v, err := d.readUint32()
		return Float(math.Float32frombits(v)), err
	case TagDouble:
		v, err := d.readUint64()
		return Double(math.Float64frombits(v)), err
	case TagString:
		s, err := d.readString()
		return String(s), err
	case TagByteArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		b, err := d.readBytes(n)
		return ByteArray(b), err
	case TagShortArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		b, err := d.readBytes(n * 2)
		if err != nil {
			return nil, err
		}
		out := make(ShortArray, n)
		for i := range out {
			out[i] = int16(binary.BigEndian.Uint16(b[i*2:]))
		}
		return out, nil
	case TagIntArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		b, err := d.readBytes(n * 4)
		if err != nil {
			return nil, err
		}
		out := make(IntArray, n)
		for i := range out {
			out[i] = int32(binary.BigEndian.Uint32(b[i*4:]))
		}
		return out, nil
	case TagLongArray:
		n, err := d.readLength()
		if err != nil {
			return nil, err
		}
		b, err := d.readBytes(n * 8)
		if err != nil {
			return nil, err
		}
		out := make(LongArray, n)
		for i := range out {
			out[i] = int64(binary.BigEndian.Uint64(b[i*8:]))
		}
		return out, nil
	case TagList:
		return d.readList()
	case TagCompound:
		return d.readCompound()
	}
	return nil, fmt.Errorf("%w: unknown tag type %d", ErrMalformedTag, byte(typ))
}

func (d *Decoder) enter() error {
	d.depth++
	if d.depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrMalformedTag, maxDepth)
	}
	return nil
}

func (d *Decoder) readCompound() (*Compound, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	c := NewCompound()
	for {
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		typ := TagType(b)
		if typ == TagEnd {
			return c, nil
		}
		if !typ.Valid() {
			return nil, fmt.Errorf("%w: unknown tag type %d", ErrMalformedTag, b)
		}
		name, err := d.readString()
		if err != nil {
			return nil, err
		}
		tag, err := d.readPayload(typ)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		if c.Has(name) {
			return nil, fmt.Errorf("%w: duplicate compound key %q", ErrMalformedTag, name)
		}
		c.Set(name, tag)
	}
}

func (d *Decoder) readList() (*List, error) {
	if err := d.enter(); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()

	b, err := d.readByte()
	if err != nil {
		return nil, err
	}
	elem := TagType(b)
	if !elem.Valid() {
		return nil, fmt.Errorf("%w: unknown list element type %d", ErrMalformedTag, b)
	}
	n, err := d.readLength()
	if err != nil {
		return nil, err
	}
	if elem == TagEnd && n > 0 {
		return nil, fmt.Errorf("%w: list of %d %s elements", ErrMalformedTag, n, TagEnd)
	}

	l := &List{elem: elem, items: make([]Tag, 0, capHint(n))}
	for i := 0; i < n; i++ {
		tag, err := d.readPayload(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		l.items = append(l.items, tag)
	}
	return l, nil
}

func capHint(n int) int {
	if n > 1024 {
		return 1024
	}
	return n
}

func (d *Decoder) readFull(b []byte) error {
	if _, err := io.ReadFull(d.r, b); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %w", ErrMalformedTag, io.ErrUnexpectedEOF)
		}
		return err
	}
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	err := d.readFull(d.scratch[:1])
	return d.scratch[0], err
}

func (d *Decoder) readUint16() (uint16, error) {
	err := d.readFull(d.scratch[:2])
	return binary.BigEndian.Uint16(d.scratch[:2]), err
}

func (d *Decoder) readUint32() (uint32, error) {
	err := d.readFull(d.scratch[:4])
	return binary.BigEndian.Uint32(d.scratch[:4]), err
}

func (d *Decoder) readUint64() (uint64, error) {
	err := d.readFull(d.scratch[:8])
	return binary.BigEndian.Uint64(d.scratch[:8]), err
}

func (d *Decoder) readLength() (int, error) {
	v, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	n := int32(v)
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrMalformedTag, n)
	}
	return int(n), nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readUint16()
	if err != nil {
		return "", err
	}
	b, err := d.readBytes(int(n))
	return string(b), err
}

// readBytes grows the result as data arrives instead of trusting the length prefix up front.
func (d *Decoder) readBytes(n int) ([]byte, error) {
	if n <= readChunk {
		b := make([]byte, n)
		return b, d.readFull(b)
	}
	b := make([]byte, 0, readChunk)
	for len(b) < n {
		step := n - len(b)
		if step > readChunk {
			step = readChunk
		}
		b = append(b, make([]byte, step)...)
		if err := d.readFull(b[len(b)-step:]); err != nil {
			return nil, err
		}
	}
	return b, nil
}
