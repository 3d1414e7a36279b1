package nbt

import "fmt"

// Verifier checks a tag against a schema. Verification stops at the first violation. It is not
// read-only: a missing child marked CreateOnMissing is inserted into the tree being verified.
type Verifier struct {
	root   Tag
	schema SchemaNode
	err    *SchemaViolation
}

func NewVerifier(root Tag, schema SchemaNode) *Verifier {
	return &Verifier{root: root, schema: schema}
}

// Verify reports whether the tree matches the schema. It never fails any other way; Err
// describes the violation when it returns false.
func (v *Verifier) Verify() bool {
	v.err = nil
	if v.root == nil {
		v.fail("", "missing root")
		return false
	}
	return v.schema.verify(v, "", v.root)
}

// Err returns the violation found by the last Verify, or nil.
func (v *Verifier) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}

func (v *Verifier) fail(path, format string, args ...any) bool {
	v.err = &SchemaViolation{Path: path, Reason: fmt.Sprintf(format, args...)}
	return false
}

// Verify is shorthand for NewVerifier(root, schema).Verify().
func Verify(root Tag, schema SchemaNode) bool {
	return NewVerifier(root, schema).Verify()
}

// Check verifies root and returns the *SchemaViolation as an error, or nil.
func Check(root Tag, schema SchemaNode) error {
	v := NewVerifier(root, schema)
	v.Verify()
	return v.Err()
}

func (v *Verifier) checkType(path string, tag Tag, want TagType) bool {
	if tag.Type() != want {
		return v.fail(path, "expected %s, found %s", want, tag.Type())
	}
	return true
}

func (s *SchemaScalar) verify(v *Verifier, path string, tag Tag) bool {
	return v.checkType(path, tag, s.typ)
}

func (s *SchemaString) verify(v *Verifier, path string, tag Tag) bool {
	if !v.checkType(path, tag, TagString) {
		return false
	}
	str := string(tag.(String))
	if s.value != "" && str != s.value {
		return v.fail(path, "expected value %q, found %q", s.value, str)
	}
	if s.maxLen > 0 && len(str) > s.maxLen {
		return v.fail(path, "string of %d bytes exceeds %d", len(str), s.maxLen)
	}
	return true
}

func (s *SchemaArray) verify(v *Verifier, path string, tag Tag) bool {
	if !v.checkType(path, tag, s.typ) {
		return false
	}
	if n := s.arrayLen(tag); s.length > 0 && n != s.length {
		return v.fail(path, "expected %d elements, found %d", s.length, n)
	}
	return true
}

func (s *SchemaList) verify(v *Verifier, path string, tag Tag) bool {
	if !v.checkType(path, tag, TagList) {
		return false
	}
	l := tag.(*List)
	if s.length > 0 && l.Len() != s.length {
		return v.fail(path, "expected %d elements, found %d", s.length, l.Len())
	}
	if l.Len() > 0 && l.ElemType() != s.elem {
		return v.fail(path, "expected list of %s, found list of %s", s.elem, l.ElemType())
	}
	if s.element == nil {
		return true
	}
	for i, item := range l.Items() {
		if !s.element.verify(v, fmt.Sprintf("%s[%d]", path, i), item) {
			return false
		}
	}
	return true
}

func (s *SchemaCompound) verify(v *Verifier, path string, tag Tag) bool {
	if !v.checkType(path, tag, TagCompound) {
		return false
	}
	c := tag.(*Compound)
	for _, child := range s.children {
		childPath := path + "/" + child.Name()
		sub, ok := c.Lookup(child.Name())
		if !ok {
			switch {
			case child.Options().Has(CreateOnMissing):
				c.Set(child.Name(), child.DefaultTag())
				continue
			case child.Options().Has(Optional):
				continue
			default:
				return v.fail(childPath, "missing %s", child.Name())
			}
		}
		if !child.verify(v, childPath, sub) {
			return false
		}
	}
	return true
}
