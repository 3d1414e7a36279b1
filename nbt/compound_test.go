package nbt

import (
	"errors"
	"strings"
	"testing"
)

func TestCompoundGet(t *testing.T) {
	c := NewCompound()
	c.Set("xPos", Int(4))

	if _, err := c.Get("zPos"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get missing key: got %v, want ErrKeyNotFound", err)
	}
	if v, err := c.Int("xPos"); err != nil || v != 4 {
		t.Errorf("Int(xPos) = %d, %v", v, err)
	}
	if _, err := c.Byte("xPos"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Byte(xPos): got %v, want ErrTypeMismatch", err)
	}
	if _, err := As[*Compound](Int(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("As[*Compound](Int): got %v, want ErrTypeMismatch", err)
	}
}

func TestCompoundSetKeepsPosition(t *testing.T) {
	c := NewCompound()
	c.Set("a", Byte(1))
	c.Set("b", Byte(2))
	c.Set("a", Byte(3))
	names := c.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v, want [a b]", names)
	}
	if v, _ := c.Byte("a"); v != 3 {
		t.Errorf("a = %d, want 3", v)
	}

	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete should report presence exactly once")
	}
	if c.Len() != 1 || c.Names()[0] != "b" {
		t.Errorf("after delete names = %v", c.Names())
	}
}

func TestCopyIsDeep(t *testing.T) {
	orig := sampleTree()
	clone := orig.Copy().(*Compound)

	bytesTag, _ := clone.ByteArray("bytes")
	bytesTag[0] = 99
	inner, _ := clone.Compound("inner")
	inner.Set("zeta", Int(1000))
	list, _ := clone.List("list")
	list.Remove(0)

	if !Equal(orig, sampleTree()) {
		t.Error("mutating a copy changed the original")
	}
}

func TestMergeFromExistingKeysWin(t *testing.T) {
	source := NewCompound()
	source.Set("id", String("Chest"))
	source.Set("x", Int(1))
	source.Set("CustomName", String("loot"))
	source.Set("Items", NewList(TagCompound, NewCompound()))

	rebuilt := NewCompound()
	rebuilt.Set("id", String("Chest"))
	rebuilt.Set("x", Int(17))
	rebuilt.MergeFrom(source)

	if x, _ := rebuilt.Int("x"); x != 17 {
		t.Errorf("x = %d, existing key should have won", x)
	}
	if name, err := rebuilt.String("CustomName"); err != nil || name != "loot" {
		t.Errorf("CustomName = %q, %v", name, err)
	}
	want := []string{"id", "x", "CustomName", "Items"}
	for i, name := range rebuilt.Names() {
		if name != want[i] {
			t.Fatalf("names = %v, want %v", rebuilt.Names(), want)
		}
	}

	items, _ := rebuilt.List("Items")
	items.Clear()
	if src, _ := source.List("Items"); src.Len() != 1 {
		t.Error("MergeFrom shared storage with the source")
	}
}

func TestListTypeInvariant(t *testing.T) {
	l := NewList(TagInt, Int(1))
	if err := l.Add(Short(2)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Add(Short) to list of Int: got %v", err)
	}
	if err := l.Set(0, String("x")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Set(String) in list of Int: got %v", err)
	}
	if err := l.Insert(0, Int(0)); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 2 || l.Get(0) != Int(0) || l.Get(1) != Int(1) {
		t.Errorf("unexpected items %v", l.Items())
	}

	empty := NewList(TagEnd)
	if err := empty.Add(String("first")); err != nil || empty.ElemType() != TagString {
		t.Errorf("empty End list should adopt the first element type, got %s, %v", empty.ElemType(), err)
	}

	unset := NewList(TagEnd)
	if err := unset.Set(0, Int(1)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Set past the end: got %v", err)
	}
	if err := unset.Insert(1, Int(1)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Insert past the end: got %v", err)
	}
	if unset.ElemType() != TagEnd || unset.Len() != 0 {
		t.Errorf("failed writes changed the list to %s with %d items", unset.ElemType(), unset.Len())
	}

	if n := l.RemoveIf(func(tag Tag) bool { return tag == Int(0) }); n != 1 || l.Len() != 1 {
		t.Errorf("RemoveIf removed %d, len %d", n, l.Len())
	}
}

func TestDump(t *testing.T) {
	out := Sprint("root", sampleTree())
	for _, want := range []string{`TAG_Compound("root")`, `TAG_Int("int"): -2147483648`, `TAG_String("string"): "Level"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %s:\n%s", want, out)
		}
	}
}
