package schematic

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/data"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/world"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := New(3, 4, 5)
	if err != nil {
		t.Fatal(err)
	}
	s.Blocks().SetID(1, 2, 3, chunk.BlockCobblestone)
	s.Blocks().SetData(1, 2, 3, 200)
	s.Blocks().SetID(0, 0, 0, chunk.BlockChest)

	path := filepath.Join(t.TempDir(), "house.schematic")
	if err := s.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width != 3 || loaded.Height != 4 || loaded.Length != 5 || loaded.Materials != "Alpha" {
		t.Errorf("header = %dx%dx%d %q", loaded.Width, loaded.Height, loaded.Length, loaded.Materials)
	}
	b := loaded.Blocks()
	if b.ID(1, 2, 3) != chunk.BlockCobblestone || b.Data(1, 2, 3) != 200 {
		t.Errorf("block = %d:%d", b.ID(1, 2, 3), b.Data(1, 2, 3))
	}
	if te := b.TileEntity(0, 0, 0); te == nil || te.ID != "Chest" {
		t.Errorf("tile entity = %+v", te)
	}
	if b.HasLight() || b.Height(0, 0) != 0 {
		t.Error("schematics carry no light or height map")
	}
}

func TestBlocksAreXZY(t *testing.T) {
	s, _ := New(3, 4, 5)
	s.Blocks().SetID(1, 2, 3, 7)
	root := s.BuildTree().(*nbt.Compound)
	blocks, err := root.ByteArray("Blocks")
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 60 || blocks[4*(1*5+3)+2] != 7 {
		t.Errorf("block not at its XZY index")
	}
}

func TestLoadRejectsBadArrays(t *testing.T) {
	s, _ := New(2, 2, 2)
	root := s.BuildTree().(*nbt.Compound)
	root.Set("Blocks", make(nbt.ByteArray, 7))
	if _, err := LoadSafe(root); !errors.Is(err, data.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
	if s.ValidateTree(root) {
		t.Error("ValidateTree accepted a short Blocks array")
	}

	root.Delete("Width")
	if _, err := LoadSafe(root); !errors.Is(err, nbt.ErrSchemaViolation) {
		t.Errorf("got %v, want a schema violation", err)
	}
	if _, err := New(0, 1, 1); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("got %v, want ErrInvalidSize", err)
	}
}

func TestUnknownFieldsKept(t *testing.T) {
	s, _ := New(1, 1, 1)
	root := s.BuildTree().(*nbt.Compound)
	root.Set("WEOriginX", nbt.Int(12))
	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	loaded.Materials = "Classic"
	out := loaded.BuildTree().(*nbt.Compound)
	if v, _ := out.Int("WEOriginX"); v != 12 {
		t.Error("WEOriginX was dropped")
	}
	if v, _ := out.String("Materials"); v != "Classic" {
		t.Errorf("Materials = %q", v)
	}
}

func pig(x, y, z float64) *nbt.Compound {
	e := nbt.NewCompound()
	e.Set("id", nbt.String("Pig"))
	e.Set("Pos", nbt.NewList(nbt.TagDouble, nbt.Double(x), nbt.Double(y), nbt.Double(z)))
	e.Set("Motion", nbt.NewList(nbt.TagDouble, nbt.Double(0), nbt.Double(0), nbt.Double(0)))
	e.Set("Rotation", nbt.NewList(nbt.TagFloat, nbt.Float(0), nbt.Float(0)))
	return e
}

func TestExportImport(t *testing.T) {
	src := world.NewMemorySource(chunk.Sectioned)
	m := world.NewBlockManager(src)
	for x := -2; x < 2; x++ {
		for z := 14; z < 18; z++ {
			if err := m.SetID(x, 64, z, chunk.BlockPlanks); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := m.SetID(-1, 65, 15, chunk.BlockSignPost); err != nil {
		t.Fatal(err)
	}
	sign := m.TileEntity(-1, 65, 15)
	sign.Extra().Set("Text1", nbt.String("welcome"))
	if err := m.SetTileEntity(-1, 65, 15, sign); err != nil {
		t.Fatal(err)
	}
	c, _ := m.ChunkAt(0, 16)
	if err := c.Entities().Add(pig(0.5, 65, 16.5)); err != nil {
		t.Fatal(err)
	}

	s, err := Export(m, -2, 64, 14, 4, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if s.Blocks().ID(0, 0, 0) != chunk.BlockPlanks || s.Blocks().ID(1, 1, 1) != chunk.BlockSignPost {
		t.Fatal("blocks were not exported")
	}
	te := s.Blocks().TileEntity(1, 1, 1)
	if te == nil || te.X != 1 || te.Y != 1 || te.Z != 1 {
		t.Fatalf("exported tile entity = %+v", te)
	}
	if s.Entities().Len() != 1 {
		t.Fatalf("exported %d entities", s.Entities().Len())
	}
	if x, y, z, _ := chunk.Position(s.Entities().All()[0]); x != 2.5 || y != 1 || z != 2.5 {
		t.Errorf("exported entity at %v, %v, %v", x, y, z)
	}

	dst := world.NewBlockManager(world.NewMemorySource(chunk.Sectioned))
	if err := s.Import(dst, 100, 10, 100); err != nil {
		t.Fatal(err)
	}
	if dst.ID(100, 10, 100) != chunk.BlockPlanks || dst.ID(101, 11, 101) != chunk.BlockSignPost {
		t.Error("blocks were not imported")
	}
	got := dst.TileEntity(101, 11, 101)
	if got == nil {
		t.Fatal("tile entity was not imported")
	}
	if text, _ := got.Extra().String("Text1"); text != "welcome" {
		t.Errorf("Text1 = %q", text)
	}
	dc, _ := dst.ChunkAt(102, 102)
	if dc.Entities().Len() != 1 {
		t.Fatalf("imported %d entities", dc.Entities().Len())
	}
	if x, _, z, _ := chunk.Position(dc.Entities().All()[0]); x != 102.5 || z != 102.5 {
		t.Errorf("imported entity at %v, %v", x, z)
	}
}
