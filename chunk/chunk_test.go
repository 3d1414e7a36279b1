package chunk

import (
	"bytes"
	"errors"
	"testing"

	"github.com/astei/anvilkit/nbt"
)

func sections(t *testing.T, c Chunk) *nbt.List {
	t.Helper()
	level, err := c.BuildTree().(*nbt.Compound).Compound("Level")
	if err != nil {
		t.Fatal(err)
	}
	l, err := level.List("Sections")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSectionedEndToEnd(t *testing.T) {
	c := NewSectionedChunk(0, 0)
	b := c.Blocks()
	if b.YDim() != 256 {
		t.Fatalf("YDim = %d", b.YDim())
	}
	b.SetID(0, 0, 0, 1)
	b.SetID(15, 255, 15, 4095)

	var buf bytes.Buffer
	if err := c.Save(&buf, nbt.GZip); err != nil {
		t.Fatal(err)
	}
	tree, err := nbt.ReadTree(&buf, nbt.GZip)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSafe(tree.Root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Format() != Sectioned {
		t.Fatalf("format = %s", loaded.Format())
	}
	if got := loaded.Blocks().ID(0, 0, 0); got != 1 {
		t.Errorf("ID(0, 0, 0) = %d, want 1", got)
	}
	if got := loaded.Blocks().ID(15, 255, 15); got != 4095 {
		t.Errorf("ID(15, 255, 15) = %d, want 4095", got)
	}
	if n := loaded.(*SectionedChunk).SectionCount(); n != 2 {
		t.Errorf("loaded %d sections, want 2", n)
	}
}

func TestWidthQueriesDoNotAllocate(t *testing.T) {
	c := NewSectionedChunk(0, 0)
	if c.ids.DataWidth() != 12 || c.data.DataWidth() != 4 || c.skyLight.DataWidth() != 4 || c.blockLight.DataWidth() != 4 {
		t.Errorf("widths = %d, %d, %d, %d",
			c.ids.DataWidth(), c.data.DataWidth(), c.skyLight.DataWidth(), c.blockLight.DataWidth())
	}
	if c.SectionCount() != 0 {
		t.Errorf("SectionCount = %d after reading widths", c.SectionCount())
	}
	if n := sections(t, c).Len(); n != 0 {
		t.Errorf("wrote %d sections after reading widths", n)
	}
}

func TestEmptySectionedChunkHasNoSections(t *testing.T) {
	c := NewSectionedChunk(4, 4)
	if n := sections(t, c).Len(); n != 0 {
		t.Errorf("empty chunk wrote %d sections", n)
	}

	c.Blocks().SetID(3, 40, 3, BlockStone)
	c.Blocks().SetID(3, 40, 3, BlockAir)
	if c.SectionCount() != 1 {
		t.Fatalf("SectionCount = %d, want the section to stay allocated", c.SectionCount())
	}
	if n := sections(t, c).Len(); n != 0 {
		t.Errorf("all-air section under an empty height map was written (%d sections)", n)
	}
}

func TestSectionInclusionFollowsHeightMap(t *testing.T) {
	c := NewSectionedChunk(0, 0)
	b := c.Blocks()
	b.SetID(0, 100, 0, BlockStone)
	// Non-zero metadata allocates a section without placing a block.
	b.SetData(5, 20, 5, 1)
	b.SetData(5, 200, 5, 1)
	if c.SectionCount() != 3 {
		t.Fatalf("SectionCount = %d, want 3", c.SectionCount())
	}

	var ys []int
	for _, item := range sections(t, c).Items() {
		y, _ := item.(*nbt.Compound).Byte("Y")
		ys = append(ys, int(y))
	}
	if len(ys) != 2 || ys[0] != 1 || ys[1] != 6 {
		t.Errorf("written sections %v, want [1 6]", ys)
	}
}

func TestCompositeRoutingThroughChunk(t *testing.T) {
	c := NewSectionedChunk(0, 0)
	c.Blocks().SetID(3, 200, 5, BlockGlass)
	if c.SectionCount() != 1 || c.sections[12] == nil {
		t.Fatal("write at y=200 did not allocate section 12")
	}
	if got := c.sections[12].blocks.Get(3, 8, 5); got != BlockGlass {
		t.Errorf("section 12 offset 8 holds %d", got)
	}
	if got := c.Blocks().ID(3, 199, 5); got != 0 {
		t.Errorf("neighbouring block = %d", got)
	}
}

func TestLegacyRoundTrip(t *testing.T) {
	c := NewLegacyChunk(2, -3)
	b := c.Blocks()
	if b.YDim() != 128 {
		t.Fatalf("YDim = %d", b.YDim())
	}
	b.SetID(1, 100, 2, BlockDirt)
	b.SetData(1, 100, 2, 7)
	b.SetID(4, 10, 4, BlockChest)
	c.SetTerrainPopulated(true)
	c.SetLastUpdate(1200)

	var buf bytes.Buffer
	if err := c.Save(&buf, nbt.ZLib); err != nil {
		t.Fatal(err)
	}
	tree, err := nbt.ReadTree(&buf, nbt.ZLib)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := Detect(tree.Root); f != Legacy {
		t.Fatalf("detected %s", f)
	}
	loaded, err := LoadLegacyChunkSafe(tree.Root)
	if err != nil {
		t.Fatal(err)
	}
	lb := loaded.Blocks()
	if lb.ID(1, 100, 2) != BlockDirt || lb.Data(1, 100, 2) != 7 {
		t.Errorf("block = %d:%d", lb.ID(1, 100, 2), lb.Data(1, 100, 2))
	}
	if lb.Height(1, 2) != 101 {
		t.Errorf("height = %d, want 101", lb.Height(1, 2))
	}
	if !loaded.IsTerrainPopulated() || loaded.LastUpdate() != 1200 || loaded.X() != 2 || loaded.Z() != -3 {
		t.Errorf("level fields = %v %d %d %d", loaded.IsTerrainPopulated(), loaded.LastUpdate(), loaded.X(), loaded.Z())
	}
	te := lb.TileEntity(4, 10, 4)
	if te == nil || te.ID != "Chest" {
		t.Fatalf("tile entity = %+v", te)
	}
	if te.X != 2*16+4 || te.Y != 10 || te.Z != -3*16+4 {
		t.Errorf("tile entity stored at (%d, %d, %d)", te.X, te.Y, te.Z)
	}
}

func TestUnknownFieldsSurviveRebuild(t *testing.T) {
	root := NewLegacyChunk(0, 0).BuildTree().(*nbt.Compound)
	root.Set("DataVersion", nbt.Int(99))
	level, _ := root.Compound("Level")
	level.Set("Custom", nbt.String("keep me"))
	level.Set("TerrainPopulated", nbt.Byte(0))

	c, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	c.SetTerrainPopulated(true)

	out := c.BuildTree().(*nbt.Compound)
	if v, err := out.Int("DataVersion"); err != nil || v != 99 {
		t.Errorf("DataVersion = %d, %v", v, err)
	}
	outLevel, _ := out.Compound("Level")
	if v, err := outLevel.String("Custom"); err != nil || v != "keep me" {
		t.Errorf("Custom = %q, %v", v, err)
	}
	if v, _ := outLevel.Byte("TerrainPopulated"); v != 1 {
		t.Error("the loaded TerrainPopulated overwrote the typed value")
	}
}

func TestLoadSafe(t *testing.T) {
	root := NewLegacyChunk(0, 0).BuildTree().(*nbt.Compound)
	level, _ := root.Compound("Level")
	level.Delete("LastUpdate")
	if _, err := LoadSafe(root); err != nil {
		t.Errorf("missing LastUpdate should be repaired: %v", err)
	}
	if !level.Has("LastUpdate") {
		t.Error("LastUpdate was not created")
	}

	level.Set("Blocks", make(nbt.ByteArray, 100))
	_, err := LoadSafe(root)
	var violation *nbt.SchemaViolation
	if !errors.As(err, &violation) || violation.Path != "/Level/Blocks" {
		t.Errorf("got %v, want a violation at /Level/Blocks", err)
	}
}

func entity(id string, x, y, z float64) *nbt.Compound {
	e := nbt.NewCompound()
	e.Set("id", nbt.String(id))
	e.Set("Pos", nbt.NewList(nbt.TagDouble, nbt.Double(x), nbt.Double(y), nbt.Double(z)))
	e.Set("Motion", nbt.NewList(nbt.TagDouble, nbt.Double(0), nbt.Double(0), nbt.Double(0)))
	e.Set("Rotation", nbt.NewList(nbt.TagFloat, nbt.Float(0), nbt.Float(0)))
	return e
}

func TestSetLocation(t *testing.T) {
	c := NewSectionedChunk(0, 0)
	c.Blocks().SetID(1, 2, 3, BlockChest)
	if err := c.Entities().Add(entity("Pig", 4.5, 64, 4.5)); err != nil {
		t.Fatal(err)
	}

	c.SetLocation(1, 2)
	if c.X() != 1 || c.Z() != 2 {
		t.Fatalf("location = %d, %d", c.X(), c.Z())
	}
	te := c.Blocks().TileEntity(1, 2, 3)
	if te == nil || te.X != 17 || te.Z != 35 {
		t.Errorf("tile entity = %+v", te)
	}
	x, _, z, ok := Position(c.Entities().All()[0])
	if !ok || x != 20.5 || z != 36.5 {
		t.Errorf("entity at %v, %v", x, z)
	}
	level, _ := c.BuildTree().(*nbt.Compound).Compound("Level")
	if xPos, _ := level.Int("xPos"); xPos != 1 {
		t.Errorf("xPos = %d", xPos)
	}
}

func TestEntityCollection(t *testing.T) {
	c := NewLegacyChunk(0, 0)
	entities := c.Entities()
	if err := entities.Add(nbt.NewCompound()); err == nil {
		t.Error("accepted an entity without id and position")
	}
	for _, id := range []string{"Pig", "Cow", "Pig"} {
		if err := entities.Add(entity(id, 1, 2, 3)); err != nil {
			t.Fatal(err)
		}
	}
	if got, _ := entities.All()[0].Short("Air"); got != 0 || !entities.All()[0].Has("Air") {
		t.Error("defaults were not filled in")
	}
	removed := entities.RemoveIf(func(e *nbt.Compound) bool {
		id, _ := e.String("id")
		return id == "Pig"
	})
	if removed != 2 || entities.Len() != 1 {
		t.Errorf("removed %d, %d left", removed, entities.Len())
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"legacy": Legacy, "Anvil": Sectioned, "sectioned": Sectioned} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("bedrock"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v", err)
	}
}
