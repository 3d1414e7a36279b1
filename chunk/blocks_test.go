package chunk

import (
	"errors"
	"testing"

	"github.com/astei/anvilkit/nbt"
)

func TestAutoTileEntity(t *testing.T) {
	c := NewSectionedChunk(2, 3)
	b := c.Blocks()

	b.SetID(1, 2, 3, BlockChest)
	te := b.TileEntity(1, 2, 3)
	if te == nil || te.ID != "Chest" {
		t.Fatalf("tile entity = %+v", te)
	}
	if te.X != 33 || te.Y != 2 || te.Z != 51 {
		t.Errorf("stored at (%d, %d, %d), want world coordinates", te.X, te.Y, te.Z)
	}
	if _, err := te.Extra().List("Items"); err != nil {
		t.Errorf("chest defaults: %v", err)
	}

	b.SetID(1, 2, 3, BlockFurnace)
	if te := b.TileEntity(1, 2, 3); te == nil || te.ID != "Furnace" {
		t.Errorf("tile entity after replacing the block = %+v", te)
	}
	b.SetID(1, 2, 3, BlockStone)
	if b.TileEntity(1, 2, 3) != nil || b.TileEntities().Len() != 0 {
		t.Error("tile entity survived its block")
	}
}

func TestSetTileEntityChecksSchema(t *testing.T) {
	b := NewLegacyChunk(0, 0).Blocks()
	sign := NewTileEntity("Sign", 0, 0, 0)
	sign.Extra().Set("Text1", nbt.String("this line is far too long"))
	err := b.SetTileEntity(4, 4, 4, sign)
	var violation *nbt.SchemaViolation
	if !errors.As(err, &violation) {
		t.Fatalf("got %v, want a schema violation", err)
	}

	sign.Extra().Set("Text1", nbt.String("hello"))
	if err := b.SetTileEntity(4, 4, 4, sign); err != nil {
		t.Fatal(err)
	}
	got := b.Ref(4, 4, 4).TileEntity()
	if text, _ := got.Extra().String("Text1"); text != "hello" {
		t.Errorf("Text1 = %q", text)
	}
	if !b.ClearTileEntity(4, 4, 4) || b.ClearTileEntity(4, 4, 4) {
		t.Error("ClearTileEntity should succeed exactly once")
	}
}

func TestAutoTileTick(t *testing.T) {
	b := NewSectionedChunk(0, 0).Blocks()
	b.Auto.TileTick = true

	b.SetID(7, 7, 7, BlockFire)
	tt := b.TileTick(7, 7, 7)
	if tt == nil || tt.BlockID != BlockFire || tt.Ticks != 40 {
		t.Fatalf("tile tick = %+v", tt)
	}
	b.SetID(7, 7, 7, BlockAir)
	if b.TileTick(7, 7, 7) != nil {
		t.Error("tile tick survived its block")
	}

	b.Auto.TileTick = false
	b.SetID(7, 7, 7, BlockFire)
	if b.TileTick(7, 7, 7) != nil {
		t.Error("tile tick scheduled while disabled")
	}
}

func TestAutoFluid(t *testing.T) {
	b := NewSectionedChunk(0, 0).Blocks()
	b.SetID(5, 10, 5, BlockWater)
	if b.TileTicks().Len() != 0 {
		t.Fatal("fluid update scheduled while disabled")
	}

	b.Auto.Fluid = true
	b.SetID(6, 10, 5, BlockStone)
	tt := b.TileTick(5, 10, 5)
	if tt == nil || tt.BlockID != BlockWater || tt.Ticks != 5 {
		t.Fatalf("tile tick = %+v", tt)
	}
	if b.TileTick(6, 10, 5) != nil {
		t.Error("non-fluid block got a tile tick")
	}
}

func TestTileTickPriority(t *testing.T) {
	tt := NewTileTick(BlockFire, 40, 1, 2, 3)
	if tt.BuildTree().(*nbt.Compound).Has("p") {
		t.Error("unset priority was written")
	}

	p := int32(-1)
	tt.Priority = &p
	tree := tt.BuildTree().(*nbt.Compound)
	if v, err := tree.Int("p"); err != nil || v != -1 {
		t.Fatalf("p = %d, %v", v, err)
	}

	var loaded TileTick
	if err := loaded.LoadTreeSafe(tree); err != nil {
		t.Fatal(err)
	}
	if loaded.Priority == nil || *loaded.Priority != -1 {
		t.Fatal("priority was not loaded")
	}
	loaded.Priority = nil
	if loaded.BuildTree().(*nbt.Compound).Has("p") {
		t.Error("cleared priority came back")
	}
}

func TestHeightMapTracksOpaqueBlocks(t *testing.T) {
	b := NewSectionedChunk(0, 0).Blocks()
	b.SetID(8, 70, 8, BlockStone)
	if h := b.Height(8, 8); h != 71 {
		t.Fatalf("height = %d, want 71", h)
	}
	if got := b.SkyLight(8, 71, 8); got != 15 {
		t.Errorf("sky light above = %d", got)
	}
	if got := b.SkyLight(8, 70, 8); got != 0 {
		t.Errorf("sky light inside = %d", got)
	}

	b.SetID(8, 60, 8, BlockGlass)
	if h := b.Height(8, 8); h != 71 {
		t.Errorf("a transparent block moved the height to %d", h)
	}
	b.SetID(8, 50, 8, BlockDirt)
	b.SetID(8, 70, 8, BlockAir)
	if h := b.Height(8, 8); h != 51 {
		t.Errorf("height after removing the top = %d, want 51", h)
	}
}

func TestTorchBlockLight(t *testing.T) {
	b := NewSectionedChunk(0, 0).Blocks()
	b.SetID(8, 64, 8, BlockTorch)

	for _, tc := range []struct {
		x, y, z int
		want    int
	}{
		{8, 64, 8, 14},
		{9, 64, 8, 13},
		{8, 65, 8, 13},
		{8, 64, 11, 11},
		{10, 66, 8, 10},
	} {
		if got := b.BlockLight(tc.x, tc.y, tc.z); got != tc.want {
			t.Errorf("BlockLight(%d, %d, %d) = %d, want %d", tc.x, tc.y, tc.z, got, tc.want)
		}
	}

	b.SetID(9, 64, 8, BlockStone)
	if got := b.BlockLight(9, 64, 8); got != 0 {
		t.Errorf("light inside an opaque block = %d", got)
	}
	if got := b.BlockLight(10, 64, 8); got != 10 {
		t.Errorf("light behind the stone = %d, want 10", got)
	}

	b.SetID(8, 64, 8, BlockAir)
	if got := b.BlockLight(8, 65, 8); got != 0 {
		t.Errorf("light left behind by the removed torch = %d", got)
	}
}

func TestRelightLegacy(t *testing.T) {
	c := NewLegacyChunk(0, 0)
	b := c.Blocks()
	b.Auto.Light = false
	for x := 0; x < XDim; x++ {
		for z := 0; z < ZDim; z++ {
			b.SetID(x, 60, z, BlockStone)
		}
	}
	b.SetID(3, 61, 3, BlockGlowstone)
	if b.Height(0, 0) != 0 || b.SkyLight(0, 100, 0) != 0 {
		t.Fatal("light changed while disabled")
	}

	b.Relight()
	if b.Height(0, 0) != 61 || b.Height(3, 3) != 62 {
		t.Errorf("heights = %d, %d", b.Height(0, 0), b.Height(3, 3))
	}
	if b.SkyLight(0, 100, 0) != 15 || b.SkyLight(0, 59, 0) != 0 {
		t.Errorf("sky light = %d above, %d below", b.SkyLight(0, 100, 0), b.SkyLight(0, 59, 0))
	}
	if got := b.BlockLight(4, 61, 3); got != 14 {
		t.Errorf("light next to glowstone = %d, want 14", got)
	}
}

func TestBlockRef(t *testing.T) {
	b := NewLegacyChunk(0, 0).Blocks()
	r := b.Ref(2, 3, 4)
	if !r.Valid() || b.Ref(16, 0, 0).Valid() {
		t.Fatal("Valid")
	}
	r.SetID(BlockDirt)
	r.SetData(5)
	if b.ID(2, 3, 4) != BlockDirt || r.Data() != 5 || r.Info().Name != "dirt" {
		t.Errorf("ref = %d:%d %q", r.ID(), r.Data(), r.Info().Name)
	}
	if b.ID(-1, 0, 0) != 0 || b.Data(0, 200, 0) != 0 {
		t.Error("out of bounds reads should be 0")
	}
	b.SetID(0, 500, 0, BlockStone)
}
