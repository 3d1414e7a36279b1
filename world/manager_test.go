package world

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/astei/anvilkit/chunk"
)

type countingSource struct {
	ChunkSource
	calls int
}

func (s *countingSource) GetChunk(cx, cz int) (chunk.Chunk, error) {
	s.calls++
	return s.ChunkSource.GetChunk(cx, cz)
}

func TestGlobalAddressing(t *testing.T) {
	src := NewMemorySource(chunk.Sectioned)
	m := NewBlockManager(src, WithLogger(zaptest.NewLogger(t)))

	if err := m.SetID(-1, 10, -17, chunk.BlockStone); err != nil {
		t.Fatal(err)
	}
	c, err := src.GetChunk(-1, -2)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Blocks().ID(15, 10, 15); got != chunk.BlockStone {
		t.Errorf("local (15, 10, 15) of chunk -1,-2 = %d", got)
	}
	if got := m.ID(-1, 10, -17); got != chunk.BlockStone {
		t.Errorf("ID = %d", got)
	}
	if m.Height(-1, -17) != 11 {
		t.Errorf("height = %d", m.Height(-1, -17))
	}

	if err := m.SetData(33, 255, 47, 9); err != nil {
		t.Fatal(err)
	}
	if c, _ := src.GetChunk(2, 2); c.Blocks().Data(1, 255, 15) != 9 {
		t.Error("data landed in the wrong chunk")
	}
}

func TestOutOfBounds(t *testing.T) {
	src := &countingSource{ChunkSource: NewMemorySource(chunk.Legacy)}
	m := NewBlockManager(src, WithFormat(chunk.Legacy))

	for _, pos := range [][3]int{{0, 128, 0}, {0, -1, 0}, {MaxCoord, 0, 0}, {0, 0, -MaxCoord}} {
		if err := m.SetID(pos[0], pos[1], pos[2], chunk.BlockStone); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetID%v = %v", pos, err)
		}
		if m.ID(pos[0], pos[1], pos[2]) != 0 {
			t.Errorf("ID%v should read 0", pos)
		}
	}
	if src.calls != 0 {
		t.Errorf("out of bounds access reached the source %d times", src.calls)
	}
	if err := m.SetID(0, 127, 0, chunk.BlockStone); err != nil {
		t.Errorf("top of a legacy chunk: %v", err)
	}
}

func TestChunkCacheDepthOne(t *testing.T) {
	src := &countingSource{ChunkSource: NewMemorySource(chunk.Sectioned)}
	m := NewBlockManager(src)

	for x := 0; x < 16; x++ {
		m.ID(x, 64, 3)
	}
	if src.calls != 1 {
		t.Fatalf("%d lookups for one chunk", src.calls)
	}
	m.ID(16, 64, 3)
	m.ID(0, 64, 3)
	m.ID(1, 64, 3)
	if src.calls != 3 {
		t.Errorf("%d lookups, want 3", src.calls)
	}
}

func TestMissingChunks(t *testing.T) {
	src := NewMemorySource(chunk.Sectioned)
	src.SetCreate(false)
	m := NewBlockManager(src)

	if err := m.SetID(5, 5, 5, chunk.BlockDirt); !errors.Is(err, ErrNoChunk) {
		t.Errorf("got %v, want ErrNoChunk", err)
	}
	if m.ID(5, 5, 5) != 0 || m.TileEntity(5, 5, 5) != nil || m.SkyLight(5, 5, 5) != 0 {
		t.Error("reads in a missing chunk should be neutral")
	}
	if _, err := m.Ref(5, 5, 5); err == nil {
		t.Error("Ref into a missing chunk succeeded")
	}

	src.Put(chunk.NewSectionedChunk(0, 0))
	if err := m.SetID(5, 5, 5, chunk.BlockDirt); err != nil {
		t.Fatal(err)
	}
}

func TestAutoFlagsForwarded(t *testing.T) {
	src := NewMemorySource(chunk.Sectioned)
	m := NewBlockManager(src, WithAutoFlags(chunk.AutoFlags{TileTick: true}))

	if err := m.SetID(100, 70, -100, chunk.BlockFire); err != nil {
		t.Fatal(err)
	}
	tt := m.TileTick(100, 70, -100)
	if tt == nil || tt.X != 100 || tt.Z != -100 {
		t.Fatalf("tile tick = %+v", tt)
	}
	if m.BlockLight(100, 70, -100) != 0 {
		t.Error("light was computed with AutoLight off")
	}

	m.SetAutoFlags(chunk.DefaultAutoFlags)
	if err := m.SetID(100, 71, -100, chunk.BlockTorch); err != nil {
		t.Fatal(err)
	}
	if m.BlockLight(100, 71, -100) != 14 {
		t.Errorf("block light = %d", m.BlockLight(100, 71, -100))
	}
}

func TestTileEntitiesThroughManager(t *testing.T) {
	m := NewBlockManager(NewMemorySource(chunk.Legacy), WithFormat(chunk.Legacy))
	if err := m.SetID(-20, 40, 7, chunk.BlockChest); err != nil {
		t.Fatal(err)
	}
	te := m.TileEntity(-20, 40, 7)
	if te == nil || te.X != -20 || te.Y != 40 || te.Z != 7 {
		t.Fatalf("tile entity = %+v", te)
	}

	ref, err := m.Ref(-20, 40, 7)
	if err != nil {
		t.Fatal(err)
	}
	if ref.ID() != chunk.BlockChest || ref.X != 12 || ref.Z != 7 {
		t.Errorf("ref = %+v", ref)
	}
	if err := m.ClearTileEntity(-20, 40, 7); err != nil {
		t.Fatal(err)
	}
	if m.TileEntity(-20, 40, 7) != nil {
		t.Error("tile entity survived ClearTileEntity")
	}
}

func TestMemorySourceOrder(t *testing.T) {
	src := NewMemorySource(chunk.Legacy)
	for _, p := range [][2]int{{1, 0}, {0, 5}, {0, -5}} {
		if _, err := src.GetChunk(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	got := src.Chunks()
	if len(got) != 3 || got[0].Z() != -5 || got[1].Z() != 5 || got[2].X() != 1 {
		t.Errorf("order = %v", got)
	}
}
