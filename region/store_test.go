package region

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/world"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, WithCreate(true), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	m := world.NewBlockManager(s)
	if err := m.SetID(-40, 200, 70, 4095); err != nil {
		t.Fatal(err)
	}
	if err := m.SetID(5, 1, 5, chunk.BlockChest); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"r.-1.0.mca", "r.0.0.mca"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("region file %s: %v", name, err)
		}
	}

	s, err = NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	m = world.NewBlockManager(s)
	if got := m.ID(-40, 200, 70); got != 4095 {
		t.Errorf("ID = %d, want 4095", got)
	}
	if te := m.TileEntity(5, 1, 5); te == nil || te.ID != "Chest" {
		t.Errorf("tile entity = %+v", te)
	}
	if _, err := s.GetChunk(3, 3); !errors.Is(err, world.ErrNoChunk) {
		t.Errorf("missing chunk: %v", err)
	}
	if _, err := s.GetChunk(100, 100); !errors.Is(err, world.ErrNoChunk) {
		t.Errorf("missing region file: %v", err)
	}
}

func TestStoreLegacyFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, WithCreate(true), WithFormat(chunk.Legacy), WithCompression(nbt.GZip))
	if err != nil {
		t.Fatal(err)
	}
	c, err := s.GetChunk(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c.Format() != chunk.Legacy {
		t.Fatalf("created a %s chunk", c.Format())
	}
	c.Blocks().SetID(0, 0, 0, chunk.BlockBedrock)
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenReader(filepath.Join(dir, "r.0.0.mcr"))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if !r.ChunkExists(1, 2) || r.ChunkExists(2, 1) {
		t.Fatal("sector table does not match the written chunk")
	}
	tree, err := r.ReadTree(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := chunk.LoadSafe(tree.Root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.X() != 1 || loaded.Z() != 2 || loaded.Blocks().ID(0, 0, 0) != chunk.BlockBedrock {
		t.Errorf("loaded chunk %d,%d with id %d", loaded.X(), loaded.Z(), loaded.Blocks().ID(0, 0, 0))
	}
	if _, err := r.ReadChunk(2, 1); !errors.Is(err, ErrNoChunk) {
		t.Errorf("got %v, want ErrNoChunk", err)
	}
}

func TestStoreRateLimit(t *testing.T) {
	s, err := NewStore(t.TempDir(), WithCreate(true), WithLimiter(rate.NewLimiter(0, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetChunk(0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetChunk(0, 0); err != nil {
		t.Errorf("held chunk counted against the limiter: %v", err)
	}
	if _, err := s.GetChunk(0, 1); !errors.Is(err, ErrReachRateLimit) {
		t.Errorf("got %v, want ErrReachRateLimit", err)
	}
}

func TestInvalidPayloads(t *testing.T) {
	if _, err := NewStore(t.TempDir(), WithCompression(nbt.Deflate)); !errors.Is(err, ErrInvalidCompression) {
		t.Errorf("deflate accepted: %v", err)
	}
	if _, err := DecodeChunk(nil); !errors.Is(err, ErrInvalidChunkLength) {
		t.Errorf("empty payload: %v", err)
	}
	if _, err := DecodeChunk([]byte{9, 0}); !errors.Is(err, ErrInvalidCompression) {
		t.Errorf("unknown type: %v", err)
	}

	payload, err := EncodeChunk(chunk.NewSectionedChunk(7, 8), nbt.None)
	if err != nil {
		t.Fatal(err)
	}
	if payload[0] != byte(CompressionNone) {
		t.Errorf("type byte = %d", payload[0])
	}
	tree, err := DecodeChunk(payload)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := chunk.Detect(tree.Root); f != chunk.Sectioned {
		t.Errorf("detected %s", f)
	}
}
