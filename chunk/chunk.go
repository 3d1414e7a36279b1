// Package chunk models the two on-disk chunk formats over their tag trees. Block arrays are
// views into the tree a chunk was loaded from, so writes through a chunk land in that tree.
package chunk

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/astei/anvilkit/nbt"
)

const (
	XDim = 16
	ZDim = 16
)

var ErrUnknownFormat = errors.New("chunk: unknown format")

// Format selects the on-disk chunk layout.
type Format int

const (
	// Legacy chunks hold one flat 16x128x16 volume.
	Legacy Format = iota
	// Sectioned chunks hold up to sixteen 16x16x16 sections stacked into 16x256x16.
	Sectioned
)

func (f Format) String() string {
	switch f {
	case Legacy:
		return "legacy"
	case Sectioned:
		return "sectioned"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Dims returns the block dimensions of one chunk.
func (f Format) Dims() (xdim, ydim, zdim int) {
	if f == Legacy {
		return XDim, 128, ZDim
	}
	return XDim, 256, ZDim
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "legacy", "alpha", "mcregion":
		return Legacy, nil
	case "sectioned", "anvil":
		return Sectioned, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) (err error) {
	*f, err = ParseFormat(string(text))
	return
}

// Chunk is the contract both formats share.
type Chunk interface {
	nbt.Object
	Format() Format
	X() int
	Z() int
	Blocks() *BlockCollection
	Entities() *EntityCollection
	IsTerrainPopulated() bool
	SetTerrainPopulated(populated bool)
	LastUpdate() int64
	SetLastUpdate(tick int64)
	// SetLocation moves the chunk, rewriting the stored positions of its tile entities, tile
	// ticks and entities.
	SetLocation(x, z int)
	// Save writes the rebuilt tree to w under framing c.
	Save(w io.Writer, c nbt.Compression) error
}

// New creates an empty chunk of format f at chunk position (x, z).
func New(f Format, x, z int) (Chunk, error) {
	switch f {
	case Legacy:
		return NewLegacyChunk(x, z), nil
	case Sectioned:
		return NewSectionedChunk(x, z), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
}

// Detect reports the format of a chunk tree: sectioned chunks carry Level.Sections.
func Detect(tag nbt.Tag) (Format, error) {
	root, err := nbt.As[*nbt.Compound](tag)
	if err != nil {
		return 0, err
	}
	level, err := root.Compound("Level")
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if level.Has("Sections") {
		return Sectioned, nil
	}
	if level.Has("Blocks") {
		return Legacy, nil
	}
	return 0, ErrUnknownFormat
}

// Load detects the format of tag and loads it without verifying it first.
func Load(tag nbt.Tag) (Chunk, error) {
	return load(tag, false)
}

// LoadSafe detects the format of tag and verifies it against that format's schema before
// loading. A mismatch is returned as a *nbt.SchemaViolation.
func LoadSafe(tag nbt.Tag) (Chunk, error) {
	return load(tag, true)
}

func load(tag nbt.Tag, safe bool) (Chunk, error) {
	f, err := Detect(tag)
	if err != nil {
		return nil, err
	}
	var c Chunk
	switch f {
	case Legacy:
		c = new(LegacyChunk)
	default:
		c = new(SectionedChunk)
	}
	if safe {
		err = c.LoadTreeSafe(tag)
	} else {
		err = c.LoadTree(tag)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// levelSchema holds the Level entries both formats share.
var levelSchema = nbt.NewSchemaCompound("Level",
	nbt.NewSchemaList("Entities", nbt.TagCompound),
	nbt.NewSchemaList("TileEntities", nbt.TagCompound).WithElement(TileEntitySchema),
	nbt.NewSchemaList("TileTicks", nbt.TagCompound, nbt.Optional).WithElement(TileTickSchema),
	nbt.NewSchemaScalar("LastUpdate", nbt.TagLong, nbt.CreateOnMissing),
	nbt.NewSchemaScalar("xPos", nbt.TagInt),
	nbt.NewSchemaScalar("zPos", nbt.TagInt),
	nbt.NewSchemaScalar("TerrainPopulated", nbt.TagByte, nbt.CreateOnMissing),
)

// base carries the state both formats share: the tree the chunk views and the typed Level
// fields.
type base struct {
	root  *nbt.Compound
	level *nbt.Compound

	x, z       int
	lastUpdate int64
	populated  bool

	blocks       *BlockCollection
	entities     *EntityCollection
	tileEntities *nbt.List
	tileTicks    *nbt.List
}

func (c *base) X() int                             { return c.x }
func (c *base) Z() int                             { return c.z }
func (c *base) Blocks() *BlockCollection           { return c.blocks }
func (c *base) Entities() *EntityCollection        { return c.entities }
func (c *base) IsTerrainPopulated() bool           { return c.populated }
func (c *base) SetTerrainPopulated(populated bool) { c.populated = populated }
func (c *base) LastUpdate() int64                  { return c.lastUpdate }
func (c *base) SetLastUpdate(tick int64)           { c.lastUpdate = tick }

func (c *base) SetLocation(x, z int) {
	dx, dz := (x-c.x)*XDim, (z-c.z)*ZDim
	c.x, c.z = x, z
	c.blocks.relocate(dx, 0, dz)
	c.entities.translate(float64(dx), 0, float64(dz))
}

func levelList(level *nbt.Compound, name string) (*nbt.List, error) {
	l, err := level.List(name)
	if errors.Is(err, nbt.ErrKeyNotFound) {
		l = nbt.NewList(nbt.TagCompound)
		level.Set(name, l)
		return l, nil
	}
	return l, err
}

// loadCommon reads the shared Level entries of tag. Missing entity, tile entity and tile tick
// lists are created in the tree.
func (c *base) loadCommon(tag nbt.Tag) error {
	root, err := nbt.As[*nbt.Compound](tag)
	if err != nil {
		return err
	}
	level, err := root.Compound("Level")
	if err != nil {
		return fmt.Errorf("chunk: %w", err)
	}
	x, err := level.Int("xPos")
	if err != nil {
		return fmt.Errorf("chunk: xPos: %w", err)
	}
	z, err := level.Int("zPos")
	if err != nil {
		return fmt.Errorf("chunk: zPos: %w", err)
	}
	lastUpdate, _ := level.Long("LastUpdate")
	populated, _ := level.Byte("TerrainPopulated")

	entities, err := levelList(level, "Entities")
	if err != nil {
		return fmt.Errorf("chunk: Entities: %w", err)
	}
	tileEntities, err := levelList(level, "TileEntities")
	if err != nil {
		return fmt.Errorf("chunk: TileEntities: %w", err)
	}
	tileTicks, err := levelList(level, "TileTicks")
	if err != nil {
		return fmt.Errorf("chunk: TileTicks: %w", err)
	}

	c.root, c.level = root, level
	c.x, c.z = int(x), int(z)
	c.lastUpdate = int64(lastUpdate)
	c.populated = populated != 0
	c.entities = NewEntityCollection(entities)
	c.tileEntities, c.tileTicks = tileEntities, tileTicks
	return nil
}

// buildLevel starts a fresh Level holding the shared typed entries.
func (c *base) buildLevel() *nbt.Compound {
	level := nbt.NewCompound()
	level.Set("xPos", nbt.Int(c.x))
	level.Set("zPos", nbt.Int(c.z))
	level.Set("LastUpdate", nbt.Long(c.lastUpdate))
	var populated nbt.Byte
	if c.populated {
		populated = 1
	}
	level.Set("TerrainPopulated", populated)
	level.Set("Entities", c.entities.list.Copy())
	level.Set("TileEntities", c.tileEntities.Copy())
	level.Set("TileTicks", c.tileTicks.Copy())
	return level
}

// finish restores everything the typed layer did not write from the viewed tree. Typed entries
// written before this call always win.
func (c *base) finish(level *nbt.Compound) nbt.Tag {
	level.MergeFrom(c.level)
	root := nbt.NewCompound()
	root.Set("Level", level)
	root.MergeFrom(c.root)
	return root
}

func save(c Chunk, w io.Writer, comp nbt.Compression) error {
	tree := nbt.NewTree(c.BuildTree().(*nbt.Compound))
	return tree.Encode(w, comp)
}
