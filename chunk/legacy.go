package chunk

import (
	"fmt"
	"io"

	"github.com/astei/anvilkit/data"
	"github.com/astei/anvilkit/nbt"
)

const legacyHeight = 128

// LegacyLevelSchema is the Level of a flat chunk: one 16x128x16 volume in XZY order.
var LegacyLevelSchema = levelSchema.MergeInto(nbt.NewSchemaCompound("Level",
	nbt.NewSchemaByteArray("Blocks", XDim*legacyHeight*ZDim),
	nbt.NewSchemaByteArray("Data", XDim*legacyHeight*ZDim/2),
	nbt.NewSchemaByteArray("SkyLight", XDim*legacyHeight*ZDim/2),
	nbt.NewSchemaByteArray("BlockLight", XDim*legacyHeight*ZDim/2),
	nbt.NewSchemaByteArray("HeightMap", XDim*ZDim),
))

var LegacySchema = nbt.NewSchemaCompound("", LegacyLevelSchema)

// LegacyChunk is a chunk in the flat format.
type LegacyChunk struct {
	base

	ids        *data.XZYByteArray
	data       *data.XZYNibbleArray
	skyLight   *data.XZYNibbleArray
	blockLight *data.XZYNibbleArray
	heightMap  *data.ZXByteArray
}

// NewLegacyChunk creates an empty flat chunk at (x, z).
func NewLegacyChunk(x, z int) *LegacyChunk {
	root := LegacySchema.DefaultTag().(*nbt.Compound)
	level, _ := root.Compound("Level")
	level.Set("xPos", nbt.Int(x))
	level.Set("zPos", nbt.Int(z))

	c := new(LegacyChunk)
	if err := c.LoadTree(root); err != nil {
		panic(fmt.Sprintf("chunk: default legacy tree does not load: %v", err))
	}
	return c
}

func LoadLegacyChunk(tag nbt.Tag) (*LegacyChunk, error) {
	c := new(LegacyChunk)
	if err := c.LoadTree(tag); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadLegacyChunkSafe(tag nbt.Tag) (*LegacyChunk, error) {
	c := new(LegacyChunk)
	if err := c.LoadTreeSafe(tag); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *LegacyChunk) Format() Format { return Legacy }

func (c *LegacyChunk) LoadTree(tag nbt.Tag) error {
	if err := c.loadCommon(tag); err != nil {
		return err
	}
	array := func(name string) ([]byte, error) {
		b, err := c.level.ByteArray(name)
		if err != nil {
			return nil, fmt.Errorf("chunk: %s: %w", name, err)
		}
		return b, nil
	}

	blocks, err := array("Blocks")
	if err != nil {
		return err
	}
	if c.ids, err = data.WrapXZYByteArray(blocks, XDim, legacyHeight, ZDim); err != nil {
		return fmt.Errorf("chunk: Blocks: %w", err)
	}
	nibbles := []struct {
		name string
		dst  **data.XZYNibbleArray
	}{
		{"Data", &c.data},
		{"SkyLight", &c.skyLight},
		{"BlockLight", &c.blockLight},
	}
	for _, n := range nibbles {
		b, err := array(n.name)
		if err != nil {
			return err
		}
		if *n.dst, err = data.WrapXZYNibbleArray(b, XDim, legacyHeight, ZDim); err != nil {
			return fmt.Errorf("chunk: %s: %w", n.name, err)
		}
	}
	heightMap, err := array("HeightMap")
	if err != nil {
		return err
	}
	if c.heightMap, err = data.WrapZXByteArray(heightMap, XDim, ZDim); err != nil {
		return fmt.Errorf("chunk: HeightMap: %w", err)
	}

	c.blocks = NewBlockCollection(BlockStorage{
		IDs:          c.ids,
		Data:         c.data,
		BlockLight:   c.blockLight,
		SkyLight:     c.skyLight,
		HeightMap:    c.heightMap,
		TileEntities: c.tileEntities,
		TileTicks:    c.tileTicks,
		OriginX:      c.x * XDim,
		OriginZ:      c.z * ZDim,
	})
	return nil
}

func (c *LegacyChunk) LoadTreeSafe(tag nbt.Tag) error {
	if err := nbt.Check(tag, LegacySchema); err != nil {
		return err
	}
	return c.LoadTree(tag)
}

func (c *LegacyChunk) ValidateTree(tag nbt.Tag) bool {
	return nbt.Verify(tag, LegacySchema)
}

func (c *LegacyChunk) BuildTree() nbt.Tag {
	level := c.buildLevel()
	level.Set("Blocks", nbt.ByteArray(c.ids.Storage().Data()).Copy())
	level.Set("Data", nbt.ByteArray(c.data.Storage().Data()).Copy())
	level.Set("SkyLight", nbt.ByteArray(c.skyLight.Storage().Data()).Copy())
	level.Set("BlockLight", nbt.ByteArray(c.blockLight.Storage().Data()).Copy())
	level.Set("HeightMap", nbt.ByteArray(c.heightMap.Storage().Data()).Copy())
	return c.finish(level)
}

func (c *LegacyChunk) Save(w io.Writer, comp nbt.Compression) error {
	return save(c, w, comp)
}

var _ Chunk = (*LegacyChunk)(nil)
