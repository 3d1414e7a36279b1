package chunk

import (
	"errors"
	"fmt"
	"io"

	"github.com/astei/anvilkit/data"
	"github.com/astei/anvilkit/nbt"
)

const (
	SectionHeight = 16
	SectionCount  = 16
	sectionVolume = XDim * SectionHeight * ZDim
)

// SectionSchema is one 16x16x16 section in YZX order.
var SectionSchema = nbt.NewSchemaCompound("",
	nbt.NewSchemaScalar("Y", nbt.TagByte),
	nbt.NewSchemaByteArray("Blocks", sectionVolume),
	nbt.NewSchemaByteArray("Data", sectionVolume/2),
	nbt.NewSchemaByteArray("SkyLight", sectionVolume/2),
	nbt.NewSchemaByteArray("BlockLight", sectionVolume/2),
	nbt.NewSchemaByteArray("Add", sectionVolume/2, nbt.Optional),
)

var SectionedLevelSchema = levelSchema.MergeInto(nbt.NewSchemaCompound("Level",
	nbt.NewSchemaList("Sections", nbt.TagCompound).WithElement(SectionSchema),
	nbt.NewSchemaByteArray("Biomes", XDim*ZDim, nbt.Optional),
	nbt.NewSchemaIntArray("HeightMap", XDim*ZDim),
))

var SectionedSchema = nbt.NewSchemaCompound("", SectionedLevelSchema)

// noBiome marks a column whose biome has not been decided.
const noBiome = 0xFF

type section struct {
	tag        *nbt.Compound
	blocks     *data.YZXByteArray
	add        *data.YZXNibbleArray
	ids        *data.FusedArray3
	data       *data.YZXNibbleArray
	skyLight   *data.YZXNibbleArray
	blockLight *data.YZXNibbleArray
}

func wrapSection(tag *nbt.Compound) (*section, error) {
	s := &section{tag: tag}
	blocks, err := tag.ByteArray("Blocks")
	if err != nil {
		return nil, fmt.Errorf("Blocks: %w", err)
	}
	if s.blocks, err = data.WrapYZXByteArray(blocks, XDim, SectionHeight, ZDim); err != nil {
		return nil, fmt.Errorf("Blocks: %w", err)
	}
	nibbles := []struct {
		name string
		dst  **data.YZXNibbleArray
	}{
		{"Data", &s.data},
		{"SkyLight", &s.skyLight},
		{"BlockLight", &s.blockLight},
	}
	for _, n := range nibbles {
		b, err := tag.ByteArray(n.name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n.name, err)
		}
		if *n.dst, err = data.WrapYZXNibbleArray(b, XDim, SectionHeight, ZDim); err != nil {
			return nil, fmt.Errorf("%s: %w", n.name, err)
		}
	}

	var add data.Array3
	switch b, err := tag.ByteArray("Add"); {
	case err == nil:
		if s.add, err = data.WrapYZXNibbleArray(b, XDim, SectionHeight, ZDim); err != nil {
			return nil, fmt.Errorf("Add: %w", err)
		}
		add = s.add
	case !errors.Is(err, nbt.ErrKeyNotFound):
		return nil, fmt.Errorf("Add: %w", err)
	}
	if s.ids, err = data.NewFusedArray3(s.blocks, add, s.allocAdd); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *section) allocAdd() data.Array3 {
	raw := make(nbt.ByteArray, sectionVolume/2)
	s.tag.Set("Add", raw)
	s.add, _ = data.WrapYZXNibbleArray(raw, XDim, SectionHeight, ZDim)
	return s.add
}

// empty reports whether every block of the section is air.
func (s *section) empty() bool {
	for _, b := range s.blocks.Storage().Data() {
		if b != 0 {
			return false
		}
	}
	if s.add != nil {
		for _, b := range s.add.Storage().Data() {
			if b != 0 {
				return false
			}
		}
	}
	return true
}

// SectionedChunk is a chunk in the sectioned format. Its sections are composed into one
// 16x256x16 volume; a section is created the first time a non-zero value is written into it.
type SectionedChunk struct {
	base

	sections    [SectionCount]*section
	sectionList *nbt.List
	// foreign holds sections whose Y lies outside the volume. They are written back unchanged.
	foreign []*nbt.Compound

	ids        *data.CompositeArray3
	data       *data.CompositeArray3
	skyLight   *data.CompositeArray3
	blockLight *data.CompositeArray3
	heightMap  *data.ZXIntArray
	biomes     *data.ZXByteArray
}

// NewSectionedChunk creates an empty sectioned chunk at (x, z). It has no sections.
func NewSectionedChunk(x, z int) *SectionedChunk {
	root := SectionedSchema.DefaultTag().(*nbt.Compound)
	level, _ := root.Compound("Level")
	level.Set("xPos", nbt.Int(x))
	level.Set("zPos", nbt.Int(z))

	c := new(SectionedChunk)
	if err := c.LoadTree(root); err != nil {
		panic(fmt.Sprintf("chunk: default sectioned tree does not load: %v", err))
	}
	return c
}

func LoadSectionedChunk(tag nbt.Tag) (*SectionedChunk, error) {
	c := new(SectionedChunk)
	if err := c.LoadTree(tag); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadSectionedChunkSafe(tag nbt.Tag) (*SectionedChunk, error) {
	c := new(SectionedChunk)
	if err := c.LoadTreeSafe(tag); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SectionedChunk) Format() Format { return Sectioned }

func (c *SectionedChunk) LoadTree(tag nbt.Tag) error {
	if err := c.loadCommon(tag); err != nil {
		return err
	}
	list, err := levelList(c.level, "Sections")
	if err != nil {
		return fmt.Errorf("chunk: Sections: %w", err)
	}
	c.sectionList = list
	c.sections = [SectionCount]*section{}
	c.foreign = nil
	for i, item := range list.Items() {
		sc, ok := item.(*nbt.Compound)
		if !ok {
			return fmt.Errorf("chunk: Sections[%d]: %w", i, nbt.ErrTypeMismatch)
		}
		y, err := sc.Byte("Y")
		if err != nil {
			return fmt.Errorf("chunk: Sections[%d]: %w", i, err)
		}
		if y < 0 || int(y) >= SectionCount {
			c.foreign = append(c.foreign, sc)
			continue
		}
		s, err := wrapSection(sc)
		if err != nil {
			return fmt.Errorf("chunk: Sections[%d]: %w", i, err)
		}
		c.sections[y] = s
	}

	heightMap, err := c.level.IntArray("HeightMap")
	if err != nil {
		return fmt.Errorf("chunk: HeightMap: %w", err)
	}
	if c.heightMap, err = data.WrapZXIntArray(heightMap, XDim, ZDim); err != nil {
		return fmt.Errorf("chunk: HeightMap: %w", err)
	}
	c.biomes = nil
	switch biomes, err := c.level.ByteArray("Biomes"); {
	case err == nil:
		if c.biomes, err = data.WrapZXByteArray(biomes, XDim, ZDim); err != nil {
			return fmt.Errorf("chunk: Biomes: %w", err)
		}
	case !errors.Is(err, nbt.ErrKeyNotFound):
		return fmt.Errorf("chunk: Biomes: %w", err)
	}

	if err := c.compose(); err != nil {
		return err
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

// compose stacks the loaded sections into the four composite volumes.
func (c *SectionedChunk) compose() (err error) {
	var ids, dat, sky, block [SectionCount]data.Array3
	for y, s := range c.sections {
		if s == nil {
			continue
		}
		ids[y], dat[y], sky[y], block[y] = s.ids, s.data, s.skyLight, s.blockLight
	}
	composite := func(sections [SectionCount]data.Array3, width int, pick func(s *section) data.Array3) (*data.CompositeArray3, error) {
		return data.NewCompositeArray3(XDim, SectionHeight, ZDim, width, sections[:], func(i int) data.Array3 {
			return pick(c.allocSection(i))
		})
	}
	if c.ids, err = composite(ids, 12, func(s *section) data.Array3 { return s.ids }); err != nil {
		return err
	}
	if c.data, err = composite(dat, 4, func(s *section) data.Array3 { return s.data }); err != nil {
		return err
	}
	if c.skyLight, err = composite(sky, 4, func(s *section) data.Array3 { return s.skyLight }); err != nil {
		return err
	}
	c.blockLight, err = composite(block, 4, func(s *section) data.Array3 { return s.blockLight })
	return err
}

// allocSection creates section i in the tree and in every composite volume.
func (c *SectionedChunk) allocSection(i int) *section {
	if s := c.sections[i]; s != nil {
		return s
	}
	tag := SectionSchema.DefaultTag().(*nbt.Compound)
	tag.Set("Y", nbt.Byte(i))
	s, err := wrapSection(tag)
	if err != nil {
		panic(fmt.Sprintf("chunk: default section does not load: %v", err))
	}
	c.sections[i] = s
	_ = c.sectionList.Add(tag)
	c.ids.SetSection(i, s.ids)
	c.data.SetSection(i, s.data)
	c.skyLight.SetSection(i, s.skyLight)
	c.blockLight.SetSection(i, s.blockLight)

	// Everything at or above the height map sees the sky.
	bottom := i * SectionHeight
	for x := 0; x < XDim; x++ {
		for z := 0; z < ZDim; z++ {
			h := c.heightMap.Get(x, z)
			for y := 0; y < SectionHeight; y++ {
				if bottom+y >= h {
					s.skyLight.Set(x, y, z, maxLight)
				}
			}
		}
	}
	return s
}

// SectionCount reports how many sections currently have storage.
func (c *SectionedChunk) SectionCount() int {
	n := 0
	for _, s := range c.sections {
		if s != nil {
			n++
		}
	}
	return n
}

// Biome returns the biome id of column (x, z) and whether one is set.
func (c *SectionedChunk) Biome(x, z int) (int, bool) {
	if c.biomes == nil || x < 0 || x >= XDim || z < 0 || z >= ZDim {
		return 0, false
	}
	b := c.biomes.Get(x, z)
	return b, b != noBiome
}

// SetBiome sets the biome of column (x, z), creating the biome map on first use.
func (c *SectionedChunk) SetBiome(x, z, biome int) {
	if x < 0 || x >= XDim || z < 0 || z >= ZDim {
		return
	}
	if c.biomes == nil {
		raw := make(nbt.ByteArray, XDim*ZDim)
		for i := range raw {
			raw[i] = noBiome
		}
		c.level.Set("Biomes", raw)
		c.biomes, _ = data.WrapZXByteArray(raw, XDim, ZDim)
	}
	c.biomes.Set(x, z, biome)
}

func (c *SectionedChunk) LoadTreeSafe(tag nbt.Tag) error {
	if err := nbt.Check(tag, SectionedSchema); err != nil {
		return err
	}
	return c.LoadTree(tag)
}

func (c *SectionedChunk) ValidateTree(tag nbt.Tag) bool {
	return nbt.Verify(tag, SectionedSchema)
}

// BuildTree writes every section that holds a block or lies below the highest column of the
// height map. Which sections are written is decided anew on every call.
func (c *SectionedChunk) BuildTree() nbt.Tag {
	level := c.buildLevel()

	top := 0
	for _, h := range c.heightMap.Storage().Data() {
		if int(h) > top {
			top = int(h)
		}
	}
	sections := nbt.NewList(nbt.TagCompound)
	for y, s := range c.sections {
		if s == nil || (s.empty() && top <= y*SectionHeight) {
			continue
		}
		out := nbt.NewCompound()
		out.Set("Y", nbt.Byte(y))
		out.Set("Blocks", nbt.ByteArray(s.blocks.Storage().Data()).Copy())
		out.Set("Data", nbt.ByteArray(s.data.Storage().Data()).Copy())
		out.Set("SkyLight", nbt.ByteArray(s.skyLight.Storage().Data()).Copy())
		out.Set("BlockLight", nbt.ByteArray(s.blockLight.Storage().Data()).Copy())
		if s.add != nil {
			out.Set("Add", nbt.ByteArray(s.add.Storage().Data()).Copy())
		}
		out.MergeFrom(s.tag)
		_ = sections.Add(out)
	}
	for _, f := range c.foreign {
		_ = sections.Add(f.Copy())
	}
	level.Set("Sections", sections)
	level.Set("HeightMap", nbt.IntArray(c.heightMap.Storage().Data()).Copy())
	if c.biomes != nil {
		level.Set("Biomes", nbt.ByteArray(c.biomes.Storage().Data()).Copy())
	}
	return c.finish(level)
}

func (c *SectionedChunk) Save(w io.Writer, comp nbt.Compression) error {
	return save(c, w, comp)
}

var _ Chunk = (*SectionedChunk)(nil)
