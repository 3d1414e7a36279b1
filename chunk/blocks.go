package chunk

import (
	"github.com/astei/anvilkit/data"
	"github.com/astei/anvilkit/nbt"
)

// AutoFlags select the work a block id write triggers besides storing the id.
type AutoFlags struct {
	// Light recomputes the height map, the sky light column and nearby block light.
	Light bool
	// Fluid schedules tile ticks for fluid blocks at and next to the write.
	Fluid bool
	// TileTick schedules the tile tick a block id registers and clears it for others.
	TileTick bool
}

var DefaultAutoFlags = AutoFlags{Light: true}

// BlockStorage is the set of views a BlockCollection works over. Light, height and tile tick
// storage are optional; a collection without them reads 0 and ignores writes to them.
type BlockStorage struct {
	IDs        data.Array3
	Data       data.Array3
	BlockLight data.Array3
	SkyLight   data.Array3
	HeightMap  data.Array2

	TileEntities *nbt.List
	TileTicks    *nbt.List
	// Origin is the world position of local (0, 0, 0); tile entities and tile ticks are stored
	// at world positions.
	OriginX, OriginY, OriginZ int
}

// BlockCollection is the block level contract shared by every chunk format and schematics.
// Coordinates are local. Out of range coordinates read as 0 or nil and writes to them are
// dropped.
type BlockCollection struct {
	ids, data            data.Array3
	blockLight, skyLight data.Array3
	height               data.Array2
	tileEntities         *TileEntityCollection
	tileTicks            *TileTickCollection

	Auto AutoFlags
}

func NewBlockCollection(s BlockStorage) *BlockCollection {
	b := &BlockCollection{
		ids:        s.IDs,
		data:       s.Data,
		blockLight: s.BlockLight,
		skyLight:   s.SkyLight,
		height:     s.HeightMap,
		Auto:       DefaultAutoFlags,
	}
	if s.TileEntities == nil {
		s.TileEntities = nbt.NewList(nbt.TagCompound)
	}
	b.tileEntities = NewTileEntityCollection(s.TileEntities, s.OriginX, s.OriginY, s.OriginZ)
	if s.TileTicks != nil {
		b.tileTicks = NewTileTickCollection(s.TileTicks, s.OriginX, s.OriginY, s.OriginZ)
	}
	return b
}

func (b *BlockCollection) XDim() int { return b.ids.XDim() }
func (b *BlockCollection) YDim() int { return b.ids.YDim() }
func (b *BlockCollection) ZDim() int { return b.ids.ZDim() }

func (b *BlockCollection) InBounds(x, y, z int) bool {
	return x >= 0 && x < b.ids.XDim() && y >= 0 && y < b.ids.YDim() && z >= 0 && z < b.ids.ZDim()
}

func (b *BlockCollection) ID(x, y, z int) int {
	if !b.InBounds(x, y, z) {
		return 0
	}
	return b.ids.Get(x, y, z)
}

// SetID stores id and runs the automatic tile entity, tile tick, fluid and light work.
func (b *BlockCollection) SetID(x, y, z, id int) {
	if !b.InBounds(x, y, z) {
		return
	}
	old := b.ids.Get(x, y, z)
	b.ids.Set(x, y, z, id)
	// Storage narrower than the id keeps only its low bits.
	id = b.ids.Get(x, y, z)
	if old == id {
		return
	}

	info := Info(id)
	b.updateTileEntity(x, y, z, info)
	if b.Auto.TileTick {
		b.updateTileTick(x, y, z, info)
	}
	if b.Auto.Fluid {
		b.scheduleFluids(x, y, z)
	}
	if b.Auto.Light {
		b.updateLight(x, y, z, Info(old), info)
	}
}

func (b *BlockCollection) Info(x, y, z int) BlockInfo {
	return Info(b.ID(x, y, z))
}

func (b *BlockCollection) Data(x, y, z int) int {
	if !b.InBounds(x, y, z) {
		return 0
	}
	return b.data.Get(x, y, z)
}

func (b *BlockCollection) SetData(x, y, z, v int) {
	if b.InBounds(x, y, z) {
		b.data.Set(x, y, z, v)
	}
}

func (b *BlockCollection) HasLight() bool { return b.blockLight != nil && b.skyLight != nil }

func (b *BlockCollection) BlockLight(x, y, z int) int {
	if b.blockLight == nil || !b.InBounds(x, y, z) {
		return 0
	}
	return b.blockLight.Get(x, y, z)
}

func (b *BlockCollection) SetBlockLight(x, y, z, v int) {
	if b.blockLight != nil && b.InBounds(x, y, z) {
		b.blockLight.Set(x, y, z, v)
	}
}

func (b *BlockCollection) SkyLight(x, y, z int) int {
	if b.skyLight == nil || !b.InBounds(x, y, z) {
		return 0
	}
	return b.skyLight.Get(x, y, z)
}

func (b *BlockCollection) SetSkyLight(x, y, z, v int) {
	if b.skyLight != nil && b.InBounds(x, y, z) {
		b.skyLight.Set(x, y, z, v)
	}
}

// Height is the lowest y at which the column receives full sky light: one above its highest
// light absorbing block.
func (b *BlockCollection) Height(x, z int) int {
	if b.height == nil || !b.InBounds(x, 0, z) {
		return 0
	}
	return b.height.Get(x, z)
}

func (b *BlockCollection) SetHeight(x, z, h int) {
	if b.height != nil && b.InBounds(x, 0, z) {
		b.height.Set(x, z, h)
	}
}

func (b *BlockCollection) TileEntities() *TileEntityCollection { return b.tileEntities }

// TileTicks returns nil for collections that carry no tile ticks.
func (b *BlockCollection) TileTicks() *TileTickCollection { return b.tileTicks }

func (b *BlockCollection) TileEntity(x, y, z int) *TileEntity {
	if !b.InBounds(x, y, z) {
		return nil
	}
	return b.tileEntities.Get(x, y, z)
}

// SetTileEntity attaches te at (x, y, z). te is moved to that position.
func (b *BlockCollection) SetTileEntity(x, y, z int, te *TileEntity) error {
	if !b.InBounds(x, y, z) {
		return nil
	}
	return b.tileEntities.Set(x, y, z, te)
}

func (b *BlockCollection) ClearTileEntity(x, y, z int) bool {
	if !b.InBounds(x, y, z) {
		return false
	}
	return b.tileEntities.Remove(x, y, z)
}

func (b *BlockCollection) TileTick(x, y, z int) *TileTick {
	if b.tileTicks == nil || !b.InBounds(x, y, z) {
		return nil
	}
	return b.tileTicks.Get(x, y, z)
}

func (b *BlockCollection) SetTileTick(x, y, z int, tt *TileTick) error {
	if b.tileTicks == nil || !b.InBounds(x, y, z) {
		return nil
	}
	return b.tileTicks.Set(x, y, z, tt)
}

func (b *BlockCollection) ClearTileTick(x, y, z int) bool {
	if b.tileTicks == nil || !b.InBounds(x, y, z) {
		return false
	}
	return b.tileTicks.Remove(x, y, z)
}

// Ref returns a cursor on (x, y, z).
func (b *BlockCollection) Ref(x, y, z int) BlockRef {
	return BlockRef{blocks: b, X: x, Y: y, Z: z}
}

func (b *BlockCollection) relocate(dx, dy, dz int) {
	b.tileEntities.relocate(dx, dy, dz)
	if b.tileTicks != nil {
		b.tileTicks.relocate(dx, dy, dz)
	}
}

func (b *BlockCollection) updateTileEntity(x, y, z int, info BlockInfo) {
	if info.TileEntity == "" {
		b.tileEntities.Remove(x, y, z)
		return
	}
	if te := b.tileEntities.Get(x, y, z); te != nil && te.ID == info.TileEntity {
		return
	}
	// Registered defaults always satisfy their own schema.
	_ = b.tileEntities.Set(x, y, z, NewTileEntity(info.TileEntity, 0, 0, 0))
}

func (b *BlockCollection) updateTileTick(x, y, z int, info BlockInfo) {
	if b.tileTicks == nil {
		return
	}
	if info.TickDelay <= 0 {
		b.tileTicks.Remove(x, y, z)
		return
	}
	_ = b.tileTicks.Set(x, y, z, NewTileTick(info.ID, info.TickDelay, 0, 0, 0))
}

// fluidTickDelay is the delay of the update a fluid block gets when its surroundings change.
// Still fluids update at the rate of their flowing form.
func fluidTickDelay(id int) int {
	switch id {
	case BlockWater:
		return Info(BlockFlowingWater).TickDelay
	case BlockLava:
		return Info(BlockFlowingLava).TickDelay
	}
	return Info(id).TickDelay
}

var neighbours = [6][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}

func (b *BlockCollection) scheduleFluids(x, y, z int) {
	if b.tileTicks == nil {
		return
	}
	check := func(x, y, z int) {
		if !b.InBounds(x, y, z) {
			return
		}
		id := b.ids.Get(x, y, z)
		if !Info(id).Fluid {
			return
		}
		_ = b.tileTicks.Set(x, y, z, NewTileTick(id, fluidTickDelay(id), 0, 0, 0))
	}
	check(x, y, z)
	for _, d := range neighbours {
		check(x+d[0], y+d[1], z+d[2])
	}
}
