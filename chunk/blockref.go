package chunk

// BlockRef is a cursor on one position of a BlockCollection. It borrows the collection: every
// accessor reads or writes the collection's storage directly.
type BlockRef struct {
	blocks  *BlockCollection
	X, Y, Z int
}

// Valid reports whether the cursor points inside its collection.
func (r BlockRef) Valid() bool {
	return r.blocks != nil && r.blocks.InBounds(r.X, r.Y, r.Z)
}

func (r BlockRef) ID() int                 { return r.blocks.ID(r.X, r.Y, r.Z) }
func (r BlockRef) SetID(id int)            { r.blocks.SetID(r.X, r.Y, r.Z, id) }
func (r BlockRef) Info() BlockInfo         { return r.blocks.Info(r.X, r.Y, r.Z) }
func (r BlockRef) Data() int               { return r.blocks.Data(r.X, r.Y, r.Z) }
func (r BlockRef) SetData(v int)           { r.blocks.SetData(r.X, r.Y, r.Z, v) }
func (r BlockRef) BlockLight() int         { return r.blocks.BlockLight(r.X, r.Y, r.Z) }
func (r BlockRef) SetBlockLight(v int)     { r.blocks.SetBlockLight(r.X, r.Y, r.Z, v) }
func (r BlockRef) SkyLight() int           { return r.blocks.SkyLight(r.X, r.Y, r.Z) }
func (r BlockRef) SetSkyLight(v int)       { r.blocks.SetSkyLight(r.X, r.Y, r.Z, v) }
func (r BlockRef) TileEntity() *TileEntity { return r.blocks.TileEntity(r.X, r.Y, r.Z) }
func (r BlockRef) ClearTileEntity() bool   { return r.blocks.ClearTileEntity(r.X, r.Y, r.Z) }
func (r BlockRef) TileTick() *TileTick     { return r.blocks.TileTick(r.X, r.Y, r.Z) }

func (r BlockRef) SetTileEntity(te *TileEntity) error {
	return r.blocks.SetTileEntity(r.X, r.Y, r.Z, te)
}

func (r BlockRef) SetTileTick(tt *TileTick) error {
	return r.blocks.SetTileTick(r.X, r.Y, r.Z, tt)
}
