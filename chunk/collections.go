package chunk

import (
	"fmt"

	"github.com/astei/anvilkit/nbt"
)

// coordList addresses the compounds of a list by their integer x, y and z entries.
type coordList struct {
	list *nbt.List
}

func compoundAt(tag nbt.Tag) (x, y, z int, ok bool) {
	c, isCompound := tag.(*nbt.Compound)
	if !isCompound {
		return 0, 0, 0, false
	}
	cx, errX := c.Int("x")
	cy, errY := c.Int("y")
	cz, errZ := c.Int("z")
	if errX != nil || errY != nil || errZ != nil {
		return 0, 0, 0, false
	}
	return int(cx), int(cy), int(cz), true
}

func (l coordList) find(x, y, z int) (int, *nbt.Compound) {
	for i, item := range l.list.Items() {
		if cx, cy, cz, ok := compoundAt(item); ok && cx == x && cy == y && cz == z {
			return i, item.(*nbt.Compound)
		}
	}
	return -1, nil
}

func (l coordList) put(x, y, z int, c *nbt.Compound) error {
	if i, _ := l.find(x, y, z); i >= 0 {
		return l.list.Set(i, c)
	}
	return l.list.Add(c)
}

func (l coordList) remove(x, y, z int) bool {
	return l.list.RemoveIf(func(tag nbt.Tag) bool {
		cx, cy, cz, ok := compoundAt(tag)
		return ok && cx == x && cy == y && cz == z
	}) > 0
}

func (l coordList) translate(dx, dy, dz int) {
	for _, item := range l.list.Items() {
		if x, y, z, ok := compoundAt(item); ok {
			c := item.(*nbt.Compound)
			c.Set("x", nbt.Int(x+dx))
			c.Set("y", nbt.Int(y+dy))
			c.Set("z", nbt.Int(z+dz))
		}
	}
}

// TileEntityCollection views a TileEntities list. Positions passed to it are local to the owning
// block collection; stored positions are offset by the collection's origin.
type TileEntityCollection struct {
	coordList
	ox, oy, oz int
}

func NewTileEntityCollection(list *nbt.List, ox, oy, oz int) *TileEntityCollection {
	return &TileEntityCollection{coordList: coordList{list}, ox: ox, oy: oy, oz: oz}
}

func (c *TileEntityCollection) Len() int { return c.list.Len() }

// Get loads the tile entity at local (x, y, z), or returns nil.
func (c *TileEntityCollection) Get(x, y, z int) *TileEntity {
	_, tag := c.find(x+c.ox, y+c.oy, z+c.oz)
	if tag == nil {
		return nil
	}
	te := new(TileEntity)
	if err := te.LoadTree(tag); err != nil {
		return nil
	}
	return te
}

// Set stores te at local (x, y, z), moving it there and replacing any tile entity already at
// that position.
func (c *TileEntityCollection) Set(x, y, z int, te *TileEntity) error {
	te.X, te.Y, te.Z = x+c.ox, y+c.oy, z+c.oz
	tree := te.BuildTree().(*nbt.Compound)
	if err := nbt.Check(tree, TileEntitySchemaFor(te.ID)); err != nil {
		return fmt.Errorf("tile entity %s: %w", te.ID, err)
	}
	return c.put(te.X, te.Y, te.Z, tree)
}

func (c *TileEntityCollection) Remove(x, y, z int) bool {
	return c.remove(x+c.ox, y+c.oy, z+c.oz)
}

// All loads every well-formed tile entity in list order.
func (c *TileEntityCollection) All() []*TileEntity {
	out := make([]*TileEntity, 0, c.list.Len())
	for _, item := range c.list.Items() {
		te := new(TileEntity)
		if te.LoadTree(item) == nil {
			out = append(out, te)
		}
	}
	return out
}

func (c *TileEntityCollection) relocate(dx, dy, dz int) {
	c.translate(dx, dy, dz)
	c.ox, c.oy, c.oz = c.ox+dx, c.oy+dy, c.oz+dz
}

// TileTickCollection views a TileTicks list the same way TileEntityCollection does.
type TileTickCollection struct {
	coordList
	ox, oy, oz int
}

func NewTileTickCollection(list *nbt.List, ox, oy, oz int) *TileTickCollection {
	return &TileTickCollection{coordList: coordList{list}, ox: ox, oy: oy, oz: oz}
}

func (c *TileTickCollection) Len() int { return c.list.Len() }

func (c *TileTickCollection) Get(x, y, z int) *TileTick {
	_, tag := c.find(x+c.ox, y+c.oy, z+c.oz)
	if tag == nil {
		return nil
	}
	tt := new(TileTick)
	if err := tt.LoadTree(tag); err != nil {
		return nil
	}
	return tt
}

func (c *TileTickCollection) Set(x, y, z int, tt *TileTick) error {
	tt.X, tt.Y, tt.Z = x+c.ox, y+c.oy, z+c.oz
	return c.put(tt.X, tt.Y, tt.Z, tt.BuildTree().(*nbt.Compound))
}

func (c *TileTickCollection) Remove(x, y, z int) bool {
	return c.remove(x+c.ox, y+c.oy, z+c.oz)
}

func (c *TileTickCollection) All() []*TileTick {
	out := make([]*TileTick, 0, c.list.Len())
	for _, item := range c.list.Items() {
		tt := new(TileTick)
		if tt.LoadTree(item) == nil {
			out = append(out, tt)
		}
	}
	return out
}

func (c *TileTickCollection) relocate(dx, dy, dz int) {
	c.translate(dx, dy, dz)
	c.ox, c.oy, c.oz = c.ox+dx, c.oy+dy, c.oz+dz
}

var EntitySchema = nbt.NewSchemaCompound("",
	nbt.NewSchemaString("id"),
	nbt.NewSchemaList("Pos", nbt.TagDouble).WithLength(3),
	nbt.NewSchemaList("Motion", nbt.TagDouble).WithLength(3),
	nbt.NewSchemaList("Rotation", nbt.TagFloat).WithLength(2),
	nbt.NewSchemaScalar("FallDistance", nbt.TagFloat, nbt.CreateOnMissing),
	nbt.NewSchemaScalar("Fire", nbt.TagShort, nbt.CreateOnMissing),
	nbt.NewSchemaScalar("Air", nbt.TagShort, nbt.CreateOnMissing),
	nbt.NewSchemaScalar("OnGround", nbt.TagByte, nbt.CreateOnMissing),
)

// EntityCollection views an Entities list. Entities stay raw compounds.
type EntityCollection struct {
	list *nbt.List
}

func NewEntityCollection(list *nbt.List) *EntityCollection {
	return &EntityCollection{list: list}
}

func (c *EntityCollection) Len() int { return c.list.Len() }

// All returns the entity compounds. They alias the list; edits land in the chunk.
func (c *EntityCollection) All() []*nbt.Compound {
	out := make([]*nbt.Compound, 0, c.list.Len())
	for _, item := range c.list.Items() {
		if e, ok := item.(*nbt.Compound); ok {
			out = append(out, e)
		}
	}
	return out
}

// Add verifies e against EntitySchema and appends it.
func (c *EntityCollection) Add(e *nbt.Compound) error {
	if err := nbt.Check(e, EntitySchema); err != nil {
		return fmt.Errorf("entity: %w", err)
	}
	return c.list.Add(e)
}

// RemoveIf deletes every entity fn matches and reports how many went.
func (c *EntityCollection) RemoveIf(fn func(e *nbt.Compound) bool) int {
	return c.list.RemoveIf(func(tag nbt.Tag) bool {
		e, ok := tag.(*nbt.Compound)
		return ok && fn(e)
	})
}

func (c *EntityCollection) Clear() {
	c.list.Clear()
}

// Position returns the Pos entry of e.
func Position(e *nbt.Compound) (x, y, z float64, ok bool) {
	pos, err := e.List("Pos")
	if err != nil || pos.Len() != 3 || pos.ElemType() != nbt.TagDouble {
		return 0, 0, 0, false
	}
	return float64(pos.Get(0).(nbt.Double)), float64(pos.Get(1).(nbt.Double)), float64(pos.Get(2).(nbt.Double)), true
}

// MoveEntity shifts the Pos of e. It reports false when e has no usable Pos.
func MoveEntity(e *nbt.Compound, dx, dy, dz float64) bool {
	x, y, z, ok := Position(e)
	if ok {
		e.Set("Pos", nbt.NewList(nbt.TagDouble, nbt.Double(x+dx), nbt.Double(y+dy), nbt.Double(z+dz)))
	}
	return ok
}

func (c *EntityCollection) translate(dx, dy, dz float64) {
	for _, e := range c.All() {
		MoveEntity(e, dx, dy, dz)
	}
}
