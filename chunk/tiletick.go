package chunk

import (
	"fmt"

	"github.com/astei/anvilkit/nbt"
)

var TileTickSchema = nbt.NewSchemaCompound("",
	nbt.NewSchemaScalar("i", nbt.TagInt),
	nbt.NewSchemaScalar("t", nbt.TagInt),
	nbt.NewSchemaScalar("x", nbt.TagInt),
	nbt.NewSchemaScalar("y", nbt.TagInt),
	nbt.NewSchemaScalar("z", nbt.TagInt),
	nbt.NewSchemaScalar("p", nbt.TagInt, nbt.Optional),
)

// TileTick is a scheduled block update.
type TileTick struct {
	// BlockID is the id of the block the tick was scheduled for.
	BlockID int
	// Ticks until the update runs.
	Ticks   int
	X, Y, Z int
	// Priority is written only when set.
	Priority *int32

	source nbt.Source
}

func NewTileTick(blockID, ticks, x, y, z int) *TileTick {
	return &TileTick{BlockID: blockID, Ticks: ticks, X: x, Y: y, Z: z}
}

func (tt *TileTick) Copy() *TileTick {
	out := *tt
	if tt.Priority != nil {
		p := *tt.Priority
		out.Priority = &p
	}
	out.source = tt.source.Copy()
	return &out
}

func (tt *TileTick) LoadTree(tag nbt.Tag) error {
	c, err := nbt.As[*nbt.Compound](tag)
	if err != nil {
		return err
	}
	var v [5]nbt.Int
	for i, name := range []string{"i", "t", "x", "y", "z"} {
		if v[i], err = c.Int(name); err != nil {
			return fmt.Errorf("tile tick: %w", err)
		}
	}
	tt.BlockID, tt.Ticks = int(v[0]), int(v[1])
	tt.X, tt.Y, tt.Z = int(v[2]), int(v[3]), int(v[4])
	tt.Priority = nil
	if p, err := c.Int("p"); err == nil {
		priority := int32(p)
		tt.Priority = &priority
	}
	tt.source.Keep(c)
	return nil
}

func (tt *TileTick) LoadTreeSafe(tag nbt.Tag) error {
	if err := nbt.Check(tag, TileTickSchema); err != nil {
		return err
	}
	return tt.LoadTree(tag)
}

func (tt *TileTick) ValidateTree(tag nbt.Tag) bool {
	return nbt.Verify(tag, TileTickSchema)
}

func (tt *TileTick) BuildTree() nbt.Tag {
	c := nbt.NewCompound()
	c.Set("i", nbt.Int(tt.BlockID))
	c.Set("t", nbt.Int(tt.Ticks))
	c.Set("x", nbt.Int(tt.X))
	c.Set("y", nbt.Int(tt.Y))
	c.Set("z", nbt.Int(tt.Z))
	if tt.Priority != nil {
		c.Set("p", nbt.Int(*tt.Priority))
	}
	raw := tt.source.Raw()
	if tt.Priority == nil && raw != nil && raw.Has("p") {
		// A cleared priority must not come back from the snapshot.
		raw = raw.Copy().(*nbt.Compound)
		raw.Delete("p")
	}
	c.MergeFrom(raw)
	return c
}

var _ nbt.Object = (*TileTick)(nil)
