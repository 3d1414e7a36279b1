package chunk

import (
	"fmt"
	"sync"

	"github.com/astei/anvilkit/nbt"
)

// TileEntitySchema is the shape every tile entity shares.
var TileEntitySchema = nbt.NewSchemaCompound("",
	nbt.NewSchemaString("id"),
	nbt.NewSchemaScalar("x", nbt.TagInt),
	nbt.NewSchemaScalar("y", nbt.TagInt),
	nbt.NewSchemaScalar("z", nbt.TagInt),
)

var itemSchema = nbt.NewSchemaCompound("",
	nbt.NewSchemaScalar("id", nbt.TagShort),
	nbt.NewSchemaScalar("Damage", nbt.TagShort),
	nbt.NewSchemaScalar("Count", nbt.TagByte),
	nbt.NewSchemaScalar("Slot", nbt.TagByte, nbt.Optional),
)

func itemsSchema() *nbt.SchemaList {
	return nbt.NewSchemaList("Items", nbt.TagCompound).WithElement(itemSchema)
}

var (
	tileEntityMu      sync.RWMutex
	tileEntitySchemas = map[string]*nbt.SchemaCompound{}
)

// RegisterTileEntity derives the schema of tile entity id from TileEntitySchema and fields.
func RegisterTileEntity(id string, fields ...nbt.SchemaNode) {
	overrides := nbt.NewSchemaCompound("", fields...)
	overrides.Add(nbt.NewSchemaString("id").WithValue(id))
	schema := TileEntitySchema.MergeInto(overrides)

	tileEntityMu.Lock()
	defer tileEntityMu.Unlock()
	tileEntitySchemas[id] = schema
}

// TileEntitySchemaFor returns the registered schema of id, or TileEntitySchema.
func TileEntitySchemaFor(id string) *nbt.SchemaCompound {
	tileEntityMu.RLock()
	defer tileEntityMu.RUnlock()
	if s, ok := tileEntitySchemas[id]; ok {
		return s
	}
	return TileEntitySchema
}

func init() {
	RegisterTileEntity("Chest", itemsSchema())
	RegisterTileEntity("Trap", itemsSchema())
	RegisterTileEntity("Furnace",
		nbt.NewSchemaScalar("BurnTime", nbt.TagShort),
		nbt.NewSchemaScalar("CookTime", nbt.TagShort),
		itemsSchema(),
	)
	RegisterTileEntity("Sign",
		nbt.NewSchemaString("Text1").WithMaxLength(15),
		nbt.NewSchemaString("Text2").WithMaxLength(15),
		nbt.NewSchemaString("Text3").WithMaxLength(15),
		nbt.NewSchemaString("Text4").WithMaxLength(15),
	)
	RegisterTileEntity("MobSpawner",
		nbt.NewSchemaString("EntityId"),
		nbt.NewSchemaScalar("Delay", nbt.TagShort),
	)
	RegisterTileEntity("Music", nbt.NewSchemaScalar("note", nbt.TagByte))
	RegisterTileEntity("RecordPlayer", nbt.NewSchemaScalar("Record", nbt.TagInt, nbt.Optional))
	RegisterTileEntity("Cauldron",
		nbt.NewSchemaScalar("BrewTime", nbt.TagInt),
		itemsSchema(),
	)
	RegisterTileEntity("EnchantTable")
	RegisterTileEntity("Airportal")
}

// TileEntity is block-attached state. Fields other than the id and position are kept as raw
// tags in Extra and written back unchanged.
type TileEntity struct {
	ID      string
	X, Y, Z int

	source nbt.Source
}

// NewTileEntity creates a tile entity of kind id at world position (x, y, z), with the
// defaults of the kind's registered schema.
func NewTileEntity(id string, x, y, z int) *TileEntity {
	te := &TileEntity{ID: id, X: x, Y: y, Z: z}
	te.source.Keep(TileEntitySchemaFor(id).DefaultTag().(*nbt.Compound))
	return te
}

// Extra returns the raw entries carried alongside the typed fields. Changes to it are written
// by BuildTree.
func (te *TileEntity) Extra() *nbt.Compound {
	if te.source.Raw() == nil {
		te.source.Keep(nbt.NewCompound())
	}
	return te.source.Raw()
}

func (te *TileEntity) Copy() *TileEntity {
	return &TileEntity{ID: te.ID, X: te.X, Y: te.Y, Z: te.Z, source: te.source.Copy()}
}

func (te *TileEntity) LoadTree(tag nbt.Tag) error {
	c, err := nbt.As[*nbt.Compound](tag)
	if err != nil {
		return err
	}
	id, err := c.String("id")
	if err != nil {
		return fmt.Errorf("tile entity: %w", err)
	}
	var pos [3]nbt.Int
	for i, name := range []string{"x", "y", "z"} {
		if pos[i], err = c.Int(name); err != nil {
			return fmt.Errorf("tile entity %s: %w", id, err)
		}
	}
	te.ID = string(id)
	te.X, te.Y, te.Z = int(pos[0]), int(pos[1]), int(pos[2])
	te.source.Keep(c)
	return nil
}

func (te *TileEntity) LoadTreeSafe(tag nbt.Tag) error {
	if err := te.check(tag); err != nil {
		return err
	}
	return te.LoadTree(tag)
}

func (te *TileEntity) check(tag nbt.Tag) error {
	schema := TileEntitySchema
	if c, ok := tag.(*nbt.Compound); ok {
		if id, err := c.String("id"); err == nil {
			schema = TileEntitySchemaFor(string(id))
		}
	}
	return nbt.Check(tag, schema)
}

func (te *TileEntity) ValidateTree(tag nbt.Tag) bool {
	return te.check(tag) == nil
}

func (te *TileEntity) BuildTree() nbt.Tag {
	c := nbt.NewCompound()
	c.Set("id", nbt.String(te.ID))
	c.Set("x", nbt.Int(te.X))
	c.Set("y", nbt.Int(te.Y))
	c.Set("z", nbt.Int(te.Z))
	te.source.Restore(c)
	return c
}

var _ nbt.Object = (*TileEntity)(nil)
