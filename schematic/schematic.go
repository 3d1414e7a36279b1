// Package schematic reads and writes schematic files: a standalone box of blocks, tile entities
// and entities that can be cut out of a world and pasted back.
package schematic

import (
	"errors"
	"fmt"
	"math"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/data"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/world"
)

// RootName is the name of the root compound of a schematic file.
const RootName = "Schematic"

const defaultMaterials = "Alpha"

var ErrInvalidSize = errors.New("schematic: invalid size")

// Schema checks the shape of a schematic. Array lengths depend on the declared size and are
// checked when the arrays are wrapped.
var Schema = nbt.NewSchemaCompound("",
	nbt.NewSchemaScalar("Width", nbt.TagShort),
	nbt.NewSchemaScalar("Height", nbt.TagShort),
	nbt.NewSchemaScalar("Length", nbt.TagShort),
	nbt.NewSchemaString("Materials"),
	nbt.NewSchemaByteArray("Blocks", 0),
	nbt.NewSchemaByteArray("Data", 0),
	nbt.NewSchemaList("Entities", nbt.TagCompound),
	nbt.NewSchemaList("TileEntities", nbt.TagCompound).WithElement(chunk.TileEntitySchema),
)

// Schematic is a Width x Height x Length box of blocks stored in XZY order with one byte of
// metadata per block. It carries no light and no height map.
type Schematic struct {
	Width, Height, Length int
	Materials             string

	root     *nbt.Compound
	ids      *data.XZYByteArray
	data     *data.XZYByteArray
	blocks   *chunk.BlockCollection
	entities *chunk.EntityCollection
}

// New creates an empty schematic of the given size.
func New(width, height, length int) (*Schematic, error) {
	if width <= 0 || height <= 0 || length <= 0 || width > math.MaxInt16 || height > math.MaxInt16 || length > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, width, height, length)
	}
	volume := width * height * length
	root := nbt.NewCompound()
	root.Set("Width", nbt.Short(width))
	root.Set("Height", nbt.Short(height))
	root.Set("Length", nbt.Short(length))
	root.Set("Materials", nbt.String(defaultMaterials))
	root.Set("Blocks", make(nbt.ByteArray, volume))
	root.Set("Data", make(nbt.ByteArray, volume))
	root.Set("Entities", nbt.NewList(nbt.TagCompound))
	root.Set("TileEntities", nbt.NewList(nbt.TagCompound))

	s := new(Schematic)
	if err := s.LoadTree(root); err != nil {
		return nil, err
	}
	return s, nil
}

func Load(tag nbt.Tag) (*Schematic, error) {
	s := new(Schematic)
	if err := s.LoadTree(tag); err != nil {
		return nil, err
	}
	return s, nil
}

func LoadSafe(tag nbt.Tag) (*Schematic, error) {
	s := new(Schematic)
	if err := s.LoadTreeSafe(tag); err != nil {
		return nil, err
	}
	return s, nil
}

// Open reads the gzip framed schematic file at path.
func Open(path string) (*Schematic, error) {
	tree, err := nbt.NewFile(path, nbt.GZip).Load()
	if err != nil {
		return nil, err
	}
	return LoadSafe(tree.Root)
}

func (s *Schematic) Blocks() *chunk.BlockCollection    { return s.blocks }
func (s *Schematic) Entities() *chunk.EntityCollection { return s.entities }

func (s *Schematic) LoadTree(tag nbt.Tag) error {
	root, err := nbt.As[*nbt.Compound](tag)
	if err != nil {
		return err
	}
	var size [3]nbt.Short
	for i, name := range []string{"Width", "Height", "Length"} {
		if size[i], err = root.Short(name); err != nil {
			return fmt.Errorf("schematic: %w", err)
		}
	}
	width, height, length := int(size[0]), int(size[1]), int(size[2])
	if width <= 0 || height <= 0 || length <= 0 {
		return fmt.Errorf("%w: %dx%dx%d", ErrInvalidSize, width, height, length)
	}
	materials, err := root.String("Materials")
	if errors.Is(err, nbt.ErrKeyNotFound) {
		materials, err = defaultMaterials, nil
	}
	if err != nil {
		return fmt.Errorf("schematic: %w", err)
	}

	blocks, err := root.ByteArray("Blocks")
	if err != nil {
		return fmt.Errorf("schematic: %w", err)
	}
	ids, err := data.WrapXZYByteArray(blocks, width, height, length)
	if err != nil {
		return fmt.Errorf("schematic: Blocks: %w", err)
	}
	meta, err := root.ByteArray("Data")
	if err != nil {
		return fmt.Errorf("schematic: %w", err)
	}
	dat, err := data.WrapXZYByteArray(meta, width, height, length)
	if err != nil {
		return fmt.Errorf("schematic: Data: %w", err)
	}
	lists := make(map[string]*nbt.List, 2)
	for _, name := range []string{"Entities", "TileEntities"} {
		l, err := root.List(name)
		if errors.Is(err, nbt.ErrKeyNotFound) {
			l = nbt.NewList(nbt.TagCompound)
			root.Set(name, l)
		} else if err != nil {
			return fmt.Errorf("schematic: %w", err)
		}
		lists[name] = l
	}

	s.Width, s.Height, s.Length = width, height, length
	s.Materials = string(materials)
	s.root, s.ids, s.data = root, ids, dat
	s.blocks = chunk.NewBlockCollection(chunk.BlockStorage{
		IDs:          ids,
		Data:         dat,
		TileEntities: lists["TileEntities"],
	})
	s.blocks.Auto = chunk.AutoFlags{}
	s.entities = chunk.NewEntityCollection(lists["Entities"])
	return nil
}

func (s *Schematic) LoadTreeSafe(tag nbt.Tag) error {
	if err := nbt.Check(tag, Schema); err != nil {
		return err
	}
	return s.LoadTree(tag)
}

func (s *Schematic) ValidateTree(tag nbt.Tag) bool {
	if !nbt.Verify(tag, Schema) {
		return false
	}
	return new(Schematic).LoadTree(tag) == nil
}

func (s *Schematic) BuildTree() nbt.Tag {
	root := nbt.NewCompound()
	root.Set("Width", nbt.Short(s.Width))
	root.Set("Height", nbt.Short(s.Height))
	root.Set("Length", nbt.Short(s.Length))
	root.Set("Materials", nbt.String(s.Materials))
	root.Set("Blocks", nbt.ByteArray(s.ids.Storage().Data()).Copy())
	root.Set("Data", nbt.ByteArray(s.data.Storage().Data()).Copy())
	root.MergeFrom(s.root)
	return root
}

// Save writes the schematic to path, gzip framed. The file is replaced atomically.
func (s *Schematic) Save(path string) error {
	tree := &nbt.Tree{Name: RootName, Root: s.BuildTree().(*nbt.Compound)}
	return nbt.NewFile(path, nbt.GZip).Save(tree)
}

// Export copies the width x height x length box of m whose lowest corner is (x, y, z) into a
// new schematic, with tile entities and the entities standing inside the box.
func Export(m *world.BlockManager, x, y, z, width, height, length int) (*Schematic, error) {
	s, err := New(width, height, length)
	if err != nil {
		return nil, err
	}
	for lx := 0; lx < width; lx++ {
		for lz := 0; lz < length; lz++ {
			for ly := 0; ly < height; ly++ {
				wx, wy, wz := x+lx, y+ly, z+lz
				s.blocks.SetID(lx, ly, lz, m.ID(wx, wy, wz))
				s.blocks.SetData(lx, ly, lz, m.Data(wx, wy, wz))
				if te := m.TileEntity(wx, wy, wz); te != nil {
					if err := s.blocks.SetTileEntity(lx, ly, lz, te.Copy()); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	seen := make(map[chunk.Chunk]bool)
	for cx := x &^ (chunk.XDim - 1); cx < x+width; cx += chunk.XDim {
		for cz := z &^ (chunk.ZDim - 1); cz < z+length; cz += chunk.ZDim {
			c, err := m.ChunkAt(cx, cz)
			if err != nil || seen[c] {
				continue
			}
			seen[c] = true
			for _, e := range c.Entities().All() {
				ex, ey, ez, ok := chunk.Position(e)
				if !ok || !inside(ex, ey, ez, x, y, z, width, height, length) {
					continue
				}
				e = e.Copy().(*nbt.Compound)
				chunk.MoveEntity(e, -float64(x), -float64(y), -float64(z))
				if err := s.entities.Add(e); err != nil {
					return nil, err
				}
			}
		}
	}
	return s, nil
}

func inside(ex, ey, ez float64, x, y, z, width, height, length int) bool {
	return ex >= float64(x) && ex < float64(x+width) &&
		ey >= float64(y) && ey < float64(y+height) &&
		ez >= float64(z) && ez < float64(z+length)
}

// Import pastes s into m with its lowest corner at (x, y, z). Blocks outside the world are
// skipped; the first other failure stops the paste.
func (s *Schematic) Import(m *world.BlockManager, x, y, z int) error {
	for lx := 0; lx < s.Width; lx++ {
		for lz := 0; lz < s.Length; lz++ {
			for ly := 0; ly < s.Height; ly++ {
				wx, wy, wz := x+lx, y+ly, z+lz
				if !m.InBounds(wx, wy, wz) {
					continue
				}
				if err := m.SetID(wx, wy, wz, s.blocks.ID(lx, ly, lz)); err != nil {
					return err
				}
				if err := m.SetData(wx, wy, wz, s.blocks.Data(lx, ly, lz)); err != nil {
					return err
				}
			}
		}
	}
	for _, te := range s.blocks.TileEntities().All() {
		if !m.InBounds(x+te.X, y+te.Y, z+te.Z) {
			continue
		}
		if err := m.SetTileEntity(x+te.X, y+te.Y, z+te.Z, te.Copy()); err != nil {
			return err
		}
	}
	for _, e := range s.entities.All() {
		e = e.Copy().(*nbt.Compound)
		if !chunk.MoveEntity(e, float64(x), float64(y), float64(z)) {
			continue
		}
		ex, _, ez, _ := chunk.Position(e)
		c, err := m.ChunkAt(int(math.Floor(ex)), int(math.Floor(ez)))
		if err != nil {
			return err
		}
		if err := c.Entities().Add(e); err != nil {
			return err
		}
	}
	return nil
}

var _ nbt.Object = (*Schematic)(nil)
