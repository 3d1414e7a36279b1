// Package world addresses blocks by world coordinates across the chunks of a ChunkSource.
package world

import (
	"errors"
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/astei/anvilkit/chunk"
)

// Horizontal world coordinates must lie strictly inside ±MaxCoord.
const MaxCoord = 32_000_000

var ErrOutOfBounds = errors.New("world: coordinate out of bounds")

type Option func(m *BlockManager)

// WithLogger sets the logger chunk lookups report to. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(m *BlockManager) { m.log = log }
}

// WithFormat sets the chunk format whose dimensions bound Y. The default is chunk.Sectioned.
func WithFormat(f chunk.Format) Option {
	return func(m *BlockManager) { m.format = f }
}

// WithAutoFlags sets the automatic behaviours of every chunk the manager resolves.
func WithAutoFlags(flags chunk.AutoFlags) Option {
	return func(m *BlockManager) { m.auto = flags }
}

type cachedChunk struct {
	cx, cz int
	c      chunk.Chunk
}

// BlockManager maps world coordinates onto chunks. The most recently resolved chunk is cached,
// so runs of nearby accesses hit the source once. A BlockManager is not safe for concurrent use.
//
// Reads outside the world or in chunks the source cannot provide return 0 (or nil). Writes
// report the failure instead.
type BlockManager struct {
	src    ChunkSource
	log    *zap.Logger
	format chunk.Format
	auto   chunk.AutoFlags

	ydim           int
	xshift, zshift int
	xmask, zmask   int

	last *cachedChunk
}

func NewBlockManager(src ChunkSource, opts ...Option) *BlockManager {
	m := &BlockManager{
		src:    src,
		log:    zap.NewNop(),
		format: chunk.Sectioned,
		auto:   chunk.DefaultAutoFlags,
	}
	for _, opt := range opts {
		opt(m)
	}
	xdim, ydim, zdim := m.format.Dims()
	m.ydim = ydim
	m.xshift, m.xmask = bits.TrailingZeros(uint(xdim)), xdim-1
	m.zshift, m.zmask = bits.TrailingZeros(uint(zdim)), zdim-1
	return m
}

func (m *BlockManager) Format() chunk.Format { return m.format }

func (m *BlockManager) AutoFlags() chunk.AutoFlags { return m.auto }

// SetAutoFlags changes the automatic behaviours of the cached chunk and every chunk resolved
// from now on.
func (m *BlockManager) SetAutoFlags(flags chunk.AutoFlags) {
	m.auto = flags
	if m.last != nil {
		m.last.c.Blocks().Auto = flags
	}
}

// InBounds reports whether (x, y, z) can address a block.
func (m *BlockManager) InBounds(x, y, z int) bool {
	return x > -MaxCoord && x < MaxCoord && z > -MaxCoord && z < MaxCoord && y >= 0 && y < m.ydim
}

// ChunkAt returns the chunk holding world column (x, z).
func (m *BlockManager) ChunkAt(x, z int) (chunk.Chunk, error) {
	if !m.InBounds(x, 0, z) {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, z)
	}
	return m.chunk(x>>m.xshift, z>>m.zshift)
}

func (m *BlockManager) chunk(cx, cz int) (chunk.Chunk, error) {
	if m.last != nil && m.last.cx == cx && m.last.cz == cz {
		return m.last.c, nil
	}
	c, err := m.src.GetChunk(cx, cz)
	if err == nil && c == nil {
		err = ErrNoChunk
	}
	if err != nil {
		m.log.Debug("chunk lookup failed", zap.Int("cx", cx), zap.Int("cz", cz), zap.Error(err))
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cz, err)
	}
	c.Blocks().Auto = m.auto
	m.last = &cachedChunk{cx: cx, cz: cz, c: c}
	return c, nil
}

// resolve returns the block collection holding (x, y, z) and the local coordinates in it.
func (m *BlockManager) resolve(x, y, z int) (b *chunk.BlockCollection, lx, lz int, err error) {
	if !m.InBounds(x, y, z) {
		return nil, 0, 0, fmt.Errorf("%w: (%d, %d, %d)", ErrOutOfBounds, x, y, z)
	}
	c, err := m.chunk(x>>m.xshift, z>>m.zshift)
	if err != nil {
		return nil, 0, 0, err
	}
	return c.Blocks(), x & m.xmask, z & m.zmask, nil
}

func (m *BlockManager) ID(x, y, z int) int {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return 0
	}
	return b.ID(lx, y, lz)
}

func (m *BlockManager) SetID(x, y, z, id int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.SetID(lx, y, lz, id)
	return nil
}

func (m *BlockManager) Info(x, y, z int) chunk.BlockInfo {
	return chunk.Info(m.ID(x, y, z))
}

func (m *BlockManager) Data(x, y, z int) int {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return 0
	}
	return b.Data(lx, y, lz)
}

func (m *BlockManager) SetData(x, y, z, v int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.SetData(lx, y, lz, v)
	return nil
}

func (m *BlockManager) BlockLight(x, y, z int) int {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return 0
	}
	return b.BlockLight(lx, y, lz)
}

func (m *BlockManager) SetBlockLight(x, y, z, v int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.SetBlockLight(lx, y, lz, v)
	return nil
}

func (m *BlockManager) SkyLight(x, y, z int) int {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return 0
	}
	return b.SkyLight(lx, y, lz)
}

func (m *BlockManager) SetSkyLight(x, y, z, v int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.SetSkyLight(lx, y, lz, v)
	return nil
}

func (m *BlockManager) Height(x, z int) int {
	b, lx, lz, err := m.resolve(x, 0, z)
	if err != nil {
		return 0
	}
	return b.Height(lx, lz)
}

func (m *BlockManager) SetHeight(x, z, h int) error {
	b, lx, lz, err := m.resolve(x, 0, z)
	if err != nil {
		return err
	}
	b.SetHeight(lx, lz, h)
	return nil
}

func (m *BlockManager) TileEntity(x, y, z int) *chunk.TileEntity {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return nil
	}
	return b.TileEntity(lx, y, lz)
}

func (m *BlockManager) SetTileEntity(x, y, z int, te *chunk.TileEntity) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	return b.SetTileEntity(lx, y, lz, te)
}

func (m *BlockManager) ClearTileEntity(x, y, z int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.ClearTileEntity(lx, y, lz)
	return nil
}

func (m *BlockManager) TileTick(x, y, z int) *chunk.TileTick {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return nil
	}
	return b.TileTick(lx, y, lz)
}

func (m *BlockManager) SetTileTick(x, y, z int, tt *chunk.TileTick) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	return b.SetTileTick(lx, y, lz, tt)
}

func (m *BlockManager) ClearTileTick(x, y, z int) error {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return err
	}
	b.ClearTileTick(lx, y, lz)
	return nil
}

// Ref returns a cursor on the block at world (x, y, z). The cursor uses local coordinates of
// the chunk it borrows.
func (m *BlockManager) Ref(x, y, z int) (chunk.BlockRef, error) {
	b, lx, lz, err := m.resolve(x, y, z)
	if err != nil {
		return chunk.BlockRef{}, err
	}
	return b.Ref(lx, y, lz), nil
}
