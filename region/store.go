package region

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	mca "github.com/Tnze/go-mc/save/region"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/world"
)

// ErrReachRateLimit is returned when the chunk loading limiter refuses a load.
var ErrReachRateLimit = errors.New("region: reach rate limit")

type Option func(s *Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithLimiter bounds how fast chunks are read from disk. Chunks already held by the store are
// not counted.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(s *Store) { s.limiter = limiter }
}

// WithFormat sets the format of created chunks and the region file extension. The default is
// chunk.Sectioned.
func WithFormat(f chunk.Format) Option {
	return func(s *Store) { s.format = f }
}

// WithCompression sets the framing chunks are written with. The default is nbt.ZLib.
func WithCompression(c nbt.Compression) Option {
	return func(s *Store) { s.compression = c }
}

// WithCreate makes GetChunk create empty chunks where the region files have none.
func WithCreate(create bool) Option {
	return func(s *Store) { s.create = create }
}

type chunkPos struct {
	X, Z int
}

// Store is a world.ChunkSource over a directory of region files. Chunks it hands out stay in
// memory until Flush writes them back. A Store is not safe for concurrent use.
type Store struct {
	dir         string
	log         *zap.Logger
	limiter     *rate.Limiter
	format      chunk.Format
	compression nbt.Compression
	create      bool

	loaded map[chunkPos]chunk.Chunk
}

func NewStore(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir:         dir,
		log:         zap.NewNop(),
		format:      chunk.Sectioned,
		compression: nbt.ZLib,
		loaded:      make(map[chunkPos]chunk.Chunk),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := TypeOf(s.compression); err != nil {
		return nil, err
	}
	return s, nil
}

// Extension is the region file extension of format f.
func Extension(f chunk.Format) string {
	if f == chunk.Legacy {
		return ".mcr"
	}
	return ".mca"
}

// Path returns the path of the region file holding chunk (cx, cz).
func (s *Store) Path(cx, cz int) string {
	rx, rz := mca.At(cx, cz)
	return filepath.Join(s.dir, fmt.Sprintf("r.%d.%d%s", rx, rz, Extension(s.format)))
}

// openRegion opens the region file holding chunk (cx, cz), creating it when create is set.
func (s *Store) openRegion(cx, cz int, create bool) (*mca.Region, error) {
	path := s.Path(cx, cz)
	r, err := mca.Open(path)
	if errors.Is(err, fs.ErrNotExist) && create {
		s.log.Debug("creating region file", zap.String("path", path))
		r, err = mca.Create(path)
	}
	return r, err
}

// GetChunk returns the chunk at (cx, cz), reading it from its region file the first time.
func (s *Store) GetChunk(cx, cz int) (chunk.Chunk, error) {
	if c, ok := s.loaded[chunkPos{cx, cz}]; ok {
		return c, nil
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return nil, ErrReachRateLimit
	}

	c, err := s.readChunk(cx, cz)
	if errors.Is(err, world.ErrNoChunk) && s.create {
		c, err = chunk.New(s.format, cx, cz)
	}
	if err != nil {
		return nil, err
	}
	s.log.Debug("chunk loaded", zap.Int("cx", cx), zap.Int("cz", cz), zap.Stringer("format", c.Format()))
	s.loaded[chunkPos{cx, cz}] = c
	return c, nil
}

func (s *Store) readChunk(cx, cz int) (c chunk.Chunk, errRet error) {
	r, err := s.openRegion(cx, cz, false)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cz, world.ErrNoChunk)
	}
	if err != nil {
		return nil, fmt.Errorf("open region fail: %w", err)
	}
	defer func(r *mca.Region) {
		err2 := r.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close region fail: %w", err2)
		}
	}(r)

	x, z := mca.In(cx, cz)
	if !r.ExistSector(x, z) {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cz, world.ErrNoChunk)
	}
	data, err := r.ReadSector(x, z)
	if err != nil {
		return nil, fmt.Errorf("read sector fail: %w", err)
	}
	tree, err := DecodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("chunk %d,%d: %w", cx, cz, err)
	}
	c, err = chunk.Load(tree.Root)
	if err != nil {
		return nil, fmt.Errorf("load chunk %d,%d fail: %w", cx, cz, err)
	}
	return c, nil
}

// DecodeChunk decodes a sector payload: one compression type byte, then the framed tree.
func DecodeChunk(data []byte) (*nbt.Tree, error) {
	if len(data) < 1 {
		return nil, ErrInvalidChunkLength
	}
	framing, err := CompressionType(data[0]).Framing()
	if err != nil {
		return nil, err
	}
	return nbt.ReadTree(bytes.NewReader(data[1:]), framing)
}

// EncodeChunk builds the sector payload of c under framing comp.
func EncodeChunk(c chunk.Chunk, comp nbt.Compression) ([]byte, error) {
	typ, err := TypeOf(comp)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(typ))
	if err := c.Save(&buf, comp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveChunk writes c into the region file of its position.
func (s *Store) SaveChunk(c chunk.Chunk) (errRet error) {
	data, err := EncodeChunk(c, s.compression)
	if err != nil {
		return fmt.Errorf("encode chunk %d,%d fail: %w", c.X(), c.Z(), err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	r, err := s.openRegion(c.X(), c.Z(), true)
	if err != nil {
		return fmt.Errorf("open region fail: %w", err)
	}
	defer func(r *mca.Region) {
		err2 := r.Close()
		if errRet == nil && err2 != nil {
			errRet = fmt.Errorf("close region fail: %w", err2)
		}
	}(r)

	x, z := mca.In(c.X(), c.Z())
	if err := r.WriteSector(x, z, data); err != nil {
		return fmt.Errorf("write sector fail: %w", err)
	}
	s.log.Debug("chunk saved", zap.Int("cx", c.X()), zap.Int("cz", c.Z()), zap.Int("bytes", len(data)))
	return nil
}

// Flush writes every chunk the store holds back to disk.
func (s *Store) Flush() error {
	var errs []error
	for pos, c := range s.loaded {
		if err := s.SaveChunk(c); err != nil {
			s.log.Warn("chunk not saved", zap.Int("cx", pos.X), zap.Int("cz", pos.Z), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes the store and forgets every chunk it holds.
func (s *Store) Close() error {
	err := s.Flush()
	s.loaded = make(map[chunkPos]chunk.Chunk)
	return err
}

var _ world.ChunkSource = (*Store)(nil)
