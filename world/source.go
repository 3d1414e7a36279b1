package world

import (
	"errors"

	"golang.org/x/exp/slices"

	"github.com/astei/anvilkit/chunk"
)

// ErrNoChunk is returned by a ChunkSource that has no chunk at the requested position and does
// not create one.
var ErrNoChunk = errors.New("world: chunk not found")

// ChunkSource resolves chunk coordinates to chunks. Implementations decide whether missing
// chunks are created or reported with ErrNoChunk.
type ChunkSource interface {
	GetChunk(cx, cz int) (chunk.Chunk, error)
}

type chunkPos struct {
	X, Z int
}

// MemorySource keeps chunks in memory and creates empty ones of its format on first access.
type MemorySource struct {
	format chunk.Format
	create bool
	chunks map[chunkPos]chunk.Chunk
}

// NewMemorySource returns a source creating empty chunks of format f.
func NewMemorySource(f chunk.Format) *MemorySource {
	return &MemorySource{format: f, create: true, chunks: make(map[chunkPos]chunk.Chunk)}
}

// SetCreate controls whether GetChunk creates missing chunks. When off, it reports ErrNoChunk.
func (s *MemorySource) SetCreate(create bool) { s.create = create }

func (s *MemorySource) Format() chunk.Format { return s.format }

func (s *MemorySource) GetChunk(cx, cz int) (chunk.Chunk, error) {
	if c, ok := s.chunks[chunkPos{cx, cz}]; ok {
		return c, nil
	}
	if !s.create {
		return nil, ErrNoChunk
	}
	c, err := chunk.New(s.format, cx, cz)
	if err != nil {
		return nil, err
	}
	s.chunks[chunkPos{cx, cz}] = c
	return c, nil
}

// Put stores c at its own position, replacing any chunk already there.
func (s *MemorySource) Put(c chunk.Chunk) {
	s.chunks[chunkPos{c.X(), c.Z()}] = c
}

func (s *MemorySource) Len() int { return len(s.chunks) }

// Chunks returns every stored chunk ordered by X, then Z.
func (s *MemorySource) Chunks() []chunk.Chunk {
	out := make([]chunk.Chunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b chunk.Chunk) bool {
		if a.X() != b.X() {
			return a.X() < b.X()
		}
		return a.Z() < b.Z()
	})
	return out
}

var _ ChunkSource = (*MemorySource)(nil)
