package main

import (
	"fmt"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/region"
)

type ChunkCoord struct {
	X int
	Z int
}

// readChunk decodes the chunk at region-relative (x, z). With safe set, the tree is verified
// against the schema of its format before it is loaded.
func readChunk(reader *region.Reader, x, z int, safe bool) (chunk.Chunk, error) {
	tree, err := reader.ReadTree(x, z)
	if err != nil {
		return nil, fmt.Errorf("could not read chunk %d,%d in %s: %w", x, z, reader.Name, err)
	}

	load := chunk.Load
	if safe {
		load = chunk.LoadSafe
	}
	c, err := load(tree.Root)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize chunk %d,%d in %s: %w", x, z, reader.Name, err)
	}
	return c, nil
}

// chunkLevel rebuilds c and returns its Level compound.
func chunkLevel(c chunk.Chunk) (*nbt.Compound, error) {
	root, err := nbt.As[*nbt.Compound](c.BuildTree())
	if err != nil {
		return nil, err
	}
	return root.Compound("Level")
}

// levelCompounds returns the compounds of the list called name in level.
func levelCompounds(level *nbt.Compound, name string) []*nbt.Compound {
	l, err := level.List(name)
	if err != nil {
		return nil
	}
	out := make([]*nbt.Compound, 0, l.Len())
	for _, item := range l.Items() {
		if c, ok := item.(*nbt.Compound); ok {
			out = append(out, c)
		}
	}
	return out
}
