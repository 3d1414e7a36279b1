package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/region"
)

type scanOptions struct {
	// safe verifies every chunk against its schema; chunks that fail are counted, not loaded.
	safe    bool
	workers int
	log     *zap.Logger
}

type AnvilWorld struct {
	chunks  map[ChunkCoord]chunk.Chunk
	invalid int
}

type regionScan struct {
	chunks  map[ChunkCoord]chunk.Chunk
	invalid int
}

func isRegionFile(name string) bool {
	return strings.HasSuffix(name, ".mca") || strings.HasSuffix(name, ".mcr")
}

// OpenAnvilWorld reads every region file in root. Region files are read concurrently, at most
// opts.workers at a time.
func OpenAnvilWorld(root string, opts scanOptions) (*AnvilWorld, error) {
	log := opts.log
	if log == nil {
		log = zap.NewNop()
	}
	files, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var regionPaths []string
	for _, possibleRegionFile := range files {
		log.Debug("discovered", zap.String("file", possibleRegionFile.Name()))
		if !possibleRegionFile.IsDir() && isRegionFile(possibleRegionFile.Name()) {
			regionPaths = append(regionPaths, filepath.Join(root, possibleRegionFile.Name()))
		}
	}

	workers := opts.workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	wg.Add(len(regionPaths))
	resultChan := make(chan *regionScan, len(regionPaths))
	for _, path := range regionPaths {
		go func(path string, res chan *regionScan, wg *sync.WaitGroup) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := tryToReadRegion(path, opts.safe, log)
			if err != nil {
				log.Error("unable to read chunks", zap.String("region", path), zap.Error(err))
				return
			}
			res <- result
		}(path, resultChan, &wg)
	}

	wg.Wait()
	close(resultChan)

	world := &AnvilWorld{chunks: make(map[ChunkCoord]chunk.Chunk)}
	for m := range resultChan {
		for k, v := range m.chunks {
			world.chunks[k] = v
		}
		world.invalid += m.invalid
	}
	log.Info("discovered chunks in the world",
		zap.Int("regions", len(regionPaths)),
		zap.Int("chunks", len(world.chunks)),
		zap.Int("invalid", world.invalid))
	return world, nil
}

func tryToReadRegion(path string, safe bool, log *zap.Logger) (*regionScan, error) {
	reader, err := region.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	scan := &regionScan{chunks: make(map[ChunkCoord]chunk.Chunk)}
	for x := 0; x < 32; x++ {
		for z := 0; z < 32; z++ {
			if !reader.ChunkExists(x, z) {
				continue
			}
			c, err := readChunk(reader, x, z, safe)
			if safe && errors.Is(err, nbt.ErrSchemaViolation) {
				log.Warn("invalid chunk", zap.Error(err))
				scan.invalid++
				continue
			}
			if err != nil {
				return nil, err
			}

			coords := ChunkCoord{X: c.X(), Z: c.Z()}
			if _, dup := scan.chunks[coords]; dup {
				return nil, fmt.Errorf("chunk %d,%d stored twice in %s", coords.X, coords.Z, path)
			}
			scan.chunks[coords] = c
		}
	}
	return scan, nil
}

func (world *AnvilWorld) Len() int { return len(world.chunks) }

// Invalid is the number of chunks that failed verification.
func (world *AnvilWorld) Invalid() int { return world.invalid }

// getChunkKeys returns the chunk positions in slime order.
func (world *AnvilWorld) getChunkKeys() []ChunkCoord {
	keys := make([]ChunkCoord, 0, len(world.chunks))
	for coord := range world.chunks {
		keys = append(keys, coord)
	}
	slices.SortFunc(keys, func(a, b ChunkCoord) bool {
		return slimeChunkKey(a) < slimeChunkKey(b)
	})
	return keys
}
