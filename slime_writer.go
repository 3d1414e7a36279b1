package main

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
)

const slimeHeader = 0xB10B
const slimeLatestVersion = 1

func slimeChunkKey(coord ChunkCoord) int64 {
	return (int64(coord.Z) * 0x7fffffff) + int64(coord.X)
}

// slimeChunk is a sectioned chunk rebuilt for export.
type slimeChunk struct {
	coord    ChunkCoord
	level    *nbt.Compound
	sections []*nbt.Compound
}

// WriteAsSlime writes every sectioned chunk of the world that persists at least one section as
// a slime archive. Legacy chunks are skipped.
func (world *AnvilWorld) WriteAsSlime(writer io.Writer) error {
	var chunks []slimeChunk
	for _, coord := range world.getChunkKeys() {
		c := world.chunks[coord]
		if c.Format() != chunk.Sectioned {
			continue
		}
		level, err := chunkLevel(c)
		if err != nil {
			return err
		}
		sections := levelCompounds(level, "Sections")
		if len(sections) == 0 {
			continue
		}
		chunks = append(chunks, slimeChunk{coord: coord, level: level, sections: sections})
	}

	zstdWriter, err := zstd.NewWriter(io.Discard)
	if err != nil {
		return err
	}
	slimeWriter := &slimeWriter{writer: writer, chunks: chunks, zstdWriter: zstdWriter}
	return slimeWriter.writeWorld()
}

type slimeWriter struct {
	writer     io.Writer
	chunks     []slimeChunk
	zstdWriter *zstd.Encoder
}

func (w *slimeWriter) writeWorld() (err error) {
	if err = w.writeHeader(); err != nil {
		return
	}
	if err = w.writeChunks(); err != nil {
		return
	}
	if err = w.writeTileEntities(); err != nil {
		return
	}
	if err = w.writeEntities(); err != nil {
		return
	}
	return w.writeExtra()
}

func (w *slimeWriter) writeHeader() error {
	var header struct {
		Magic   uint16
		Version uint8
	}

	header.Magic = slimeHeader
	header.Version = slimeLatestVersion
	return binary.Write(w.writer, binary.BigEndian, header)
}

func (w *slimeWriter) writeChunks() (err error) {
	var out bytes.Buffer

	if err = binary.Write(&out, binary.BigEndian, uint32(len(w.chunks))); err != nil {
		return
	}

	for _, c := range w.chunks {
		if err = w.writeChunkHeader(c, &out); err != nil {
			return
		}

		if err = binary.Write(&out, binary.BigEndian, uint32(len(c.sections))); err != nil {
			return
		}

		for _, section := range c.sections {
			if err = w.writeChunkSection(c, section, &out); err != nil {
				return
			}
		}
	}

	return w.writeZstdCompressed(&out)
}

func (w *slimeWriter) writeChunkHeader(c slimeChunk, out io.Writer) (err error) {
	if err = binary.Write(out, binary.BigEndian, uint32(c.coord.X)); err != nil {
		return
	}

	if err = binary.Write(out, binary.BigEndian, uint32(c.coord.Z)); err != nil {
		return
	}

	heightMaps := nbt.NewCompound()
	if hm, err := c.level.IntArray("HeightMap"); err == nil {
		heightMaps.Set("HeightMap", hm)
	}
	return w.writeNbt(heightMaps, "Heightmaps", out)
}

func (w *slimeWriter) writeLight(light nbt.ByteArray, out io.Writer) (err error) {
	if light == nil {
		return binary.Write(out, binary.BigEndian, false)
	}
	if err = binary.Write(out, binary.BigEndian, true); err != nil {
		return
	}
	_, err = out.Write(light)
	return
}

func (w *slimeWriter) writeChunkSection(c slimeChunk, section *nbt.Compound, out io.Writer) (err error) {
	blockLight, _ := section.ByteArray("BlockLight")
	if err = w.writeLight(blockLight, out); err != nil {
		return
	}
	skyLight, _ := section.ByteArray("SkyLight")
	if err = w.writeLight(skyLight, out); err != nil {
		return
	}

	blockStates := nbt.NewCompound()
	for _, name := range []string{"Y", "Blocks", "Data", "Add"} {
		if tag, ok := section.Lookup(name); ok {
			blockStates.Set(name, tag)
		}
	}
	if err = w.writeNbt(blockStates, "block_states", out); err != nil {
		return
	}

	biomes := nbt.NewCompound()
	if b, err := c.level.ByteArray("Biomes"); err == nil {
		biomes.Set("Biomes", b)
	}
	return w.writeNbt(biomes, "biomes", out)
}

func (w *slimeWriter) writeZstdCompressed(buf *bytes.Buffer) (err error) {
	uncompressedSize := buf.Len()

	var compressedOutput bytes.Buffer
	w.zstdWriter.Reset(&compressedOutput)
	if _, err = buf.WriteTo(w.zstdWriter); err != nil {
		return
	}
	if err = w.zstdWriter.Close(); err != nil {
		return
	}
	w.zstdWriter.Reset(io.Discard)

	if err = binary.Write(w.writer, binary.BigEndian, uint32(compressedOutput.Len())); err != nil {
		return
	}
	if err = binary.Write(w.writer, binary.BigEndian, uint32(uncompressedSize)); err != nil {
		return
	}
	_, err = compressedOutput.WriteTo(w.writer)
	return
}

func (w *slimeWriter) collect(name string) *nbt.List {
	all := nbt.NewList(nbt.TagCompound)
	for _, c := range w.chunks {
		for _, item := range levelCompounds(c.level, name) {
			_ = all.Add(item)
		}
	}
	return all
}

func (w *slimeWriter) writeTileEntities() error {
	compound := nbt.NewCompound()
	compound.Set("tiles", w.collect("TileEntities"))
	return w.writeCompressedNbt(compound, "tiles")
}

func (w *slimeWriter) writeEntities() error {
	compound := nbt.NewCompound()
	compound.Set("entities", w.collect("Entities"))
	return w.writeCompressedNbt(compound, "entities")
}

func (w *slimeWriter) writeCompressedNbt(compound *nbt.Compound, tagName string) error {
	raw, err := nbt.Marshal(compound, tagName)
	if err != nil {
		return err
	}
	return w.writeZstdCompressed(bytes.NewBuffer(raw))
}

func (w *slimeWriter) writeNbt(compound *nbt.Compound, tagName string, out io.Writer) (err error) {
	raw, err := nbt.Marshal(compound, tagName)
	if err != nil {
		return
	}
	if err = binary.Write(out, binary.BigEndian, uint32(len(raw))); err != nil {
		return
	}
	_, err = out.Write(raw)
	return
}

func (w *slimeWriter) writeExtra() error {
	// Write empty NBT tag compound
	return w.writeCompressedNbt(nbt.NewCompound(), "extra")
}
