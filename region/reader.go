// Package region reads and writes chunks stored in region files: 32x32 chunks per file, each
// in its own run of 4 KiB sectors.
package region

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/astei/anvilkit/nbt"
)

const (
	regionSize  = 32
	maxOffsets  = regionSize * regionSize
	sectorSize  = 4096
	payloadHead = 5
)

var ErrNoChunk = errors.New("region: chunk not found")
var ErrInvalidChunkLength = errors.New("region: invalid chunk length")
var ErrInvalidCompression = errors.New("region: invalid compression format")

// CompressionType is the byte that precedes every chunk payload.
type CompressionType byte

const (
	CompressionGzip CompressionType = 1
	CompressionZlib CompressionType = 2
	CompressionNone CompressionType = 3
)

// Framing maps the payload byte to the tag stream framing it announces.
func (t CompressionType) Framing() (nbt.Compression, error) {
	switch t {
	case CompressionGzip:
		return nbt.GZip, nil
	case CompressionZlib:
		return nbt.ZLib, nil
	case CompressionNone:
		return nbt.None, nil
	}
	return 0, fmt.Errorf("%w: type %d", ErrInvalidCompression, byte(t))
}

// TypeOf returns the payload byte announcing framing c.
func TypeOf(c nbt.Compression) (CompressionType, error) {
	switch c {
	case nbt.GZip:
		return CompressionGzip, nil
	case nbt.ZLib:
		return CompressionZlib, nil
	case nbt.None:
		return CompressionNone, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidCompression, c)
}

// Reader allows you to read a region file and extract its chunks. The reader is not safe for
// concurrent access; usage should be protected by a mutex if concurrent access is desired.
type Reader struct {
	source      io.ReadSeeker
	sectorTable []int32
	Name        string
}

// NewReader creates a Reader. The ownership of the source is transferred to this reader.
func NewReader(source io.ReadSeeker) (reader *Reader, err error) {
	reader = &Reader{
		source:      source,
		sectorTable: make([]int32, maxOffsets),
	}

	if file, ok := source.(*os.File); ok {
		reader.Name = file.Name()
	}
	err = reader.readSectorTable()
	return
}

// OpenReader opens the region file at path.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("could not read sector table of %s: %w", path, err)
	}
	return reader, nil
}

func (r *Reader) readSectorTable() (err error) {
	if _, err = r.source.Seek(0, io.SeekStart); err != nil {
		return err
	}

	rawSectorData := make([]byte, sectorSize)
	if _, err = io.ReadFull(r.source, rawSectorData); err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(rawSectorData), binary.BigEndian, r.sectorTable)
}

// ChunkExists reports whether the region holds a chunk at (x, z). The coordinates are relative
// to the region, 0 to 31.
func (r *Reader) ChunkExists(x, z int) bool {
	return r.sectorTable[x+z*regionSize] != 0
}

// ReadChunk returns the unframed tag stream of the chunk at region-relative (x, z). The caller
// closes it.
func (r *Reader) ReadChunk(x, z int) (chunk io.ReadCloser, err error) {
	location := r.sectorTable[x+z*regionSize]

	start := location >> 8
	if start == 0 {
		return nil, ErrNoChunk
	}

	if _, err = r.source.Seek(int64(start)*sectorSize, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	// Payload header

	payloadHeader := make([]byte, payloadHead)
	if _, err = io.ReadFull(r.source, payloadHeader); err != nil {
		return nil, fmt.Errorf("could not read payload header: %w", err)
	}

	var payloadInfo struct {
		Length      int32
		Compression CompressionType
	}
	if err = binary.Read(bytes.NewReader(payloadHeader), binary.BigEndian, &payloadInfo); err != nil {
		return nil, fmt.Errorf("could not parse payload header: %w", err)
	}
	if payloadInfo.Length < 1 || int(payloadInfo.Length) > int(location&0xFF)*sectorSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkLength, payloadInfo.Length)
	}

	// Payload

	framing, err := payloadInfo.Compression.Framing()
	if err != nil {
		return nil, err
	}
	payloadData := make([]byte, payloadInfo.Length-1)
	if _, err = io.ReadFull(r.source, payloadData); err != nil {
		return nil, fmt.Errorf("could not read payload data: %w", err)
	}
	return nbt.NewReader(bytes.NewReader(payloadData), framing)
}

// ReadTree reads and decodes the chunk at region-relative (x, z).
func (r *Reader) ReadTree(x, z int) (tree *nbt.Tree, err error) {
	stream, err := r.ReadChunk(x, z)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	name, root, err := nbt.NewDecoder(stream).Decode()
	if err != nil {
		return nil, err
	}
	return &nbt.Tree{Name: name, Root: root}, nil
}

func (r *Reader) Close() error {
	if closer, ok := r.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
