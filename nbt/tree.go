package nbt

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Tree is a named root compound, the unit every save file holds.
type Tree struct {
	Name string
	Root *Compound
}

func NewTree(root *Compound) *Tree {
	if root == nil {
		root = NewCompound()
	}
	return &Tree{Root: root}
}

func (t *Tree) Copy() *Tree {
	return &Tree{Name: t.Name, Root: t.Root.Copy().(*Compound)}
}

// ReadTree reads a whole tree from r under framing c.
func ReadTree(r io.Reader, c Compression) (tree *Tree, err error) {
	fr, err := NewReader(r, c)
	if err != nil {
		return nil, &CodecError{Op: "open " + c.String() + " stream", Err: err}
	}
	defer func() {
		if cerr := fr.Close(); err == nil && cerr != nil {
			tree, err = nil, &CodecError{Op: "close " + c.String() + " stream", Err: cerr}
		}
	}()

	name, root, err := NewDecoder(fr).Decode()
	if err != nil {
		return nil, err
	}
	return &Tree{Name: name, Root: root}, nil
}

// Bytes serializes the tree under framing c into memory.
func (t *Tree) Bytes(c Compression) ([]byte, error) {
	raw, err := Marshal(t.Root, t.Name)
	if err != nil {
		return nil, err
	}
	if c == None {
		return raw, nil
	}

	var out bytes.Buffer
	w, err := NewWriter(&out, c)
	if err != nil {
		return nil, &CodecError{Op: "open " + c.String() + " stream", Err: err}
	}
	if _, err = w.Write(raw); err != nil {
		return nil, &CodecError{Op: "write " + c.String() + " stream", Err: err}
	}
	if err = w.Close(); err != nil {
		return nil, &CodecError{Op: "close " + c.String() + " stream", Err: err}
	}
	return out.Bytes(), nil
}

// Encode writes the framed tree to w with a single Write.
func (t *Tree) Encode(w io.Writer, c Compression) error {
	data, err := t.Bytes(c)
	if err != nil {
		return err
	}
	if _, err = w.Write(data); err != nil {
		return &CodecError{Op: "write", Err: err}
	}
	return nil
}

// File is a tag tree persisted at Path under a fixed framing.
type File struct {
	Path        string
	Compression Compression
}

func NewFile(path string, c Compression) *File {
	return &File{Path: path, Compression: c}
}

func (f *File) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

func (f *File) Load() (tree *Tree, err error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tree, err = ReadTree(file, f.Compression)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", f.Path, err)
	}
	return tree, nil
}

// Save replaces the file with tree. The framed tree is built entirely in memory, written to a
// temporary file next to the destination, synced and then renamed over it, so a crash can only
// leave either the old or the new file behind.
func (f *File) Save(tree *Tree) error {
	data, err := tree.Bytes(f.Compression)
	if err != nil {
		return &SaveError{Path: f.Path, Tree: tree, Err: err}
	}
	if err = writeFileAtomic(f.Path, data); err != nil {
		return &SaveError{Path: f.Path, Tree: tree, Err: err}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	mode := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		mode = fi.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
