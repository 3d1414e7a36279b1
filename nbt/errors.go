package nbt

import (
	"errors"
	"strconv"
)

var ErrMalformedTag = errors.New("nbt: malformed tag")
var ErrTypeMismatch = errors.New("nbt: tag type mismatch")
var ErrKeyNotFound = errors.New("nbt: key not found")
var ErrSchemaViolation = errors.New("nbt: schema violation")
var ErrInvalidCompression = errors.New("nbt: invalid compression format")
var ErrIndexOutOfRange = errors.New("nbt: list index out of range")

// CodecError is returned by every encode and decode failure. No partially decoded tree is ever
// returned alongside it.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string {
	return "nbt: " + e.Op + ": " + e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// SaveError reports a failed save of Tree to Path.
type SaveError struct {
	Path string
	Tree *Tree
	Err  error
}

func (e *SaveError) Error() string {
	name := ""
	if e.Tree != nil {
		name = e.Tree.Name
	}
	return "nbt: could not save tree " + strconv.Quote(name) + " to " + e.Path + ": " + e.Err.Error()
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SchemaViolation describes the first mismatch a Verifier found.
type SchemaViolation struct {
	Path   string
	Reason string
}

func (e *SchemaViolation) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	return "nbt: schema violation at " + path + ": " + e.Reason
}

func (e *SchemaViolation) Is(target error) bool {
	return target == ErrSchemaViolation
}
