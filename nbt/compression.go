package nbt

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// Compression selects the stream framing wrapped around the raw tag bytes.
type Compression byte

const (
	None Compression = iota
	GZip
	ZLib
	Deflate
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case GZip:
		return "gzip"
	case ZLib:
		return "zlib"
	case Deflate:
		return "deflate"
	}
	return fmt.Sprintf("compression(%d)", byte(c))
}

// ParseCompression accepts the names produced by String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "gzip":
		return GZip, nil
	case "zlib":
		return ZLib, nil
	case "deflate":
		return Deflate, nil
	}
	return None, fmt.Errorf("%w: %q", ErrInvalidCompression, s)
}

func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Compression) UnmarshalText(text []byte) (err error) {
	*c, err = ParseCompression(string(text))
	return
}

// NewReader strips framing c from r. The caller must Close the result.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case GZip:
		return gzip.NewReader(r)
	case ZLib:
		return zlib.NewReader(r)
	case Deflate:
		return flate.NewReader(r), nil
	}
	return nil, ErrInvalidCompression
}

// NewWriter wraps w in framing c. Closing the result flushes the framing but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case GZip:
		return gzip.NewWriter(w), nil
	case ZLib:
		return zlib.NewWriter(w), nil
	case Deflate:
		return flate.NewWriter(w, flate.DefaultCompression)
	}
	return nil, ErrInvalidCompression
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
