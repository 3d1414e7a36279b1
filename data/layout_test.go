package data

import (
	"errors"
	"fmt"
	"testing"
)

func TestCoordinateBijection(t *testing.T) {
	for _, dims := range [][3]int{{16, 16, 16}, {16, 128, 16}} {
		xdim, ydim, zdim := dims[0], dims[1], dims[2]
		layouts := map[string]Array3{
			"XZY": NewXZYNibbleArray(xdim, ydim, zdim),
			"YZX": NewYZXByteArray(xdim, ydim, zdim),
		}
		for name, a := range layouts {
			t.Run(fmt.Sprintf("%s/%dx%dx%d", name, xdim, ydim, zdim), func(t *testing.T) {
				seen := make([]bool, a.Len())
				for x := 0; x < xdim; x++ {
					for y := 0; y < ydim; y++ {
						for z := 0; z < zdim; z++ {
							i := a.Index(x, y, z)
							if seen[i] {
								t.Fatalf("index %d produced twice", i)
							}
							seen[i] = true
							if gx, gy, gz := a.Coords(i); gx != x || gy != y || gz != z {
								t.Fatalf("Coords(Index(%d, %d, %d)) = (%d, %d, %d)", x, y, z, gx, gy, gz)
							}
						}
					}
				}
			})
		}
	}
}

func TestLayoutFormulas(t *testing.T) {
	xzy := NewXZYByteArray(16, 128, 16)
	if got, want := xzy.Index(3, 70, 5), 128*(3*16+5)+70; got != want {
		t.Errorf("XZY index = %d, want %d", got, want)
	}
	yzx := NewYZXByteArray(16, 16, 16)
	if got, want := yzx.Index(3, 7, 5), 16*(7*16+5)+3; got != want {
		t.Errorf("YZX index = %d, want %d", got, want)
	}
	zx, err := WrapZXIntArray(make([]int32, 256), 16, 16)
	if err != nil {
		t.Fatal(err)
	}
	zx.Set(4, 9, 64)
	if zx.Storage().Data()[9*16+4] != 64 {
		t.Error("ZX wrote to the wrong slot")
	}
}

func TestWrapAliasesStorage(t *testing.T) {
	raw := make([]byte, 8)
	a, err := WrapYZXByteArray(raw, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	a.Set(1, 1, 1, 42)
	if raw[7] != 42 {
		t.Errorf("raw = %v, write did not land in the wrapped slice", raw)
	}
	c := a.Clone()
	c.Set(1, 1, 1, 1)
	if raw[7] != 42 {
		t.Error("Clone shares the wrapped slice")
	}
}

func TestWrapDimensionMismatch(t *testing.T) {
	if _, err := WrapXZYByteArray(make([]byte, 100), 16, 128, 16); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}
	if _, err := WrapYZXNibbleArray(make([]byte, 2048), 16, 16, 16); err != nil {
		t.Errorf("2048 bytes hold 4096 nibbles: %v", err)
	}
}
