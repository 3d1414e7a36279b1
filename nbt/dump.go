package nbt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// maxDumpElems limits how many array elements Dump prints before eliding the rest.
const maxDumpElems = 16

// Dump writes an indented, human readable rendering of tag to w.
func Dump(w io.Writer, name string, tag Tag) error {
	bw := bufio.NewWriter(w)
	dump(bw, name, tag, 0)
	return bw.Flush()
}

// Sprint renders tag the way Dump does.
func Sprint(name string, tag Tag) string {
	var sb strings.Builder
	Dump(&sb, name, tag)
	return sb.String()
}

func dump(w *bufio.Writer, name string, tag Tag, depth int) {
	indent := strings.Repeat("  ", depth)
	label := tag.Type().String()
	if name != "" {
		label += "(" + fmt.Sprintf("%q", name) + ")"
	}

	switch v := tag.(type) {
	case *Compound:
		fmt.Fprintf(w, "%s%s: %d entries\n%s{\n", indent, label, v.Len(), indent)
		v.Each(func(n string, t Tag) bool {
			dump(w, n, t, depth+1)
			return true
		})
		fmt.Fprintf(w, "%s}\n", indent)
	case *List:
		fmt.Fprintf(w, "%s%s: %d entries of %s\n%s{\n", indent, label, v.Len(), v.ElemType(), indent)
		for _, item := range v.Items() {
			dump(w, "", item, depth+1)
		}
		fmt.Fprintf(w, "%s}\n", indent)
	case ByteArray:
		fmt.Fprintf(w, "%s%s: [%d bytes] %s\n", indent, label, len(v), elide(v))
	case ShortArray:
		fmt.Fprintf(w, "%s%s: [%d shorts] %s\n", indent, label, len(v), elide(v))
	case IntArray:
		fmt.Fprintf(w, "%s%s: [%d ints] %s\n", indent, label, len(v), elide(v))
	case LongArray:
		fmt.Fprintf(w, "%s%s: [%d longs] %s\n", indent, label, len(v), elide(v))
	case String:
		fmt.Fprintf(w, "%s%s: %q\n", indent, label, string(v))
	default:
		fmt.Fprintf(w, "%s%s: %v\n", indent, label, v)
	}
}

func elide[T any](v []T) string {
	if len(v) <= maxDumpElems {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(fmt.Sprint(v[:maxDumpElems]), "]") + " ...]"
}
