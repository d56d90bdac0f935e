// Package ritobin renders property trees as text and parses them back.
//
// The text form starts with a "#PROP_text" header followed by top-level
// sections:
//
//	#PROP_text
//	type: string = "PROP"
//	version: u32 = 3
//	linked: list[string] = {
//	    "DATA/Shared.bin"
//	}
//	entries: map[hash,embed] = {
//	    "Characters/Foo" = SkinCharacterDataProperties {
//	        mName: string = "Foo"
//	    }
//	}
//
// Names are written only when they hash back to the stored value, so text
// produced with any resolver parses to the same tree.
package ritobin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ritobin-go/internal/bin"
	"ritobin-go/internal/hashes"
)

// Header is the first line of every text property file.
const Header = "#PROP_text"

// WriterConfig controls text layout.
type WriterConfig struct {
	IndentSize int
}

// DefaultWriterConfig returns the standard four space layout.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{IndentSize: 4}
}

type writer struct {
	sb       strings.Builder
	resolver hashes.Resolver
	indent   string
	depth    int
	err      error
}

// Write renders t as text using the default layout.
func Write(t *bin.Tree, resolver hashes.Resolver) (string, error) {
	return WriteWithConfig(t, DefaultWriterConfig(), resolver)
}

// WriteWithConfig renders t as text.
func WriteWithConfig(t *bin.Tree, cfg WriterConfig, resolver hashes.Resolver) (string, error) {
	if resolver == nil {
		resolver = hashes.Hex{}
	}
	if cfg.IndentSize <= 0 {
		cfg.IndentSize = 4
	}
	w := &writer{resolver: resolver, indent: strings.Repeat(" ", cfg.IndentSize)}

	version := t.Version
	if version == 0 {
		version = bin.DefaultVersion
	}

	w.sb.WriteString(Header + "\n")
	w.sb.WriteString("type: string = \"PROP\"\n")
	fmt.Fprintf(&w.sb, "version: u32 = %d\n", version)

	if len(t.Dependencies) > 0 {
		w.sb.WriteString("linked: list[string] = {\n")
		w.depth++
		for _, dep := range t.Dependencies {
			w.line()
			w.sb.WriteString(strconv.Quote(dep))
			w.sb.WriteByte('\n')
		}
		w.depth--
		w.sb.WriteString("}\n")
	}

	w.sb.WriteString("entries: map[hash,embed] = {")
	if len(t.Objects) > 0 {
		w.sb.WriteByte('\n')
		w.depth++
		for _, obj := range t.Objects {
			w.line()
			w.sb.WriteString(w.quotedName(obj.PathHash))
			w.sb.WriteString(" = ")
			w.structBody(obj.ClassHash, obj.Fields)
			w.sb.WriteByte('\n')
		}
		w.depth--
	}
	w.sb.WriteString("}\n")

	if w.err != nil {
		return "", w.err
	}
	return w.sb.String(), nil
}

func (w *writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf(format, args...)
	}
}

func (w *writer) line() {
	for i := 0; i < w.depth; i++ {
		w.sb.WriteString(w.indent)
	}
}

// identName returns a bare identifier for h, or its hex form.
func (w *writer) identName(h uint32) string {
	if name, ok := w.resolver.Resolve(h); ok && isIdent(name) && hashes.Name(name) == h {
		return name
	}
	return hashes.FormatHex(h)
}

// quotedName returns a quoted name for h, or its hex form.
func (w *writer) quotedName(h uint32) string {
	if name, ok := w.resolver.Resolve(h); ok && hashes.Name(name) == h {
		return strconv.Quote(name)
	}
	return hashes.FormatHex(h)
}

func typeName(v bin.Value) string {
	switch v := v.(type) {
	case *bin.List:
		return fmt.Sprintf("list[%s]", v.Elem)
	case *bin.List2:
		return fmt.Sprintf("list2[%s]", v.Elem)
	case *bin.Option:
		return fmt.Sprintf("option[%s]", v.Elem)
	case *bin.Map:
		return fmt.Sprintf("map[%s,%s]", v.Key, v.Val)
	}
	return v.Kind().String()
}

func (w *writer) fields(fields []bin.Field) {
	for _, f := range fields {
		if f.Value == nil {
			w.fail("field %s has no value", hashes.FormatHex(f.NameHash))
			return
		}
		w.line()
		fmt.Fprintf(&w.sb, "%s: %s = ", w.identName(f.NameHash), typeName(f.Value))
		w.value(f.Value)
		w.sb.WriteByte('\n')
	}
}

func (w *writer) structBody(class uint32, fields []bin.Field) {
	if class == 0 {
		w.sb.WriteString("null")
		return
	}
	w.sb.WriteString(w.identName(class))
	if len(fields) == 0 {
		w.sb.WriteString(" {}")
		return
	}
	w.sb.WriteString(" {\n")
	w.depth++
	w.fields(fields)
	w.depth--
	w.line()
	w.sb.WriteByte('}')
}

func (w *writer) items(items []bin.Value) {
	if len(items) == 0 {
		w.sb.WriteString("{}")
		return
	}
	w.sb.WriteString("{\n")
	w.depth++
	for _, item := range items {
		w.line()
		w.value(item)
		w.sb.WriteByte('\n')
	}
	w.depth--
	w.line()
	w.sb.WriteByte('}')
}

func (w *writer) value(v bin.Value) {
	switch v := v.(type) {
	case nil:
		w.fail("missing value")
	case bin.None:
		w.sb.WriteString("null")
	case bin.Bool:
		w.sb.WriteString(strconv.FormatBool(bool(v)))
	case bin.Flag:
		w.sb.WriteString(strconv.FormatBool(bool(v)))
	case bin.I8:
		w.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case bin.U8:
		w.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case bin.I16:
		w.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case bin.U16:
		w.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case bin.I32:
		w.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case bin.U32:
		w.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case bin.I64:
		w.sb.WriteString(strconv.FormatInt(int64(v), 10))
	case bin.U64:
		w.sb.WriteString(strconv.FormatUint(uint64(v), 10))
	case bin.F32:
		w.sb.WriteString(formatFloat(float32(v)))
	case bin.Vec2:
		w.floats(v[:])
	case bin.Vec3:
		w.floats(v[:])
	case bin.Vec4:
		w.floats(v[:])
	case bin.Mtx44:
		w.sb.WriteString("{\n")
		w.depth++
		for row := 0; row < 4; row++ {
			w.line()
			for col := 0; col < 4; col++ {
				if col > 0 {
					w.sb.WriteString(", ")
				}
				w.sb.WriteString(formatFloat(v[row*4+col]))
			}
			w.sb.WriteByte('\n')
		}
		w.depth--
		w.line()
		w.sb.WriteByte('}')
	case bin.Rgba:
		fmt.Fprintf(&w.sb, "{ %d, %d, %d, %d }", v[0], v[1], v[2], v[3])
	case bin.String:
		w.sb.WriteString(strconv.Quote(string(v)))
	case bin.Hash:
		w.sb.WriteString(w.quotedName(uint32(v)))
	case bin.Link:
		w.sb.WriteString(w.quotedName(uint32(v)))
	case bin.File:
		fmt.Fprintf(&w.sb, "0x%016x", uint64(v))
	case *bin.List:
		w.items(v.Items)
	case *bin.List2:
		w.items(v.Items)
	case *bin.Option:
		if v.Item == nil {
			w.sb.WriteString("{}")
			return
		}
		w.items([]bin.Value{v.Item})
	case *bin.Map:
		if len(v.Entries) == 0 {
			w.sb.WriteString("{}")
			return
		}
		w.sb.WriteString("{\n")
		w.depth++
		for _, e := range v.Entries {
			w.line()
			w.value(e.Key)
			w.sb.WriteString(" = ")
			w.value(e.Value)
			w.sb.WriteByte('\n')
		}
		w.depth--
		w.line()
		w.sb.WriteByte('}')
	case *bin.Pointer:
		w.structBody(v.ClassHash, v.Fields)
	case *bin.Embed:
		w.structBody(v.ClassHash, v.Fields)
	default:
		w.fail("cannot render value of type %T", v)
	}
}

func (w *writer) floats(fs []float32) {
	w.sb.WriteString("{ ")
	for i, f := range fs {
		if i > 0 {
			w.sb.WriteString(", ")
		}
		w.sb.WriteString(formatFloat(f))
	}
	w.sb.WriteString(" }")
}

// canonicalNaN is the quiet NaN written as "nan"; other NaNs keep their bits.
const canonicalNaN = 0x7fc00000

func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		if bits := math.Float32bits(f); bits != canonicalNaN {
			return fmt.Sprintf("0x%08x", bits)
		}
		return "nan"
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	// keywords would parse as literals
	switch s {
	case "null", "true", "false", "nan", "inf":
		return false
	}
	return true
}
