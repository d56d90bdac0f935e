package bin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// encoder writes little-endian values and back-patches size prefixes, which
// is why it needs an io.WriteSeeker rather than a plain io.Writer.
type encoder struct {
	w   io.WriteSeeker
	err error
	tmp [8]byte
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) u8(v uint8) {
	e.tmp[0] = v
	e.write(e.tmp[:1])
}

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.tmp[:2], v)
	e.write(e.tmp[:2])
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.tmp[:4], v)
	e.write(e.tmp[:4])
}

func (e *encoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.tmp[:8], v)
	e.write(e.tmp[:8])
}

func (e *encoder) floats(fs []float32) {
	for _, f := range fs {
		e.u32(math.Float32bits(f))
	}
}

func (e *encoder) str(s string) {
	if len(s) > math.MaxUint16 && e.err == nil {
		e.err = fmt.Errorf("string of %d bytes exceeds the 65535 byte limit", len(s))
		return
	}
	e.u16(uint16(len(s)))
	e.write([]byte(s))
}

func (e *encoder) pos() int64 {
	if e.err != nil {
		return 0
	}
	p, err := e.w.Seek(0, io.SeekCurrent)
	if err != nil {
		e.err = err
	}
	return p
}

// beginSize reserves a u32 size slot and returns its offset.
func (e *encoder) beginSize() int64 {
	at := e.pos()
	e.u32(0)
	return at
}

// endSize patches the slot at offset at with the number of bytes written since.
func (e *encoder) endSize(at int64) {
	end := e.pos()
	if e.err != nil {
		return
	}
	size := end - at - 4
	if size > math.MaxUint32 {
		e.err = fmt.Errorf("block of %d bytes exceeds the u32 size limit", size)
		return
	}
	if _, e.err = e.w.Seek(at, io.SeekStart); e.err != nil {
		return
	}
	e.u32(uint32(size))
	if e.err == nil {
		_, e.err = e.w.Seek(end, io.SeekStart)
	}
}

// Write serializes t in binary form.
func (t *Tree) Write(w io.WriteSeeker) error {
	e := &encoder{w: w}

	version := t.Version
	if version == 0 {
		version = DefaultVersion
	}
	if version < 2 && len(t.Dependencies) > 0 {
		return fmt.Errorf("version %d cannot hold %d linked files", version, len(t.Dependencies))
	}

	e.write([]byte(Magic))
	e.u32(version)
	if version >= 2 {
		e.u32(uint32(len(t.Dependencies)))
		for _, dep := range t.Dependencies {
			e.str(dep)
		}
	}

	e.u32(uint32(len(t.Objects)))
	for _, obj := range t.Objects {
		e.u32(obj.ClassHash)
	}
	for _, obj := range t.Objects {
		at := e.beginSize()
		e.u32(obj.PathHash)
		e.fields(obj.Fields)
		e.endSize(at)
	}
	return e.err
}

func (e *encoder) fields(fields []Field) {
	if len(fields) > math.MaxUint16 && e.err == nil {
		e.err = fmt.Errorf("%d fields exceed the 65535 field limit", len(fields))
		return
	}
	e.u16(uint16(len(fields)))
	for _, f := range fields {
		if f.Value == nil {
			if e.err == nil {
				e.err = fmt.Errorf("field 0x%08x has no value", f.NameHash)
			}
			return
		}
		e.u32(f.NameHash)
		e.u8(uint8(f.Value.Kind()))
		e.value(f.Value)
	}
}

func (e *encoder) checkKind(want Kind, v Value) bool {
	if v == nil || v.Kind() != want {
		if e.err == nil {
			e.err = fmt.Errorf("container declares %s elements but holds %v", want, v)
		}
		return false
	}
	return true
}

func (e *encoder) value(v Value) {
	switch v := v.(type) {
	case None:
	case Bool:
		e.u8(boolByte(bool(v)))
	case Flag:
		e.u8(boolByte(bool(v)))
	case I8:
		e.u8(uint8(v))
	case U8:
		e.u8(uint8(v))
	case I16:
		e.u16(uint16(v))
	case U16:
		e.u16(uint16(v))
	case I32:
		e.u32(uint32(v))
	case U32:
		e.u32(uint32(v))
	case I64:
		e.u64(uint64(v))
	case U64:
		e.u64(uint64(v))
	case F32:
		e.u32(math.Float32bits(float32(v)))
	case Vec2:
		e.floats(v[:])
	case Vec3:
		e.floats(v[:])
	case Vec4:
		e.floats(v[:])
	case Mtx44:
		e.floats(v[:])
	case Rgba:
		e.write(v[:])
	case String:
		e.str(string(v))
	case Hash:
		e.u32(uint32(v))
	case Link:
		e.u32(uint32(v))
	case File:
		e.u64(uint64(v))
	case *List:
		e.list(v.Elem, v.Items)
	case *List2:
		e.list(v.Elem, v.Items)
	case *Pointer:
		e.structBody(v.ClassHash, v.Fields)
	case *Embed:
		e.structBody(v.ClassHash, v.Fields)
	case *Option:
		e.u8(uint8(v.Elem))
		if v.Item == nil {
			e.u8(0)
			return
		}
		if !e.checkKind(v.Elem, v.Item) {
			return
		}
		e.u8(1)
		e.value(v.Item)
	case *Map:
		e.u8(uint8(v.Key))
		e.u8(uint8(v.Val))
		at := e.beginSize()
		e.u32(uint32(len(v.Entries)))
		for _, entry := range v.Entries {
			if !e.checkKind(v.Key, entry.Key) || !e.checkKind(v.Val, entry.Value) {
				return
			}
			e.value(entry.Key)
			e.value(entry.Value)
		}
		e.endSize(at)
	default:
		if e.err == nil {
			e.err = fmt.Errorf("cannot encode value of type %T", v)
		}
	}
}

func (e *encoder) list(elem Kind, items []Value) {
	e.u8(uint8(elem))
	at := e.beginSize()
	e.u32(uint32(len(items)))
	for _, item := range items {
		if !e.checkKind(elem, item) {
			return
		}
		e.value(item)
	}
	e.endSize(at)
}

func (e *encoder) structBody(class uint32, fields []Field) {
	e.u32(class)
	if class == 0 {
		return
	}
	at := e.beginSize()
	e.fields(fields)
	e.endSize(at)
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
