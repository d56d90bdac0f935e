package bin

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Magic is the four byte signature of a property file.
const Magic = "PROP"

// ParseError reports malformed binary input.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed property file at offset %d: %s", e.Offset, e.Msg)
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) errorf(format string, args ...any) error {
	return &ParseError{Offset: d.off, Msg: fmt.Sprintf(format, args...)}
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.off < n {
		return nil, d.errorf("unexpected end of data (need %d bytes)", n)
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) u64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *decoder) f32() (float32, error) {
	v, err := d.u32()
	return math.Float32frombits(v), err
}

func (d *decoder) floats(dst []float32) error {
	for i := range dst {
		f, err := d.f32()
		if err != nil {
			return err
		}
		dst[i] = f
	}
	return nil
}

func (d *decoder) str() (string, error) {
	n, err := d.u16()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *decoder) kind() (Kind, error) {
	b, err := d.u8()
	if err != nil {
		return 0, err
	}
	k := Kind(b)
	if !k.Valid() {
		d.off--
		return 0, d.errorf("unknown value type 0x%02x", b)
	}
	return k, nil
}

// Read parses a binary property file.
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read property data: %w", err)
	}
	return Parse(data)
}

// Parse decodes a binary property file held in memory.
func Parse(data []byte) (*Tree, error) {
	d := &decoder{buf: data}

	magic, err := d.take(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, &ParseError{Offset: 0, Msg: fmt.Sprintf("invalid magic %q", magic)}
	}

	tree := &Tree{}
	if tree.Version, err = d.u32(); err != nil {
		return nil, err
	}
	if tree.Version < 1 || tree.Version > 3 {
		return nil, &ParseError{Offset: 4, Msg: fmt.Sprintf("unsupported version %d", tree.Version)}
	}

	if tree.Version >= 2 {
		count, err := d.u32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < count; i++ {
			dep, err := d.str()
			if err != nil {
				return nil, err
			}
			tree.Dependencies = append(tree.Dependencies, dep)
		}
	}

	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	classes := make([]uint32, 0, min(int(count), len(data)/4))
	for i := uint32(0); i < count; i++ {
		h, err := d.u32()
		if err != nil {
			return nil, err
		}
		classes = append(classes, h)
	}

	for _, class := range classes {
		obj, err := d.object(class)
		if err != nil {
			return nil, err
		}
		tree.Objects = append(tree.Objects, obj)
	}

	if d.off != len(d.buf) {
		return nil, d.errorf("%d trailing bytes", len(d.buf)-d.off)
	}
	return tree, nil
}

func (d *decoder) object(class uint32) (Object, error) {
	if class == 0 {
		return Object{}, d.errorf("object has a null class")
	}
	size, err := d.u32()
	if err != nil {
		return Object{}, err
	}
	start := d.off

	obj := Object{ClassHash: class}
	if obj.PathHash, err = d.u32(); err != nil {
		return Object{}, err
	}
	if obj.Fields, err = d.fields(); err != nil {
		return Object{}, err
	}
	if err := d.checkSize(start, size); err != nil {
		return Object{}, err
	}
	return obj, nil
}

func (d *decoder) checkSize(start int, size uint32) error {
	if got := d.off - start; got != int(size) {
		return d.errorf("declared size %d does not match %d bytes read", size, got)
	}
	return nil
}

func (d *decoder) fields() ([]Field, error) {
	count, err := d.u16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	fields := make([]Field, 0, count)
	for i := uint16(0); i < count; i++ {
		name, err := d.u32()
		if err != nil {
			return nil, err
		}
		k, err := d.kind()
		if err != nil {
			return nil, err
		}
		v, err := d.value(k)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{NameHash: name, Value: v})
	}
	return fields, nil
}

func (d *decoder) value(k Kind) (Value, error) {
	switch k {
	case KindNone:
		return None{}, nil
	case KindBool, KindFlag:
		b, err := d.u8()
		if err != nil {
			return nil, err
		}
		if b > 1 {
			return nil, d.errorf("invalid %s byte 0x%02x", k, b)
		}
		if k == KindFlag {
			return Flag(b == 1), nil
		}
		return Bool(b == 1), nil
	case KindI8:
		b, err := d.u8()
		return I8(int8(b)), err
	case KindU8:
		b, err := d.u8()
		return U8(b), err
	case KindI16:
		v, err := d.u16()
		return I16(int16(v)), err
	case KindU16:
		v, err := d.u16()
		return U16(v), err
	case KindI32:
		v, err := d.u32()
		return I32(int32(v)), err
	case KindU32:
		v, err := d.u32()
		return U32(v), err
	case KindI64:
		v, err := d.u64()
		return I64(int64(v)), err
	case KindU64:
		v, err := d.u64()
		return U64(v), err
	case KindF32:
		v, err := d.f32()
		return F32(v), err
	case KindVec2:
		var v Vec2
		err := d.floats(v[:])
		return v, err
	case KindVec3:
		var v Vec3
		err := d.floats(v[:])
		return v, err
	case KindVec4:
		var v Vec4
		err := d.floats(v[:])
		return v, err
	case KindMtx44:
		var v Mtx44
		err := d.floats(v[:])
		return v, err
	case KindRgba:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return Rgba{b[0], b[1], b[2], b[3]}, nil
	case KindString:
		s, err := d.str()
		return String(s), err
	case KindHash:
		v, err := d.u32()
		return Hash(v), err
	case KindLink:
		v, err := d.u32()
		return Link(v), err
	case KindFile:
		v, err := d.u64()
		return File(v), err
	case KindList, KindList2:
		elem, items, err := d.list()
		if err != nil {
			return nil, err
		}
		if k == KindList2 {
			return &List2{Elem: elem, Items: items}, nil
		}
		return &List{Elem: elem, Items: items}, nil
	case KindPointer, KindEmbed:
		class, fields, err := d.structBody()
		if err != nil {
			return nil, err
		}
		if k == KindPointer {
			return &Pointer{ClassHash: class, Fields: fields}, nil
		}
		return &Embed{ClassHash: class, Fields: fields}, nil
	case KindOption:
		return d.option()
	case KindMap:
		return d.mapValue()
	}
	return nil, d.errorf("unhandled value type %s", k)
}

func (d *decoder) elemKind() (Kind, error) {
	k, err := d.kind()
	if err != nil {
		return 0, err
	}
	if k.IsContainer() {
		return 0, d.errorf("nested container type %s is not allowed", k)
	}
	return k, nil
}

func (d *decoder) list() (Kind, []Value, error) {
	elem, err := d.elemKind()
	if err != nil {
		return 0, nil, err
	}
	size, err := d.u32()
	if err != nil {
		return 0, nil, err
	}
	start := d.off
	count, err := d.u32()
	if err != nil {
		return 0, nil, err
	}
	var items []Value
	if count > 0 {
		items = make([]Value, 0, min(int(count), len(d.buf)-d.off))
	}
	for i := uint32(0); i < count; i++ {
		v, err := d.value(elem)
		if err != nil {
			return 0, nil, err
		}
		items = append(items, v)
	}
	return elem, items, d.checkSize(start, size)
}

func (d *decoder) structBody() (uint32, []Field, error) {
	class, err := d.u32()
	if err != nil {
		return 0, nil, err
	}
	if class == 0 {
		return 0, nil, nil
	}
	size, err := d.u32()
	if err != nil {
		return 0, nil, err
	}
	start := d.off
	fields, err := d.fields()
	if err != nil {
		return 0, nil, err
	}
	return class, fields, d.checkSize(start, size)
}

func (d *decoder) option() (Value, error) {
	elem, err := d.elemKind()
	if err != nil {
		return nil, err
	}
	count, err := d.u8()
	if err != nil {
		return nil, err
	}
	opt := &Option{Elem: elem}
	switch count {
	case 0:
	case 1:
		if opt.Item, err = d.value(elem); err != nil {
			return nil, err
		}
	default:
		return nil, d.errorf("option holds %d values", count)
	}
	return opt, nil
}

func (d *decoder) mapValue() (Value, error) {
	key, err := d.elemKind()
	if err != nil {
		return nil, err
	}
	if key == KindPointer || key == KindEmbed {
		return nil, d.errorf("map keys cannot be %s", key)
	}
	val, err := d.elemKind()
	if err != nil {
		return nil, err
	}
	size, err := d.u32()
	if err != nil {
		return nil, err
	}
	start := d.off
	count, err := d.u32()
	if err != nil {
		return nil, err
	}
	m := &Map{Key: key, Val: val}
	for i := uint32(0); i < count; i++ {
		k, err := d.value(key)
		if err != nil {
			return nil, err
		}
		v, err := d.value(val)
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, MapEntry{Key: k, Value: v})
	}
	return m, d.checkSize(start, size)
}
