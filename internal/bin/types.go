// Package bin holds the in-memory property tree and its binary encoding.
package bin

import "fmt"

// Kind identifies the type of a property value. The numeric values are the
// type ids used on the wire.
type Kind uint8

const (
	KindNone    Kind = 0
	KindBool    Kind = 1
	KindI8      Kind = 2
	KindU8      Kind = 3
	KindI16     Kind = 4
	KindU16     Kind = 5
	KindI32     Kind = 6
	KindU32     Kind = 7
	KindI64     Kind = 8
	KindU64     Kind = 9
	KindF32     Kind = 10
	KindVec2    Kind = 11
	KindVec3    Kind = 12
	KindVec4    Kind = 13
	KindMtx44   Kind = 14
	KindRgba    Kind = 15
	KindString  Kind = 16
	KindHash    Kind = 17
	KindFile    Kind = 18
	KindList    Kind = 0x80
	KindList2   Kind = 0x81
	KindPointer Kind = 0x82
	KindEmbed   Kind = 0x83
	KindLink    Kind = 0x84
	KindOption  Kind = 0x85
	KindMap     Kind = 0x86
	KindFlag    Kind = 0x87
)

var kindNames = map[Kind]string{
	KindNone:    "none",
	KindBool:    "bool",
	KindI8:      "i8",
	KindU8:      "u8",
	KindI16:     "i16",
	KindU16:     "u16",
	KindI32:     "i32",
	KindU32:     "u32",
	KindI64:     "i64",
	KindU64:     "u64",
	KindF32:     "f32",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindMtx44:   "mtx44",
	KindRgba:    "rgba",
	KindString:  "string",
	KindHash:    "hash",
	KindFile:    "file",
	KindList:    "list",
	KindList2:   "list2",
	KindPointer: "pointer",
	KindEmbed:   "embed",
	KindLink:    "link",
	KindOption:  "option",
	KindMap:     "map",
	KindFlag:    "flag",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(0x%02x)", uint8(k))
}

// Valid reports whether k is a known type id.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsContainer reports whether values of kind k hold other values with a
// declared element kind.
func (k Kind) IsContainer() bool {
	switch k {
	case KindList, KindList2, KindOption, KindMap:
		return true
	}
	return false
}

// KindByName returns the kind for a type name as written in text form.
func KindByName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Value is a single property value. The concrete type determines the kind.
type Value interface {
	Kind() Kind
}

type (
	None   struct{}
	Bool   bool
	I8     int8
	U8     uint8
	I16    int16
	U16    uint16
	I32    int32
	U32    uint32
	I64    int64
	U64    uint64
	F32    float32
	Vec2   [2]float32
	Vec3   [3]float32
	Vec4   [4]float32
	Mtx44  [16]float32
	Rgba   [4]uint8
	String string
	Hash   uint32
	File   uint64
	Link   uint32
	Flag   bool
)

func (None) Kind() Kind   { return KindNone }
func (Bool) Kind() Kind   { return KindBool }
func (I8) Kind() Kind     { return KindI8 }
func (U8) Kind() Kind     { return KindU8 }
func (I16) Kind() Kind    { return KindI16 }
func (U16) Kind() Kind    { return KindU16 }
func (I32) Kind() Kind    { return KindI32 }
func (U32) Kind() Kind    { return KindU32 }
func (I64) Kind() Kind    { return KindI64 }
func (U64) Kind() Kind    { return KindU64 }
func (F32) Kind() Kind    { return KindF32 }
func (Vec2) Kind() Kind   { return KindVec2 }
func (Vec3) Kind() Kind   { return KindVec3 }
func (Vec4) Kind() Kind   { return KindVec4 }
func (Mtx44) Kind() Kind  { return KindMtx44 }
func (Rgba) Kind() Kind   { return KindRgba }
func (String) Kind() Kind { return KindString }
func (Hash) Kind() Kind   { return KindHash }
func (File) Kind() Kind   { return KindFile }
func (Link) Kind() Kind   { return KindLink }
func (Flag) Kind() Kind   { return KindFlag }

// List is a homogeneous sequence of values.
type List struct {
	Elem  Kind
	Items []Value
}

func (*List) Kind() Kind { return KindList }

// List2 has the same layout as List under a different type id.
type List2 struct {
	Elem  Kind
	Items []Value
}

func (*List2) Kind() Kind { return KindList2 }

// Option holds zero or one value. Item is nil when empty.
type Option struct {
	Elem Kind
	Item Value
}

func (*Option) Kind() Kind { return KindOption }

// MapEntry is one key/value pair of a Map, kept in file order.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is an ordered association of keys to values.
type Map struct {
	Key     Kind
	Val     Kind
	Entries []MapEntry
}

func (*Map) Kind() Kind { return KindMap }

// Pointer is a nullable struct. A zero ClassHash is the null pointer.
type Pointer struct {
	ClassHash uint32
	Fields    []Field
}

func (*Pointer) Kind() Kind { return KindPointer }

// Embed is an inline struct.
type Embed struct {
	ClassHash uint32
	Fields    []Field
}

func (*Embed) Kind() Kind { return KindEmbed }

// Field is a named property of an object or struct.
type Field struct {
	NameHash uint32
	Value    Value
}

// Object is a top-level entry of a property tree.
type Object struct {
	PathHash  uint32
	ClassHash uint32
	Fields    []Field
}

// Tree is a parsed property file. Objects keep file order.
type Tree struct {
	Version      uint32
	Dependencies []string
	Objects      []Object
}

// DefaultVersion is the version written for trees built from text without an
// explicit version.
const DefaultVersion = 3
