// Package bintest provides property trees for tests.
package bintest

import "ritobin-go/internal/bin"

// Sample returns a tree exercising every value kind.
func Sample() *bin.Tree {
	return &bin.Tree{
		Version:      3,
		Dependencies: []string{"DATA/Shared.bin"},
		Objects: []bin.Object{
			{
				PathHash:  0x1a2b3c4d,
				ClassHash: 0x0badf00d,
				Fields: []bin.Field{
					{NameHash: 0x00000001, Value: bin.None{}},
					{NameHash: 0x00000002, Value: bin.Bool(true)},
					{NameHash: 0x00000003, Value: bin.I8(-8)},
					{NameHash: 0x00000004, Value: bin.U8(200)},
					{NameHash: 0x00000005, Value: bin.I16(-1600)},
					{NameHash: 0x00000006, Value: bin.U16(60000)},
					{NameHash: 0x00000007, Value: bin.I32(-320000)},
					{NameHash: 0x00000008, Value: bin.U32(4000000000)},
					{NameHash: 0x00000009, Value: bin.I64(-64)},
					{NameHash: 0x0000000a, Value: bin.U64(1 << 60)},
					{NameHash: 0x0000000b, Value: bin.F32(0.1)},
					{NameHash: 0x0000000c, Value: bin.Vec2{1, -2.5}},
					{NameHash: 0x0000000d, Value: bin.Vec3{0, 1e-7, 3}},
					{NameHash: 0x0000000e, Value: bin.Vec4{1, 2, 3, 4}},
					{NameHash: 0x0000000f, Value: bin.Mtx44{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
					{NameHash: 0x00000010, Value: bin.Rgba{255, 128, 0, 7}},
					{NameHash: 0x00000011, Value: bin.String("line \"one\"\n\ttab \\ end")},
					{NameHash: 0x00000012, Value: bin.Hash(0xdeadbeef)},
					{NameHash: 0x00000013, Value: bin.File(0x0123456789abcdef)},
					{NameHash: 0x00000014, Value: &bin.List{Elem: bin.KindU32, Items: []bin.Value{bin.U32(1), bin.U32(2), bin.U32(3)}}},
					{NameHash: 0x00000015, Value: &bin.List2{Elem: bin.KindString, Items: []bin.Value{bin.String("a")}}},
					{NameHash: 0x00000016, Value: &bin.List{Elem: bin.KindEmbed}},
					{NameHash: 0x00000017, Value: &bin.Pointer{
						ClassHash: 0xcafe0001,
						Fields:    []bin.Field{{NameHash: 0x00000100, Value: bin.Link(0x1a2b3c4d)}},
					}},
					{NameHash: 0x00000018, Value: &bin.Pointer{}},
					{NameHash: 0x00000019, Value: &bin.Embed{
						ClassHash: 0xcafe0002,
						Fields: []bin.Field{{NameHash: 0x00000101, Value: &bin.List{
							Elem: bin.KindEmbed,
							Items: []bin.Value{&bin.Embed{
								ClassHash: 0xcafe0003,
								Fields:    []bin.Field{{NameHash: 0x00000102, Value: bin.F32(-0.5)}},
							}},
						}}},
					}},
					{NameHash: 0x0000001a, Value: &bin.Option{Elem: bin.KindString, Item: bin.String("set")}},
					{NameHash: 0x0000001b, Value: &bin.Option{Elem: bin.KindU8}},
					{NameHash: 0x0000001c, Value: &bin.Map{
						Key: bin.KindHash,
						Val: bin.KindString,
						Entries: []bin.MapEntry{
							{Key: bin.Hash(0x00000002), Value: bin.String("two")},
							{Key: bin.Hash(0x00000001), Value: bin.String("one")},
						},
					}},
					{NameHash: 0x0000001d, Value: bin.Flag(false)},
				},
			},
			{
				PathHash:  0x00000042,
				ClassHash: 0x0badf00d,
			},
		},
	}
}

// Small returns a single-object tree with one field.
func Small(value uint32) *bin.Tree {
	return &bin.Tree{
		Version: 3,
		Objects: []bin.Object{{
			PathHash:  0x00000010,
			ClassHash: 0x00000020,
			Fields:    []bin.Field{{NameHash: 0x00000030, Value: bin.U32(value)}},
		}},
	}
}
