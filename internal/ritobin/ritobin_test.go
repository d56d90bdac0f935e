package ritobin

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ritobin-go/internal/bin"
	"ritobin-go/internal/bin/bintest"
	"ritobin-go/internal/hashes"
)

// namedTable returns a table that knows every given name under its own hash.
func namedTable(names ...string) *hashes.Table {
	table := hashes.NewTable()
	for _, name := range names {
		table.Add(hashes.Name(name), name)
	}
	return table
}

func TestRoundTrip_HexResolver(t *testing.T) {
	tree := bintest.Sample()
	want, err := bin.Marshal(tree)
	require.NoError(t, err)

	text, err := Write(tree, hashes.Hex{})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(text, Header+"\n"))

	parsed, err := Parse(text)
	require.NoError(t, err)

	got, err := bin.Marshal(parsed)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got), "text round trip should reproduce the binary encoding")
}

func TestRoundTrip_NamedResolver(t *testing.T) {
	tree := &bin.Tree{
		Version: 3,
		Objects: []bin.Object{{
			PathHash:  hashes.Name("Characters/Annie/Skins/Skin0"),
			ClassHash: hashes.Name("SkinCharacterDataProperties"),
			Fields: []bin.Field{
				{NameHash: hashes.Name("championSkinName"), Value: bin.String("Annie")},
				{NameHash: hashes.Name("iconCircle"), Value: bin.Hash(hashes.Name("Icons/Annie"))},
				{NameHash: hashes.Name("mResourceResolver"), Value: bin.Link(hashes.Name("Characters/Annie/Skins/Skin0"))},
				{NameHash: 0x12345678, Value: bin.U8(1)},
			},
		}},
	}
	resolver := namedTable(
		"Characters/Annie/Skins/Skin0",
		"SkinCharacterDataProperties",
		"championSkinName",
		"iconCircle",
		"Icons/Annie",
		"mResourceResolver",
	)

	text, err := Write(tree, resolver)
	require.NoError(t, err)
	require.Contains(t, text, `"Characters/Annie/Skins/Skin0" = SkinCharacterDataProperties {`)
	require.Contains(t, text, `championSkinName: string = "Annie"`)
	require.Contains(t, text, `iconCircle: hash = "Icons/Annie"`)
	require.Contains(t, text, `mResourceResolver: link = "Characters/Annie/Skins/Skin0"`)
	require.Contains(t, text, `0x12345678: u8 = 1`)

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, tree, parsed)
}

func TestRoundTrip_FloatBits(t *testing.T) {
	bits := []uint32{
		0x7fc00000, // nan
		0x7fc00001,
		0xffc00000,
		0x7f800001,
		0x7f800000, // inf
		0xff800000, // -inf
		0x80000000, // -0
		0x00000001, // smallest denormal
	}
	fields := make([]bin.Field, 0, len(bits)+1)
	for i, b := range bits {
		fields = append(fields, bin.Field{NameHash: uint32(i + 1), Value: bin.F32(math.Float32frombits(b))})
	}
	fields = append(fields, bin.Field{NameHash: 0x100, Value: bin.Vec2{
		math.Float32frombits(0x7fc0beef), math.Float32frombits(0x7fc00000),
	}})
	tree := &bin.Tree{Version: 3, Objects: []bin.Object{{PathHash: 0x10, ClassHash: 0x20, Fields: fields}}}

	want, err := bin.Marshal(tree)
	require.NoError(t, err)
	parsed, err := bin.Parse(want)
	require.NoError(t, err)

	text, err := Write(parsed, hashes.Hex{})
	require.NoError(t, err)
	require.Contains(t, text, "0x00000001: f32 = nan\n")
	require.Contains(t, text, "0x00000002: f32 = 0x7fc00001\n")
	require.Contains(t, text, "{ 0x7fc0beef, nan }")

	back, err := Parse(text)
	require.NoError(t, err)
	got, err := bin.Marshal(back)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got), "float bits should survive the text round trip")
}

func TestWrite_IgnoresNamesThatDoNotHashBack(t *testing.T) {
	table := hashes.NewTable()
	table.Add(0x00000030, "notTheRightName")

	text, err := Write(bintest.Small(9), table)
	require.NoError(t, err)
	require.Contains(t, text, "0x00000030: u32 = 9")
	require.NotContains(t, text, "notTheRightName")
}

func TestWrite_Layout(t *testing.T) {
	text, err := Write(bintest.Small(9), hashes.Hex{})
	require.NoError(t, err)

	want := `#PROP_text
type: string = "PROP"
version: u32 = 3
entries: map[hash,embed] = {
    0x00000010 = 0x00000020 {
        0x00000030: u32 = 9
    }
}
`
	require.Equal(t, want, text)
}

func TestParse_HandWritten(t *testing.T) {
	src := `#PROP_text
# comments are ignored
type: string = "PROP"
version: u32 = 2
linked: list[string] = { "a.bin", "b.bin" }
entries: map[hash,embed] = {
    "Items/Sword" = ItemData {
        damage: f32 = 12.5
        color: rgba = { 1, 2, 3, 4 }
        pos: vec3 = { 0, 0.5, -1 }
        tags: list[hash] = { "Sharp", 0x00000001 }
        texture: file = "ASSETS/Sword.dds"
        extra: option[u16] = {}
        parent: pointer = null
        lookup: map[u8,string] = { 1 = "one", 2 = "two" }
    }
}
`
	tree, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, uint32(2), tree.Version)
	require.Equal(t, []string{"a.bin", "b.bin"}, tree.Dependencies)
	require.Len(t, tree.Objects, 1)

	obj := tree.Objects[0]
	require.Equal(t, hashes.Name("items/sword"), obj.PathHash)
	require.Equal(t, hashes.Name("ItemData"), obj.ClassHash)
	require.Len(t, obj.Fields, 8)
	require.Equal(t, bin.F32(12.5), obj.Fields[0].Value)
	require.Equal(t, bin.Rgba{1, 2, 3, 4}, obj.Fields[1].Value)
	require.Equal(t, bin.Vec3{0, 0.5, -1}, obj.Fields[2].Value)
	require.Equal(t, &bin.List{Elem: bin.KindHash, Items: []bin.Value{bin.Hash(hashes.Name("sharp")), bin.Hash(1)}}, obj.Fields[3].Value)
	require.Equal(t, bin.File(hashes.Path("assets/sword.dds")), obj.Fields[4].Value)
	require.Equal(t, &bin.Option{Elem: bin.KindU16}, obj.Fields[5].Value)
	require.Equal(t, &bin.Pointer{}, obj.Fields[6].Value)
	require.Len(t, obj.Fields[7].Value.(*bin.Map).Entries, 2)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown section":     "foo: u32 = 1",
		"wrong magic":         `type: string = "PTCH"`,
		"bad version":         "version: u32 = 9",
		"unterminated string": `linked: list[string] = { "abc`,
		"unknown type":        "entries: map[hash,embed] = { 0x1 = A { x: u33 = 1 } }",
		"nested container":    "entries: map[hash,embed] = { 0x1 = A { x: list[list] = {} } }",
		"overflow":            "entries: map[hash,embed] = { 0x1 = A { x: u8 = 256 } }",
		"short vector":        "entries: map[hash,embed] = { 0x1 = A { x: vec3 = { 1, 2 } } }",
		"null entry":          "entries: map[hash,embed] = { 0x1 = null }",
		"embed map key":       "entries: map[hash,embed] = { 0x1 = A { x: map[embed,u8] = {} } }",
		"bool as number":      "entries: map[hash,embed] = { 0x1 = A { x: bool = 2 } }",
		"bad float bits":      "entries: map[hash,embed] = { 0x1 = A { x: f32 = 0x1ffffffff } }",
		"unterminated block":  "entries: map[hash,embed] = { 0x1 = A { x: list[u8] = { 1 2",
		"stray character":     "version: u32 = 3 ;",
		"duplicate section":   "version: u32 = 3\nversion: u32 = 3",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			var serr *SyntaxError
			require.True(t, errors.As(err, &serr), "expected SyntaxError, got %v", err)
		})
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	_, err := Parse("version: u32 = 3\nlinked: list[string] = { 5 }")
	var serr *SyntaxError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, 2, serr.Line)
	require.Equal(t, 26, serr.Col)
}
