package ritobin

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ritobin-go/internal/bin"
	"ritobin-go/internal/hashes"
)

type parser struct {
	lex *lexer
	tok token
}

// Parse reads a text property file into a tree.
func Parse(src string) (*bin.Tree, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	tree := &bin.Tree{Version: bin.DefaultVersion}
	seen := make(map[string]bool)
	for p.tok.kind != tokEOF {
		nameTok := p.tok
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, p.errorAt(nameTok, "duplicate section %q", name)
		}
		seen[name] = true
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.typeSpec()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		if err := p.section(tree, nameTok, name, typ); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (p *parser) section(tree *bin.Tree, at token, name string, typ valueType) error {
	switch name {
	case "type":
		if typ.kind != bin.KindString {
			return p.errorAt(at, "section type must be a string")
		}
		v, err := p.value(typ)
		if err != nil {
			return err
		}
		if v != bin.String(bin.Magic) {
			return p.errorAt(at, "unsupported file type %q", string(v.(bin.String)))
		}
	case "version":
		if typ.kind != bin.KindU32 {
			return p.errorAt(at, "section version must be a u32")
		}
		v, err := p.value(typ)
		if err != nil {
			return err
		}
		tree.Version = uint32(v.(bin.U32))
		if tree.Version < 1 || tree.Version > 3 {
			return p.errorAt(at, "unsupported version %d", tree.Version)
		}
	case "linked":
		if typ.kind != bin.KindList || typ.elem != bin.KindString {
			return p.errorAt(at, "section linked must be a list[string]")
		}
		v, err := p.value(typ)
		if err != nil {
			return err
		}
		for _, item := range v.(*bin.List).Items {
			tree.Dependencies = append(tree.Dependencies, string(item.(bin.String)))
		}
	case "entries":
		if typ.kind != bin.KindMap || typ.key != bin.KindHash || typ.elem != bin.KindEmbed {
			return p.errorAt(at, "section entries must be a map[hash,embed]")
		}
		objects, err := p.entries()
		if err != nil {
			return err
		}
		tree.Objects = objects
	default:
		return p.errorAt(at, "unknown section %q", name)
	}
	return nil
}

func (p *parser) errorAt(t token, format string, args ...any) error {
	return &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) isPunct(s string) bool {
	return p.tok.kind == tokPunct && p.tok.text == s
}

func (p *parser) expect(s string) error {
	if !p.isPunct(s) {
		return p.errorAt(p.tok, "expected %q, found %s", s, p.tok)
	}
	return p.advance()
}

// skipComma consumes an optional separator.
func (p *parser) skipComma() error {
	if p.isPunct(",") {
		return p.advance()
	}
	return nil
}

func (p *parser) ident() (string, error) {
	if p.tok.kind != tokIdent {
		return "", p.errorAt(p.tok, "expected identifier, found %s", p.tok)
	}
	name := p.tok.text
	return name, p.advance()
}

// nameHash reads an identifier or hex literal naming a field or class.
func (p *parser) nameHash() (uint32, error) {
	switch p.tok.kind {
	case tokIdent:
		h := hashes.Name(p.tok.text)
		return h, p.advance()
	case tokNumber:
		v, err := parseHex32(p.tok.text)
		if err != nil {
			return 0, p.errorAt(p.tok, "expected name or hex hash, found %s", p.tok)
		}
		return v, p.advance()
	}
	return 0, p.errorAt(p.tok, "expected name or hex hash, found %s", p.tok)
}

// hashValue reads a quoted name or a numeric hash.
func (p *parser) hashValue() (uint32, error) {
	switch p.tok.kind {
	case tokString:
		h := hashes.Name(p.tok.text)
		return h, p.advance()
	case tokNumber:
		v, err := strconv.ParseUint(p.tok.text, 0, 32)
		if err != nil {
			return 0, p.errorAt(p.tok, "invalid hash %s", p.tok)
		}
		return uint32(v), p.advance()
	}
	return 0, p.errorAt(p.tok, "expected string or hash, found %s", p.tok)
}

func parseHex32(s string) (uint32, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, fmt.Errorf("not a hex literal: %s", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 32)
	return uint32(v), err
}

type valueType struct {
	kind bin.Kind
	key  bin.Kind
	elem bin.Kind
}

func (p *parser) kindName() (bin.Kind, error) {
	at := p.tok
	name, err := p.ident()
	if err != nil {
		return 0, err
	}
	k, ok := bin.KindByName(name)
	if !ok {
		return 0, p.errorAt(at, "unknown type %q", name)
	}
	return k, nil
}

func (p *parser) elemKind() (bin.Kind, error) {
	at := p.tok
	k, err := p.kindName()
	if err != nil {
		return 0, err
	}
	if k.IsContainer() {
		return 0, p.errorAt(at, "container type %s cannot be nested", k)
	}
	return k, nil
}

func (p *parser) typeSpec() (valueType, error) {
	at := p.tok
	k, err := p.kindName()
	if err != nil {
		return valueType{}, err
	}
	typ := valueType{kind: k}
	if !k.IsContainer() {
		return typ, nil
	}

	if err := p.expect("["); err != nil {
		return valueType{}, err
	}
	if k == bin.KindMap {
		if typ.key, err = p.elemKind(); err != nil {
			return valueType{}, err
		}
		if err := p.expect(","); err != nil {
			return valueType{}, err
		}
	}
	if typ.elem, err = p.elemKind(); err != nil {
		return valueType{}, err
	}
	if err := p.expect("]"); err != nil {
		return valueType{}, err
	}
	if k == bin.KindMap && (typ.key == bin.KindPointer || typ.key == bin.KindEmbed) {
		return valueType{}, p.errorAt(at, "map keys cannot be %s", typ.key)
	}
	return typ, nil
}

func (p *parser) entries() ([]bin.Object, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var objects []bin.Object
	for !p.isPunct("}") {
		path, err := p.hashValue()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		at := p.tok
		class, fields, err := p.structBody()
		if err != nil {
			return nil, err
		}
		if class == 0 {
			return nil, p.errorAt(at, "entry %s cannot be null", hashes.FormatHex(path))
		}
		objects = append(objects, bin.Object{PathHash: path, ClassHash: class, Fields: fields})
		if err := p.skipComma(); err != nil {
			return nil, err
		}
	}
	return objects, p.advance()
}

func (p *parser) structBody() (uint32, []bin.Field, error) {
	if p.tok.kind == tokIdent && p.tok.text == "null" {
		return 0, nil, p.advance()
	}
	class, err := p.nameHash()
	if err != nil {
		return 0, nil, err
	}
	if class == 0 {
		return 0, nil, p.errorAt(p.tok, "class hash 0 is reserved for null")
	}
	if err := p.expect("{"); err != nil {
		return 0, nil, err
	}
	var fields []bin.Field
	for !p.isPunct("}") {
		name, err := p.nameHash()
		if err != nil {
			return 0, nil, err
		}
		if err := p.expect(":"); err != nil {
			return 0, nil, err
		}
		typ, err := p.typeSpec()
		if err != nil {
			return 0, nil, err
		}
		if err := p.expect("="); err != nil {
			return 0, nil, err
		}
		v, err := p.value(typ)
		if err != nil {
			return 0, nil, err
		}
		fields = append(fields, bin.Field{NameHash: name, Value: v})
		if err := p.skipComma(); err != nil {
			return 0, nil, err
		}
	}
	return class, fields, p.advance()
}

// block parses "{ item, item ... }" calling item once per element.
func (p *parser) block(item func() error) error {
	if err := p.expect("{"); err != nil {
		return err
	}
	for !p.isPunct("}") {
		if p.tok.kind == tokEOF {
			return p.errorAt(p.tok, "unterminated block")
		}
		if err := item(); err != nil {
			return err
		}
		if err := p.skipComma(); err != nil {
			return err
		}
	}
	return p.advance()
}

func (p *parser) value(typ valueType) (bin.Value, error) {
	switch typ.kind {
	case bin.KindList, bin.KindList2:
		var items []bin.Value
		err := p.block(func() error {
			v, err := p.value(valueType{kind: typ.elem})
			items = append(items, v)
			return err
		})
		if err != nil {
			return nil, err
		}
		if typ.kind == bin.KindList2 {
			return &bin.List2{Elem: typ.elem, Items: items}, nil
		}
		return &bin.List{Elem: typ.elem, Items: items}, nil
	case bin.KindOption:
		opt := &bin.Option{Elem: typ.elem}
		at := p.tok
		err := p.block(func() error {
			if opt.Item != nil {
				return p.errorAt(at, "option holds more than one value")
			}
			v, err := p.value(valueType{kind: typ.elem})
			opt.Item = v
			return err
		})
		if err != nil {
			return nil, err
		}
		return opt, nil
	case bin.KindMap:
		m := &bin.Map{Key: typ.key, Val: typ.elem}
		err := p.block(func() error {
			k, err := p.value(valueType{kind: typ.key})
			if err != nil {
				return err
			}
			if err := p.expect("="); err != nil {
				return err
			}
			v, err := p.value(valueType{kind: typ.elem})
			if err != nil {
				return err
			}
			m.Entries = append(m.Entries, bin.MapEntry{Key: k, Value: v})
			return nil
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case bin.KindPointer, bin.KindEmbed:
		class, fields, err := p.structBody()
		if err != nil {
			return nil, err
		}
		if typ.kind == bin.KindPointer {
			return &bin.Pointer{ClassHash: class, Fields: fields}, nil
		}
		return &bin.Embed{ClassHash: class, Fields: fields}, nil
	case bin.KindVec2:
		var v bin.Vec2
		err := p.floatBlock(v[:])
		return v, err
	case bin.KindVec3:
		var v bin.Vec3
		err := p.floatBlock(v[:])
		return v, err
	case bin.KindVec4:
		var v bin.Vec4
		err := p.floatBlock(v[:])
		return v, err
	case bin.KindMtx44:
		var v bin.Mtx44
		err := p.floatBlock(v[:])
		return v, err
	case bin.KindRgba:
		var v bin.Rgba
		i := 0
		at := p.tok
		err := p.block(func() error {
			if i == len(v) {
				return p.errorAt(at, "rgba takes 4 components")
			}
			n, err := p.uint(8)
			v[i] = uint8(n)
			i++
			return err
		})
		if err == nil && i != len(v) {
			err = p.errorAt(at, "rgba takes 4 components, found %d", i)
		}
		return v, err
	}
	return p.scalar(typ.kind)
}

func (p *parser) floatBlock(dst []float32) error {
	i := 0
	at := p.tok
	err := p.block(func() error {
		if i == len(dst) {
			return p.errorAt(at, "expected %d components", len(dst))
		}
		f, err := p.float()
		dst[i] = f
		i++
		return err
	})
	if err == nil && i != len(dst) {
		err = p.errorAt(at, "expected %d components, found %d", len(dst), i)
	}
	return err
}

func (p *parser) scalar(k bin.Kind) (bin.Value, error) {
	switch k {
	case bin.KindNone:
		if p.tok.kind != tokIdent || p.tok.text != "null" {
			return nil, p.errorAt(p.tok, "expected null, found %s", p.tok)
		}
		return bin.None{}, p.advance()
	case bin.KindBool, bin.KindFlag:
		if p.tok.kind != tokIdent || (p.tok.text != "true" && p.tok.text != "false") {
			return nil, p.errorAt(p.tok, "expected true or false, found %s", p.tok)
		}
		b := p.tok.text == "true"
		if k == bin.KindFlag {
			return bin.Flag(b), p.advance()
		}
		return bin.Bool(b), p.advance()
	case bin.KindI8:
		n, err := p.int(8)
		return bin.I8(n), err
	case bin.KindU8:
		n, err := p.uint(8)
		return bin.U8(n), err
	case bin.KindI16:
		n, err := p.int(16)
		return bin.I16(n), err
	case bin.KindU16:
		n, err := p.uint(16)
		return bin.U16(n), err
	case bin.KindI32:
		n, err := p.int(32)
		return bin.I32(n), err
	case bin.KindU32:
		n, err := p.uint(32)
		return bin.U32(n), err
	case bin.KindI64:
		n, err := p.int(64)
		return bin.I64(n), err
	case bin.KindU64:
		n, err := p.uint(64)
		return bin.U64(n), err
	case bin.KindF32:
		f, err := p.float()
		return bin.F32(f), err
	case bin.KindString:
		if p.tok.kind != tokString {
			return nil, p.errorAt(p.tok, "expected string, found %s", p.tok)
		}
		s := p.tok.text
		return bin.String(s), p.advance()
	case bin.KindHash:
		h, err := p.hashValue()
		return bin.Hash(h), err
	case bin.KindLink:
		h, err := p.hashValue()
		return bin.Link(h), err
	case bin.KindFile:
		switch p.tok.kind {
		case tokString:
			h := hashes.Path(p.tok.text)
			return bin.File(h), p.advance()
		case tokNumber:
			n, err := strconv.ParseUint(p.tok.text, 0, 64)
			if err != nil {
				return nil, p.errorAt(p.tok, "invalid file hash %s", p.tok)
			}
			return bin.File(n), p.advance()
		}
		return nil, p.errorAt(p.tok, "expected string or hash, found %s", p.tok)
	}
	return nil, p.errorAt(p.tok, "unsupported value type %s", k)
}

func (p *parser) int(bits int) (int64, error) {
	if p.tok.kind != tokNumber {
		return 0, p.errorAt(p.tok, "expected integer, found %s", p.tok)
	}
	n, err := strconv.ParseInt(p.tok.text, 0, bits)
	if err != nil {
		return 0, p.errorAt(p.tok, "invalid i%d %s", bits, p.tok)
	}
	return n, p.advance()
}

func (p *parser) uint(bits int) (uint64, error) {
	if p.tok.kind != tokNumber {
		return 0, p.errorAt(p.tok, "expected integer, found %s", p.tok)
	}
	n, err := strconv.ParseUint(p.tok.text, 0, bits)
	if err != nil {
		return 0, p.errorAt(p.tok, "invalid u%d %s", bits, p.tok)
	}
	return n, p.advance()
}

func (p *parser) float() (float32, error) {
	if p.tok.kind != tokNumber && p.tok.kind != tokIdent {
		return 0, p.errorAt(p.tok, "expected number, found %s", p.tok)
	}
	var f float32
	switch text := strings.ToLower(p.tok.text); {
	case text == "nan":
		f = math.Float32frombits(canonicalNaN)
	case text == "inf" || text == "+inf":
		f = float32(math.Inf(1))
	case text == "-inf":
		f = float32(math.Inf(-1))
	case p.tok.kind != tokNumber:
		return 0, p.errorAt(p.tok, "expected number, found %s", p.tok)
	case strings.HasPrefix(text, "0x") && !strings.ContainsRune(text, 'p'):
		// Raw IEEE 754 bits, used for NaNs carrying a payload.
		bits, err := strconv.ParseUint(text, 0, 32)
		if err != nil {
			return 0, p.errorAt(p.tok, "invalid f32 bits %s", p.tok)
		}
		f = math.Float32frombits(uint32(bits))
	default:
		v, err := strconv.ParseFloat(strings.TrimSuffix(text, "f"), 32)
		if err != nil {
			return 0, p.errorAt(p.tok, "invalid f32 %s", p.tok)
		}
		f = float32(v)
	}
	return f, p.advance()
}
