package bin_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ritobin-go/internal/bin"
	"ritobin-go/internal/bin/bintest"
)

func TestMarshal_RoundTrip(t *testing.T) {
	tree := bintest.Sample()

	data, err := bin.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	parsed, err := bin.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(tree, parsed) {
		t.Errorf("Round trip changed the tree:\nwant %#v\ngot  %#v", tree, parsed)
	}

	again, err := bin.Marshal(parsed)
	if err != nil {
		t.Fatalf("second Marshal failed: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("Serializing a parsed tree should reproduce the original bytes")
	}
}

func TestRead_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "small.bin")

	data, err := bin.Marshal(bintest.Small(7))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f.Close()

	tree, err := bin.Read(f)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(tree.Objects) != 1 || tree.Objects[0].Fields[0].Value != bin.U32(7) {
		t.Errorf("Unexpected tree contents: %#v", tree)
	}
}

func TestParse_SizesAreBackPatched(t *testing.T) {
	data, err := bin.Marshal(bintest.Small(1))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// magic, version, linked count, object count, one class hash
	off := 4 + 4 + 4 + 4 + 4
	size := binary.LittleEndian.Uint32(data[off:])
	if int(size) != len(data)-off-4 {
		t.Errorf("Object size = %d, want %d", size, len(data)-off-4)
	}
}

func TestParse_InvalidMagic(t *testing.T) {
	_, err := bin.Parse([]byte("this is not a property file"))
	var perr *bin.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
}

func TestParse_Truncated(t *testing.T) {
	data, err := bin.Marshal(bintest.Sample())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, n := range []int{3, 8, len(data) / 2, len(data) - 1} {
		if _, err := bin.Parse(data[:n]); err == nil {
			t.Errorf("Parse of %d/%d bytes should fail", n, len(data))
		}
	}
}

func TestParse_TrailingBytes(t *testing.T) {
	data, err := bin.Marshal(bintest.Small(1))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := bin.Parse(append(data, 0)); err == nil {
		t.Error("Parse should reject trailing bytes")
	}
}

func TestParse_Version1HasNoLinkedSection(t *testing.T) {
	tree := bintest.Small(5)
	tree.Version = 1

	data, err := bin.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	parsed, err := bin.Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.Version != 1 || parsed.Dependencies != nil {
		t.Errorf("Unexpected v1 tree: %#v", parsed)
	}
}

func TestParse_RejectsTreesTextCannotHold(t *testing.T) {
	object := func(fields ...bin.Field) *bin.Tree {
		return &bin.Tree{Version: 3, Objects: []bin.Object{{PathHash: 0x10, ClassHash: 0x20, Fields: fields}}}
	}
	cases := map[string]struct {
		tree  *bin.Tree
		patch func([]byte)
	}{
		"null class object": {
			tree: &bin.Tree{Version: 3, Objects: []bin.Object{{PathHash: 0x10}}},
		},
		"embed map key": {
			tree: object(bin.Field{NameHash: 1, Value: &bin.Map{Key: bin.KindEmbed, Val: bin.KindU32}}),
		},
		"pointer map key": {
			tree: object(bin.Field{NameHash: 1, Value: &bin.Map{Key: bin.KindPointer, Val: bin.KindU32}}),
		},
		"bool byte 2": {
			tree:  object(bin.Field{NameHash: 1, Value: bin.Bool(true)}),
			patch: func(data []byte) { data[len(data)-1] = 2 },
		},
		"flag byte 0xff": {
			tree:  object(bin.Field{NameHash: 1, Value: bin.Flag(true)}),
			patch: func(data []byte) { data[len(data)-1] = 0xff },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := bin.Marshal(tc.tree)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if tc.patch != nil {
				tc.patch(data)
			}
			_, err = bin.Parse(data)
			var perr *bin.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected ParseError, got %v", err)
			}
		})
	}
}

func TestWrite_RejectsMismatchedElements(t *testing.T) {
	tree := &bin.Tree{Objects: []bin.Object{{
		Fields: []bin.Field{{NameHash: 1, Value: &bin.List{Elem: bin.KindU32, Items: []bin.Value{bin.String("x")}}}},
	}}}
	if _, err := bin.Marshal(tree); err == nil {
		t.Error("Marshal should reject list items of the wrong kind")
	}
}

func TestBuffer_SeekAndOverwrite(t *testing.T) {
	var buf bin.Buffer
	buf.Write([]byte("hello world"))
	if _, err := buf.Seek(0, 0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	buf.Write([]byte("J"))
	if got := string(buf.Bytes()); got != "Jello world" {
		t.Errorf("Buffer = %q, want %q", got, "Jello world")
	}

	var out bytes.Buffer
	if _, err := buf.WriteTo(&out); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if out.String() != "Jello world" {
		t.Errorf("WriteTo should copy the whole buffer, got %q", out.String())
	}

	if _, err := buf.Seek(-1, 0); err == nil {
		t.Error("Seek to a negative offset should fail")
	}
}
