// Package hashes resolves the numeric hashes stored in property files to the
// names they were computed from.
package hashes

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Resolver maps a hash to a human-readable name.
type Resolver interface {
	Resolve(hash uint32) (string, bool)
}

// Table files looked up in a hashtable directory.
const (
	EntriesFile = "hashes.binentries.txt"
	FieldsFile  = "hashes.binfields.txt"
	HashesFile  = "hashes.binhashes.txt"
	TypesFile   = "hashes.bintypes.txt"
)

// TableFiles lists the table files in load order.
var TableFiles = []string{EntriesFile, FieldsFile, HashesFile, TypesFile}

// Hex resolves every hash to its fixed-width lowercase hexadecimal form.
type Hex struct{}

func (Hex) Resolve(hash uint32) (string, bool) {
	return FormatHex(hash), true
}

// FormatHex renders h as 0x followed by eight lowercase hex digits.
func FormatHex(h uint32) string {
	return fmt.Sprintf("0x%08x", h)
}

// Table resolves hashes from an in-memory mapping.
type Table struct {
	names map[uint32]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{names: make(map[uint32]string)}
}

func (t *Table) Resolve(hash uint32) (string, bool) {
	name, ok := t.names[hash]
	return name, ok
}

// Add records name under hash, replacing any previous name.
func (t *Table) Add(hash uint32, name string) {
	t.names[hash] = name
}

// Len returns the number of known hashes.
func (t *Table) Len() int {
	return len(t.names)
}

// LoadDir builds a table from the table files found in dir. Missing or
// unreadable files are skipped, so the result may be partial or empty.
func LoadDir(dir string) *Table {
	t := NewTable()
	for _, name := range TableFiles {
		t.loadFile(filepath.Join(dir, name))
	}
	return t
}

func (t *Table) loadFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		hash, name, ok := parseLine(scanner.Text())
		if ok {
			t.names[hash] = name
		}
	}
}

// parseLine splits a "<hex> <name>" table line.
func parseLine(line string) (uint32, string, bool) {
	line = strings.TrimRight(line, "\r")
	hexPart, name, found := strings.Cut(line, " ")
	if !found || name == "" {
		return 0, "", false
	}
	hexPart = strings.TrimPrefix(hexPart, "0x")
	v, err := strconv.ParseUint(hexPart, 16, 32)
	if err != nil {
		return 0, "", false
	}
	return uint32(v), name, true
}

// ForDir selects the resolver for a configured hashtable directory: a table
// loaded from dir when one is set, Hex otherwise.
func ForDir(dir string) Resolver {
	if dir == "" {
		return Hex{}
	}
	return LoadDir(dir)
}

// Name computes the 32-bit hash of a name: FNV-1a over its lowercase form.
func Name(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(name)))
	return h.Sum32()
}

// Path computes the 64-bit hash of an asset path: xxHash64 over its
// lowercase form.
func Path(path string) uint64 {
	return xxhash.Sum64String(strings.ToLower(path))
}
