package manifest

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

const bufferSize = 32 * 1024 // 32KB buffer for streaming

// HashFile computes the xxHash of a file, streaming its contents.
func HashFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := xxhash.New()
	n, err := io.CopyBuffer(h, file, make([]byte, bufferSize))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// digest hashes data into an 8-byte big-endian xxHash.
func digest(data []byte) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, xxhash.Sum64(data))
	return buf
}

// RootDigest folds leaf digests into a single merkle root: adjacent pairs
// are hashed together level by level, an odd last node is paired with
// itself. No leaves hash the marker "empty-tree".
func RootDigest(leaves []string) (string, error) {
	if len(leaves) == 0 {
		return hex.EncodeToString(digest([]byte("empty-tree"))), nil
	}

	level := make([][]byte, 0, len(leaves))
	for _, leaf := range leaves {
		b, err := hex.DecodeString(leaf)
		if err != nil {
			return "", fmt.Errorf("invalid digest %q: %w", leaf, err)
		}
		level = append(level, b)
	}

	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			combined := append(append([]byte{}, level[i]...), right...)
			next = append(next, digest(combined))
		}
		level = next
	}
	return hex.EncodeToString(level[0]), nil
}
