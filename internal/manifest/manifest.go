// Package manifest records the outputs of a batch conversion with their
// digests and a merkle root over all of them.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"ritobin-go/internal/convert"
)

// Generator identifies the producing tool in saved manifests.
const Generator = "ritobin-go"

// Entry describes one converted file. Paths are relative to the manifest
// root and use forward slashes.
type Entry struct {
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Digest string `yaml:"digest"`
	Size   int64  `yaml:"size"`
}

type Manifest struct {
	Generator  string    `yaml:"generator"`
	Created    time.Time `yaml:"created"`
	Root       string    `yaml:"root"`
	RootDigest string    `yaml:"root_digest"`
	Size       string    `yaml:"size"`
	Entries    []Entry   `yaml:"entries"`
}

// Build hashes the output of every converted outcome. Entries are sorted by
// output path so the root digest does not depend on traversal order. The
// root is stored as an absolute path.
func Build(root string, outcomes []convert.Outcome) (*Manifest, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	root = abs

	entries := make([]Entry, 0, len(outcomes))
	var total int64
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		digest, size, err := HashFile(o.Dest)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", o.Dest, err)
		}
		total += size
		entries = append(entries, Entry{
			Source: relative(root, o.Source),
			Output: relative(root, o.Dest),
			Digest: digest,
			Size:   size,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Output < entries[j].Output
	})

	leaves := make([]string, len(entries))
	for i, e := range entries {
		leaves[i] = e.Digest
	}
	rootDigest, err := RootDigest(leaves)
	if err != nil {
		return nil, err
	}

	return &Manifest{
		Generator:  Generator,
		Created:    time.Now().UTC(),
		Root:       filepath.ToSlash(root),
		RootDigest: rootDigest,
		Size:       humanize.Bytes(uint64(total)),
		Entries:    entries,
	}, nil
}

func relative(root, path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// Save writes m as YAML, creating the parent directory.
func Save(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Verify recomputes every entry's digest below the manifest root and
// returns the outputs that changed or disappeared.
func (m *Manifest) Verify() ([]string, error) {
	var changed []string
	for _, e := range m.Entries {
		digest, _, err := HashFile(filepath.Join(filepath.FromSlash(m.Root), filepath.FromSlash(e.Output)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				changed = append(changed, e.Output)
				continue
			}
			return nil, err
		}
		if digest != e.Digest {
			changed = append(changed, e.Output)
		}
	}
	return changed, nil
}
