package walker

import (
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Options controls a directory walk.
type Options struct {
	// Recursive descends into subdirectories; otherwise only the direct
	// children of the root are visited.
	Recursive bool
	// Extensions limits the walk to files with one of these extensions
	// (without the dot, compared case-sensitively). Empty means all files.
	Extensions []string
	Logger     *slog.Logger
}

// Files returns the files below root in traversal order. Entries whose path
// is not valid UTF-8 are skipped with a warning; unreadable entries are
// skipped silently. The root itself must be a readable directory.
func Files(root string, opts Options) (iter.Seq[string], error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to walk directory: %s is not a directory", root)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(yield func(string) bool) {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug("skipping unreadable entry", "path", path, "error", err)
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path != root && !opts.Recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				if target, err := os.Stat(path); err == nil && target.IsDir() {
					return nil
				}
			}

			if !utf8.ValidString(path) {
				logger.Warn(fmt.Sprintf("Skipping non-UTF8 path: %q", path))
				return nil
			}

			if !HasExtension(path, opts.Extensions) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}

// Extension returns the file extension of path without the dot. A base name
// whose only dot is the leading one, like ".bin", has no extension.
func Extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

// HasExtension reports whether path carries one of exts. An empty list
// matches everything.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := Extension(path)
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
