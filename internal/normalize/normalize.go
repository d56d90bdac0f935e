// Package normalize turns any supported property file into the text form
// used for diffing.
package normalize

import (
	"fmt"
	"os"

	"ritobin-go/internal/config"
	"ritobin-go/internal/convert"
	"ritobin-go/internal/walker"
)

// Normalizer produces canonical text. Binary files are rendered through the
// converter's resolver; text files are returned as stored.
type Normalizer struct {
	conv *convert.Converter
}

// New returns a normalizer rendering binary files with conv.
func New(conv *convert.Converter) *Normalizer {
	return &Normalizer{conv: conv}
}

// Check fails with an UnsupportedExtensionError if path cannot be normalized.
func Check(path string) error {
	switch ext := walker.Extension(path); ext {
	case convert.ExtBin, convert.ExtPy, convert.ExtRitobin:
		return nil
	default:
		return &convert.UnsupportedExtensionError{Ext: ext}
	}
}

// Text returns the canonical text of path.
func (n *Normalizer) Text(path string) (string, error) {
	if err := Check(path); err != nil {
		return "", err
	}
	if walker.Extension(path) == convert.ExtBin {
		return n.conv.RenderBin(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// CanonicalText normalizes path with a resolver chosen from cfg.
func CanonicalText(path string, cfg config.AppConfig) (string, error) {
	return New(convert.New(cfg, nil)).Text(path)
}
