// Package convert dispatches conversions between the binary and text
// property formats by file extension, for single files and directories.
package convert

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"strings"

	"ritobin-go/internal/bin"
	"ritobin-go/internal/config"
	"ritobin-go/internal/hashes"
	"ritobin-go/internal/logging"
	"ritobin-go/internal/ritobin"
	"ritobin-go/internal/walker"
)

// Extensions handled by the dispatcher.
const (
	ExtBin     = "bin"
	ExtPy      = "py"
	ExtRitobin = "ritobin"
)

// SupportedExtensions lists every extension the dispatcher accepts.
var SupportedExtensions = []string{ExtBin, ExtPy, ExtRitobin}

// UnsupportedExtensionError is returned for files the dispatcher cannot convert.
type UnsupportedExtensionError struct {
	Ext string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported file extension %q (supported: %s)", e.Ext, strings.Join(SupportedExtensions, ", "))
}

// AggregateError reports a batch that finished with per-file failures.
// The failures themselves have already been logged.
type AggregateError struct {
	Failed int
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d file(s) failed to convert", e.Failed)
}

// Converter converts files using one hash resolver for its whole lifetime.
type Converter struct {
	cfg      config.AppConfig
	resolver hashes.Resolver
	logger   *slog.Logger
}

// New returns a converter for cfg. The hash tables are only loaded when a
// binary file is rendered.
func New(cfg config.AppConfig, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{cfg: cfg, logger: logger}
}

// WithResolver returns a converter that renders names with r instead of the
// configured hash tables.
func (c *Converter) WithResolver(r hashes.Resolver) *Converter {
	return &Converter{cfg: c.cfg, resolver: r, logger: c.logger}
}

// Resolver returns the hash resolver, building it on first use.
func (c *Converter) Resolver() hashes.Resolver {
	if c.resolver == nil {
		c.resolver = hashes.ForDir(c.cfg.HashtableDir)
		if t, ok := c.resolver.(*hashes.Table); ok {
			c.logger.Debug("loaded hash tables", "dir", c.cfg.HashtableDir, "names", t.Len())
		}
	}
	return c.resolver
}

// Outcome is the result of converting one file. Err is nil on success.
type Outcome struct {
	Source string
	Dest   string
	Err    error
}

// Summary aggregates a batch. Failed keeps traversal order.
type Summary struct {
	Converted []Outcome
	Failed    []Outcome
}

// Err returns an AggregateError when any file failed.
func (s Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return &AggregateError{Failed: len(s.Failed)}
}

// Fold aggregates a sequence of outcomes.
func Fold(outcomes iter.Seq[Outcome]) Summary {
	var s Summary
	for o := range outcomes {
		if o.Err != nil {
			s.Failed = append(s.Failed, o)
		} else {
			s.Converted = append(s.Converted, o)
		}
	}
	return s
}

// Convert converts input, which may be a file or a directory. For a
// directory output is ignored and every supported file is converted next
// to its source.
func (c *Converter) Convert(input, output string, recursive bool) (Summary, error) {
	info, err := os.Stat(input)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to stat %s: %w", input, err)
	}

	if info.IsDir() {
		if output != "" {
			c.logger.Warn("Output path is ignored when converting a directory", "output", output)
		}
		return c.ConvertDirectory(input, recursive)
	}

	dest, err := c.ConvertFile(input, output)
	if err != nil {
		return Summary{Failed: []Outcome{{Source: input, Err: err}}}, err
	}
	return Summary{Converted: []Outcome{{Source: input, Dest: dest}}}, nil
}

// ConvertDirectory converts every supported file in dir, one at a time in
// traversal order. A failing file is logged and does not stop the walk.
func (c *Converter) ConvertDirectory(dir string, recursive bool) (Summary, error) {
	files, err := walker.Files(dir, walker.Options{
		Recursive:  recursive,
		Extensions: SupportedExtensions,
		Logger:     c.logger,
	})
	if err != nil {
		return Summary{}, err
	}

	summary := Fold(c.outcomes(files))
	c.logger.Info(fmt.Sprintf("Conversion complete: %d files converted, %d errors", len(summary.Converted), len(summary.Failed)))
	return summary, summary.Err()
}

func (c *Converter) outcomes(files iter.Seq[string]) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		for path := range files {
			dest, err := c.ConvertFile(path, "")
			if err != nil {
				c.logger.Error(fmt.Sprintf("Failed to convert %s: %v", path, err))
			}
			if !yield(Outcome{Source: path, Dest: dest, Err: err}) {
				return
			}
		}
	}
}

// ConvertFile converts one file and returns the path written. An empty
// output writes next to input with the target extension.
func (c *Converter) ConvertFile(input, output string) (string, error) {
	var err error
	switch ext := walker.Extension(input); ext {
	case ExtBin:
		output = destination(input, output, ExtPy)
		err = c.binToText(input, output)
	case ExtPy, ExtRitobin:
		output = destination(input, output, ExtBin)
		err = c.textToBin(input, output)
	default:
		return "", &UnsupportedExtensionError{Ext: ext}
	}
	if err != nil {
		return "", err
	}

	c.logger.Info(fmt.Sprintf("Converted %s -> %s", logging.Hyperlink(input), logging.Hyperlink(output)))
	return output, nil
}

func destination(input, output, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, "."+walker.Extension(input)) + "." + ext
}

func (c *Converter) binToText(input, output string) error {
	text, err := c.RenderBin(input)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

// RenderBin parses a binary file and renders it as text.
func (c *Converter) RenderBin(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	tree, err := bin.Read(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	text, err := ritobin.Write(tree, c.Resolver())
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", path, err)
	}
	return text, nil
}

func (c *Converter) textToBin(input, output string) error {
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	tree, err := ritobin.Parse(string(src))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", input, err)
	}

	var buf bin.Buffer
	if err := tree.Write(&buf); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", input, err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	return nil
}

// IsUnsupported reports whether err stems from an unsupported extension.
func IsUnsupported(err error) bool {
	var target *UnsupportedExtensionError
	return errors.As(err, &target)
}
