// Package diff compares two texts line by line and renders the result as a
// unified diff.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Tag classifies a line of a hunk.
type Tag int

const (
	Equal Tag = iota
	Insert
	Delete
)

func (t Tag) String() string {
	switch t {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	}
	return "equal"
}

// Prefix returns the unified diff sign for t.
func (t Tag) Prefix() string {
	switch t {
	case Insert:
		return "+"
	case Delete:
		return "-"
	}
	return " "
}

// Line is one line of a hunk. Text excludes the line terminator;
// MissingNewline is set when the source line had none.
type Line struct {
	Tag            Tag
	Text           string
	MissingNewline bool
}

// Hunk is a run of changes with its surrounding context.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Header returns the "@@ -l,s +l,s @@" line for h.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%s +%s @@", formatRange(h.OldStart, h.OldCount), formatRange(h.NewStart, h.NewCount))
}

// formatRange follows the unified diff convention: 1-based start, the count
// omitted when it is 1, and an empty range positioned before its line.
func formatRange(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}

// Result is the outcome of comparing two texts. Insertions and Deletions
// count every changed line, not only those inside hunks.
type Result struct {
	Insertions int
	Deletions  int
	Identical  bool
	Hunks      []Hunk
}

// Compute diffs a against b, keeping radius lines of context around each
// change. Changes less than 2*radius lines apart share a hunk.
func Compute(a, b string, radius int) Result {
	radius = max(radius, 0)
	oldLines, newLines := splitLines(a), splitLines(b)

	m := difflib.NewMatcherWithJunk(oldLines, newLines, false, nil)
	if m.Ratio() == 1.0 {
		return Result{Identical: true}
	}

	var r Result
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'r':
			r.Deletions += op.I2 - op.I1
			r.Insertions += op.J2 - op.J1
		case 'd':
			r.Deletions += op.I2 - op.I1
		case 'i':
			r.Insertions += op.J2 - op.J1
		}
	}

	for _, group := range m.GetGroupedOpCodes(radius) {
		r.Hunks = append(r.Hunks, buildHunk(group, oldLines, newLines))
	}
	return r
}

func buildHunk(group []difflib.OpCode, oldLines, newLines []string) Hunk {
	first, last := group[0], group[len(group)-1]
	h := Hunk{
		OldStart: first.I1 + 1,
		OldCount: last.I2 - first.I1,
		NewStart: first.J1 + 1,
		NewCount: last.J2 - first.J1,
	}
	if h.OldCount == 0 {
		h.OldStart--
	}
	if h.NewCount == 0 {
		h.NewStart--
	}

	for _, op := range group {
		switch op.Tag {
		case 'e':
			h.Lines = appendLines(h.Lines, Equal, oldLines[op.I1:op.I2])
		case 'r', 'd':
			h.Lines = appendLines(h.Lines, Delete, oldLines[op.I1:op.I2])
			if op.Tag == 'r' {
				h.Lines = appendLines(h.Lines, Insert, newLines[op.J1:op.J2])
			}
		case 'i':
			h.Lines = appendLines(h.Lines, Insert, newLines[op.J1:op.J2])
		}
	}
	return h
}

func appendLines(dst []Line, tag Tag, lines []string) []Line {
	for _, l := range lines {
		text, hasNewline := strings.CutSuffix(l, "\n")
		dst = append(dst, Line{Tag: tag, Text: text, MissingNewline: !hasNewline})
	}
	return dst
}

// splitLines splits s after each "\n", keeping the terminators. A final
// unterminated line is kept as is.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
