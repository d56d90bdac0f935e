package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestBar_CountsWrittenBytes(t *testing.T) {
	var out bytes.Buffer
	bar := New(&out, "hashes.binfields.txt", 2048)

	if _, err := io.Copy(bar, strings.NewReader(strings.Repeat("x", 2048))); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	bar.Finish()

	if got := bar.Current(); got != 2048 {
		t.Errorf("Expected 2048 bytes, got %d", got)
	}
	rendered := out.String()
	if !strings.Contains(rendered, "100%") {
		t.Errorf("Expected completed bar, got %q", rendered)
	}
	if !strings.Contains(rendered, "2.0 kB/2.0 kB") {
		t.Errorf("Expected humanized sizes, got %q", rendered)
	}
	if !strings.HasSuffix(rendered, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestBar_UnknownTotal(t *testing.T) {
	var out bytes.Buffer
	bar := New(&out, "file", 0)
	bar.Add(1500)
	bar.Finish()

	if strings.Contains(out.String(), "%") {
		t.Errorf("Unknown total should not show a percentage, got %q", out.String())
	}
	if !strings.Contains(out.String(), "file 1.5 kB") {
		t.Errorf("Expected byte count, got %q", out.String())
	}
}

func TestBar_Disabled(t *testing.T) {
	bar := New(nil, "file", 10)
	bar.Add(4)
	bar.Finish()

	if got := bar.Current(); got != 4 {
		t.Errorf("Disabled bar should still count, got %d", got)
	}
}
