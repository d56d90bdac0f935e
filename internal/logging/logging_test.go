package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestParseVerbosity(t *testing.T) {
	cases := map[string]Verbosity{
		"error":   Error,
		"warning": Warning,
		"warn":    Warning,
		"INFO":    Info,
		"debug":   Debug,
		"trace":   Trace,
	}
	for in, want := range cases {
		got, err := ParseVerbosity(in)
		if err != nil {
			t.Errorf("ParseVerbosity(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseVerbosity(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseVerbosity("verbose"); err == nil {
		t.Error("ParseVerbosity should reject unknown levels")
	}
}

func TestNew_SplitsStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := New(Debug, &stdout, &stderr)

	logger.Info("converted file")
	logger.Debug("details")
	logger.Warn("skipping path")
	logger.Error("failed file")

	out, errOut := stdout.String(), stderr.String()
	if !strings.Contains(out, "converted file") || !strings.Contains(out, "details") {
		t.Errorf("Info and debug should go to stdout, got %q", out)
	}
	if strings.Contains(out, "skipping path") || strings.Contains(out, "failed file") {
		t.Errorf("Warnings and errors should not go to stdout, got %q", out)
	}
	if !strings.Contains(errOut, "skipping path") || !strings.Contains(errOut, "failed file") {
		t.Errorf("Warnings and errors should go to stderr, got %q", errOut)
	}
}

func TestNew_Levels(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := New(Error, &stdout, &stderr)
	logger.Info("hidden")
	logger.Warn("hidden too")
	logger.Error("shown")

	if stdout.Len() != 0 {
		t.Errorf("Expected no stdout output, got %q", stdout.String())
	}
	if strings.Contains(stderr.String(), "hidden") || !strings.Contains(stderr.String(), "shown") {
		t.Errorf("Unexpected stderr output %q", stderr.String())
	}

	stdout.Reset()
	trace := New(Trace, &stdout, &stderr)
	trace.Log(context.Background(), LevelTrace, "deep")
	if !strings.Contains(stdout.String(), "level=TRACE") {
		t.Errorf("Trace records should be labelled TRACE, got %q", stdout.String())
	}
}

func TestNew_WarningsNeverReachStdout(t *testing.T) {
	for _, v := range []Verbosity{Warning, Info, Debug, Trace} {
		var stdout, stderr bytes.Buffer
		logger := New(v, &stdout, &stderr)
		logger.Warn("careful")
		logger.Error("broken")

		if stdout.Len() != 0 {
			t.Errorf("%s: expected nothing on stdout, got %q", v, stdout.String())
		}
		if strings.Count(stderr.String(), "\n") != 2 {
			t.Errorf("%s: expected two stderr records, got %q", v, stderr.String())
		}
	}
}

func TestNew_WithAttrsKeepsRouting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := New(Info, &stdout, &stderr).With("file", "a.bin")
	logger.Warn("odd")

	if !strings.Contains(stderr.String(), "file=a.bin") {
		t.Errorf("Attributes should be kept on stderr records, got %q", stderr.String())
	}
}

func TestHyperlink(t *testing.T) {
	got := Hyperlink(`C:\data\a.bin`)
	want := "\x1b]8;;file://C:/data/a.bin\x1b\\C:\\data\\a.bin\x1b]8;;\x1b\\"
	if got != want {
		t.Errorf("Hyperlink = %q, want %q", got, want)
	}
}
