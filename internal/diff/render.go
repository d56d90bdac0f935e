package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// NoNewlineMarker follows a line that ended without a terminator.
const NoNewlineMarker = `\ No newline at end of file`

// RenderOptions controls Render.
type RenderOptions struct {
	OldName string
	NewName string
	Color   bool
}

// Render writes r as a unified diff followed by a summary line. Color only
// adds escape sequences; the text is otherwise identical.
func Render(w io.Writer, r Result, opts RenderOptions) error {
	out := termenv.NewOutput(w, termenv.WithProfile(termenv.ANSI))
	style := func(s, color string, bold bool) string {
		if !opts.Color {
			return s
		}
		st := out.String(s).Foreground(out.Color(color))
		if bold {
			st = st.Bold()
		}
		return st.String()
	}

	var sb strings.Builder
	if r.Identical {
		sb.WriteString(style("Files are identical", "2", false) + "\n")
		_, err := io.WriteString(out, sb.String())
		return err
	}

	sb.WriteString(style("--- "+opts.OldName, "1", true) + "\n")
	sb.WriteString(style("+++ "+opts.NewName, "2", true) + "\n")
	for _, h := range r.Hunks {
		sb.WriteString(style(h.Header(), "6", false) + "\n")
		for _, l := range h.Lines {
			text := l.Tag.Prefix() + l.Text
			switch l.Tag {
			case Insert:
				text = style(text, "2", false)
			case Delete:
				text = style(text, "1", false)
			}
			sb.WriteString(text + "\n")
			if l.MissingNewline {
				sb.WriteString(NoNewlineMarker + "\n")
			}
		}
	}
	fmt.Fprintf(&sb, "\nSummary: %s, %s\n",
		style(fmt.Sprintf("%d insertion(s)", r.Insertions), "2", false),
		style(fmt.Sprintf("%d deletion(s)", r.Deletions), "1", false))

	_, err := io.WriteString(out, sb.String())
	return err
}
