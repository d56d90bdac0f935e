package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Bar renders byte progress on a single terminal line. It is an io.Writer
// so it can sit on the receiving side of an io.TeeReader.
type Bar struct {
	label      string
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	enabled    bool
	lastUpdate time.Time
}

// New returns a bar for label writing to w. A total of zero or less means
// the size is unknown and only the byte count is shown. A nil w disables
// rendering.
func New(w io.Writer, label string, total int64) *Bar {
	return &Bar{
		label:   label,
		total:   total,
		width:   40,
		writer:  w,
		enabled: w != nil,
	}
}

// Write counts len(p) bytes.
func (b *Bar) Write(p []byte) (int, error) {
	b.Add(int64(len(p)))
	return len(p), nil
}

// Add advances the bar by n bytes.
func (b *Bar) Add(n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current += n
	if !b.enabled {
		return
	}

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// Current returns the number of bytes counted so far.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total <= 0 {
		fmt.Fprintf(b.writer, "\r\033[K%s %s", b.label, humanize.Bytes(uint64(b.current)))
		return
	}

	filledWidth := min(int(float64(b.width)*float64(b.current)/float64(b.total)), b.width)
	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)
	percent := float64(b.current) / float64(b.total) * 100

	fmt.Fprintf(b.writer, "\r\033[K%s [%s] %3d%% (%s/%s)",
		b.label, bar, int(percent), humanize.Bytes(uint64(b.current)), humanize.Bytes(uint64(b.total)))
}

// Finish draws the final state and ends the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}
	b.render()
	fmt.Fprintf(b.writer, "\n")
}
