// Package progress renders a single-line progress bar for long extractions.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
)

// Width is the rendered bar width in cells, including the percentage.
const Width = 40

// Bar redraws itself in place with a carriage return. A disabled Bar is a
// no-op, so callers can pass Update around unconditionally.
type Bar struct {
	mu       sync.Mutex
	w        io.Writer
	model    progress.Model
	label    string
	enabled  bool
	last     int
	rendered bool
}

// New creates a Bar writing to w.
func New(w io.Writer, label string, enabled bool) *Bar {
	return &Bar{
		w:       w,
		model:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(Width)),
		label:   label,
		enabled: enabled,
		last:    -1,
	}
}

// Enabled reports whether a bar should be drawn on f: the caller wants one,
// f is a terminal, and debug logging is not interleaving with it.
func Enabled(f *os.File, level slog.Level, want bool) bool {
	if !want || f == nil {
		return false
	}
	if level <= slog.LevelDebug {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Update redraws the bar for done out of total records. It only writes when
// the whole percentage changes.
func (b *Bar) Update(done, total int) {
	if !b.enabled || total <= 0 {
		return
	}

	pct := done * 100 / total
	b.mu.Lock()
	defer b.mu.Unlock()

	if pct == b.last {
		return
	}
	b.last = pct
	b.rendered = true

	fmt.Fprintf(b.w, "\r%s %s", b.label, b.model.ViewAs(float64(done)/float64(total)))
}

// Done ends the line if anything was drawn.
func (b *Bar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rendered {
		fmt.Fprintln(b.w)
		b.rendered = false
	}
	b.last = -1
}
