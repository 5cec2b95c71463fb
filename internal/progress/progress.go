package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

const defaultWidth = 50

// Bar is the shared progress counter for one phase. All insert workers
// add to it concurrently; the final value is the deterministic sum of
// every successful batch regardless of interleaving.
type Bar struct {
	total   int64
	current atomic.Int64

	mu    sync.Mutex
	out   io.Writer
	width int
}

func New(total int64) *Bar {
	return NewWithWriter(os.Stdout, total)
}

func NewWithWriter(out io.Writer, total int64) *Bar {
	return &Bar{
		total: total,
		out:   out,
		width: defaultWidth,
	}
}

// Add atomically advances the counter and returns the new value. It
// does not render; callers decide the render cadence.
func (b *Bar) Add(n int64) int64 {
	return b.current.Add(n)
}

func (b *Bar) Current() int64 {
	return b.current.Load()
}

func (b *Bar) Total() int64 {
	return b.total
}

// Render redraws the bar in place. Safe to call from any worker.
func (b *Bar) Render() {
	current := b.current.Load()

	b.mu.Lock()
	defer b.mu.Unlock()

	var percentage, filled int64
	if b.total > 0 {
		percentage = current * 100 / b.total
		filled = current * int64(b.width) / b.total
	}
	if filled > int64(b.width) {
		filled = int64(b.width)
	}

	bar := strings.Repeat("=", int(filled)) + strings.Repeat(" ", b.width-int(filled))
	fmt.Fprintf(b.out, "\r[%s] %3d%% (%d/%d)", bar, percentage, current, b.total)
}

// Finish renders the final state and terminates the line.
func (b *Bar) Finish() {
	b.Render()

	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out)
}
