package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
)

// Counter is an inline counter for one run's results, rendered as
// "Run 3 (1455) 40/112" and updated in place. Create counters with
// StartCounter; a disabled UI returns a counter that stays silent.
type Counter struct {
	out     io.Writer
	label   string
	total   int64
	current int64
}

// StartCounter begins an inline counter on stderr and prints its first
// frame.
func (u *UI) StartCounter(label string, total int64) *Counter {
	counter := &Counter{label: label, total: total}
	if u.enabled {
		counter.out = os.Stderr
		counter.print()
	}
	return counter
}

// Add advances the counter by n and redraws it.
func (c *Counter) Add(n int64) {
	c.current += n
	c.print()
}

// Done completes the counter: the count snaps to the total and the line is
// finished.
func (c *Counter) Done() {
	if c.current < c.total {
		c.current = c.total
	}
	c.print()
	if c.out != nil {
		fmt.Fprint(c.out, "\n")
	}
}

func (c *Counter) print() {
	if c.out == nil {
		return
	}
	fmt.Fprintf(c.out, "\r%s%s %d/%d", ansi.EraseLine(2), c.label, c.current, c.total)
}
