package view

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"lifeboard/src/universe"
)

//ConsoleOut prints the board and a status line on every refresh
type ConsoleOut struct {
	u         universe.Universe
	w         io.Writer
	au        aurora.Aurora
	startTime time.Time
}

func NewConsoleOut(w io.Writer, colors bool) *ConsoleOut {
	return &ConsoleOut{w: w, au: aurora.NewAurora(colors)}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	var elapsed time.Duration
	if !c.startTime.IsZero() {
		elapsed = time.Since(c.startTime).Round(time.Millisecond)
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "\n%s generation %v, live cells %v, mode %v, elapsed %v\n",
		c.au.Cyan("#"), st.Generation, st.LiveCells, st.RunningMode, elapsed)
	c.renderBoard(&b, c.u.Cells())
	_, _ = c.w.Write(b.Bytes())
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	fmt.Fprintln(c.w, "Running configuration:")
	fmt.Fprintf(c.w, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.w, "  Interval: %v\n", o.Interval)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) renderBoard(b *bytes.Buffer, cells []universe.Cell) {
	width := c.u.Options().Width
	for i, cell := range cells {
		if cell.Living {
			b.WriteString(c.au.Green("██").String())
		} else {
			b.WriteString("  ")
		}
		if (i+1)%width == 0 {
			b.WriteByte('\n')
		}
	}
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
