package main

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora/v4"

	"github.com/sarchlab/rvscalar/timing/trace"
)

// consoleTracer prints every event, with a separator line between cycles.
type consoleTracer struct {
	out       io.Writer
	au        *aurora.Aurora
	lastCycle uint64
}

func newConsoleTracer(out io.Writer, au *aurora.Aurora) *consoleTracer {
	return &consoleTracer{out: out, au: au}
}

func (c *consoleTracer) Record(e trace.Event) {
	if e.Cycle != c.lastCycle {
		c.lastCycle = e.Cycle
		_, _ = fmt.Fprintln(c.out, c.au.Faint(fmt.Sprintf("----- cycle %d -----", e.Cycle)))
	}

	_, _ = fmt.Fprintln(c.out, c.paint(e))
}

func (c *consoleTracer) paint(e trace.Event) aurora.Value {
	line := e.String()
	switch e.Kind {
	case trace.KindIssue:
		return c.au.Green(line)
	case trace.KindComplete:
		return c.au.Cyan(line)
	case trace.KindHazardStall:
		return c.au.Yellow(line)
	case trace.KindUnitStall:
		return c.au.Magenta(line)
	case trace.KindDrop:
		return c.au.Red(line)
	default:
		return c.au.Faint(line)
	}
}
