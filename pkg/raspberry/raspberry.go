// Package raspberry connects the receiver and the transmitter to gpio ports
package raspberry

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"radrx/pkg/port"
)

// EventBuffer is the capacity of the event channel of a Line.
const EventBuffer = 256

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrHardwareInit = errors.New("hardware init failed")
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line of the IR receiver.
type Line struct {
	gpiodLine *gpiod.Line
	// overruns counts events dropped because C was full
	overruns atomic.Uint64
	// send edge changes to channel
	C chan port.Event
}

// Open opens a GPIO character device, e.g. gpiochip0.
func Open(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHardwareInit, name, err)
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single line on a chip.
//
//	If granted, control is maintained until the Line is closed.
//	Both edges are reported to channel C without debouncing, the pulse durations
//	of the IR message are measured from the kernel timestamps.
func (c *Chip) NewLine(gpio int, terminator string) (*Line, error) {
	line := &Line{C: make(chan port.Event, EventBuffer)}

	options := []gpiod.LineReqOption{gpiod.WithEventHandler(line.handler), gpiod.WithBothEdges, gpiod.AsInput}
	switch terminator {
	case "pullup":
		options = append(options, gpiod.WithPullUp)
	case "pulldown":
		options = append(options, gpiod.WithPullDown)
	case "none":
	default:
		return nil, fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}

	l, err := c.gpiodChip.RequestLine(gpio, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: gpio %d: %v", ErrHardwareInit, gpio, err)
	}
	line.gpiodLine = l
	return line, nil
}

// handler is called from the gpiod event goroutine and must not block.
func (l *Line) handler(evt gpiod.LineEvent) {
	e, ok := toEvent(evt)
	if !ok {
		debug.ErrorLog.Printf("invalid line event type: %v", evt.Type)
		return
	}

	select {
	case l.C <- e:
	default:
		if l.overruns.Add(1) == 1 {
			debug.ErrorLog.Println("event buffer overrun")
		}
	}
}

// toEvent converts a gpiod line event into a port event with a wrapping microsecond timestamp.
func toEvent(evt gpiod.LineEvent) (port.Event, bool) {
	ts := uint32(evt.Timestamp / time.Microsecond)
	switch evt.Type {
	case gpiod.LineEventRisingEdge:
		return port.Event{Type: port.RisingEdge, Timestamp: ts}, true
	case gpiod.LineEventFallingEdge:
		return port.Event{Type: port.FallingEdge, Timestamp: ts}, true
	}
	return port.Event{}, false
}

// Overruns returns the number of events dropped because the receiver was too slow.
func (l *Line) Overruns() uint64 {
	return l.overruns.Load()
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to return.
// As a consequence the Close must not be called from the context of the event
// handler - the Close should be called from a different goroutine.
func (l *Line) Close() error {
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.C)
	return nil
}
