package raspberry

import (
	"testing"
	"time"

	"github.com/warthog618/gpiod"

	"radrx/pkg/port"
)

func TestToEvent(t *testing.T) {
	// the kernel timestamp wraps into the 32 bit µs counter
	ts := time.Duration(1<<32+5) * time.Microsecond

	e, ok := toEvent(gpiod.LineEvent{Timestamp: ts + 999*time.Nanosecond, Type: gpiod.LineEventFallingEdge})
	if !ok || e.Type != port.FallingEdge || e.Timestamp != 5 {
		t.Fatalf("unexpected event %+v", e)
	}
	e, ok = toEvent(gpiod.LineEvent{Timestamp: ts, Type: gpiod.LineEventRisingEdge})
	if !ok || e.Type != port.RisingEdge {
		t.Fatalf("unexpected event %+v", e)
	}
	if _, ok = toEvent(gpiod.LineEvent{Type: gpiod.LineEventType(0)}); ok {
		t.Fatalf("expected an invalid event type")
	}
}

func TestLineHandlerOverrun(t *testing.T) {
	l := &Line{C: make(chan port.Event, 1)}
	for i := 0; i < 3; i++ {
		l.handler(gpiod.LineEvent{Type: gpiod.LineEventRisingEdge})
	}
	if l.Overruns() != 2 {
		t.Fatalf("expected 2 overruns, got %d", l.Overruns())
	}
}
