package raspberry

import (
	"sync"
	"time"

	"github.com/womat/debug"

	"radrx/pkg/port"
)

// Emulator is an IR link without hardware: the transitions of an emulated emitter are
// delivered as line events of a receiver on channel C. The receiver output idles high
// and is low while the emitter is on.
//
// The timestamps come from a virtual clock advanced by Sleep only, so pulse widths are
// exact. Sleep also waits in real time to keep the receiver timers in step.
type Emulator struct {
	sync.Mutex
	now    uint32
	on     bool
	closed bool
	C      chan port.Event
}

// NewEmulator returns an emulated link with the clock at start µs.
func NewEmulator(start uint32) *Emulator {
	return &Emulator{now: start, C: make(chan port.Event, EventBuffer)}
}

// High switches the emulated emitter on.
func (e *Emulator) High() {
	e.set(true)
}

// Low switches the emulated emitter off.
func (e *Emulator) Low() {
	e.set(false)
}

// Sleep advances the clock by d and waits for d.
func (e *Emulator) Sleep(d time.Duration) {
	e.Lock()
	e.now += uint32(d / time.Microsecond)
	e.Unlock()

	time.Sleep(d)
}

func (e *Emulator) set(on bool) {
	e.Lock()
	defer e.Unlock()

	if e.closed || e.on == on {
		return
	}
	e.on = on

	evt := port.Event{Type: port.RisingEdge, Timestamp: e.now}
	if on {
		evt.Type = port.FallingEdge
	}

	select {
	case e.C <- evt:
	default:
		debug.ErrorLog.Println("emulator event buffer overrun")
	}
}

// Close closes channel C.
func (e *Emulator) Close() error {
	e.Lock()
	defer e.Unlock()

	if !e.closed {
		e.closed = true
		close(e.C)
	}
	return nil
}
