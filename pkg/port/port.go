// Package port holds the definition of a physical receiver port
package port

// EventType indicates the type of change to the line level.
//
// A demodulating IR receiver idles high and pulls the line low while a carrier is
// detected, so a falling edge starts a mark and a rising edge ends it.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates a low to high event (end of an IR mark).
	RisingEdge
	// FallingEdge indicates a high to low event (start of an IR mark).
	FallingEdge
)

func (t EventType) String() string {
	switch t {
	case RisingEdge:
		return "rising"
	case FallingEdge:
		return "falling"
	default:
		return "unknown"
	}
}

// Event is a single line transition.
type Event struct {
	// Timestamp is the value of a free running microsecond counter when the event was detected.
	// The counter wraps, only differences between two timestamps are meaningful.
	Timestamp uint32
	// The type of state change event this structure represents.
	Type EventType
}

// Elapsed returns the number of counter ticks between prev and now for a counter of the
// given bit width. The difference is computed modulo 2^bits so a counter wraparound
// between the two timestamps is handled.
func Elapsed(now, prev uint32, bits uint) uint32 {
	d := now - prev
	if bits == 0 || bits >= 32 {
		return d
	}
	return d & (1<<bits - 1)
}
