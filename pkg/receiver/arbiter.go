package receiver

import (
	"radrx/pkg/blaster"

	"github.com/womat/debug"
)

// tracker is the parse state of one protocol against the current message.
type tracker struct {
	codec   blaster.Codec
	timing  blaster.Timing
	state   blaster.ParseState
	payload blaster.Payload
}

func newTracker(c blaster.Codec) *tracker {
	return &tracker{codec: c, timing: c.Timing()}
}

func (t *tracker) reset() {
	t.state = blaster.AwaitingStart
	t.payload = nil
}

// advance runs the state machine of the protocol against the samples of a message:
//
//	AwaitingStart: the first sample must be a valid start pulse, otherwise the message is Invalid.
//	Incomplete:    wait for more samples until the message has the required length,
//	               a longer message is Invalid, a message of the required length is decoded.
//
// Invalid and Valid are terminal.
func (t *tracker) advance(samples []uint32) blaster.ParseState {
	if t.state == blaster.AwaitingStart {
		if len(samples) == 0 {
			return t.state
		}
		if !blaster.IsValidStartPulse(samples[0], t.timing.StartPulse) {
			t.state = blaster.Invalid
			return t.state
		}
		t.state = blaster.Incomplete
	}

	if t.state != blaster.Incomplete {
		return t.state
	}

	switch n := len(samples); {
	case n < t.timing.Len:
	case n > t.timing.Len:
		debug.TraceLog.Printf("%v: message overrun (%d samples)", t.codec.Protocol(), n)
		t.state = blaster.Invalid
	default:
		t.state, t.payload = t.codec.Decode(samples[1:n])
		if t.state != blaster.Valid {
			t.state, t.payload = blaster.Invalid, nil
		}
	}
	return t.state
}

// resolution is the outcome of a message.
type resolution struct {
	// gen is the generation of the message buffer the resolution belongs to.
	gen uint32
	// payload is nil if no protocol accepted the message.
	payload blaster.Payload
	// lineClear is the quiet time (µs) that ends the message.
	lineClear uint32
}

// arbiter runs all enabled protocols against one message.
// It is owned by the decode worker.
type arbiter struct {
	trackers     []*tracker
	maxLineClear uint32
	// gen is the generation of the message the trackers belong to.
	gen uint32
	// resolved is set once the current message has been resolved.
	resolved bool
}

func newArbiter(codecs []blaster.Codec) *arbiter {
	a := &arbiter{maxLineClear: blaster.MaxLineClear(codecs)}
	for _, c := range codecs {
		a.trackers = append(a.trackers, newTracker(c))
	}
	return a
}

// reset prepares the trackers for the message of generation gen.
func (a *arbiter) reset(gen uint32) {
	for _, t := range a.trackers {
		t.reset()
	}
	a.gen = gen
	a.resolved = false
}

// process runs one decode pass over the samples of the message of generation gen.
// A message is resolved as soon as one protocol is valid or all protocols are invalid;
// protocols are tried in priority order and the first valid one wins.
// ok is true exactly once per generation, when the message is resolved.
func (a *arbiter) process(gen uint32, samples []uint32) (res resolution, ok bool) {
	if gen != a.gen {
		a.reset(gen)
	}
	if a.resolved {
		return resolution{}, false
	}

	allInvalid := true
	for _, t := range a.trackers {
		switch t.advance(samples) {
		case blaster.Valid:
			a.resolved = true
			return resolution{gen: gen, payload: t.payload, lineClear: t.timing.LineClear}, true
		case blaster.Invalid:
		default:
			allInvalid = false
		}
	}

	if !allInvalid {
		return resolution{}, false
	}
	a.resolved = true
	return resolution{gen: gen, lineClear: a.maxLineClear}, true
}

// states returns the parse state of every protocol.
func (a *arbiter) states() map[blaster.Protocol]blaster.ParseState {
	m := make(map[blaster.Protocol]blaster.ParseState, len(a.trackers))
	for _, t := range a.trackers {
		m[t.codec.Protocol()] = t.state
	}
	return m
}
