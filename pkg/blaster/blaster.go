// Package blaster decodes and encodes the infrared messages of hand-held light-tag blasters.
//
// A message is a sequence of pulse samples, the elapsed time in microseconds between two
// consecutive line transitions. The first sample is the start pulse (an IR mark), followed
// by alternating space and mark durations. Every supported wire format is implemented by a
// Codec; the receiver runs all enabled codecs against the same samples.
package blaster

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// StartPulseMargin is the tolerance (µs) of a valid start pulse.
	StartPulseMargin = 500
	// BitMargin is the tolerance (µs) of a valid bit pulse.
	BitMargin = 125

	// DefaultRefreshCount is the number of extra repetitions of a transmitted waveform.
	DefaultRefreshCount = 2
)

var (
	ErrUnknownProtocol    = errors.New("unknown protocol")
	ErrNoProtocols        = errors.New("no protocol enabled")
	ErrDuplicateProtocol  = errors.New("protocol enabled twice")
	ErrUnsupportedPayload = errors.New("unsupported payload")
	ErrUnknownTeam        = errors.New("unknown team")
	ErrUnknownWeapon      = errors.New("unknown weapon")
	ErrFieldRange         = errors.New("field value out of range")
)

// Protocol tags the wire format of a message.
type Protocol int

const (
	// Rad is the native 16 bit message format.
	Rad Protocol = iota
	// Dynasty is the format of Dynasty Toys blasters.
	Dynasty
	// LaserX is the format of Laser X blasters.
	LaserX
)

func (p Protocol) String() string {
	switch p {
	case Rad:
		return "rad"
	case Dynasty:
		return "dynasty"
	case LaserX:
		return "laserx"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

// MarshalText encodes the protocol by its name.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseProtocol returns the protocol of the given name (case insensitive).
func ParseProtocol(name string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rad":
		return Rad, nil
	case "dynasty":
		return Dynasty, nil
	case "laserx", "laser_x", "laser-x":
		return LaserX, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
	}
}

// ParseState is the parse progress of one protocol against the current message.
type ParseState int

const (
	// AwaitingStart requires a valid start pulse before parsing.
	AwaitingStart ParseState = iota
	// Incomplete means not enough of the message has been received.
	Incomplete
	// Invalid means the message is not going to work out for this protocol.
	Invalid
	// Valid means the message is valid.
	Valid
)

func (s ParseState) String() string {
	switch s {
	case AwaitingStart:
		return "awaiting start"
	case Incomplete:
		return "incomplete"
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further sample can change the state for the current message.
func (s ParseState) Terminal() bool {
	return s == Invalid || s == Valid
}

// Timing holds the timing table entry of a protocol.
type Timing struct {
	// Len is the number of samples of a message, including the start pulse.
	Len int
	// StartPulse is the nominal start pulse duration (µs).
	StartPulse uint32
	// LineClear is the quiet time (µs) after the final mark that ends a message.
	LineClear uint32
}

// IsValidStartPulse reports whether value is within StartPulseMargin of target.
func IsValidStartPulse(value, target uint32) bool {
	return within(value, target, StartPulseMargin)
}

// IsValidBitPulse reports whether value is within BitMargin of target.
func IsValidBitPulse(value, target uint32) bool {
	return within(value, target, BitMargin)
}

func within(value, target, margin uint32) bool {
	return value+margin >= target && value <= target+margin
}

// Payload is a decoded message. The concrete type is one of RadMessage, DynastyMessage
// or LaserXMessage.
type Payload interface {
	// Protocol returns the wire format the payload was decoded from.
	Protocol() Protocol
	payload()
}

// Damage returns the number of hit points a payload takes from the receiving player.
func Damage(p Payload) int {
	switch m := p.(type) {
	case RadMessage:
		return int(m.Damage)
	case DynastyMessage:
		return m.Weapon.Damage()
	case LaserXMessage:
		return laserXDamage
	default:
		return 0
	}
}

// Codec is the decoder and encoder of one wire format.
type Codec interface {
	// Protocol returns the tag of the wire format.
	Protocol() Protocol
	// Timing returns the timing table entry.
	Timing() Timing
	// Decode parses the samples of a message following the start pulse.
	// Fewer samples than required are Incomplete, more are Invalid.
	// Decode is a pure function of body.
	Decode(body []uint32) (ParseState, Payload)
	// Encode returns the waveform transmitting p.
	Encode(p Payload) (Waveform, error)
}

// Waveform is a transmittable pulse sequence.
type Waveform struct {
	// RefreshCount is the number of extra repetitions of Pulses.
	RefreshCount uint32
	// Pulses are durations (µs) starting with the start mark, then alternating space and mark.
	Pulses []uint32
}

// Len returns the number of pulses.
func (w Waveform) Len() int {
	return len(w.Pulses)
}

// bodyState checks the sample count of a message body against the timing table.
// ok is true if the body has exactly the required length.
func bodyState(body []uint32, t Timing) (state ParseState, ok bool) {
	switch n := t.Len - 1; {
	case len(body) < n:
		return Incomplete, false
	case len(body) > n:
		return Invalid, false
	}
	return Incomplete, true
}

// classify maps a duration to the bit whose nominal symbol duration is within BitMargin.
func classify(d, zero, one uint32) (uint32, bool) {
	switch {
	case IsValidBitPulse(d, zero):
		return 0, true
	case IsValidBitPulse(d, one):
		return 1, true
	}
	return 0, false
}

// symbolReader collects classified symbols into fields, most significant bit first.
type symbolReader struct {
	next func() (uint32, bool)
}

func (r symbolReader) field(width int) (uint32, bool) {
	var v uint32
	for i := 0; i < width; i++ {
		b, ok := r.next()
		if !ok {
			return 0, false
		}
		v = v<<1 | b
	}
	return v, true
}

// symbolWriter appends the symbols of fields, most significant bit first.
type symbolWriter struct {
	pulses []uint32
	symbol func(bit uint32) []uint32
}

func (w *symbolWriter) field(v uint32, width int) {
	for i := width - 1; i >= 0; i-- {
		w.pulses = append(w.pulses, w.symbol(v>>uint(i)&1)...)
	}
}
