package blaster

import (
	"fmt"
)

// codecs lists all supported codecs in default priority order.
var codecs = []Codec{RadCodec{}, DynastyCodec{}, LaserXCodec{}}

// Names returns the names of all supported protocols in default priority order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for _, c := range codecs {
		names = append(names, c.Protocol().String())
	}
	return names
}

// Lookup returns the codec of the named protocol.
func Lookup(name string) (Codec, error) {
	p, err := ParseProtocol(name)
	if err != nil {
		return nil, err
	}
	for _, c := range codecs {
		if c.Protocol() == p {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, name)
}

// Codecs returns the codecs of the named protocols. The order of names is the decoding
// priority: if two protocols accept the same message, the first one wins.
func Codecs(names ...string) ([]Codec, error) {
	if len(names) == 0 {
		return nil, ErrNoProtocols
	}

	list := make([]Codec, 0, len(names))
	seen := map[Protocol]bool{}
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[c.Protocol()] {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateProtocol, c.Protocol())
		}
		seen[c.Protocol()] = true
		list = append(list, c)
	}
	return list, nil
}

// MaxLen returns the longest message length (samples) of the codecs.
// It is the capacity of a message buffer able to hold any of their messages.
func MaxLen(list []Codec) int {
	n := 0
	for _, c := range list {
		if l := c.Timing().Len; l > n {
			n = l
		}
	}
	return n
}

// MaxLineClear returns the longest line clear time (µs) of the codecs.
func MaxLineClear(list []Codec) uint32 {
	var d uint32
	for _, c := range list {
		if l := c.Timing().LineClear; l > d {
			d = l
		}
	}
	return d
}

// MinStartPulse returns the shortest duration (µs) accepted as a start pulse by any of the codecs.
func MinStartPulse(list []Codec) uint32 {
	var d uint32
	for i, c := range list {
		l := c.Timing().StartPulse - StartPulseMargin
		if i == 0 || l < d {
			d = l
		}
	}
	return d
}

// MaxStartPulse returns the longest duration (µs) accepted as a start pulse by any of the codecs.
func MaxStartPulse(list []Codec) uint32 {
	var d uint32
	for _, c := range list {
		if l := c.Timing().StartPulse + StartPulseMargin; l > d {
			d = l
		}
	}
	return d
}
