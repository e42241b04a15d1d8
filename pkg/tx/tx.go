// Package tx transmits the messages of a light-tag blaster.
package tx

import (
	"errors"
	"sync"
	"time"

	"github.com/womat/debug"

	"radrx/pkg/blaster"
)

var ErrEmptyWaveform = errors.New("empty waveform")

// Output is a switchable IR emitter.
type Output interface {
	High()
	Low()
}

// Player plays waveforms on an Output.
type Player struct {
	sync.Mutex
	out   Output
	sleep func(time.Duration)
}

// NewPlayer returns a player for out, sleep defaults to time.Sleep.
func NewPlayer(out Output, sleep func(time.Duration)) *Player {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Player{out: out, sleep: sleep}
}

// Play transmits w RefreshCount+1 times. The repetitions are separated by twice lineClear (µs),
// so a receiver decodes every repetition as a message of its own.
// Play blocks until the waveform has been transmitted.
func (p *Player) Play(w blaster.Waveform, lineClear uint32) error {
	if w.Len() == 0 {
		return ErrEmptyWaveform
	}

	p.Lock()
	defer p.Unlock()

	gap := 2 * time.Duration(lineClear) * time.Microsecond
	for r := uint32(0); r <= w.RefreshCount; r++ {
		if r > 0 {
			p.sleep(gap)
		}
		for i, d := range w.Pulses {
			if i%2 == 0 {
				p.out.High()
			} else {
				p.out.Low()
			}
			p.sleep(time.Duration(d) * time.Microsecond)
		}
		p.out.Low()
	}
	return nil
}

// Blast encodes payload with codec c and transmits it.
func (p *Player) Blast(c blaster.Codec, payload blaster.Payload) error {
	w, err := c.Encode(payload)
	if err != nil {
		return err
	}

	debug.DebugLog.Printf("blast %v message %+v (%d pulses, %d repetitions)", c.Protocol(), payload, w.Len(), w.RefreshCount+1)
	return p.Play(w, c.Timing().LineClear)
}
