//go:build windows

package raspberry

import (
	"github.com/womat/debug"
)

// OutputPin logs the transitions of the IR emitter, there is no gpio memory on windows.
type OutputPin struct {
	gpioPin int
}

// NewOutputPin creates a new emulated output pin.
func NewOutputPin(p int) (*OutputPin, error) {
	return &OutputPin{gpioPin: p}, nil
}

// High switches the IR emitter on.
func (p *OutputPin) High() {
	debug.TraceLog.Printf("gpio %d high", p.gpioPin)
}

// Low switches the IR emitter off.
func (p *OutputPin) Low() {
	debug.TraceLog.Printf("gpio %d low", p.gpioPin)
}

// Pin returns the pin number that this OutputPin represents.
func (p *OutputPin) Pin() int {
	return p.gpioPin
}

func (p *OutputPin) Close() error {
	return nil
}
