//go:build !windows

package raspberry

import (
	"fmt"
	"sync"

	"github.com/warthog618/gpio"
)

var (
	// gpio memory is mapped once for all output pins
	mem  sync.Mutex
	refs int
)

// OutputPin gates the IR emitter of the transmitter.
type OutputPin struct {
	gpioPin *gpio.Pin
}

// NewOutputPin maps the GPIO memory range from /dev/gpiomem and sets pin as low output.
// The pin number provided is the BCM GPIO number.
func NewOutputPin(p int) (*OutputPin, error) {
	mem.Lock()
	defer mem.Unlock()

	if refs == 0 {
		if err := gpio.Open(); err != nil {
			return nil, fmt.Errorf("%w: gpiomem: %v", ErrHardwareInit, err)
		}
	}
	refs++

	pin := gpio.NewPin(p)
	pin.Low()
	pin.Output()
	return &OutputPin{gpioPin: pin}, nil
}

// High switches the IR emitter on.
func (p *OutputPin) High() {
	p.gpioPin.High()
}

// Low switches the IR emitter off.
func (p *OutputPin) Low() {
	p.gpioPin.Low()
}

// Pin returns the pin number that this OutputPin represents.
func (p *OutputPin) Pin() int {
	return p.gpioPin.Pin()
}

// Close sets the pin as input and unmaps GPIO memory with the last pin.
func (p *OutputPin) Close() error {
	mem.Lock()
	defer mem.Unlock()

	p.gpioPin.Low()
	p.gpioPin.Input()
	if refs--; refs == 0 {
		return gpio.Close()
	}
	return nil
}
