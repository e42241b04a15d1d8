package app

import (
	"fmt"
	"time"

	"radrx/pkg/app/config"
	"radrx/pkg/blaster"
	"radrx/pkg/raspberry"
	"radrx/pkg/tx"

	"github.com/womat/debug"
)

// Shot is a message to transmit.
type Shot struct {
	Codec   blaster.Codec
	Payload blaster.Payload
}

// NewShot returns the shot given by protocol, team and weapon names.
func NewShot(protocol, team, weapon string) (Shot, error) {
	c, err := blaster.Lookup(protocol)
	if err != nil {
		return Shot{}, err
	}
	p, err := blaster.NewPayload(c.Protocol(), team, weapon)
	if err != nil {
		return Shot{}, fmt.Errorf("%v shot: %w", c.Protocol(), err)
	}
	return Shot{Codec: c, Payload: p}, nil
}

// Blast transmits a shot on the IR emitter of the tx gpio.
func Blast(cfg *config.Config, shot Shot) error {
	pin, err := raspberry.NewOutputPin(cfg.Tx.Gpio)
	if err != nil {
		return err
	}
	defer func() { _ = pin.Close() }()

	debug.InfoLog.Printf("blast %v on gpio %d", shot.Codec.Protocol(), pin.Pin())
	return tx.NewPlayer(pin, nil).Blast(shot.Codec, shot.Payload)
}

// runEmulatedBlaster periodically transmits the configured shot into the emulated receiver.
//  It's designed to run in a separate go function to not block the main go function.
func (app *App) runEmulatedBlaster() {
	shot, err := NewShot(app.config.Tx.Protocol, app.config.Tx.Team, app.config.Tx.Weapon)
	if err != nil {
		debug.ErrorLog.Printf("emulated blaster: %v", err)
		return
	}

	player := tx.NewPlayer(app.emulator, app.emulator.Sleep)
	ticker := time.NewTicker(app.config.Tx.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-app.quit:
			return
		case <-ticker.C:
			if err = player.Blast(shot.Codec, shot.Payload); err != nil {
				debug.ErrorLog.Printf("emulated blaster: %v", err)
			}
		}
	}
}
