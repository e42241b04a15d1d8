package app

import (
	"sync"
	"time"

	"radrx/pkg/blaster"
	"radrx/pkg/mqtt"

	"github.com/womat/debug"
)

// Hit is a valid message received by the IR receiver.
type Hit struct {
	Time     time.Time        `json:"time"`
	Protocol blaster.Protocol `json:"protocol"`
	Damage   int              `json:"damage"`
	Payload  blaster.Payload  `json:"payload"`
}

// hitLog holds the last hit and the totals.
type hitLog struct {
	sync.RWMutex
	last   *Hit
	count  uint64
	damage uint64
}

func (l *hitLog) add(h Hit) {
	l.Lock()
	defer l.Unlock()
	l.last = &h
	l.count++
	l.damage += uint64(h.Damage)
}

// get returns the last hit (nil if none was received), the number of hits and the total damage.
func (l *hitLog) get() (last *Hit, count, damage uint64) {
	l.RLock()
	defer l.RUnlock()
	return l.last, l.count, l.damage
}

// handleHit is the receiver callback, it is called on the decode worker and must not block.
func (app *App) handleHit(p blaster.Protocol, payload blaster.Payload) {
	h := Hit{
		Time:     time.Now(),
		Protocol: p,
		Damage:   blaster.Damage(payload),
		Payload:  payload,
	}
	app.hits.add(h)
	debug.InfoLog.Printf("%v hit, damage %d: %+v", p, h.Damage, payload)

	if app.config.MQTT.Connection == "" {
		return
	}

	msg, err := mqtt.NewMessage(app.config.MQTT.Topic, h)
	if err != nil {
		debug.ErrorLog.Print(err)
		return
	}
	if err = app.mqtt.Publish(msg); err != nil {
		debug.ErrorLog.Printf("hit not published: %v", err)
	}
}
