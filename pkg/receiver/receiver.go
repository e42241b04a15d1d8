// Package receiver decodes the pulse trains of a light-tag IR receiver into hit events.
//
// Two goroutines cooperate. The capture loop turns line events into pulse samples,
// appends them to the message buffer and owns the line clear timer. The decode worker
// runs all enabled protocols against a snapshot of the buffer and reports the outcome
// of every message back to the capture loop.
package receiver

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"radrx/pkg/blaster"
	"radrx/pkg/port"
	"radrx/pkg/work"

	"github.com/womat/debug"
)

var (
	ErrNoEventSource      = errors.New("no event source")
	ErrAlreadyInitialized = errors.New("receiver already initialized")
	ErrCounterBits        = errors.New("invalid counter width")
	ErrClosed             = errors.New("receiver closed")
)

// Callback is called from the decode worker once per valid message.
type Callback func(protocol blaster.Protocol, payload blaster.Payload)

// Options configures a Receiver.
type Options struct {
	// Codecs are the enabled protocols in priority order.
	Codecs []blaster.Codec
	// CounterBits is the width of the timestamp counter, default 32.
	CounterBits uint
	// Timer is the line clear timer, default NewTimer().
	Timer Timer
}

// phaseType represents the state of the message assembly.
type phaseType int

const (
	// idle waits for the leading edge of a start pulse.
	idle phaseType = iota
	// assembling records samples of a message.
	assembling
	// lineClear waits until the line is quiet after a resolved message.
	lineClear
)

// Stats holds the receiver counters.
type Stats struct {
	// Valid is the number of valid messages per protocol.
	Valid map[blaster.Protocol]uint64
	// Invalid is the number of messages no protocol accepted.
	Invalid uint64
	// Abandoned is the number of messages that stopped before they were resolved.
	Abandoned uint64
	// Dropped is the number of samples ignored because the message buffer was full.
	Dropped uint64
}

// Receiver is the multi-protocol pulse train decoder.
type Receiver struct {
	// events delivers the line transitions.
	events <-chan port.Event
	codecs []blaster.Codec
	bits   uint

	// maxLineClear is the line clear time (µs) after an invalid message and while trailing
	// pulses are seen.
	maxLineClear uint32
	// stallTimeout (µs) abandons a message when the line stays quiet before it is resolved.
	stallTimeout uint32
	// minStartPulse (µs), a shorter first sample is invalid for every protocol.
	minStartPulse uint32

	buffer  *messageBuffer
	arbiter *arbiter
	decode  *work.Item
	timer   Timer
	// scratch receives the buffer snapshot of a decode pass.
	scratch []uint32

	// resolved carries message outcomes from the decode worker to the capture loop.
	resolved chan resolution

	// phase and last are owned by the capture loop.
	phase phaseType
	last  uint32

	cl       sync.RWMutex
	callback Callback

	valid     map[blaster.Protocol]*atomic.Uint64
	invalid   atomic.Uint64
	abandoned atomic.Uint64
	dropped   atomic.Uint64

	started atomic.Bool
	// sourceClosed is closed when the event source is closed.
	sourceClosed chan struct{}
	quit         chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// New initials a new receiver reading line events from events.
func New(events <-chan port.Event, opts Options) *Receiver {
	r := Receiver{
		events:   events,
		codecs:   opts.Codecs,
		bits:     opts.CounterBits,
		timer:    opts.Timer,
		resolved: make(chan resolution, 1),
		valid:    map[blaster.Protocol]*atomic.Uint64{},

		sourceClosed: make(chan struct{}),
		quit:         make(chan struct{}),
	}

	if r.bits == 0 {
		r.bits = 32
	}
	if r.timer == nil {
		r.timer = NewTimer()
	}
	for _, c := range r.codecs {
		r.valid[c.Protocol()] = new(atomic.Uint64)
	}
	return &r
}

// SetCallback sets the function called for every valid message.
func (r *Receiver) SetCallback(cb Callback) {
	r.cl.Lock()
	defer r.cl.Unlock()
	r.callback = cb
}

// Init validates the configuration and starts processing line events.
func (r *Receiver) Init() error {
	switch {
	case r.events == nil:
		return ErrNoEventSource
	case len(r.codecs) == 0:
		return blaster.ErrNoProtocols
	case r.bits > 32:
		return fmt.Errorf("%w: %d bits", ErrCounterBits, r.bits)
	}

	select {
	case <-r.quit:
		return ErrClosed
	default:
	}
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	r.setup()

	protocols := make([]blaster.Protocol, 0, len(r.codecs))
	for _, c := range r.codecs {
		protocols = append(protocols, c.Protocol())
	}
	debug.InfoLog.Printf("receiver started: protocols %v, capacity %d samples, line clear %dµs",
		protocols, r.buffer.capacity(), r.maxLineClear)

	r.wg.Add(2)
	go r.capture()
	go func() {
		defer r.wg.Done()
		r.decode.Run(r.quit)
	}()
	return nil
}

// setup allocates the message buffer and derives the timing of the enabled protocols.
func (r *Receiver) setup() {
	r.maxLineClear = blaster.MaxLineClear(r.codecs)
	r.stallTimeout = blaster.MaxStartPulse(r.codecs) + r.maxLineClear
	r.minStartPulse = blaster.MinStartPulse(r.codecs)
	r.buffer = newMessageBuffer(blaster.MaxLen(r.codecs))
	r.scratch = make([]uint32, 0, r.buffer.capacity())
	r.arbiter = newArbiter(r.codecs)
	r.arbiter.reset(r.buffer.generation())
	r.decode = work.New(r.decodePass)
}

// Close stops the capture loop and the decode worker.
// The event source is not closed.
func (r *Receiver) Close() error {
	r.once.Do(func() {
		close(r.quit)
		r.wg.Wait()
		r.timer.Stop()
	})
	return nil
}

// SourceClosed returns a channel that is closed when the event source is closed.
// The receiver keeps running but no more messages are received.
func (r *Receiver) SourceClosed() <-chan struct{} {
	return r.sourceClosed
}

// Stats returns a copy of the receiver counters.
func (r *Receiver) Stats() Stats {
	s := Stats{
		Valid:     make(map[blaster.Protocol]uint64, len(r.valid)),
		Invalid:   r.invalid.Load(),
		Abandoned: r.abandoned.Load(),
		Dropped:   r.dropped.Load(),
	}
	for p, n := range r.valid {
		s.Valid[p] = n.Load()
	}
	return s
}

// capture receives line events and timer expiries. Handling both on one goroutine
// orders every expiry with respect to the edges around it.
func (r *Receiver) capture() {
	defer r.wg.Done()

	events := r.events
	for {
		select {
		case <-r.quit:
			return
		case evt, open := <-events:
			if !open {
				debug.InfoLog.Print("event source closed")
				close(r.sourceClosed)
				events = nil
				continue
			}
			r.edge(evt)
		case res := <-r.resolved:
			r.resolve(res)
		case <-r.timer.C():
			r.expire()
		}
	}
}

// edge handles a single line transition.
//   - lineClear: the transition delays the end of the line clear period, nothing is recorded.
//   - idle: the transition is the leading edge of a start pulse and sets the time reference.
//   - assembling: the elapsed time since the previous transition is appended to the message,
//     a rising edge (end of a mark) schedules a decode pass. A start pulse shorter than any
//     protocol accepts invalidates the message without a decode pass.
func (r *Receiver) edge(evt port.Event) {
	elapsed := port.Elapsed(evt.Timestamp, r.last, r.bits)
	r.last = evt.Timestamp

	switch r.phase {
	case lineClear:
		r.timer.Reset(micros(r.maxLineClear))
		return
	case idle:
		r.phase = assembling
		r.timer.Reset(micros(r.stallTimeout))
		return
	}

	if r.buffer.len() == 0 && elapsed < r.minStartPulse {
		r.invalid.Add(1)
		debug.DebugLog.Printf("invalid message: %dµs start pulse", elapsed)
		r.phase = lineClear
		r.timer.Reset(micros(r.maxLineClear))
		return
	}

	if !r.buffer.append(elapsed) {
		r.dropped.Add(1)
		debug.TraceLog.Printf("message buffer full, %dµs sample dropped", elapsed)
	}
	r.timer.Reset(micros(r.stallTimeout))

	if evt.Type == port.RisingEdge {
		r.decode.Submit()
	}
}

// resolve starts the line clear period of a resolved message.
func (r *Receiver) resolve(res resolution) {
	if res.gen != r.buffer.generation() || r.phase != assembling {
		// the message was abandoned before the worker resolved it
		return
	}
	r.phase = lineClear
	r.timer.Reset(micros(res.lineClear))
}

// expire drops the current message and waits for the next one.
func (r *Receiver) expire() {
	debug.TraceLog.Printf("timer expired (%v)", r.phase)
	switch r.phase {
	case idle:
		return
	case assembling:
		r.abandoned.Add(1)
		debug.DebugLog.Printf("message abandoned after %d samples", r.buffer.len())
	}
	r.buffer.reset()
	r.phase = idle
}

// decodePass is the decode worker handler.
func (r *Receiver) decodePass() {
	gen, samples, ok := r.buffer.snapshot(r.scratch)
	if !ok {
		debug.TraceLog.Print("message buffer reset during snapshot")
		return
	}

	res, ok := r.arbiter.process(gen, samples)
	if !ok {
		return
	}

	select {
	case r.resolved <- res:
	case <-r.quit:
		return
	}

	if res.payload == nil {
		r.invalid.Add(1)
		debug.DebugLog.Printf("invalid message (%d samples): %v", len(samples), r.arbiter.states())
		return
	}

	p := res.payload.Protocol()
	if n, ok := r.valid[p]; ok {
		n.Add(1)
	}
	debug.DebugLog.Printf("%v message received: %+v", p, res.payload)

	r.cl.RLock()
	cb := r.callback
	r.cl.RUnlock()
	if cb != nil {
		cb(p, res.payload)
	}
}

// String returns the receiver phase, used in log messages.
func (p phaseType) String() string {
	switch p {
	case idle:
		return "idle"
	case assembling:
		return "assembling"
	case lineClear:
		return "line clear"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
