package receiver

import (
	"sync/atomic"
)

// messageBuffer holds the samples of the message currently being assembled.
//
// The capture loop is the only writer: it stores a sample and then publishes it by
// storing the header. The header packs the generation (upper 32 bits) and the length
// (lower 32 bits), so a reader gets both with a single load. A reset starts a new
// generation with length zero.
type messageBuffer struct {
	samples []atomic.Uint32
	header  atomic.Uint64
}

func newMessageBuffer(capacity int) *messageBuffer {
	return &messageBuffer{samples: make([]atomic.Uint32, capacity)}
}

func splitHeader(h uint64) (gen uint32, n int) {
	return uint32(h >> 32), int(uint32(h))
}

func joinHeader(gen uint32, n int) uint64 {
	return uint64(gen)<<32 | uint64(uint32(n))
}

// capacity returns the maximum number of samples.
func (b *messageBuffer) capacity() int {
	return len(b.samples)
}

// len returns the number of published samples.
func (b *messageBuffer) len() int {
	_, n := splitHeader(b.header.Load())
	return n
}

// generation returns the current generation.
func (b *messageBuffer) generation() uint32 {
	gen, _ := splitHeader(b.header.Load())
	return gen
}

// append stores and publishes a sample.
// It returns false if the buffer is full, the sample is dropped in that case.
func (b *messageBuffer) append(sample uint32) bool {
	gen, n := splitHeader(b.header.Load())
	if n >= len(b.samples) {
		return false
	}
	b.samples[n].Store(sample)
	b.header.Store(joinHeader(gen, n+1))
	return true
}

// reset drops all samples and returns the new generation.
func (b *messageBuffer) reset() uint32 {
	gen := b.generation() + 1
	b.header.Store(joinHeader(gen, 0))
	return gen
}

// snapshot copies the published samples to dst.
// ok is false if the buffer was reset while copying; the copy is incomplete in that case.
func (b *messageBuffer) snapshot(dst []uint32) (gen uint32, samples []uint32, ok bool) {
	gen, n := splitHeader(b.header.Load())
	if n > cap(dst) {
		n = cap(dst)
	}
	samples = dst[:n]
	for i := range samples {
		samples[i] = b.samples[i].Load()
	}

	if g := b.generation(); g != gen {
		return gen, nil, false
	}
	return gen, samples, true
}
