package receiver

import (
	"testing"
)

func TestBufferAppendAndOverflow(t *testing.T) {
	b := newMessageBuffer(3)
	for i := uint32(1); i <= 3; i++ {
		if !b.append(i * 100) {
			t.Fatalf("append %d failed", i)
		}
	}
	if b.append(400) {
		t.Fatalf("append to a full buffer succeeded")
	}
	if n := b.len(); n != 3 {
		t.Fatalf("expected 3 samples, got %d", n)
	}

	gen, samples, ok := b.snapshot(make([]uint32, 0, b.capacity()))
	if !ok || gen != 0 {
		t.Fatalf("unexpected snapshot gen %d, ok %v", gen, ok)
	}
	for i, s := range samples {
		if s != uint32(i+1)*100 {
			t.Errorf("sample %d: got %d", i, s)
		}
	}
}

func TestBufferReset(t *testing.T) {
	b := newMessageBuffer(4)
	b.append(1)
	b.append(2)

	if gen := b.reset(); gen != 1 {
		t.Fatalf("expected generation 1, got %d", gen)
	}
	if b.len() != 0 {
		t.Fatalf("expected an empty buffer after reset")
	}

	b.append(7)
	gen, samples, ok := b.snapshot(make([]uint32, 0, 4))
	if !ok || gen != 1 || len(samples) != 1 || samples[0] != 7 {
		t.Fatalf("unexpected snapshot %d %v %v", gen, samples, ok)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := newMessageBuffer(2)
	b.append(10)
	_, samples, _ := b.snapshot(make([]uint32, 0, 2))
	b.reset()
	b.append(20)
	if samples[0] != 10 {
		t.Fatalf("snapshot changed to %d", samples[0])
	}
}

func TestSnapshotLimitedByDestination(t *testing.T) {
	b := newMessageBuffer(4)
	for i := uint32(0); i < 4; i++ {
		b.append(i)
	}
	_, samples, ok := b.snapshot(make([]uint32, 0, 2))
	if !ok || len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %v", samples)
	}
}

func TestHeader(t *testing.T) {
	gen, n := splitHeader(joinHeader(0xDEADBEEF, 41))
	if gen != 0xDEADBEEF || n != 41 {
		t.Fatalf("got %x/%d", gen, n)
	}
}
