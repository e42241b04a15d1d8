package blaster

import (
	"testing"
)

func TestLaserXRoundTrip(t *testing.T) {
	for _, team := range []LaserXTeam{LaserXBlue, LaserXRed, LaserXNeutral} {
		w, err := EncodeLaserX(team)
		if err != nil {
			t.Fatal(err)
		}
		state, p := (LaserXCodec{}).Decode(w.Pulses[1:])
		if state != Valid {
			t.Fatalf("%v: expected valid, got %v", team, state)
		}
		if m := p.(LaserXMessage); m.Team != team {
			t.Fatalf("%v: decoded %v", team, m.Team)
		}
		if Damage(p) != 1 {
			t.Fatalf("unexpected damage %d", Damage(p))
		}
	}
}

func TestLaserXBlueWaveform(t *testing.T) {
	w, err := EncodeLaserX(LaserXBlue)
	if err != nil {
		t.Fatal(err)
	}
	const (
		zero = LaserX0Bit
		one  = LaserX1Bit
	)
	// 0x51 = 0b01010001
	marks := []uint32{zero, one, zero, one, zero, zero, zero, one}
	if w.Pulses[0] != LaserXStartPulse {
		t.Fatalf("unexpected start pulse %d", w.Pulses[0])
	}
	for i, m := range marks {
		if w.Pulses[1+2*i] != LaserXSpace || w.Pulses[2+2*i] != m {
			t.Fatalf("bit %d: got %d/%d", i, w.Pulses[1+2*i], w.Pulses[2+2*i])
		}
	}
}

func TestLaserXUnknownTeamIsInvalid(t *testing.T) {
	w, _ := EncodeLaserX(LaserXRed)
	body := append([]uint32{}, w.Pulses[1:]...)
	// 0x52 -> 0x50
	body[13] = LaserX0Bit
	if state, _ := (LaserXCodec{}).Decode(body); state != Invalid {
		t.Fatalf("expected invalid team, got %v", state)
	}
}

func TestLaserXSpaceIsValidatedFirst(t *testing.T) {
	w, _ := EncodeLaserX(LaserXNeutral)
	body := append([]uint32{}, w.Pulses[1:]...)
	body[0] = LaserX1Bit
	if state, _ := (LaserXCodec{}).Decode(body); state != Invalid {
		t.Fatalf("expected invalid space, got %v", state)
	}
}

func TestParseLaserXTeam(t *testing.T) {
	team, err := ParseLaserXTeam("NEUTRAL")
	if err != nil || team != LaserXNeutral {
		t.Fatalf("got %v, %v", team, err)
	}
	if _, err = ParseLaserXTeam("green"); err == nil {
		t.Fatalf("expected error")
	}
}
