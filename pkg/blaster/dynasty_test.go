package blaster

import (
	"errors"
	"testing"
)

var (
	allDynastyTeams   = []DynastyTeam{DynastyBlue, DynastyRed, DynastyGreen, DynastyWhite}
	allDynastyWeapons = []DynastyWeapon{DynastyPistol, DynastyShotgun, DynastyRocket}
)

func TestDynastyRoundTrip(t *testing.T) {
	c := DynastyCodec{}
	for _, team := range allDynastyTeams {
		for _, weapon := range allDynastyWeapons {
			w, err := EncodeDynasty(team, weapon)
			if err != nil {
				t.Fatalf("%v %v: %v", team, weapon, err)
			}
			if w.Len() != DynastyLen {
				t.Fatalf("%v %v: %d pulses", team, weapon, w.Len())
			}

			state, p := c.Decode(w.Pulses[1:])
			if state != Valid {
				t.Fatalf("%v %v: expected valid, got %v", team, weapon, state)
			}
			m := p.(DynastyMessage)
			if m.Team != team || m.Weapon != weapon {
				t.Fatalf("%v %v: decoded %v %v", team, weapon, m.Team, m.Weapon)
			}
			if Damage(p) != weapon.Damage() {
				t.Fatalf("%v: damage %d", weapon, Damage(p))
			}
		}
	}
}

// pulse tables captured from dynasty turrets
func TestDynastyKnownCodes(t *testing.T) {
	const (
		s = Dynasty0Bit
		l = Dynasty1Bit
	)
	prefix := []uint32{DynastyStartPulse, s, s, s, s, s, s, s, s, l, s, l, s, l, s, l, s}

	tests := []struct {
		team   DynastyTeam
		weapon DynastyWeapon
		bits   []uint32
	}{
		{DynastyRed, DynastyPistol, []uint32{s, s, s, s, s, s, l, s, s, s, s, s, s, s, s, l, s, s, s, s, s, l, l, l}},
		{DynastyWhite, DynastyRocket, []uint32{s, s, s, s, s, l, s, s, s, s, s, s, s, s, l, l, s, s, s, s, l, l, s, s}},
		{DynastyBlue, DynastyShotgun, []uint32{s, s, s, s, s, s, s, l, s, s, s, s, s, s, l, s, s, s, s, s, s, l, l, l}},
	}

	for _, tt := range tests {
		w, err := EncodeDynasty(tt.team, tt.weapon)
		if err != nil {
			t.Fatal(err)
		}
		want := append(append([]uint32{}, prefix...), tt.bits...)
		if len(w.Pulses) != len(want) {
			t.Fatalf("%v %v: length %d, want %d", tt.team, tt.weapon, len(w.Pulses), len(want))
		}
		for i := range want {
			if w.Pulses[i] != want[i] {
				t.Fatalf("%v %v: pulse %d is %d, want %d", tt.team, tt.weapon, i, w.Pulses[i], want[i])
			}
		}
	}
}

func TestDynastyPreambleMismatch(t *testing.T) {
	w, err := EncodeDynasty(DynastyRed, DynastyPistol)
	if err != nil {
		t.Fatal(err)
	}
	body := append([]uint32{}, w.Pulses[1:]...)
	// flip the least significant preamble bit
	body[15] = Dynasty1Bit
	if state, _ := (DynastyCodec{}).Decode(body); state != Invalid {
		t.Fatalf("expected invalid, got %v", state)
	}

	// garbage after a wrong preamble is still invalid, not a parse of the fields
	for i := 16; i < len(body); i++ {
		body[i] = 1
	}
	if state, _ := (DynastyCodec{}).Decode(body); state != Invalid {
		t.Fatalf("expected invalid, got %v", state)
	}
}

func TestDynastyChecksumSensitivity(t *testing.T) {
	c := DynastyCodec{}
	for _, team := range allDynastyTeams {
		for _, weapon := range allDynastyWeapons {
			w, _ := EncodeDynasty(team, weapon)
			// team, weapon and checksum are the 24 bits after the preamble
			for i := 1 + dynastyPreambleBits; i < len(w.Pulses); i++ {
				body := append([]uint32{}, w.Pulses[1:]...)
				j := i - 1
				if body[j] == Dynasty0Bit {
					body[j] = Dynasty1Bit
				} else {
					body[j] = Dynasty0Bit
				}
				if state, _ := c.Decode(body); state != Invalid {
					t.Fatalf("%v %v: flipped bit %d not detected", team, weapon, i)
				}
			}
		}
	}
}

func TestDynastyUnclassifiedBit(t *testing.T) {
	w, _ := EncodeDynasty(DynastyGreen, DynastyShotgun)
	body := append([]uint32{}, w.Pulses[1:]...)
	body[30] = (Dynasty0Bit + Dynasty1Bit) / 2
	if state, _ := (DynastyCodec{}).Decode(body); state != Invalid {
		t.Fatalf("expected invalid, got %v", state)
	}
}

func TestDynastyChecksumTable(t *testing.T) {
	tests := []struct {
		team   DynastyTeam
		weapon DynastyWeapon
		sum    uint8
	}{
		{DynastyBlue, DynastyPistol, 6},
		{DynastyRed, DynastyShotgun, 8},
		{DynastyWhite, DynastyShotgun, 11},
		{DynastyRed, DynastyRocket, 9},
		{DynastyGreen, DynastyRocket, 11},
		{DynastyWhite, DynastyRocket, 12},
	}
	for _, tt := range tests {
		sum, ok := DynastyChecksum(tt.team, tt.weapon)
		if !ok || sum != tt.sum {
			t.Errorf("%v %v: got %d/%v, want %d", tt.team, tt.weapon, sum, ok, tt.sum)
		}
	}

	if _, ok := DynastyChecksum(5, DynastyPistol); ok {
		t.Errorf("unknown team accepted")
	}
	if _, ok := DynastyChecksum(DynastyRed, 4); ok {
		t.Errorf("unknown weapon accepted")
	}
}

func TestEncodeDynastyRejectsUnknown(t *testing.T) {
	if _, err := EncodeDynasty(0, DynastyPistol); !errors.Is(err, ErrUnknownTeam) {
		t.Fatalf("expected ErrUnknownTeam, got %v", err)
	}
	if _, err := EncodeDynasty(DynastyBlue, 9); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("expected ErrUnknownWeapon, got %v", err)
	}
}

func TestParseDynastyNames(t *testing.T) {
	team, err := ParseDynastyTeam("Green")
	if err != nil || team != DynastyGreen {
		t.Fatalf("got %v, %v", team, err)
	}
	weapon, err := ParseDynastyWeapon("smg")
	if err != nil || weapon != DynastyShotgun {
		t.Fatalf("got %v, %v", weapon, err)
	}
	if _, err = ParseDynastyWeapon("laser"); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("expected ErrUnknownWeapon, got %v", err)
	}
}
