package blaster

import (
	"fmt"
	"strings"
)

// Each dynasty message is a start pulse followed by a 16-bit preamble and then twenty-four bits:
//
//	START:    active pulse of ~1.66ms
//	PREAMBLE: 0b0000000010101010
//	0:        inactive or active for ~0.41ms
//	1:        inactive or active for ~0.75ms
//
// The bits are team, weapon and checksum, eight bits each.
const (
	DynastyLen        = 41
	DynastyStartPulse = 1660
	DynastyLineClear  = 900
	Dynasty0Bit       = 412
	Dynasty1Bit       = 747
	DynastyPreamble   = 0x00AA

	dynastyPreambleBits = 16
	dynastyFieldBits    = 8
)

// DynastyTeam is the team id of a dynasty blaster.
type DynastyTeam uint8

const (
	DynastyBlue  DynastyTeam = 1
	DynastyRed   DynastyTeam = 2
	DynastyGreen DynastyTeam = 3
	DynastyWhite DynastyTeam = 4
)

var dynastyTeams = map[DynastyTeam]string{
	DynastyBlue:  "blue",
	DynastyRed:   "red",
	DynastyGreen: "green",
	DynastyWhite: "white",
}

func (t DynastyTeam) String() string {
	if s, ok := dynastyTeams[t]; ok {
		return s
	}
	return fmt.Sprintf("team(%d)", uint8(t))
}

// Valid reports whether t is a known team.
func (t DynastyTeam) Valid() bool {
	_, ok := dynastyTeams[t]
	return ok
}

// ParseDynastyTeam returns the team of the given name.
func ParseDynastyTeam(name string) (DynastyTeam, error) {
	for t, s := range dynastyTeams {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
}

// DynastyWeapon is the weapon id of a dynasty blaster.
type DynastyWeapon uint8

const (
	DynastyPistol  DynastyWeapon = 1
	DynastyShotgun DynastyWeapon = 2
	DynastyRocket  DynastyWeapon = 3
)

var dynastyWeapons = map[DynastyWeapon]struct {
	name   string
	damage int
}{
	DynastyPistol:  {"pistol", 1},
	DynastyShotgun: {"shotgun", 2},
	DynastyRocket:  {"rocket", 3},
}

func (w DynastyWeapon) String() string {
	if d, ok := dynastyWeapons[w]; ok {
		return d.name
	}
	return fmt.Sprintf("weapon(%d)", uint8(w))
}

// Valid reports whether w is a known weapon.
func (w DynastyWeapon) Valid() bool {
	_, ok := dynastyWeapons[w]
	return ok
}

// Damage returns the hit points taken by a shot of the weapon.
func (w DynastyWeapon) Damage() int {
	return dynastyWeapons[w].damage
}

// ParseDynastyWeapon returns the weapon of the given name.
// "smg" is accepted for the shotgun, both share the id.
func ParseDynastyWeapon(name string) (DynastyWeapon, error) {
	if strings.EqualFold(name, "smg") {
		return DynastyShotgun, nil
	}
	for w, d := range dynastyWeapons {
		if strings.EqualFold(d.name, name) {
			return w, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWeapon, name)
}

// DynastyChecksum returns the checksum of a team and weapon.
// ok is false if the combination is unknown.
func DynastyChecksum(team DynastyTeam, weapon DynastyWeapon) (sum uint8, ok bool) {
	if !team.Valid() {
		return 0, false
	}

	var add uint8
	switch weapon {
	case DynastyPistol:
		add = 5
	case DynastyShotgun:
		add = 6
		if team == DynastyWhite {
			add = 7
		}
	case DynastyRocket:
		add = 7
		if team == DynastyGreen || team == DynastyWhite {
			add = 8
		}
	default:
		return 0, false
	}
	return uint8(team) + add, true
}

// DynastyMessage is the payload of a dynasty message.
type DynastyMessage struct {
	Team     DynastyTeam   `json:"team"`
	Weapon   DynastyWeapon `json:"weapon"`
	Checksum uint8         `json:"checksum"`
}

func (DynastyMessage) Protocol() Protocol { return Dynasty }

func (DynastyMessage) payload() {}

// DynastyCodec implements the dynasty message format.
type DynastyCodec struct{}

func (DynastyCodec) Protocol() Protocol { return Dynasty }

func (DynastyCodec) Timing() Timing {
	return Timing{Len: DynastyLen, StartPulse: DynastyStartPulse, LineClear: DynastyLineClear}
}

// Decode parses a dynasty message, every sample is one bit.
// A preamble mismatch is invalid regardless of the following fields.
func (c DynastyCodec) Decode(body []uint32) (ParseState, Payload) {
	if s, ok := bodyState(body, c.Timing()); !ok {
		return s, nil
	}

	i := 0
	r := symbolReader{next: func() (uint32, bool) {
		d := body[i]
		i++
		return classify(d, Dynasty0Bit, Dynasty1Bit)
	}}

	if preamble, ok := r.field(dynastyPreambleBits); !ok || preamble != DynastyPreamble {
		return Invalid, nil
	}

	var v [3]uint32
	for n := range v {
		f, ok := r.field(dynastyFieldBits)
		if !ok {
			return Invalid, nil
		}
		v[n] = f
	}

	m := DynastyMessage{Team: DynastyTeam(v[0]), Weapon: DynastyWeapon(v[1]), Checksum: uint8(v[2])}
	if !m.Team.Valid() || !m.Weapon.Valid() {
		return Invalid, nil
	}
	if sum, ok := DynastyChecksum(m.Team, m.Weapon); !ok || sum != m.Checksum {
		return Invalid, nil
	}
	return Valid, m
}

// Encode returns the waveform of a DynastyMessage. The checksum is computed from team
// and weapon, the Checksum field of p is ignored.
func (c DynastyCodec) Encode(p Payload) (Waveform, error) {
	m, ok := p.(DynastyMessage)
	if !ok {
		return Waveform{}, ErrUnsupportedPayload
	}
	return EncodeDynasty(m.Team, m.Weapon)
}

// EncodeDynasty returns the waveform of a shot of the given team and weapon.
func EncodeDynasty(team DynastyTeam, weapon DynastyWeapon) (Waveform, error) {
	if !team.Valid() {
		return Waveform{}, fmt.Errorf("%w: %v", ErrUnknownTeam, team)
	}
	sum, ok := DynastyChecksum(team, weapon)
	if !ok {
		return Waveform{}, fmt.Errorf("%w: %v", ErrUnknownWeapon, weapon)
	}

	w := symbolWriter{
		pulses: make([]uint32, 1, DynastyLen),
		symbol: func(bit uint32) []uint32 {
			if bit == 1 {
				return []uint32{Dynasty1Bit}
			}
			return []uint32{Dynasty0Bit}
		},
	}
	w.pulses[0] = DynastyStartPulse
	w.field(DynastyPreamble, dynastyPreambleBits)
	w.field(uint32(team), dynastyFieldBits)
	w.field(uint32(weapon), dynastyFieldBits)
	w.field(uint32(sum), dynastyFieldBits)

	return Waveform{RefreshCount: DefaultRefreshCount, Pulses: w.pulses}, nil
}
