package blaster

import (
	"fmt"
	"strings"
)

// Each laser x message is a start pulse followed by eight bits:
//
//	START: active pulse of ~5.95ms
//	0:     inactive for ~0.45ms followed by an active pulse of ~0.55ms
//	1:     inactive for ~0.45ms followed by an active pulse of ~1.5ms
const (
	LaserXLen        = 17
	LaserXStartPulse = 5950
	LaserXLineClear  = 600
	LaserXSpace      = 450
	LaserX0Bit       = 550
	LaserX1Bit       = 1525

	laserXTeamBits = 8
	laserXDamage   = 1
)

// LaserXTeam is the team id of a laser x blaster.
// LaserXNeutral can be shot by any team, including other neutrals.
type LaserXTeam uint8

const (
	LaserXBlue    LaserXTeam = 0x51
	LaserXRed     LaserXTeam = 0x52
	LaserXNeutral LaserXTeam = 0x53
)

var laserXTeams = map[LaserXTeam]string{
	LaserXBlue:    "blue",
	LaserXRed:     "red",
	LaserXNeutral: "neutral",
}

func (t LaserXTeam) String() string {
	if s, ok := laserXTeams[t]; ok {
		return s
	}
	return fmt.Sprintf("team(0x%02x)", uint8(t))
}

// Valid reports whether t is a known team.
func (t LaserXTeam) Valid() bool {
	_, ok := laserXTeams[t]
	return ok
}

// ParseLaserXTeam returns the team of the given name.
func ParseLaserXTeam(name string) (LaserXTeam, error) {
	for t, s := range laserXTeams {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTeam, name)
}

// LaserXMessage is the payload of a laser x message.
type LaserXMessage struct {
	Team LaserXTeam `json:"team"`
}

func (LaserXMessage) Protocol() Protocol { return LaserX }

func (LaserXMessage) payload() {}

// LaserXCodec implements the laser x message format.
type LaserXCodec struct{}

func (LaserXCodec) Protocol() Protocol { return LaserX }

func (LaserXCodec) Timing() Timing {
	return Timing{Len: LaserXLen, StartPulse: LaserXStartPulse, LineClear: LaserXLineClear}
}

// Decode parses the space/active pairs of a laser x message. The space must match
// before the active pulse is classified.
func (c LaserXCodec) Decode(body []uint32) (ParseState, Payload) {
	if s, ok := bodyState(body, c.Timing()); !ok {
		return s, nil
	}

	i := 0
	r := symbolReader{next: func() (uint32, bool) {
		space, active := body[i], body[i+1]
		i += 2
		if !IsValidBitPulse(space, LaserXSpace) {
			return 0, false
		}
		return classify(active, LaserX0Bit, LaserX1Bit)
	}}

	team, ok := r.field(laserXTeamBits)
	if !ok {
		return Invalid, nil
	}

	m := LaserXMessage{Team: LaserXTeam(team)}
	if !m.Team.Valid() {
		return Invalid, nil
	}
	return Valid, m
}

// Encode returns the waveform of a LaserXMessage.
func (c LaserXCodec) Encode(p Payload) (Waveform, error) {
	m, ok := p.(LaserXMessage)
	if !ok {
		return Waveform{}, ErrUnsupportedPayload
	}
	return EncodeLaserX(m.Team)
}

// EncodeLaserX returns the waveform of a shot of the given team.
func EncodeLaserX(team LaserXTeam) (Waveform, error) {
	if !team.Valid() {
		return Waveform{}, fmt.Errorf("%w: %v", ErrUnknownTeam, team)
	}

	w := symbolWriter{
		pulses: make([]uint32, 1, LaserXLen),
		symbol: func(bit uint32) []uint32 {
			if bit == 1 {
				return []uint32{LaserXSpace, LaserX1Bit}
			}
			return []uint32{LaserXSpace, LaserX0Bit}
		},
	}
	w.pulses[0] = LaserXStartPulse
	w.field(uint32(team), laserXTeamBits)

	return Waveform{RefreshCount: DefaultRefreshCount, Pulses: w.pulses}, nil
}
