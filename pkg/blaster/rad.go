package blaster

// Each rad message is a start pulse followed by eighteen bits:
//
//	START: active pulse of ~1.58ms (60 periods @ 38kHz)
//	0:     inactive for ~0.39ms (15 periods) followed by an active pulse of ~0.39ms
//	1:     inactive for ~0.78ms (30 periods) followed by an active pulse of ~0.39ms
//
// The first sixteen bits carry the fields, the final two bits are a trailer sent as zeros.
const (
	RadLen          = 37
	RadStartPulse   = 1580
	RadLineClear    = 860
	Rad0Space       = 390
	Rad1Space       = 780
	RadActive       = 390
	radTrailerBits  = 2
	radReservedBits = 2
	radTeamBits     = 2
	radPlayerBits   = 4
	radWeaponBits   = 4
	radDamageBits   = 4
)

// RadMessage is the payload of a rad message. Weapon is the special weapon code.
type RadMessage struct {
	Reserved uint8 `json:"reserved"`
	Team     uint8 `json:"team"`
	Player   uint8 `json:"player"`
	Weapon   uint8 `json:"weapon"`
	Damage   uint8 `json:"damage"`
}

func (RadMessage) Protocol() Protocol { return Rad }

func (RadMessage) payload() {}

// RadCodec implements the rad message format.
type RadCodec struct{}

func (RadCodec) Protocol() Protocol { return Rad }

func (RadCodec) Timing() Timing {
	return Timing{Len: RadLen, StartPulse: RadStartPulse, LineClear: RadLineClear}
}

// Decode parses the space/active pairs of a rad message.
// Both parts of a pair are validated before the bit is classified.
func (c RadCodec) Decode(body []uint32) (ParseState, Payload) {
	if s, ok := bodyState(body, c.Timing()); !ok {
		return s, nil
	}

	i := 0
	r := symbolReader{next: func() (uint32, bool) {
		space, active := body[i], body[i+1]
		i += 2
		if !IsValidBitPulse(active, RadActive) {
			return 0, false
		}
		return classify(space, Rad0Space, Rad1Space)
	}}

	var m RadMessage
	fields := []struct {
		dst   *uint8
		width int
	}{
		{&m.Reserved, radReservedBits},
		{&m.Team, radTeamBits},
		{&m.Player, radPlayerBits},
		{&m.Weapon, radWeaponBits},
		{&m.Damage, radDamageBits},
	}
	for _, f := range fields {
		v, ok := r.field(f.width)
		if !ok {
			return Invalid, nil
		}
		*f.dst = uint8(v)
	}

	if _, ok := r.field(radTrailerBits); !ok {
		return Invalid, nil
	}
	return Valid, m
}

// Encode returns the waveform of a RadMessage.
func (c RadCodec) Encode(p Payload) (Waveform, error) {
	m, ok := p.(RadMessage)
	if !ok {
		return Waveform{}, ErrUnsupportedPayload
	}
	if m.Reserved >= 1<<radReservedBits || m.Team >= 1<<radTeamBits || m.Player >= 1<<radPlayerBits ||
		m.Weapon >= 1<<radWeaponBits || m.Damage >= 1<<radDamageBits {
		return Waveform{}, ErrFieldRange
	}

	w := symbolWriter{
		pulses: make([]uint32, 1, RadLen),
		symbol: func(bit uint32) []uint32 {
			if bit == 1 {
				return []uint32{Rad1Space, RadActive}
			}
			return []uint32{Rad0Space, RadActive}
		},
	}
	w.pulses[0] = RadStartPulse
	w.field(uint32(m.Reserved), radReservedBits)
	w.field(uint32(m.Team), radTeamBits)
	w.field(uint32(m.Player), radPlayerBits)
	w.field(uint32(m.Weapon), radWeaponBits)
	w.field(uint32(m.Damage), radDamageBits)
	w.field(0, radTrailerBits)

	return Waveform{RefreshCount: DefaultRefreshCount, Pulses: w.pulses}, nil
}
