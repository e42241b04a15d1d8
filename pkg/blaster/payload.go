package blaster

import (
	"fmt"
	"strconv"
)

// NewPayload returns the payload of a shot given by names, as used on the command line:
//
//	rad:     team and weapon are numbers, the damage is 1
//	dynasty: team blue|red|green|white, weapon pistol|shotgun|smg|rocket
//	laserx:  team blue|red|neutral, weapon is ignored
func NewPayload(p Protocol, team, weapon string) (Payload, error) {
	switch p {
	case Rad:
		t, err := strconv.ParseUint(team, 10, 8)
		if err != nil || t >= 1<<radTeamBits {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, team)
		}
		w, err := strconv.ParseUint(weapon, 10, 8)
		if err != nil || w >= 1<<radWeaponBits {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeapon, weapon)
		}
		return RadMessage{Team: uint8(t), Weapon: uint8(w), Damage: 1}, nil

	case Dynasty:
		t, err := ParseDynastyTeam(team)
		if err != nil {
			return nil, err
		}
		w, err := ParseDynastyWeapon(weapon)
		if err != nil {
			return nil, err
		}
		sum, _ := DynastyChecksum(t, w)
		return DynastyMessage{Team: t, Weapon: w, Checksum: sum}, nil

	case LaserX:
		t, err := ParseLaserXTeam(team)
		if err != nil {
			return nil, err
		}
		return LaserXMessage{Team: t}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownProtocol, p)
}

// MarshalText encodes the team by its name.
func (t DynastyTeam) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// MarshalText encodes the weapon by its name.
func (w DynastyWeapon) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// MarshalText encodes the team by its name.
func (t LaserXTeam) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
