package combat

import "fmt"

// Weapon selects the fire pattern of the ship.
type Weapon uint8

const (
	WeaponSingle Weapon = iota
	WeaponSpread
	WeaponHeavy

	weaponCount
)

func (w Weapon) String() string {
	switch w {
	case WeaponSingle:
		return "blaster"
	case WeaponSpread:
		return "spread"
	case WeaponHeavy:
		return "missile"
	}
	return fmt.Sprintf("Weapon(%d)", uint8(w))
}

// Cooldown is the unscaled time between shots, in seconds.
func (w Weapon) Cooldown() float64 {
	switch w {
	case WeaponSingle:
		return 0.2
	case WeaponSpread:
		return 0.4
	case WeaponHeavy:
		return 0.8
	}
	panic(fmt.Sprintf("combat: unknown weapon %d", w))
}

// Lifetime is the time-to-live of each projectile, in seconds.
func (w Weapon) Lifetime() float64 {
	switch w {
	case WeaponSingle:
		return 2.0
	case WeaponSpread:
		return 1.5
	case WeaponHeavy:
		return 4.0
	}
	panic(fmt.Sprintf("combat: unknown weapon %d", w))
}

// Fan returns the yaw offsets, in multiples of the spread angle, of the
// projectiles emitted by one shot.
func (w Weapon) Fan() []float64 {
	switch w {
	case WeaponSingle, WeaponHeavy:
		return []float64{0}
	case WeaponSpread:
		return []float64{-1, 0, 1}
	}
	panic(fmt.Sprintf("combat: unknown weapon %d", w))
}

// Next cycles to the following weapon.
func (w Weapon) Next() Weapon {
	return (w + 1) % weaponCount
}

// GateKind is the flavour of a scenario gate.
type GateKind uint8

const (
	GateFirewall GateKind = iota
	GatePhishing
	GateGlitch
)

func (k GateKind) String() string {
	switch k {
	case GateFirewall:
		return "Firewall"
	case GatePhishing:
		return "Phishing"
	case GateGlitch:
		return "Glitch"
	}
	return fmt.Sprintf("GateKind(%d)", uint8(k))
}

func gateKindFor(index int) GateKind {
	switch index % 3 {
	case 0:
		return GateFirewall
	case 1:
		return GatePhishing
	default:
		return GateGlitch
	}
}
