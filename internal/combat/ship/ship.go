package ship

import "strings"

// SystemType identifies a ship system.
type SystemType string

const (
	SystemComms     SystemType = "comms"
	SystemComputers SystemType = "computers"
	SystemEngines   SystemType = "engines"
	SystemSensors   SystemType = "sensors"
	SystemStructure SystemType = "structure"
	SystemWeapons   SystemType = "weapons"
)

// SystemTypes lists all ship systems in display order.
var SystemTypes = []SystemType{
	SystemComms,
	SystemComputers,
	SystemEngines,
	SystemSensors,
	SystemStructure,
	SystemWeapons,
}

// ParseSystemType maps a case-insensitive system name to a SystemType.
func ParseSystemType(name string) (SystemType, bool) {
	system := SystemType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range SystemTypes {
		if system == known {
			return system, true
		}
	}
	return "", false
}

// Systems holds the six ship system ratings, typically 7-12.
type Systems struct {
	Comms     int `json:"comms"`
	Computers int `json:"computers"`
	Engines   int `json:"engines"`
	Sensors   int `json:"sensors"`
	Structure int `json:"structure"`
	Weapons   int `json:"weapons"`
}

// Rating returns the rating for a system.
func (s Systems) Rating(system SystemType) int {
	switch system {
	case SystemComms:
		return s.Comms
	case SystemComputers:
		return s.Computers
	case SystemEngines:
		return s.Engines
	case SystemSensors:
		return s.Sensors
	case SystemStructure:
		return s.Structure
	case SystemWeapons:
		return s.Weapons
	}
	return 0
}

// Departments holds crew expertise ratings, typically 0-5.
type Departments struct {
	Command     int `json:"command"`
	Conn        int `json:"conn"`
	Engineering int `json:"engineering"`
	Medicine    int `json:"medicine"`
	Science     int `json:"science"`
	Security    int `json:"security"`
}

// Rating returns the rating for a department by name.
func (d Departments) Rating(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "command":
		return d.Command
	case "conn":
		return d.Conn
	case "engineering":
		return d.Engineering
	case "medicine":
		return d.Medicine
	case "science":
		return d.Science
	case "security":
		return d.Security
	}
	return 0
}

// WeaponType distinguishes energy weapons from torpedoes.
type WeaponType string

const (
	WeaponEnergy  WeaponType = "energy"
	WeaponTorpedo WeaponType = "torpedo"
)

// RangeBand is a weapon's reach expressed as a named band.
type RangeBand string

const (
	RangeClose   RangeBand = "close"
	RangeMedium  RangeBand = "medium"
	RangeLong    RangeBand = "long"
	RangeExtreme RangeBand = "extreme"
)

// MaxHexes returns the band's reach in map hexes.
func (r RangeBand) MaxHexes() int {
	switch r {
	case RangeClose:
		return 1
	case RangeMedium:
		return 3
	case RangeLong:
		return 6
	case RangeExtreme:
		return 12
	}
	return 3
}

// Weapon is a starship weapon. Damage is the flat rating before the
// firing ship's weapons-system bonus.
type Weapon struct {
	Name      string     `json:"name"`
	Type      WeaponType `json:"type"`
	Damage    int        `json:"damage"`
	Range     RangeBand  `json:"range"`
	Qualities []string   `json:"qualities,omitempty"`
}

// AttackDifficulty is the base difficulty to fire this weapon.
func (w Weapon) AttackDifficulty() int {
	if w.Type == WeaponTorpedo {
		return 3
	}
	return 2
}

// Breach is accumulated damage on a specific system. Potency stacks;
// a system is disabled once potency reaches its rating.
type Breach struct {
	System  SystemType `json:"system"`
	Potency int        `json:"potency"`
}

// Starship is a combatant's resource state.
type Starship struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShipClass string   `json:"ship_class"`
	Scale     int      `json:"scale"`
	Faction   string   `json:"faction"`
	Position  int      `json:"position"`
	Systems   Systems  `json:"systems"`
	Depts     Departments `json:"departments"`
	Weapons   []Weapon `json:"weapons"`
	Breaches  []Breach `json:"breaches,omitempty"`

	Shields    int `json:"shields"`
	ShieldsMax int `json:"shields_max"`
	Resistance int `json:"resistance"`

	HasReservePower bool `json:"has_reserve_power"`
	ShieldsRaised   bool `json:"shields_raised"`
	WeaponsArmed    bool `json:"weapons_armed"`
}

// New builds a starship with derived defaults: shields from
// Structure+Security and resistance from Scale.
func New(name, class string, scale int, systems Systems, depts Departments) *Starship {
	s := &Starship{
		Name:            name,
		ShipClass:       class,
		Scale:           scale,
		Systems:         systems,
		Depts:           depts,
		HasReservePower: true,
	}
	s.ShieldsMax = systems.Structure + depts.Security
	s.Shields = s.ShieldsMax
	s.Resistance = scale
	return s
}

// WeaponsDamageBonus is the step-function damage bonus from the
// Weapons system rating.
func (s *Starship) WeaponsDamageBonus() int {
	switch weapons := s.Systems.Weapons; {
	case weapons <= 6:
		return 0
	case weapons <= 8:
		return 1
	case weapons <= 10:
		return 2
	case weapons <= 12:
		return 3
	default:
		return 4
	}
}

// BreachPotency sums breach potency on a single system.
func (s *Starship) BreachPotency(system SystemType) int {
	total := 0
	for _, breach := range s.Breaches {
		if breach.System == system {
			total += breach.Potency
		}
	}
	return total
}

// TotalBreachPotency sums breach potency across all systems.
func (s *Starship) TotalBreachPotency() int {
	total := 0
	for _, breach := range s.Breaches {
		total += breach.Potency
	}
	return total
}

// IsSystemDisabled reports whether accumulated breach potency has
// reached the system's rating.
func (s *Starship) IsSystemDisabled(system SystemType) bool {
	return s.BreachPotency(system) >= s.Systems.Rating(system)
}

// HasCriticalDamage reports whether total breaches exceed Scale.
func (s *Starship) HasCriticalDamage() bool {
	return s.TotalBreachPotency() > s.Scale
}

// IsDestroyed reports whether the ship is past the critical-damage
// threshold by more than one breach.
func (s *Starship) IsDestroyed() bool {
	return s.TotalBreachPotency() > s.Scale+1
}

// AddBreach adds potency to an existing breach on the system or
// records a new one.
func (s *Starship) AddBreach(system SystemType, potency int) {
	if potency <= 0 {
		return
	}
	for i := range s.Breaches {
		if s.Breaches[i].System == system {
			s.Breaches[i].Potency += potency
			return
		}
	}
	s.Breaches = append(s.Breaches, Breach{System: system, Potency: potency})
}

// PatchBreach reduces breach potency on the system by one, dropping
// the record when it reaches zero. It reports whether a breach was
// patched.
func (s *Starship) PatchBreach(system SystemType) bool {
	for i := range s.Breaches {
		if s.Breaches[i].System != system || s.Breaches[i].Potency <= 0 {
			continue
		}
		s.Breaches[i].Potency--
		if s.Breaches[i].Potency == 0 {
			s.Breaches = append(s.Breaches[:i], s.Breaches[i+1:]...)
		}
		return true
	}
	return false
}

// SetShieldsRaised flips the shield toggle, snapping shields to max on
// raise and zero on lower.
func (s *Starship) SetShieldsRaised(raised bool) {
	s.ShieldsRaised = raised
	if raised {
		s.Shields = s.ShieldsMax
	} else {
		s.Shields = 0
	}
}

// AbsorbShieldDamage reduces shields by up to amount and returns the
// damage actually absorbed. Lowered shields absorb nothing.
func (s *Starship) AbsorbShieldDamage(amount int) int {
	if !s.ShieldsRaised || s.Shields <= 0 || amount <= 0 {
		return 0
	}
	absorbed := amount
	if absorbed > s.Shields {
		absorbed = s.Shields
	}
	s.Shields -= absorbed
	return absorbed
}

// DisabledSystems lists systems whose breach potency has reached the
// system rating.
func (s *Starship) DisabledSystems() []SystemType {
	var disabled []SystemType
	for _, system := range SystemTypes {
		if s.IsSystemDisabled(system) {
			disabled = append(disabled, system)
		}
	}
	return disabled
}
