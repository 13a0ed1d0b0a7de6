package damage

import (
	"math/rand"

	"github.com/stardrift-sim/stardrift/internal/combat/dice"
	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
)

// AttackModifiers aggregates the attacker's active attack effects for
// one attack resolution.
type AttackModifiers struct {
	DamageBonus     int
	Piercing        bool
	CanReroll       bool
	CanChooseSystem bool

	// Consumed lists the next_action effects removed from the ledger
	// while computing the modifiers, for result reporting.
	Consumed []effect.ActiveEffect
}

// ConsumeAttackEffects reads the attacker's attack-category effects,
// sums their contributions, and removes the next_action ones from the
// ledger. It runs once per attack resolution whether or not the roll
// hit, so single-use buffs are spent either way.
func ConsumeAttackEffects(enc *encounter.Encounter, attackerID string) AttackModifiers {
	var mods AttackModifiers
	for _, active := range enc.Effects.Get(effect.AppliesAttack) {
		if active.SourceShip != "" && active.SourceShip != attackerID {
			continue
		}
		mods.DamageBonus += active.DamageBonus
		mods.Piercing = mods.Piercing || active.Piercing
		mods.CanReroll = mods.CanReroll || active.CanReroll
		mods.CanChooseSystem = mods.CanChooseSystem || active.CanChooseSystem
		if active.Duration == effect.DurationNextAction {
			if removed, ok := enc.Effects.Remove(active.ID); ok {
				mods.Consumed = append(mods.Consumed, removed)
			}
		}
	}
	return mods
}

// DefenseBonus sums the resistance bonuses of the target's active
// defense-category effects. Defense effects persist across incoming
// attacks within their duration.
func DefenseBonus(enc *encounter.Encounter, targetID string) int {
	bonus := 0
	for _, active := range enc.Effects.Get(effect.AppliesDefense) {
		if active.SourceShip != "" && active.SourceShip != targetID {
			continue
		}
		bonus += active.ResistanceBonus
	}
	return bonus
}

// TargetIsOpposed reports whether the target has an active effect that
// turns incoming attacks into opposed tasks (Evasive Action or
// Defensive Fire).
func TargetIsOpposed(enc *encounter.Encounter, targetID string) bool {
	for _, active := range enc.Effects.Get(effect.AppliesDefense) {
		if active.SourceShip != "" && active.SourceShip != targetID {
			continue
		}
		if active.IsOpposed {
			return true
		}
	}
	return false
}

// Request describes one successful attack to resolve against a target.
type Request struct {
	Attacker *ship.Starship
	Target   *ship.Starship
	Weapon   ship.Weapon

	// Roll is the attack's task result; its complication count reduces
	// the damage total.
	Roll dice.TaskResult

	// Modifiers are the attacker's consumed attack effects, computed by
	// ConsumeAttackEffects before the hit/miss branch.
	Modifiers AttackModifiers

	// ChosenSystem overrides the first breach's hit-location roll when
	// the modifiers grant the choose-system capability.
	ChosenSystem string

	Seed int64
}

// Result reports the resolved damage.
type Result struct {
	BaseDamage   int
	EffectBonus  int
	TotalDamage  int
	ShieldDamage int
	HullDamage   int
	Piercing     bool

	BreachesCaused int
	SystemsHit     []ship.SystemType

	TargetCritical  bool
	TargetDestroyed bool
}

// Apply resolves a hit: effect-modified damage, resistance and
// complication reduction, shield absorption, and breach placement.
// The target ship is mutated in place.
//
// Damage after resistance floors at 1: a hit always lands at least one
// point before complications. Each complication then subtracts one,
// flooring at zero. Piercing ignores the target's resistance entirely.
func Apply(enc *encounter.Encounter, req Request) Result {
	result := Result{
		BaseDamage:  req.Weapon.Damage + req.Attacker.WeaponsDamageBonus(),
		EffectBonus: req.Modifiers.DamageBonus,
		Piercing:    req.Modifiers.Piercing,
	}

	resistance := 0
	if !req.Modifiers.Piercing {
		resistance = req.Target.Resistance + DefenseBonus(enc, req.Target.ID)
	}

	total := result.BaseDamage + result.EffectBonus - resistance
	if total < 1 {
		total = 1
	}
	total -= req.Roll.Complications
	if total < 0 {
		total = 0
	}
	result.TotalDamage = total

	result.ShieldDamage = req.Target.AbsorbShieldDamage(total)
	result.HullDamage = total - result.ShieldDamage

	result.BreachesCaused = BreachCount(result.HullDamage)
	if result.BreachesCaused > 0 {
		rng := rand.New(rand.NewSource(req.Seed))
		chosen, chosenOK := ship.ParseSystemType(req.ChosenSystem)
		for i := 0; i < result.BreachesCaused; i++ {
			system := RollHitSystem(rng)
			// The choose-system capability overrides one hit location.
			if i == 0 && chosenOK && req.Modifiers.CanChooseSystem {
				system = chosen
			}
			req.Target.AddBreach(system, 1)
			result.SystemsHit = append(result.SystemsHit, system)
		}
	}

	result.TargetCritical = req.Target.HasCriticalDamage()
	result.TargetDestroyed = req.Target.IsDestroyed()
	return result
}

// BreachCount maps hull damage to breaches: any hull damage below five
// causes one breach, five or more causes one per full five.
func BreachCount(hullDamage int) int {
	switch {
	case hullDamage <= 0:
		return 0
	case hullDamage < 5:
		return 1
	default:
		return hullDamage / 5
	}
}

// RollHitSystem picks the breached system from the weighted d20
// hit-location table. Structure is deliberately the most likely
// location; the odds are a rules constant, not a uniform pick.
func RollHitSystem(rng *rand.Rand) ship.SystemType {
	roll := rng.Intn(dice.DieSides) + 1
	switch {
	case roll == 1:
		return ship.SystemComms
	case roll == 2:
		return ship.SystemComputers
	case roll <= 6:
		return ship.SystemEngines
	case roll <= 9:
		return ship.SystemSensors
	case roll <= 17:
		return ship.SystemStructure
	default:
		return ship.SystemWeapons
	}
}
