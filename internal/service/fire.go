package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/stardrift-sim/stardrift/internal/combat/catalog"
	"github.com/stardrift-sim/stardrift/internal/combat/damage"
	"github.com/stardrift-sim/stardrift/internal/combat/dice"
	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/resolver"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
)

var (
	// ErrWeaponsNotArmed rejects attacks with disarmed weapons.
	ErrWeaponsNotArmed = errors.New("weapons are not armed")
	// ErrInvalidWeapon rejects an out-of-bounds weapon index.
	ErrInvalidWeapon = errors.New("invalid weapon selection")
)

// FireRequest describes one attack.
type FireRequest struct {
	EncounterID string
	AttackerID  string
	TargetID    string
	// ActorID identifies the acting player for multiplayer claims;
	// enemy attacks use the attacker ship id.
	ActorID string
	Side    encounter.Side

	WeaponIndex int
	Attribute   int
	Discipline  int
	Focus       bool
	BonusDice   int
	HexDistance int

	// ChosenSystem overrides the hit-location roll when a
	// choose-system capability is active.
	ChosenSystem string
	Seed         int64
}

// FireResponse reports the resolved attack.
type FireResponse struct {
	Roll     dice.TaskResult
	Hit      bool
	Opposed  bool
	Rerolled bool

	// Damage is set only when the attack hit.
	Damage *damage.Result

	MomentumSpent int
	MomentumAdded int
	Turn          encounter.TurnAdvance
	Message       string
}

// FireWeapon resolves a full attack: turn gating, weapon and range
// validation, bought bonus dice, the assisted attack roll, single-use
// attack-buff consumption (hit or miss), an optional targeting-lock
// reroll, and damage application. Firing is always a major action.
func (s *Service) FireWeapon(ctx context.Context, req FireRequest) (*FireResponse, error) {
	lock := s.lockEncounter(req.EncounterID)
	lock.Lock()
	defer lock.Unlock()

	enc, err := s.store.GetEncounter(ctx, req.EncounterID)
	if err != nil {
		return nil, err
	}
	if !enc.Active {
		return nil, ErrEncounterInactive
	}
	attacker, err := s.store.GetShip(ctx, req.EncounterID, req.AttackerID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.GetShip(ctx, req.EncounterID, req.TargetID)
	if err != nil {
		return nil, err
	}

	actorID := req.ActorID
	if req.Side == encounter.SideEnemy {
		actorID = req.AttackerID
	}
	if err := enc.BeginAction(req.Side, actorID, true); err != nil {
		return nil, err
	}

	if !attacker.WeaponsArmed {
		return nil, ErrWeaponsNotArmed
	}
	if req.WeaponIndex < 0 || req.WeaponIndex >= len(attacker.Weapons) {
		return nil, fmt.Errorf("%w: index %d", ErrInvalidWeapon, req.WeaponIndex)
	}
	weapon := attacker.Weapons[req.WeaponIndex]
	if attacker.IsSystemDisabled(ship.SystemWeapons) {
		return nil, fmt.Errorf("%w: WEAPONS DESTROYED", resolver.ErrActionUnavailable)
	}
	if req.HexDistance > weapon.Range.MaxHexes() {
		return nil, fmt.Errorf("%w: %s reaches %d hexes, target is at %d",
			catalog.ErrOutOfRange, weapon.Name, weapon.Range.MaxHexes(), req.HexDistance)
	}

	if req.BonusDice > 3 {
		return nil, ErrTooManyBonusDice
	}
	diceCost := bonusDiceCost(req.BonusDice)
	if diceCost > 0 && !enc.SpendMomentum(diceCost) {
		return nil, fmt.Errorf("%w: %d bonus dice cost %d momentum",
			resolver.ErrInsufficientMomentum, req.BonusDice, diceCost)
	}

	difficulty := s.attackDifficulty(enc, attacker, weapon)
	opposed := damage.TargetIsOpposed(enc, req.TargetID)
	if opposed {
		// Opposed defenses raise the bar by one step instead of a
		// full counter-roll.
		difficulty++
	}

	seed := s.seed(req.Seed)
	roll, err := dice.AssistedTaskRoll(dice.AssistedTaskRollRequest{
		TaskRollRequest: dice.TaskRollRequest{
			Attribute:  req.Attribute,
			Discipline: req.Discipline,
			Difficulty: difficulty,
			Focus:      req.Focus,
			BonusDice:  req.BonusDice,
			Seed:       seed,
		},
		System:     attacker.Systems.Rating(ship.SystemWeapons),
		Department: attacker.Depts.Rating("security"),
	})
	if err != nil {
		return nil, err
	}

	// Single-use attack buffs are spent by the attack whether or not
	// it lands.
	mods := damage.ConsumeAttackEffects(enc, req.AttackerID)
	enc.Effects.ConsumeSystemBoost(string(ship.SystemWeapons))

	response := &FireResponse{
		Roll:          roll,
		Opposed:       opposed,
		MomentumSpent: diceCost,
	}

	if !roll.Succeeded && mods.CanReroll {
		roll = rerollWorstDie(roll, seed+1)
		response.Roll = roll
		response.Rerolled = true
	}
	response.Hit = roll.Succeeded

	if roll.Succeeded {
		result := damage.Apply(enc, damage.Request{
			Attacker:     attacker,
			Target:       target,
			Weapon:       weapon,
			Roll:         roll,
			Modifiers:    mods,
			ChosenSystem: req.ChosenSystem,
			Seed:         seed + 2,
		})
		response.Damage = &result
		response.MomentumAdded = enc.AddMomentum(roll.MomentumGenerated)
		response.Message = fmt.Sprintf("%s hits %s for %d damage (%d shields, %d hull)",
			weapon.Name, target.Name, result.TotalDamage, result.ShieldDamage, result.HullDamage)
		if result.TargetDestroyed {
			response.Message += "; target destroyed"
			if s.enemiesRemaining(ctx, req.EncounterID, target) == 0 {
				enc.Active = false
			}
		}
	} else {
		response.Message = fmt.Sprintf("%s misses %s (%d of %d successes)",
			weapon.Name, target.Name, roll.Successes, roll.Difficulty)
	}

	response.Turn = enc.CompleteMajor(req.Side, actorID, s.clock())

	if err := s.store.PutShip(ctx, req.EncounterID, attacker); err != nil {
		return nil, fmt.Errorf("persist attacker: %w", err)
	}
	if err := s.store.PutShip(ctx, req.EncounterID, target); err != nil {
		return nil, fmt.Errorf("persist target: %w", err)
	}
	if err := s.store.PutEncounter(ctx, enc); err != nil {
		return nil, fmt.Errorf("persist encounter: %w", err)
	}
	return response, nil
}

// attackDifficulty folds the attacker's state into the weapon's base
// difficulty: weapons-system breaches, active difficulty-modifying
// effects (Attack Pattern, a pending weapons boost), and the attack
// penalty of the attacker's own Evasive Action.
func (s *Service) attackDifficulty(enc *encounter.Encounter, attacker *ship.Starship, weapon ship.Weapon) int {
	difficulty := weapon.AttackDifficulty()
	difficulty += attacker.BreachPotency(ship.SystemWeapons)

	for _, active := range enc.Effects.Get(effect.AppliesAttack) {
		if active.SourceShip != "" && active.SourceShip != attacker.ID {
			continue
		}
		// System boosts are keyed by target system and counted below.
		if active.TargetSystem != "" {
			continue
		}
		difficulty += active.DifficultyModifier
	}
	if boost, _, found := enc.Effects.FindSystemBoost(string(ship.SystemWeapons)); found {
		difficulty += boost
	}

	for _, active := range enc.Effects.Get(effect.AppliesDefense) {
		if active.SourceShip == attacker.ID && active.SourceAction == "Evasive Action" {
			difficulty++
		}
	}

	if difficulty < 0 {
		difficulty = 0
	}
	return difficulty
}

// rerollWorstDie replaces the attacker's highest character die with a
// fresh throw and rescores the pool.
func rerollWorstDie(roll dice.TaskResult, seed int64) dice.TaskResult {
	charDice := len(roll.Rolls)
	if roll.Assisted {
		charDice--
	}
	if charDice <= 0 {
		return roll
	}
	worst := 0
	for i := 1; i < charDice; i++ {
		if roll.Rolls[i] > roll.Rolls[worst] {
			worst = i
		}
	}
	rolls := append([]int(nil), roll.Rolls...)
	rolls[worst] = dice.Roll(rand.New(rand.NewSource(seed)), 1)[0]
	roll.Rolls = rolls
	return dice.Rescore(roll)
}

// enemiesRemaining counts the destroyed ship's surviving faction
// members, used to close out the encounter.
func (s *Service) enemiesRemaining(ctx context.Context, encounterID string, destroyed *ship.Starship) int {
	ships, err := s.store.ListShips(ctx, encounterID)
	if err != nil {
		return -1
	}
	remaining := 0
	for _, combatant := range ships {
		if combatant.Faction != destroyed.Faction {
			continue
		}
		if combatant.ID == destroyed.ID {
			continue
		}
		if !combatant.IsDestroyed() {
			remaining++
		}
	}
	return remaining
}
