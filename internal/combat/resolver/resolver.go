package resolver

import (
	"errors"
	"fmt"

	"github.com/stardrift-sim/stardrift/internal/combat/catalog"
	"github.com/stardrift-sim/stardrift/internal/combat/dice"
	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
)

// Validation and precondition errors. All are raised before any state
// mutation.
var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrMisconfiguredAction  = errors.New("action configuration is incomplete")
	ErrActionUnavailable    = errors.New("action unavailable")
	ErrNoReservePower       = errors.New("reserve power is depleted")
	ErrFlagRequired         = errors.New("required ship state is not set")
	ErrInsufficientMomentum = errors.New("insufficient momentum")
	ErrInsufficientThreat   = errors.New("insufficient threat")
	ErrMissingTargetSystem  = errors.New("a target system is required")
	ErrNoEnergyWeapon       = errors.New("an armed energy weapon is required")
	ErrEffectConflict       = errors.New("conflicting effect is active")
	ErrUnknownToggle        = errors.New("unknown toggle flag")
)

// Request carries one action execution. Attribute, Discipline, Focus
// and BonusDice come from the acting character; DifficultyModifier is
// the caller's pre-computed sum of range, breach and boost modifiers.
type Request struct {
	Action string
	Actor  *ship.Starship

	Attribute          int
	Discipline         int
	Focus              bool
	BonusDice          int
	DifficultyModifier int
	Seed               int64

	// TargetSystem names the system for repairs and power rerouting.
	TargetSystem string
	// WeaponIndex selects the actor's weapon for Defensive Fire.
	WeaponIndex int
}

// Result reports what an executed action did.
type Result struct {
	Action  string
	Major   bool
	Success bool
	Message string

	Roll          *dice.TaskResult
	EffectCreated *effect.ActiveEffect
	MomentumAdded int

	ToggledFlag  string
	ToggledValue bool

	BreachPatched   bool
	PatchedSystem   ship.SystemType
	PowerRestored   bool
	ShieldsRestored int
}

// Resolver interprets the action catalog against live encounters.
type Resolver struct {
	catalog *catalog.Catalog
	newID   func() string
}

// New builds a resolver around the given catalog. newID supplies
// ledger-effect identifiers.
func New(c *catalog.Catalog, newID func() string) *Resolver {
	return &Resolver{catalog: c, newID: newID}
}

// Execute runs one action for the actor against the encounter. Turn
// legality is checked by the caller; Execute handles everything from
// the requirement gate onward.
func (r *Resolver) Execute(enc *encounter.Encounter, req Request) (Result, error) {
	config, ok := r.catalog.Get(req.Action)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if err := r.checkRequirements(config, enc, req.Actor); err != nil {
		return Result{}, err
	}

	result := Result{
		Action: req.Action,
		Major:  r.catalog.IsMajor(req.Action),
	}

	var err error
	switch config.Type {
	case catalog.TypeBuff:
		err = r.executeBuff(enc, config, req, &result)
	case catalog.TypeTaskRoll:
		err = r.executeTaskRoll(enc, config, req, &result)
	case catalog.TypeToggle:
		err = r.executeToggle(config, req, &result)
	case catalog.TypeSpecial:
		err = r.executeSpecial(enc, config, req, &result)
	default:
		err = fmt.Errorf("%w: %q has no executor for type %q", ErrMisconfiguredAction, config.Name, config.Type)
	}
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// checkRequirements is the pre-execution gate: system availability,
// reserve power, required ship flags, and cost affordability. Costs
// are only checked here; they are paid by the executors.
func (r *Resolver) checkRequirements(config catalog.ActionConfig, enc *encounter.Encounter, actor *ship.Starship) error {
	if available, reason := r.catalog.IsAvailable(config.Name, actor); !available {
		return fmt.Errorf("%w: %s", ErrActionUnavailable, reason)
	}
	if config.RequiresReservePower && (actor == nil || !actor.HasReservePower) {
		return fmt.Errorf("%w: %s needs reserve power", ErrNoReservePower, config.Name)
	}
	if config.RequiresFlag != "" {
		set, known := flagValue(actor, config.RequiresFlag)
		if !known || !set {
			return fmt.Errorf("%w: %s requires %s", ErrFlagRequired, config.Name, config.RequiresFlag)
		}
	}
	if config.MomentumCost > 0 && enc.Momentum < config.MomentumCost {
		return fmt.Errorf("%w: %s costs %d", ErrInsufficientMomentum, config.Name, config.MomentumCost)
	}
	if config.ThreatCost > 0 && enc.Threat < config.ThreatCost {
		return fmt.Errorf("%w: %s costs %d", ErrInsufficientThreat, config.Name, config.ThreatCost)
	}
	return nil
}

func (r *Resolver) payCosts(enc *encounter.Encounter, config catalog.ActionConfig) {
	if config.MomentumCost > 0 {
		enc.SpendMomentum(config.MomentumCost)
	}
	if config.ThreatCost > 0 {
		enc.SpendThreat(config.ThreatCost)
	}
}

func (r *Resolver) executeBuff(enc *encounter.Encounter, config catalog.ActionConfig, req Request, result *Result) error {
	if config.Effect == nil {
		return fmt.Errorf("%w: buff %q has no effect template", ErrMisconfiguredAction, config.Name)
	}
	r.payCosts(enc, config)

	built := enc.AddEffect(config.Effect.Build(r.newID(), config.Name, shipID(req.Actor)))

	result.Success = true
	result.EffectCreated = &built
	result.Message = fmt.Sprintf("%s active: %s", config.Name, describeEffect(built))
	return nil
}

func (r *Resolver) executeTaskRoll(enc *encounter.Encounter, config catalog.ActionConfig, req Request, result *Result) error {
	if config.Roll == nil {
		return fmt.Errorf("%w: %q has no roll specification", ErrMisconfiguredAction, config.Name)
	}
	if req.BonusDice < 0 {
		return dice.ErrInvalidDiceCount
	}
	needsTarget := config.Success != nil && config.Success.PatchBreach
	targetSystem, targetOK := ship.ParseSystemType(req.TargetSystem)
	if needsTarget && !targetOK {
		return fmt.Errorf("%w: %s must name the system to repair", ErrMissingTargetSystem, config.Name)
	}
	r.payCosts(enc, config)

	difficulty := config.Roll.Difficulty + req.DifficultyModifier
	if difficulty < 0 {
		difficulty = 0
	}
	base := dice.TaskRollRequest{
		Attribute:  req.Attribute,
		Discipline: req.Discipline,
		Difficulty: difficulty,
		Focus:      req.Focus && config.Roll.FocusEligible,
		BonusDice:  req.BonusDice,
		Seed:       req.Seed,
	}

	var roll dice.TaskResult
	var err error
	if system, ok := ship.ParseSystemType(config.Roll.AssistSystem); ok {
		roll, err = dice.AssistedTaskRoll(dice.AssistedTaskRollRequest{
			TaskRollRequest: base,
			System:          req.Actor.Systems.Rating(system),
			Department:      req.Actor.Depts.Rating(config.Roll.AssistDepartment),
		})
	} else {
		roll, err = dice.TaskRoll(base)
	}
	if err != nil {
		return err
	}
	result.Roll = &roll

	if !roll.Succeeded {
		result.Message = fmt.Sprintf("%s failed: %d of %d successes, %d complication(s)",
			config.Name, roll.Successes, roll.Difficulty, roll.Complications)
		return nil
	}

	result.Success = true
	result.Message = fmt.Sprintf("%s succeeded with %d successes", config.Name, roll.Successes)
	if config.Success == nil {
		return nil
	}
	if config.Success.GenerateMomentum {
		result.MomentumAdded = enc.AddMomentum(roll.MomentumGenerated)
	}
	if config.Success.PatchBreach {
		result.PatchedSystem = targetSystem
		result.BreachPatched = req.Actor.PatchBreach(targetSystem)
		if !result.BreachPatched {
			result.Message = fmt.Sprintf("%s succeeded, but %s has no breach to patch", config.Name, targetSystem)
		}
	}
	if config.Success.RestorePower {
		req.Actor.HasReservePower = true
		result.PowerRestored = true
	}
	if config.Success.RestoreShields {
		restored := req.Actor.ShieldsMax - req.Actor.Shields
		req.Actor.Shields = req.Actor.ShieldsMax
		req.Actor.HasReservePower = false
		result.ShieldsRestored = restored
	}
	if config.Success.CreateEffect != nil {
		built := enc.AddEffect(config.Success.CreateEffect.Build(r.newID(), config.Name, shipID(req.Actor)))
		result.EffectCreated = &built
	}
	return nil
}

func (r *Resolver) executeToggle(config catalog.ActionConfig, req Request, result *Result) error {
	switch config.ToggleFlag {
	case "shields_raised":
		req.Actor.SetShieldsRaised(!req.Actor.ShieldsRaised)
		result.ToggledValue = req.Actor.ShieldsRaised
	case "weapons_armed":
		req.Actor.WeaponsArmed = !req.Actor.WeaponsArmed
		result.ToggledValue = req.Actor.WeaponsArmed
	default:
		return fmt.Errorf("%w: %q", ErrUnknownToggle, config.ToggleFlag)
	}
	result.Success = true
	result.ToggledFlag = config.ToggleFlag
	result.Message = fmt.Sprintf("%s is now %v", config.ToggleFlag, result.ToggledValue)
	return nil
}

func (r *Resolver) executeSpecial(enc *encounter.Encounter, config catalog.ActionConfig, req Request, result *Result) error {
	switch config.Name {
	case "Defensive Fire":
		return r.executeDefensiveFire(enc, config, req, result)
	case "Reroute Power":
		return r.executeReroutePower(enc, config, req, result)
	case "Change Position":
		result.Success = true
		result.Message = "Changing station; effective at the start of the next turn"
		return nil
	case "Pass":
		result.Success = true
		result.Message = "Passed"
		return nil
	}
	return fmt.Errorf("%w: special action %q has no executor", ErrMisconfiguredAction, config.Name)
}

// executeDefensiveFire dedicates an energy weapon to point defense,
// making attacks against the ship opposed tasks. It conflicts with an
// active Evasive Action effect.
func (r *Resolver) executeDefensiveFire(enc *encounter.Encounter, config catalog.ActionConfig, req Request, result *Result) error {
	if req.WeaponIndex < 0 || req.WeaponIndex >= len(req.Actor.Weapons) ||
		req.Actor.Weapons[req.WeaponIndex].Type != ship.WeaponEnergy || !req.Actor.WeaponsArmed {
		return fmt.Errorf("%w for Defensive Fire", ErrNoEnergyWeapon)
	}
	for _, active := range enc.Effects.All() {
		if active.SourceAction == "Evasive Action" && active.SourceShip == shipID(req.Actor) {
			return fmt.Errorf("%w: Defensive Fire cannot combine with Evasive Action", ErrEffectConflict)
		}
	}
	r.payCosts(enc, config)

	weapon := req.Actor.Weapons[req.WeaponIndex]
	built := enc.AddEffect(effect.ActiveEffect{
		ID:           r.newID(),
		SourceAction: config.Name,
		SourceShip:   shipID(req.Actor),
		AppliesTo:    effect.AppliesDefense,
		Duration:     effect.DurationEndOfRound,
		IsOpposed:    true,
		WeaponIndex:  req.WeaponIndex,
	})

	result.Success = true
	result.EffectCreated = &built
	result.Message = fmt.Sprintf("%s standing by on point defense; incoming attacks are opposed", weapon.Name)
	return nil
}

// executeReroutePower spends reserve power on a one-action boost to
// the named system, lowering the difficulty of the next action that
// uses it.
func (r *Resolver) executeReroutePower(enc *encounter.Encounter, config catalog.ActionConfig, req Request, result *Result) error {
	system, ok := ship.ParseSystemType(req.TargetSystem)
	if !ok {
		return fmt.Errorf("%w: Reroute Power must name the boosted system", ErrMissingTargetSystem)
	}
	r.payCosts(enc, config)

	req.Actor.HasReservePower = false
	built := enc.AddEffect(effect.ActiveEffect{
		ID:                 r.newID(),
		SourceAction:       config.Name,
		SourceShip:         shipID(req.Actor),
		AppliesTo:          effect.AppliesAll,
		Duration:           effect.DurationNextAction,
		DifficultyModifier: -1,
		TargetSystem:       string(system),
	})

	result.Success = true
	result.EffectCreated = &built
	result.Message = fmt.Sprintf("Reserve power routed to %s; its next action is one step easier", system)
	return nil
}

// flagValue reads a named boolean off the ship. The second return
// distinguishes an unset flag from an unknown name.
func flagValue(s *ship.Starship, name string) (bool, bool) {
	if s == nil {
		return false, false
	}
	switch name {
	case "shields_raised":
		return s.ShieldsRaised, true
	case "weapons_armed":
		return s.WeaponsArmed, true
	case "has_reserve_power":
		return s.HasReservePower, true
	}
	return false, false
}

func shipID(s *ship.Starship) string {
	if s == nil {
		return ""
	}
	return s.ID
}

// describeEffect summarizes an effect's granted modifiers for result
// messages.
func describeEffect(e effect.ActiveEffect) string {
	switch {
	case e.DamageBonus != 0:
		return fmt.Sprintf("damage %+d on the next %s action", e.DamageBonus, e.AppliesTo)
	case e.ResistanceBonus != 0:
		return fmt.Sprintf("resistance %+d", e.ResistanceBonus)
	case e.DifficultyModifier != 0:
		return fmt.Sprintf("difficulty %+d on %s actions", e.DifficultyModifier, e.AppliesTo)
	case e.CanReroll && e.CanChooseSystem:
		return "re-roll one d20 or choose the system hit"
	case e.CanReroll:
		return "re-roll one d20"
	case e.IsOpposed:
		return "incoming attacks are opposed"
	case e.Piercing:
		return "piercing"
	}
	return string(e.AppliesTo)
}
