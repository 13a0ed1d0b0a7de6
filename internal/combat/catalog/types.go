package catalog

import (
	"github.com/stardrift-sim/stardrift/internal/combat/effect"
)

// ActionType tags how an action is executed.
type ActionType string

const (
	// TypeBuff actions create an active effect with no roll.
	TypeBuff ActionType = "buff"
	// TypeTaskRoll actions require a 2d20 task roll.
	TypeTaskRoll ActionType = "task_roll"
	// TypeToggle actions flip a named ship flag.
	TypeToggle ActionType = "toggle"
	// TypeSpecial actions have bespoke mechanics in the resolver.
	TypeSpecial ActionType = "special"
)

// EffectTemplate is the declarative shape of an effect an action
// grants. Build stamps it into a ledger-ready ActiveEffect.
type EffectTemplate struct {
	AppliesTo          effect.AppliesTo
	Duration           effect.Duration
	DamageBonus        int
	ResistanceBonus    int
	DifficultyModifier int
	CanReroll          bool
	CanChooseSystem    bool
	Piercing           bool
	IsOpposed          bool
}

// Build materializes the template into an ActiveEffect attributed to
// the given action and ship.
func (t EffectTemplate) Build(id, sourceAction, sourceShip string) effect.ActiveEffect {
	appliesTo := t.AppliesTo
	if appliesTo == "" {
		appliesTo = effect.AppliesAll
	}
	duration := t.Duration
	if duration == "" {
		duration = effect.DurationNextAction
	}
	return effect.ActiveEffect{
		ID:                 id,
		SourceAction:       sourceAction,
		SourceShip:         sourceShip,
		AppliesTo:          appliesTo,
		Duration:           duration,
		DamageBonus:        t.DamageBonus,
		ResistanceBonus:    t.ResistanceBonus,
		DifficultyModifier: t.DifficultyModifier,
		CanReroll:          t.CanReroll,
		CanChooseSystem:    t.CanChooseSystem,
		Piercing:           t.Piercing,
		IsOpposed:          t.IsOpposed,
	}
}

// RollSpec describes the task roll an action requires.
type RollSpec struct {
	// Attribute and Discipline name which character ratings feed the
	// target number; the caller supplies the numeric values.
	Attribute     string
	Discipline    string
	Difficulty    int
	FocusEligible bool

	// AssistSystem/AssistDepartment name the ship ratings for the
	// assist die; both empty means an unassisted roll.
	AssistSystem     string
	AssistDepartment string
}

// OnSuccess describes what a successful task roll applies.
type OnSuccess struct {
	GenerateMomentum bool
	PatchBreach      bool
	RestorePower     bool
	RestoreShields   bool
	CreateEffect     *EffectTemplate
}

// ActionConfig is one static rules-table row. Configs are loaded once
// and never mutated at runtime.
type ActionConfig struct {
	Name        string
	Type        ActionType
	Position    string
	Description string

	// Effect is the template for buff actions.
	Effect *EffectTemplate

	// Roll and Success configure task-roll actions.
	Roll    *RollSpec
	Success *OnSuccess

	// ToggleFlag names the ship flag a toggle action flips.
	ToggleFlag string

	// Preconditions and costs.
	RequiresReservePower bool
	RequiresFlag         string
	MomentumCost         int
	ThreatCost           int

	// RequiredSystem declares the ship system this action depends on;
	// empty falls back to the special-actions table.
	RequiredSystem string

	// Range limits for targeting actions, in map hexes. Zero MaxRange
	// means unlimited.
	MaxRange           int
	DifficultyPerRange int

	// Major overrides the derived major/minor classification when set.
	Major *bool
}
