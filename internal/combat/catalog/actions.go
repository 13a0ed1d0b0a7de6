package catalog

import "github.com/stardrift-sim/stardrift/internal/combat/effect"

// defaultConfigs is the built-in rules table, one row per action.
var defaultConfigs = []ActionConfig{
	// Tactical station.
	{
		Name:        "Calibrate Weapons",
		Type:        TypeBuff,
		Position:    "tactical",
		Description: "Fine-tune weapons. Next attack: damage +1.",
		Effect: &EffectTemplate{
			AppliesTo:   effect.AppliesAttack,
			Duration:    effect.DurationNextAction,
			DamageBonus: 1,
		},
		RequiredSystem: "weapons",
	},
	{
		Name:        "Targeting Solution",
		Type:        TypeBuff,
		Position:    "tactical",
		Description: "Lock onto an enemy within Long range. Next attack: re-roll one d20 or choose the system hit.",
		Effect: &EffectTemplate{
			AppliesTo:       effect.AppliesAttack,
			Duration:        effect.DurationNextAction,
			CanReroll:       true,
			CanChooseSystem: true,
		},
		RequiredSystem: "sensors",
		MaxRange:       6,
	},
	{
		Name:        "Raise/Lower Shields",
		Type:        TypeToggle,
		Position:    "tactical",
		Description: "Raise shields to maximum or lower them to zero.",
		ToggleFlag:  "shields_raised",
	},
	{
		Name:        "Arm/Disarm Weapons",
		Type:        TypeToggle,
		Position:    "tactical",
		Description: "Arm weapons for attack, or disarm them.",
		ToggleFlag:  "weapons_armed",
	},
	{
		Name:        "Fire",
		Type:        TypeTaskRoll,
		Position:    "tactical",
		Description: "Attack with an energy weapon or torpedo.",
		Roll: &RollSpec{
			Attribute:        "control",
			Discipline:       "security",
			Difficulty:       2,
			FocusEligible:    true,
			AssistSystem:     "weapons",
			AssistDepartment: "security",
		},
		RequiredSystem: "weapons",
	},
	{
		Name:           "Defensive Fire",
		Type:           TypeSpecial,
		Position:       "tactical",
		Description:    "Use an energy weapon defensively; attacks against the ship become opposed tasks.",
		RequiredSystem: "weapons",
	},
	{
		Name:        "Modulate Shields",
		Type:        TypeTaskRoll,
		Position:    "tactical",
		Description: "Re-tune shield frequencies for +2 Resistance until end of turn.",
		Roll: &RollSpec{
			Attribute:     "control",
			Discipline:    "security",
			Difficulty:    1,
			FocusEligible: true,
		},
		Success: &OnSuccess{
			CreateEffect: &EffectTemplate{
				AppliesTo:       effect.AppliesDefense,
				Duration:        effect.DurationEndOfTurn,
				ResistanceBonus: 2,
			},
		},
		RequiredSystem: "structure",
		RequiresFlag:   "shields_raised",
	},

	// Science station.
	{
		Name:        "Calibrate Sensors",
		Type:        TypeBuff,
		Position:    "science",
		Description: "Fine-tune sensors. Next sensor action: re-roll one d20.",
		Effect: &EffectTemplate{
			AppliesTo: effect.AppliesSensor,
			Duration:  effect.DurationNextAction,
			CanReroll: true,
		},
		RequiredSystem: "sensors",
	},
	{
		Name:        "Scan For Weakness",
		Type:        TypeTaskRoll,
		Position:    "science",
		Description: "Find a weakness for the next attack: damage +2 and Piercing.",
		Roll: &RollSpec{
			Attribute:        "control",
			Discipline:       "science",
			Difficulty:       2,
			FocusEligible:    true,
			AssistSystem:     "sensors",
			AssistDepartment: "security",
		},
		Success: &OnSuccess{
			CreateEffect: &EffectTemplate{
				AppliesTo:   effect.AppliesAttack,
				Duration:    effect.DurationNextAction,
				DamageBonus: 2,
				Piercing:    true,
			},
		},
		RequiredSystem: "sensors",
	},
	{
		Name:        "Sensor Sweep",
		Type:        TypeTaskRoll,
		Position:    "science",
		Description: "Scan a zone for ships, objects and phenomena.",
		Roll: &RollSpec{
			Attribute:        "reason",
			Discipline:       "science",
			Difficulty:       1,
			FocusEligible:    true,
			AssistSystem:     "sensors",
			AssistDepartment: "science",
		},
		Success:            &OnSuccess{GenerateMomentum: true},
		RequiredSystem:     "sensors",
		MaxRange:           12,
		DifficultyPerRange: 1,
	},

	// Helm station.
	{
		Name:        "Attack Pattern",
		Type:        TypeBuff,
		Position:    "helm",
		Description: "Fly steadily for targeting. Ship attacks are one difficulty easier this round.",
		Effect: &EffectTemplate{
			AppliesTo:          effect.AppliesAll,
			Duration:           effect.DurationEndOfRound,
			DifficultyModifier: -1,
		},
		RequiredSystem: "engines",
	},
	{
		Name:        "Evasive Action",
		Type:        TypeBuff,
		Position:    "helm",
		Description: "Unpredictable maneuvering. Attacks against the ship become opposed; the ship's own attacks are harder.",
		Effect: &EffectTemplate{
			AppliesTo: effect.AppliesDefense,
			Duration:  effect.DurationEndOfRound,
			IsOpposed: true,
		},
		RequiredSystem: "engines",
	},
	{
		Name:        "Maneuver",
		Type:        TypeTaskRoll,
		Position:    "helm",
		Description: "Careful flight control through difficult terrain.",
		Roll: &RollSpec{
			Attribute:        "control",
			Discipline:       "conn",
			Difficulty:       2,
			FocusEligible:    true,
			AssistSystem:     "engines",
			AssistDepartment: "conn",
		},
		Success:        &OnSuccess{GenerateMomentum: true},
		RequiredSystem: "engines",
	},
	{
		Name:        "Ram",
		Type:        TypeTaskRoll,
		Position:    "helm",
		Description: "Move into contact and inflict collision damage on both ships.",
		Roll: &RollSpec{
			Attribute:        "daring",
			Discipline:       "conn",
			Difficulty:       2,
			FocusEligible:    true,
			AssistSystem:     "engines",
			AssistDepartment: "conn",
		},
		RequiredSystem: "engines",
	},

	// Engineering / operations station.
	{
		Name:        "Damage Control",
		Type:        TypeTaskRoll,
		Position:    "engineering",
		Description: "Direct a repair team to patch a breach.",
		Roll: &RollSpec{
			Attribute:     "presence",
			Discipline:    "engineering",
			Difficulty:    2,
			FocusEligible: true,
		},
		Success: &OnSuccess{PatchBreach: true},
	},
	{
		Name:        "Regain Power",
		Type:        TypeTaskRoll,
		Position:    "engineering",
		Description: "Restore Reserve Power.",
		Roll: &RollSpec{
			Attribute:     "control",
			Discipline:    "engineering",
			Difficulty:    1,
			FocusEligible: true,
		},
		Success: &OnSuccess{RestorePower: true},
	},
	{
		Name:        "Regenerate Shields",
		Type:        TypeTaskRoll,
		Position:    "engineering",
		Description: "Channel reserve power into the shield grid.",
		Roll: &RollSpec{
			Attribute:        "control",
			Discipline:       "engineering",
			Difficulty:       2,
			FocusEligible:    true,
			AssistSystem:     "structure",
			AssistDepartment: "engineering",
		},
		Success:              &OnSuccess{RestoreShields: true},
		RequiresReservePower: true,
		RequiredSystem:       "structure",
	},
	{
		Name:                 "Reroute Power",
		Type:                 TypeSpecial,
		Position:             "engineering",
		Description:          "Spend Reserve Power to boost one system for its next action.",
		RequiresReservePower: true,
	},

	// Command station.
	{
		Name:        "Rally",
		Type:        TypeTaskRoll,
		Position:    "captain",
		Description: "Inspire the crew to generate Momentum.",
		Roll: &RollSpec{
			Attribute:     "presence",
			Discipline:    "command",
			Difficulty:    0,
			FocusEligible: true,
		},
		Success: &OnSuccess{GenerateMomentum: true},
	},

	// Standard actions.
	{
		Name:        "Change Position",
		Type:        TypeSpecial,
		Position:    "any",
		Description: "Move to another bridge station; arrive at the start of the next turn.",
	},
	{
		Name:        "Pass",
		Type:        TypeSpecial,
		Position:    "any",
		Description: "Choose not to attempt a task this turn.",
		Major:       boolPtr(true),
	},
}

// specialActionSystems maps actions without a declared required system
// to the system they depend on. Checked after per-config declarations.
var specialActionSystems = map[string]string{
	"Warp":               "engines",
	"Impulse":            "engines",
	"Thrusters":          "engines",
	"Reveal":             "sensors",
	"Hail":               "comms",
	"Jam Communications": "comms",
	"Tractor Beam":       "structure",
}

func boolPtr(b bool) *bool { return &b }
