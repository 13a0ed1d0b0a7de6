package effect

// AppliesTo categorizes which rolls an effect modifies.
type AppliesTo string

const (
	AppliesAttack   AppliesTo = "attack"
	AppliesDefense  AppliesTo = "defense"
	AppliesSensor   AppliesTo = "sensor"
	AppliesMovement AppliesTo = "movement"
	AppliesAll      AppliesTo = "all"
)

// Duration classifies when an effect expires if not consumed earlier.
type Duration string

const (
	DurationNextAction Duration = "next_action"
	DurationEndOfTurn  Duration = "end_of_turn"
	DurationEndOfRound Duration = "end_of_round"
)

// ActiveEffect is one temporary modifier. At least one modifier or
// capability flag is expected to be non-default, though this is not
// enforced.
type ActiveEffect struct {
	ID           string    `json:"id"`
	SourceAction string    `json:"source_action"`
	SourceShip   string    `json:"source_ship,omitempty"`
	AppliesTo    AppliesTo `json:"applies_to"`
	Duration     Duration  `json:"duration"`

	DamageBonus        int `json:"damage_bonus,omitempty"`
	ResistanceBonus    int `json:"resistance_bonus,omitempty"`
	DifficultyModifier int `json:"difficulty_modifier,omitempty"`

	CanReroll       bool `json:"can_reroll,omitempty"`
	CanChooseSystem bool `json:"can_choose_system,omitempty"`
	Piercing        bool `json:"piercing,omitempty"`
	IsOpposed       bool `json:"is_opposed,omitempty"`

	// Action-specific payload fields.
	WeaponIndex      int    `json:"weapon_index,omitempty"`
	TargetSystem     string `json:"target_system,omitempty"`
	DetectedPosition int    `json:"detected_position,omitempty"`

	CreatedRound int `json:"created_round"`
	CreatedTurn  int `json:"created_turn"`
}
