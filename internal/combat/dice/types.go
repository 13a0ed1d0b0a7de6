package dice

import "errors"

// ErrInvalidDiceCount indicates a roll request with a non-positive pool.
var ErrInvalidDiceCount = errors.New("dice count must be positive")

// ErrInvalidDifficulty indicates a negative task difficulty.
var ErrInvalidDifficulty = errors.New("difficulty must be non-negative")

const (
	// DieSides is the number of faces on a task die.
	DieSides = 20
	// DefaultDiceCount is the base pool for a task roll.
	DefaultDiceCount = 2
	// DefaultComplicationRange means only a natural 20 complicates.
	DefaultComplicationRange = 1
)

// TaskRollRequest describes a 2d20 task roll.
type TaskRollRequest struct {
	Attribute  int
	Discipline int
	Difficulty int
	// DiceCount is the base pool size; zero means DefaultDiceCount.
	DiceCount int
	// Focus upgrades dice at or under the discipline to two successes.
	Focus     bool
	BonusDice int
	Seed      int64
}

// AssistedTaskRollRequest describes a task roll with one ship-assist
// die rolled against System+Department.
type AssistedTaskRollRequest struct {
	TaskRollRequest
	System     int
	Department int
}

// TaskResult captures the outcome of one task roll. It is immutable
// once constructed; a fresh value is created per roll.
type TaskResult struct {
	Rolls             []int
	TargetNumber      int
	Successes         int
	Complications     int
	Difficulty        int
	FocusValue        int
	MomentumGenerated int
	Succeeded         bool

	// Ship-assist fields, populated by AssistedTaskRoll only.
	AssistTargetNumber int
	AssistRoll         int
	AssistSuccesses    int
	Assisted           bool
}
