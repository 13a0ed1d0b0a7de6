package dice

import "math/rand"

// Roll produces count independent uniform integers in [1, DieSides]
// from the provided source.
func Roll(rng *rand.Rand, count int) []int {
	rolls := make([]int, count)
	for i := range rolls {
		rolls[i] = rng.Intn(DieSides) + 1
	}
	return rolls
}

// CountSuccesses counts successes for a pool of d20 results.
//
// A natural 1 always scores two successes. Any other die at or under
// targetNumber scores one success, upgraded to two when focusValue is
// positive and the die is also at or under focusValue.
func CountSuccesses(rolls []int, targetNumber, focusValue int) int {
	successes := 0
	for _, roll := range rolls {
		switch {
		case roll == 1:
			successes += 2
		case roll <= targetNumber:
			if focusValue > 0 && roll <= focusValue {
				successes += 2
			} else {
				successes++
			}
		}
	}
	return successes
}

// CountComplications counts dice in the complication range. A die
// complicates when it is at or above 21-complicationRange, so the
// default range of 1 means only a natural 20 counts.
func CountComplications(rolls []int, complicationRange int) int {
	if complicationRange < 1 {
		complicationRange = DefaultComplicationRange
	}
	threshold := DieSides + 1 - complicationRange
	complications := 0
	for _, roll := range rolls {
		if roll >= threshold {
			complications++
		}
	}
	return complications
}

// TaskRoll performs a complete task roll.
//
// The target number is Attribute+Discipline and the pool is
// DiceCount+BonusDice dice. The result is deterministic with respect
// to the request Seed.
func TaskRoll(request TaskRollRequest) (TaskResult, error) {
	if request.Difficulty < 0 {
		return TaskResult{}, ErrInvalidDifficulty
	}
	diceCount := request.DiceCount
	if diceCount == 0 {
		diceCount = DefaultDiceCount
	}
	if diceCount < 0 || request.BonusDice < 0 {
		return TaskResult{}, ErrInvalidDiceCount
	}

	rng := rand.New(rand.NewSource(request.Seed))
	return resolveTask(rng, request, diceCount), nil
}

// AssistedTaskRoll performs a task roll with one additional assist die
// thrown against the ship's System+Department. The assist die is not
// focus-eligible; successes and complications from both pools are
// summed into a single result, with the assist roll preserved for
// display.
func AssistedTaskRoll(request AssistedTaskRollRequest) (TaskResult, error) {
	if request.Difficulty < 0 {
		return TaskResult{}, ErrInvalidDifficulty
	}
	diceCount := request.DiceCount
	if diceCount == 0 {
		diceCount = DefaultDiceCount
	}
	if diceCount < 0 || request.BonusDice < 0 {
		return TaskResult{}, ErrInvalidDiceCount
	}

	rng := rand.New(rand.NewSource(request.Seed))
	result := resolveTask(rng, request.TaskRollRequest, diceCount)

	assistTarget := request.System + request.Department
	assistRoll := Roll(rng, 1)[0]
	assistSuccesses := CountSuccesses([]int{assistRoll}, assistTarget, 0)
	assistComplications := CountComplications([]int{assistRoll}, DefaultComplicationRange)

	result.Rolls = append(result.Rolls, assistRoll)
	result.Successes += assistSuccesses
	result.Complications += assistComplications
	result.AssistTargetNumber = assistTarget
	result.AssistRoll = assistRoll
	result.AssistSuccesses = assistSuccesses
	result.Assisted = true

	return finalize(result), nil
}

// Rescore recomputes successes, complications and derived fields for an
// already-thrown pool. Used when a die is rerolled: callers replace one
// entry in Rolls and rescore against the same target.
func Rescore(result TaskResult) TaskResult {
	charRolls := result.Rolls
	if result.Assisted && len(charRolls) > 0 {
		charRolls = charRolls[:len(charRolls)-1]
	}
	result.Successes = CountSuccesses(charRolls, result.TargetNumber, result.FocusValue)
	result.Complications = CountComplications(charRolls, DefaultComplicationRange)
	if result.Assisted {
		result.Successes += result.AssistSuccesses
		result.Complications += CountComplications([]int{result.AssistRoll}, DefaultComplicationRange)
	}
	return finalize(result)
}

func resolveTask(rng *rand.Rand, request TaskRollRequest, diceCount int) TaskResult {
	targetNumber := request.Attribute + request.Discipline
	focusValue := 0
	if request.Focus {
		focusValue = request.Discipline
	}

	rolls := Roll(rng, diceCount+request.BonusDice)
	return finalize(TaskResult{
		Rolls:         rolls,
		TargetNumber:  targetNumber,
		Successes:     CountSuccesses(rolls, targetNumber, focusValue),
		Complications: CountComplications(rolls, DefaultComplicationRange),
		Difficulty:    request.Difficulty,
		FocusValue:    focusValue,
	})
}

// finalize derives Succeeded and MomentumGenerated from the counted
// successes, enforcing the TaskResult invariants.
func finalize(result TaskResult) TaskResult {
	result.Succeeded = result.Successes >= result.Difficulty
	if result.Succeeded {
		result.MomentumGenerated = result.Successes - result.Difficulty
	} else {
		result.MomentumGenerated = 0
	}
	return result
}
