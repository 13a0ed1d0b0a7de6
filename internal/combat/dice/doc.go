// Package dice implements the 2d20 task-resolution rolls used by
// starship combat.
//
// A task roll throws a pool of d20s against a target number derived
// from an attribute and a discipline. Dice at or under the target
// number score successes, natural 1s and focus-range dice score two,
// and dice in the complication range generate complications. Momentum
// is the margin of successes over the task difficulty.
//
// All rolls are deterministic with respect to the Seed carried on the
// request, so callers that persist the seed can replay a roll exactly.
package dice
