// Package effect stores the temporary modifiers created by combat
// actions. Effects are scoped to one encounter, stamped with the round
// that created them, and removed either when consumed (next-action
// effects fire once) or by turn/round boundary sweeps. Effects are
// never mutated in place; clearing removes and returns whole records
// so callers can report what expired.
package effect
