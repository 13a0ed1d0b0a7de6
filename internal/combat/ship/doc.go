// Package ship models starship combatants: system and department
// ratings, weapons, shields, reserve power and accumulated hull
// breaches. Values here are mutated only by the action resolver and
// damage resolution; rules tables never hold a live ship reference.
package ship
