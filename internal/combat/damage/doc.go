// Package damage resolves the effect of a successful attack on a
// target starship: effect-modified damage totals, shield absorption,
// hull damage, and breach placement via the weighted hit-location
// table.
//
// Attack-category effects are consumed (next_action effects removed
// from the ledger) when the attack resolves, hit or miss. Defense
// effects on the target are read but never consumed here; they expire
// at their turn or round boundary.
package damage
