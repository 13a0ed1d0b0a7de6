// Package resolver executes catalog actions against an encounter.
//
// Each action type has one executor: buffs add a ledger effect,
// task rolls invoke the dice engine and apply their success template,
// toggles flip a ship flag, and specials carry bespoke mechanics.
// Execution is atomic: an action is either fully validated and applied
// or rejected with no state change.
//
// The resolver does not compute range- or breach-derived difficulty;
// callers fold those into the request's difficulty modifier before
// executing. Turn ownership is likewise the caller's concern.
package resolver
