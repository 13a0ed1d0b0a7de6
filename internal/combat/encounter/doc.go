// Package encounter aggregates the mutable state of one combat:
// shared momentum and threat pools, the active-effect ledger, the
// round counter, and the turn state machine that decides whose action
// is legal when.
//
// All state belongs exclusively to one Encounter; callers serialize
// access at the service boundary. Mutating operations either fully
// apply or reject without touching state.
package encounter
