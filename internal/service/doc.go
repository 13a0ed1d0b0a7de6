// Package service orchestrates combat operations end to end: it loads
// encounter state, enforces turn ownership, resolves actions and
// attacks through the combat packages, and persists the outcome.
//
// Every mutating operation serializes on a per-encounter lock, so two
// actors racing for the same turn slot observe a consistent
// claim-check-and-mutate sequence.
package service
