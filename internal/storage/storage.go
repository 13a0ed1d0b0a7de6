// Package storage defines the persistence interfaces for encounters
// and their combatant ships. Implementations live in subpackages; the
// service layer depends only on these interfaces.
package storage

import (
	"context"
	"errors"

	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// EncounterStore persists encounter aggregates: pools, round and turn
// state, and the active-effect ledger.
type EncounterStore interface {
	PutEncounter(ctx context.Context, enc *encounter.Encounter) error
	GetEncounter(ctx context.Context, id string) (*encounter.Encounter, error)
	ListEncounters(ctx context.Context) ([]*encounter.Encounter, error)
	DeleteEncounter(ctx context.Context, id string) error
}

// ShipStore persists combatant ships scoped to an encounter.
type ShipStore interface {
	PutShip(ctx context.Context, encounterID string, s *ship.Starship) error
	GetShip(ctx context.Context, encounterID, shipID string) (*ship.Starship, error)
	ListShips(ctx context.Context, encounterID string) ([]*ship.Starship, error)
}

// Store is the full persistence surface the combat service requires.
type Store interface {
	EncounterStore
	ShipStore
	Close() error
}
