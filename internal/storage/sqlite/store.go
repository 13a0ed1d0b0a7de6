// Package sqlite provides the SQLite-backed encounter store.
//
// Scalar encounter fields map to columns; the effect ledger, turn
// state, and ship records round-trip through JSON columns so the
// domain shapes survive a save/load cycle without loss.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
	"github.com/stardrift-sim/stardrift/internal/platform/storage/sqlitemigrate"
	"github.com/stardrift-sim/stardrift/internal/storage"
	"github.com/stardrift-sim/stardrift/internal/storage/sqlite/migrations"
)

// Store is a SQLite-backed storage.Store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database. Nil-safe so callers can defer
// it in every startup path.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// PutEncounter upserts the full encounter aggregate.
func (s *Store) PutEncounter(ctx context.Context, enc *encounter.Encounter) error {
	if enc == nil || enc.ID == "" {
		return fmt.Errorf("encounter with id is required")
	}
	effectsJSON, err := json.Marshal(enc.Effects.All())
	if err != nil {
		return fmt.Errorf("marshal effects: %w", err)
	}
	turnsJSON, err := json.Marshal(enc.Turns)
	if err != nil {
		return fmt.Errorf("marshal turn state: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO encounters (id, name, momentum, momentum_max, threat, round, current_turn, active, created_at, effects, turns)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    momentum = excluded.momentum,
    momentum_max = excluded.momentum_max,
    threat = excluded.threat,
    round = excluded.round,
    current_turn = excluded.current_turn,
    active = excluded.active,
    effects = excluded.effects,
    turns = excluded.turns`,
		enc.ID, enc.Name, enc.Momentum, enc.MomentumMax, enc.Threat, enc.Round,
		string(enc.CurrentTurn), boolToInt(enc.Active), toMillis(enc.CreatedAt),
		string(effectsJSON), string(turnsJSON),
	)
	if err != nil {
		return fmt.Errorf("put encounter: %w", err)
	}
	return nil
}

// GetEncounter loads one encounter aggregate by id.
func (s *Store) GetEncounter(ctx context.Context, id string) (*encounter.Encounter, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, momentum, momentum_max, threat, round, current_turn, active, created_at, effects, turns
FROM encounters WHERE id = ?`, id)
	enc, err := scanEncounter(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("encounter %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get encounter: %w", err)
	}
	return enc, nil
}

// ListEncounters returns every stored encounter, newest first.
func (s *Store) ListEncounters(ctx context.Context) ([]*encounter.Encounter, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, momentum, momentum_max, threat, round, current_turn, active, created_at, effects, turns
FROM encounters ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()

	var encounters []*encounter.Encounter
	for rows.Next() {
		enc, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		encounters = append(encounters, enc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read encounters: %w", err)
	}
	return encounters, nil
}

// DeleteEncounter removes the encounter and its ships.
func (s *Store) DeleteEncounter(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM ships WHERE encounter_id = ?", id); err != nil {
		return fmt.Errorf("delete encounter ships: %w", err)
	}
	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM encounters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete encounter rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("encounter %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// PutShip upserts a combatant ship under its encounter.
func (s *Store) PutShip(ctx context.Context, encounterID string, combatant *ship.Starship) error {
	if combatant == nil || combatant.ID == "" || encounterID == "" {
		return fmt.Errorf("ship with id and encounter id is required")
	}
	data, err := json.Marshal(combatant)
	if err != nil {
		return fmt.Errorf("marshal ship: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO ships (id, encounter_id, name, faction, data)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id, encounter_id) DO UPDATE SET
    name = excluded.name,
    faction = excluded.faction,
    data = excluded.data`,
		combatant.ID, encounterID, combatant.Name, combatant.Faction, string(data),
	)
	if err != nil {
		return fmt.Errorf("put ship: %w", err)
	}
	return nil
}

// GetShip loads one ship by encounter and ship id.
func (s *Store) GetShip(ctx context.Context, encounterID, shipID string) (*ship.Starship, error) {
	var data string
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT data FROM ships WHERE encounter_id = ? AND id = ?", encounterID, shipID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ship %s: %w", shipID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ship: %w", err)
	}
	return unmarshalShip(data)
}

// ListShips returns every ship in the encounter in stable name order.
func (s *Store) ListShips(ctx context.Context, encounterID string) ([]*ship.Starship, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT data FROM ships WHERE encounter_id = ? ORDER BY name, id", encounterID)
	if err != nil {
		return nil, fmt.Errorf("list ships: %w", err)
	}
	defer rows.Close()

	var ships []*ship.Starship
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan ship: %w", err)
		}
		combatant, err := unmarshalShip(data)
		if err != nil {
			return nil, err
		}
		ships = append(ships, combatant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ships: %w", err)
	}
	return ships, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEncounter(row rowScanner) (*encounter.Encounter, error) {
	var (
		enc         encounter.Encounter
		currentTurn string
		active      int
		createdAt   int64
		effectsJSON string
		turnsJSON   string
	)
	err := row.Scan(&enc.ID, &enc.Name, &enc.Momentum, &enc.MomentumMax, &enc.Threat,
		&enc.Round, &currentTurn, &active, &createdAt, &effectsJSON, &turnsJSON)
	if err != nil {
		return nil, err
	}

	enc.CurrentTurn = encounter.Side(currentTurn)
	enc.Active = active != 0
	enc.CreatedAt = fromMillis(createdAt)

	var effects []effect.ActiveEffect
	if err := json.Unmarshal([]byte(effectsJSON), &effects); err != nil {
		return nil, fmt.Errorf("unmarshal effects: %w", err)
	}
	enc.Effects = effect.NewLedger(effects)

	if err := json.Unmarshal([]byte(turnsJSON), &enc.Turns); err != nil {
		return nil, fmt.Errorf("unmarshal turn state: %w", err)
	}
	return &enc, nil
}

func unmarshalShip(data string) (*ship.Starship, error) {
	var combatant ship.Starship
	if err := json.Unmarshal([]byte(data), &combatant); err != nil {
		return nil, fmt.Errorf("unmarshal ship: %w", err)
	}
	return &combatant, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
