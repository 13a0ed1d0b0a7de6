package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
	"github.com/stardrift-sim/stardrift/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "combat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestEncounterRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enc := encounter.New("enc-1", encounter.Config{
		PlayerIDs:    []string{"alice", "bob"},
		EnemyBudgets: map[string]int{"raider": 2},
	})
	enc.Name = "Ambush at Delta Vega"
	enc.AddMomentum(3)
	enc.AddThreat(2)
	enc.Round = 4
	enc.CurrentTurn = encounter.SideEnemy
	enc.Effects.Add(effect.ActiveEffect{
		ID:           "fx-1",
		SourceAction: "Scan For Weakness",
		SourceShip:   "ship-1",
		AppliesTo:    effect.AppliesAttack,
		Duration:     effect.DurationNextAction,
		DamageBonus:  2,
		Piercing:     true,
	}, enc.Round)

	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put encounter: %v", err)
	}

	loaded, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("get encounter: %v", err)
	}
	if loaded.Name != enc.Name || loaded.Momentum != 3 || loaded.Threat != 2 || loaded.Round != 4 {
		t.Fatalf("loaded = %+v, scalars do not match", loaded)
	}
	if loaded.CurrentTurn != encounter.SideEnemy || !loaded.Active {
		t.Fatalf("loaded turn/active = %s/%v", loaded.CurrentTurn, loaded.Active)
	}
	if !loaded.CreatedAt.Equal(enc.CreatedAt.Truncate(1e6)) && !loaded.CreatedAt.Equal(enc.CreatedAt) {
		t.Fatalf("created at = %v, want %v at millisecond precision", loaded.CreatedAt, enc.CreatedAt)
	}

	effects := loaded.Effects.All()
	if len(effects) != 1 {
		t.Fatalf("effects = %d, want 1", len(effects))
	}
	if effects[0].ID != "fx-1" || !effects[0].Piercing || effects[0].CreatedRound != 4 {
		t.Fatalf("effect = %+v, fields lost in round trip", effects[0])
	}

	if !loaded.Turns.Multiplayer || len(loaded.Turns.Players) != 2 {
		t.Fatalf("turn state = %+v, multiplayer setup lost", loaded.Turns)
	}
	if loaded.Turns.EnemyBudgets["raider"] != 2 {
		t.Fatalf("enemy budgets = %+v", loaded.Turns.EnemyBudgets)
	}
	// A rehydrated state must keep the usage map writable.
	if loaded.Turns.EnemyUsed == nil {
		t.Fatal("enemy usage map must survive a round trip")
	}
}

func TestPutEncounterUpserts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enc := encounter.New("enc-1", encounter.Config{})
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put encounter: %v", err)
	}
	enc.AddMomentum(5)
	enc.Round = 2
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("re-put encounter: %v", err)
	}

	loaded, err := store.GetEncounter(ctx, "enc-1")
	if err != nil {
		t.Fatalf("get encounter: %v", err)
	}
	if loaded.Momentum != 5 || loaded.Round != 2 {
		t.Fatalf("loaded = %+v, upsert did not replace state", loaded)
	}

	all, err := store.ListEncounters(ctx)
	if err != nil {
		t.Fatalf("list encounters: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("encounters = %d, want 1", len(all))
	}
}

func TestGetEncounterNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetEncounter(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestShipRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enc := encounter.New("enc-1", encounter.Config{})
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put encounter: %v", err)
	}

	combatant := ship.New("ISS Vigilant", "Cruiser", 4,
		ship.Systems{Comms: 7, Computers: 7, Engines: 8, Sensors: 8, Structure: 8, Weapons: 9},
		ship.Departments{Conn: 2, Engineering: 3, Science: 2, Security: 3},
	)
	combatant.ID = "ship-1"
	combatant.Faction = "player"
	combatant.Weapons = []ship.Weapon{{Name: "Phaser Array", Type: ship.WeaponEnergy, Damage: 4, Range: ship.RangeMedium}}
	combatant.AddBreach(ship.SystemEngines, 2)
	combatant.SetShieldsRaised(true)
	combatant.AbsorbShieldDamage(3)

	if err := store.PutShip(ctx, "enc-1", combatant); err != nil {
		t.Fatalf("put ship: %v", err)
	}

	loaded, err := store.GetShip(ctx, "enc-1", "ship-1")
	if err != nil {
		t.Fatalf("get ship: %v", err)
	}
	if loaded.Name != "ISS Vigilant" || loaded.Scale != 4 || loaded.Faction != "player" {
		t.Fatalf("loaded = %+v, scalars lost", loaded)
	}
	if loaded.BreachPotency(ship.SystemEngines) != 2 {
		t.Fatalf("breaches = %+v, want engines potency 2", loaded.Breaches)
	}
	if !loaded.ShieldsRaised || loaded.Shields != combatant.Shields {
		t.Fatalf("shields = %d raised=%v, state lost", loaded.Shields, loaded.ShieldsRaised)
	}
	if len(loaded.Weapons) != 1 || loaded.Weapons[0].Type != ship.WeaponEnergy {
		t.Fatalf("weapons = %+v", loaded.Weapons)
	}
}

func TestListShipsScopedToEncounter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, setup := range []struct{ encID, shipID, name string }{
		{"enc-1", "ship-a", "Alpha"},
		{"enc-1", "ship-b", "Beta"},
		{"enc-2", "ship-c", "Gamma"},
	} {
		s := ship.New(setup.name, "Test", 3, ship.Systems{}, ship.Departments{})
		s.ID = setup.shipID
		if err := store.PutShip(ctx, setup.encID, s); err != nil {
			t.Fatalf("put ship %s: %v", setup.shipID, err)
		}
	}

	ships, err := store.ListShips(ctx, "enc-1")
	if err != nil {
		t.Fatalf("list ships: %v", err)
	}
	if len(ships) != 2 || ships[0].Name != "Alpha" || ships[1].Name != "Beta" {
		t.Fatalf("ships = %+v, want Alpha and Beta in order", ships)
	}
}

func TestDeleteEncounterRemovesShips(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	enc := encounter.New("enc-1", encounter.Config{})
	if err := store.PutEncounter(ctx, enc); err != nil {
		t.Fatalf("put encounter: %v", err)
	}
	s := ship.New("Alpha", "Test", 3, ship.Systems{}, ship.Departments{})
	s.ID = "ship-a"
	if err := store.PutShip(ctx, "enc-1", s); err != nil {
		t.Fatalf("put ship: %v", err)
	}

	if err := store.DeleteEncounter(ctx, "enc-1"); err != nil {
		t.Fatalf("delete encounter: %v", err)
	}
	if _, err := store.GetEncounter(ctx, "enc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	ships, err := store.ListShips(ctx, "enc-1")
	if err != nil {
		t.Fatalf("list ships: %v", err)
	}
	if len(ships) != 0 {
		t.Fatalf("ships = %d, want none after delete", len(ships))
	}
	if err := store.DeleteEncounter(ctx, "enc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
}
