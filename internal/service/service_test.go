package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stardrift-sim/stardrift/internal/combat/catalog"
	"github.com/stardrift-sim/stardrift/internal/combat/damage"
	"github.com/stardrift-sim/stardrift/internal/combat/effect"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/resolver"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
	"github.com/stardrift-sim/stardrift/internal/storage"
)

// memStore is an in-memory storage.Store for service tests.
type memStore struct {
	encounters map[string]*encounter.Encounter
	ships      map[string]map[string]*ship.Starship
}

func newMemStore() *memStore {
	return &memStore{
		encounters: map[string]*encounter.Encounter{},
		ships:      map[string]map[string]*ship.Starship{},
	}
}

func (m *memStore) PutEncounter(_ context.Context, enc *encounter.Encounter) error {
	m.encounters[enc.ID] = enc
	return nil
}

func (m *memStore) GetEncounter(_ context.Context, id string) (*encounter.Encounter, error) {
	enc, ok := m.encounters[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return enc, nil
}

func (m *memStore) ListEncounters(_ context.Context) ([]*encounter.Encounter, error) {
	var all []*encounter.Encounter
	for _, enc := range m.encounters {
		all = append(all, enc)
	}
	return all, nil
}

func (m *memStore) DeleteEncounter(_ context.Context, id string) error {
	if _, ok := m.encounters[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.encounters, id)
	delete(m.ships, id)
	return nil
}

func (m *memStore) PutShip(_ context.Context, encounterID string, s *ship.Starship) error {
	if m.ships[encounterID] == nil {
		m.ships[encounterID] = map[string]*ship.Starship{}
	}
	m.ships[encounterID][s.ID] = s
	return nil
}

func (m *memStore) GetShip(_ context.Context, encounterID, shipID string) (*ship.Starship, error) {
	s, ok := m.ships[encounterID][shipID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListShips(_ context.Context, encounterID string) ([]*ship.Starship, error) {
	var all []*ship.Starship
	for _, s := range m.ships[encounterID] {
		all = append(all, s)
	}
	return all, nil
}

func (m *memStore) Close() error { return nil }

var serviceNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func testService(opts ...Option) (*Service, *memStore) {
	store := newMemStore()
	n := 0
	base := []Option{
		WithClock(func() time.Time { return serviceNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
	svc := New(store, append(base, opts...)...)
	return svc, store
}

func playerShip() *ship.Starship {
	s := ship.New("ISS Vigilant", "Cruiser", 4,
		ship.Systems{Comms: 7, Computers: 7, Engines: 8, Sensors: 8, Structure: 8, Weapons: 9},
		ship.Departments{Command: 3, Conn: 2, Engineering: 3, Science: 2, Security: 3},
	)
	s.ID = "vigilant"
	s.Faction = FactionPlayer
	s.Weapons = []ship.Weapon{
		{Name: "Phaser Array", Type: ship.WeaponEnergy, Damage: 4, Range: ship.RangeMedium},
		{Name: "Photon Torpedo", Type: ship.WeaponTorpedo, Damage: 5, Range: ship.RangeLong},
	}
	return s
}

func enemyShip(scale int) *ship.Starship {
	s := ship.New("Raider", "Corsair", scale,
		ship.Systems{Comms: 6, Computers: 6, Engines: 7, Sensors: 7, Structure: 7, Weapons: 7},
		ship.Departments{Conn: 1, Security: 2},
	)
	s.ID = "raider"
	s.Faction = FactionEnemy
	s.Weapons = []ship.Weapon{{Name: "Disruptor", Type: ship.WeaponEnergy, Damage: 3, Range: ship.RangeMedium}}
	return s
}

func createTestEncounter(t *testing.T, svc *Service, req CreateEncounterRequest) *encounter.Encounter {
	t.Helper()
	enc, err := svc.CreateEncounter(context.Background(), req)
	if err != nil {
		t.Fatalf("create encounter: %v", err)
	}
	return enc
}

func TestCreateEncounterDerivesEnemyBudgets(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Name:  "Ambush",
		Ships: []*ship.Starship{playerShip(), enemyShip(3)},
	})

	if enc.Turns.EnemyBudgets["raider"] != 3 {
		t.Fatalf("enemy budgets = %+v, want scale-based budget 3", enc.Turns.EnemyBudgets)
	}
	if enc.Round != 1 || enc.CurrentTurn != encounter.SidePlayer {
		t.Fatalf("encounter = %+v, want fresh round with player first", enc)
	}

	view, err := svc.GetEncounter(context.Background(), enc.ID)
	if err != nil {
		t.Fatalf("get encounter: %v", err)
	}
	if len(view.Ships) != 2 {
		t.Fatalf("ships = %d, want 2", len(view.Ships))
	}
}

func TestCreateEncounterAssignsShipIDs(t *testing.T) {
	svc, _ := testService()
	anonymous := enemyShip(1)
	anonymous.ID = ""
	enc := createTestEncounter(t, svc, CreateEncounterRequest{Ships: []*ship.Starship{anonymous}})

	if anonymous.ID == "" {
		t.Fatal("ship without an id must be assigned one")
	}
	if enc.Turns.EnemyBudgets[anonymous.ID] != 1 {
		t.Fatalf("budgets = %+v, want entry for generated id", enc.Turns.EnemyBudgets)
	}
}

func TestExecuteActionMinorDoesNotAdvanceTurn(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	resp, err := svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Calibrate Weapons",
	})
	if err != nil {
		t.Fatalf("execute action: %v", err)
	}
	if !resp.Result.Success || resp.Result.Major || resp.Turn != nil {
		t.Fatalf("response = %+v, want minor success with no turn advance", resp)
	}
	if enc.CurrentTurn != encounter.SidePlayer {
		t.Fatal("minor action must not flip the turn")
	}
	if enc.Effects.Len() != 1 {
		t.Fatalf("effects = %d, want the calibration buff persisted", enc.Effects.Len())
	}
}

func TestExecuteActionMajorAdvancesTurn(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	resp, err := svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Rally",
		Attribute:   9,
		Discipline:  3,
		Seed:        21,
	})
	if err != nil {
		t.Fatalf("execute action: %v", err)
	}
	if resp.Turn == nil || resp.Turn.CurrentTurn != encounter.SideEnemy {
		t.Fatalf("turn = %+v, want flip to enemy", resp.Turn)
	}
	if resp.Result.Roll == nil {
		t.Fatal("Rally is a task roll")
	}
}

func TestExecuteActionRejectsOutOfTurn(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	_, err := svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "raider",
		Side:        encounter.SideEnemy,
		Action:      "Rally",
	})
	if !errors.Is(err, encounter.ErrNotYourTurn) {
		t.Fatalf("error = %v, want ErrNotYourTurn", err)
	}
}

func TestExecuteActionBonusDiceCost(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	_, err := svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Rally",
		BonusDice:   4,
	})
	if !errors.Is(err, ErrTooManyBonusDice) {
		t.Fatalf("error = %v, want ErrTooManyBonusDice", err)
	}

	// Two bonus dice cost 1+2 = 3 momentum; the pool is empty.
	_, err = svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Rally",
		BonusDice:   2,
		Seed:        5,
	})
	if err == nil {
		t.Fatal("want insufficient momentum error")
	}

	enc.AddMomentum(4)
	resp, err := svc.ExecuteAction(context.Background(), ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Rally",
		BonusDice:   2,
		Seed:        5,
	})
	if err != nil {
		t.Fatalf("execute action: %v", err)
	}
	if resp.MomentumSpent != 3 {
		t.Fatalf("spent = %d, want escalating cost 3", resp.MomentumSpent)
	}
	if len(resp.Result.Roll.Rolls) != 4 {
		t.Fatalf("pool = %v, want 2 base + 2 bonus dice", resp.Result.Roll.Rolls)
	}
}

func TestExecuteActionGatesCombinedMomentumCost(t *testing.T) {
	svc, _ := testService(WithCatalog(catalog.FromConfigs([]catalog.ActionConfig{
		{
			Name:         "Emergency Burn",
			Type:         catalog.TypeBuff,
			Effect:       &catalog.EffectTemplate{AppliesTo: effect.AppliesMovement, DifficultyModifier: -1},
			MomentumCost: 3,
		},
	})))
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	// Three momentum covers either price alone but not both together.
	enc.AddMomentum(3)
	req := ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Emergency Burn",
		BonusDice:   1,
	}
	_, err := svc.ExecuteAction(context.Background(), req)
	if !errors.Is(err, resolver.ErrInsufficientMomentum) {
		t.Fatalf("error = %v, want ErrInsufficientMomentum", err)
	}
	if enc.Momentum != 3 {
		t.Fatalf("momentum = %d, rejected action must not spend", enc.Momentum)
	}

	enc.AddMomentum(1)
	resp, err := svc.ExecuteAction(context.Background(), req)
	if err != nil {
		t.Fatalf("execute action: %v", err)
	}
	if resp.MomentumSpent != 1 {
		t.Fatalf("spent = %d, want 1 for the bonus die", resp.MomentumSpent)
	}
	if enc.Momentum != 0 {
		t.Fatalf("momentum = %d, want pool drained by die plus action cost", enc.Momentum)
	}
}

func TestModulateShieldsBonusLastsThroughEnemyTurn(t *testing.T) {
	svc, _ := testService()
	attacker := playerShip()
	attacker.SetShieldsRaised(true)
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{attacker, enemyShip(1)},
	})
	ctx := context.Background()

	resp, err := svc.ExecuteAction(ctx, ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "p1",
		Side:        encounter.SidePlayer,
		Action:      "Modulate Shields",
		Attribute:   20,
		Discipline:  5,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("execute action: %v", err)
	}
	if !resp.Result.Success || resp.Result.EffectCreated == nil {
		t.Fatalf("result = %+v, want success with a created effect", resp.Result)
	}

	// The modulation outlives its own turn: the enemy's counterattack
	// still faces the resistance bonus.
	if enc.CurrentTurn != encounter.SideEnemy {
		t.Fatalf("current turn = %q, want enemy", enc.CurrentTurn)
	}
	if got := damage.DefenseBonus(enc, "vigilant"); got != 2 {
		t.Fatalf("defense bonus = %d, want 2 on the enemy's turn", got)
	}

	if _, err := svc.ExecuteAction(ctx, ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "raider",
		Side:        encounter.SideEnemy,
		Action:      "Pass",
	}); err != nil {
		t.Fatalf("enemy pass: %v", err)
	}
	if enc.Effects.Len() != 0 {
		t.Fatalf("effects = %d, want modulation swept after the enemy turn", enc.Effects.Len())
	}
}

func TestClaimTurnLifecycle(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		PlayerIDs: []string{"alice", "bob"},
		Ships:     []*ship.Starship{playerShip(), enemyShip(1)},
	})
	ctx := context.Background()

	claim, err := svc.ClaimTurn(ctx, enc.ID, "alice")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claim.Success {
		t.Fatalf("claim = %+v", claim)
	}

	// Bob cannot claim or act while Alice holds the slot.
	claim, err = svc.ClaimTurn(ctx, enc.ID, "bob")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.Success || claim.ClaimedBy != "alice" {
		t.Fatalf("claim = %+v, want rejection naming alice", claim)
	}
	_, err = svc.ExecuteAction(ctx, ActionRequest{
		EncounterID: enc.ID,
		ShipID:      "vigilant",
		ActorID:     "bob",
		Side:        encounter.SidePlayer,
		Action:      "Calibrate Weapons",
	})
	if !errors.Is(err, encounter.ErrTurnNotClaimed) {
		t.Fatalf("error = %v, want ErrTurnNotClaimed", err)
	}

	release, err := svc.ReleaseTurn(ctx, enc.ID, "alice", false)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !release.Released || release.ReleasedBy != "alice" {
		t.Fatalf("release = %+v", release)
	}

	claim, err = svc.ClaimTurn(ctx, enc.ID, "bob")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !claim.Success {
		t.Fatalf("claim after release = %+v", claim)
	}
}

func TestAdvanceTurnForfeitsCurrentSide(t *testing.T) {
	svc, _ := testService()
	enc := createTestEncounter(t, svc, CreateEncounterRequest{
		Ships: []*ship.Starship{playerShip(), enemyShip(1)},
	})

	advance, err := svc.AdvanceTurn(context.Background(), enc.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if advance.CurrentTurn != encounter.SideEnemy {
		t.Fatalf("advance = %+v, want enemy turn", advance)
	}
	advance, err = svc.AdvanceTurn(context.Background(), enc.ID)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !advance.RoundAdvanced || advance.Round != 2 {
		t.Fatalf("advance = %+v, want round 2", advance)
	}
}

func TestResolveRollStandalone(t *testing.T) {
	svc, _ := testService()

	roll, err := svc.ResolveRoll(RollRequest{
		Attribute: 10, Discipline: 4, Difficulty: 2, Seed: 17,
		Assist: true, AssistSystem: 9, AssistDepartment: 3,
	})
	if err != nil {
		t.Fatalf("resolve roll: %v", err)
	}
	if !roll.Assisted || roll.AssistTargetNumber != 12 {
		t.Fatalf("roll = %+v, want assisted at target 12", roll)
	}
	if len(roll.Rolls) != 3 {
		t.Fatalf("pool = %v, want 2 + assist die", roll.Rolls)
	}
}
