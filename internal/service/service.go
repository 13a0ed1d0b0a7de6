package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stardrift-sim/stardrift/internal/combat/catalog"
	"github.com/stardrift-sim/stardrift/internal/combat/dice"
	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/resolver"
	"github.com/stardrift-sim/stardrift/internal/combat/ship"
	"github.com/stardrift-sim/stardrift/internal/id"
	"github.com/stardrift-sim/stardrift/internal/random"
	"github.com/stardrift-sim/stardrift/internal/storage"
)

// Faction names used on ship records to assign turn sides.
const (
	FactionPlayer = "player"
	FactionEnemy  = "enemy"
)

var (
	// ErrEncounterInactive rejects actions on a finished encounter.
	ErrEncounterInactive = errors.New("encounter is no longer active")
	// ErrTooManyBonusDice caps momentum-bought dice at three.
	ErrTooManyBonusDice = errors.New("at most 3 bonus dice may be bought")
)

// Service coordinates combat resolution against persistent state.
type Service struct {
	store    storage.Store
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	clock    func() time.Time
	newID    func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects a deterministic clock for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithIDGenerator injects a deterministic identifier source for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithCatalog replaces the default action rules table, used by tests
// and scenario tooling to load trimmed rule sets.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// New builds a combat service over the given store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog.New(),
		clock:   time.Now,
		newID:   id.MustNewID,
		locks:   map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = resolver.New(s.catalog, s.newID)
	return s
}

// Catalog exposes the action rules table for read-only queries.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// lockEncounter returns the mutex serializing one encounter's
// mutations, creating it on first use.
func (s *Service) lockEncounter(encounterID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[encounterID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[encounterID] = lock
	}
	return lock
}

// CreateEncounterRequest describes a new combat setup. Ships carry
// their faction; enemy turn budgets derive from enemy ship scale.
type CreateEncounterRequest struct {
	Name        string
	MomentumMax int
	PlayerSlots int
	PlayerIDs   []string
	Ships       []*ship.Starship
}

// CreateEncounter persists a new encounter and its combatants.
func (s *Service) CreateEncounter(ctx context.Context, req CreateEncounterRequest) (*encounter.Encounter, error) {
	enemyBudgets := map[string]int{}
	for _, combatant := range req.Ships {
		if combatant.ID == "" {
			combatant.ID = s.newID()
		}
		if combatant.Faction == FactionEnemy {
			budget := combatant.Scale
			if budget < 1 {
				budget = 1
			}
			enemyBudgets[combatant.ID] = budget
		}
	}

	enc := encounter.New(s.newID(), encounter.Config{
		MomentumMax:  req.MomentumMax,
		PlayerSlots:  req.PlayerSlots,
		PlayerIDs:    req.PlayerIDs,
		EnemyBudgets: enemyBudgets,
	})
	enc.Name = req.Name
	enc.CreatedAt = s.clock().UTC()

	if err := s.store.PutEncounter(ctx, enc); err != nil {
		return nil, fmt.Errorf("create encounter: %w", err)
	}
	for _, combatant := range req.Ships {
		if err := s.store.PutShip(ctx, enc.ID, combatant); err != nil {
			return nil, fmt.Errorf("create encounter ship %s: %w", combatant.ID, err)
		}
	}
	return enc, nil
}

// EncounterView bundles an encounter with its combatants.
type EncounterView struct {
	Encounter *encounter.Encounter
	Ships     []*ship.Starship
}

// GetEncounter loads one encounter aggregate with its ships.
func (s *Service) GetEncounter(ctx context.Context, encounterID string) (*EncounterView, error) {
	enc, err := s.store.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	ships, err := s.store.ListShips(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	return &EncounterView{Encounter: enc, Ships: ships}, nil
}

// ListEncounters returns all stored encounters.
func (s *Service) ListEncounters(ctx context.Context) ([]*encounter.Encounter, error) {
	return s.store.ListEncounters(ctx)
}

// RollRequest is a bare task-roll invocation with no encounter state.
type RollRequest struct {
	Attribute  int
	Discipline int
	Difficulty int
	Focus      bool
	BonusDice  int
	Seed       int64

	// Assist adds one ship-assist die against System+Department.
	Assist           bool
	AssistSystem     int
	AssistDepartment int
}

// ResolveRoll performs a standalone task roll.
func (s *Service) ResolveRoll(req RollRequest) (dice.TaskResult, error) {
	base := dice.TaskRollRequest{
		Attribute:  req.Attribute,
		Discipline: req.Discipline,
		Difficulty: req.Difficulty,
		Focus:      req.Focus,
		BonusDice:  req.BonusDice,
		Seed:       s.seed(req.Seed),
	}
	if req.Assist {
		return dice.AssistedTaskRoll(dice.AssistedTaskRollRequest{
			TaskRollRequest: base,
			System:          req.AssistSystem,
			Department:      req.AssistDepartment,
		})
	}
	return dice.TaskRoll(base)
}

// ClaimTurn claims the player side's shared turn slot for the actor.
func (s *Service) ClaimTurn(ctx context.Context, encounterID, actorID string) (encounter.ClaimResult, error) {
	lock := s.lockEncounter(encounterID)
	lock.Lock()
	defer lock.Unlock()

	enc, err := s.store.GetEncounter(ctx, encounterID)
	if err != nil {
		return encounter.ClaimResult{}, err
	}
	result := enc.ClaimTurn(actorID, s.clock())
	if result.Success {
		if err := s.store.PutEncounter(ctx, enc); err != nil {
			return encounter.ClaimResult{}, fmt.Errorf("persist claim: %w", err)
		}
	}
	return result, nil
}

// ReleaseTurn releases a claimed slot without acting.
func (s *Service) ReleaseTurn(ctx context.Context, encounterID, actorID string, force bool) (encounter.ReleaseResult, error) {
	lock := s.lockEncounter(encounterID)
	lock.Lock()
	defer lock.Unlock()

	enc, err := s.store.GetEncounter(ctx, encounterID)
	if err != nil {
		return encounter.ReleaseResult{}, err
	}
	result := enc.ReleaseTurn(actorID, force)
	if result.Released {
		if err := s.store.PutEncounter(ctx, enc); err != nil {
			return encounter.ReleaseResult{}, fmt.Errorf("persist release: %w", err)
		}
	}
	return result, nil
}

// AdvanceTurn forfeits the current side's remaining slots and moves
// the turn along.
func (s *Service) AdvanceTurn(ctx context.Context, encounterID string) (encounter.TurnAdvance, error) {
	lock := s.lockEncounter(encounterID)
	lock.Lock()
	defer lock.Unlock()

	enc, err := s.store.GetEncounter(ctx, encounterID)
	if err != nil {
		return encounter.TurnAdvance{}, err
	}
	if !enc.Active {
		return encounter.TurnAdvance{}, ErrEncounterInactive
	}
	advance := enc.AdvanceTurn()
	if err := s.store.PutEncounter(ctx, enc); err != nil {
		return encounter.TurnAdvance{}, fmt.Errorf("persist advance: %w", err)
	}
	return advance, nil
}

// seed returns the request seed, or a fresh high-entropy one when the
// caller does not pin determinism.
func (s *Service) seed(requested int64) int64 {
	if requested != 0 {
		return requested
	}
	seed, err := random.NewSeed()
	if err != nil {
		return s.clock().UnixNano()
	}
	return seed
}

// bonusDiceCost is the escalating momentum price for bought dice: the
// first die costs 1, the second 2, the third 3.
func bonusDiceCost(count int) int {
	return count * (count + 1) / 2
}
