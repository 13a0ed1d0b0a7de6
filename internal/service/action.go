package service

import (
	"context"
	"fmt"

	"github.com/stardrift-sim/stardrift/internal/combat/encounter"
	"github.com/stardrift-sim/stardrift/internal/combat/resolver"
)

// ActionRequest executes one catalog action inside an encounter.
type ActionRequest struct {
	EncounterID string
	ShipID      string
	// ActorID identifies the acting player for turn claims; enemy
	// actions use the ship id.
	ActorID string
	Side    encounter.Side
	Action  string

	Attribute  int
	Discipline int
	Focus      bool
	BonusDice  int

	TargetSystem string
	WeaponIndex  int
	// HexDistance is the distance to the action's target, for
	// range-limited actions.
	HexDistance int
	Seed        int64
}

// ActionResponse reports the executed action plus turn-economy
// consequences.
type ActionResponse struct {
	Result        resolver.Result
	MomentumSpent int
	// Turn is set when a major action advanced the turn.
	Turn *encounter.TurnAdvance
}

// ExecuteAction runs the full action pipeline: turn gating, range and
// difficulty modifiers, resolution, turn completion, persistence.
func (s *Service) ExecuteAction(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	lock := s.lockEncounter(req.EncounterID)
	lock.Lock()
	defer lock.Unlock()

	enc, err := s.store.GetEncounter(ctx, req.EncounterID)
	if err != nil {
		return nil, err
	}
	if !enc.Active {
		return nil, ErrEncounterInactive
	}
	actor, err := s.store.GetShip(ctx, req.EncounterID, req.ShipID)
	if err != nil {
		return nil, err
	}

	config, ok := s.catalog.Get(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", resolver.ErrUnknownAction, req.Action)
	}

	actorID := req.ActorID
	if req.Side == encounter.SideEnemy {
		actorID = req.ShipID
	}
	major := s.catalog.IsMajor(req.Action)
	if err := enc.BeginAction(req.Side, actorID, major); err != nil {
		return nil, err
	}

	if err := s.catalog.CheckRange(req.Action, req.HexDistance); err != nil {
		return nil, err
	}

	if req.BonusDice > 3 {
		return nil, ErrTooManyBonusDice
	}
	// Bonus dice and the action's own price draw on the same pool, so
	// affordability is checked against their sum.
	diceCost := bonusDiceCost(req.BonusDice)
	if diceCost > 0 && enc.Momentum < diceCost+config.MomentumCost {
		return nil, fmt.Errorf("%w: %d bonus dice cost %d momentum", resolver.ErrInsufficientMomentum, req.BonusDice, diceCost)
	}

	// Difficulty modifiers the resolver expects pre-computed: breach
	// potency on the required system, distance scaling, and a pending
	// Reroute Power boost (peeked here, consumed after execution).
	modifier := s.catalog.BreachDifficultyModifier(req.Action, actor)
	modifier += s.catalog.RangeDifficultyModifier(req.Action, req.HexDistance)
	boostConsumed := false
	if system, ok := s.catalog.RequiredSystem(req.Action); ok {
		if boost, _, found := enc.Effects.FindSystemBoost(string(system)); found {
			modifier += boost
			boostConsumed = true
		}
	}

	result, err := s.resolver.Execute(enc, resolver.Request{
		Action:             req.Action,
		Actor:              actor,
		Attribute:          req.Attribute,
		Discipline:         req.Discipline,
		Focus:              req.Focus,
		BonusDice:          req.BonusDice,
		DifficultyModifier: modifier,
		Seed:               s.seed(req.Seed),
		TargetSystem:       req.TargetSystem,
		WeaponIndex:        req.WeaponIndex,
	})
	if err != nil {
		return nil, err
	}

	if diceCost > 0 && !enc.SpendMomentum(diceCost) {
		return nil, fmt.Errorf("%w: %d bonus dice cost %d momentum", resolver.ErrInsufficientMomentum, req.BonusDice, diceCost)
	}
	if boostConsumed {
		if system, ok := s.catalog.RequiredSystem(req.Action); ok {
			enc.Effects.ConsumeSystemBoost(string(system))
		}
	}

	response := &ActionResponse{Result: result, MomentumSpent: diceCost}
	if major {
		advance := enc.CompleteMajor(req.Side, actorID, s.clock())
		response.Turn = &advance
	} else {
		enc.CompleteMinor()
	}

	if err := s.store.PutShip(ctx, req.EncounterID, actor); err != nil {
		return nil, fmt.Errorf("persist ship: %w", err)
	}
	if err := s.store.PutEncounter(ctx, enc); err != nil {
		return nil, fmt.Errorf("persist encounter: %w", err)
	}
	return response, nil
}
