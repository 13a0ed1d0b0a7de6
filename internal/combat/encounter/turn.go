package encounter

import (
	"errors"
	"time"

	"github.com/stardrift-sim/stardrift/internal/combat/effect"
)

// Turn-ownership errors. These are always raised before any roll
// happens, so a rejected action never mutates encounter state.
var (
	ErrNotYourTurn      = errors.New("it is not this side's turn")
	ErrAlreadyActed     = errors.New("actor has already acted this round")
	ErrMinorAlreadyUsed = errors.New("minor action already used this turn")
	ErrTurnNotClaimed   = errors.New("turn slot must be claimed first")
	ErrNoTurnsRemaining = errors.New("no turn slots remaining this round")
)

// PlayerTurn tracks one player's usage in multiplayer mode.
type PlayerTurn struct {
	Acted   bool       `json:"acted"`
	ActedAt *time.Time `json:"acted_at,omitempty"`
}

// TurnState tracks per-round turn budgets and usage for both sides.
type TurnState struct {
	Multiplayer bool `json:"multiplayer"`

	// Single-player bookkeeping.
	PlayerSlots     int `json:"player_slots"`
	PlayerTurnsUsed int `json:"player_turns_used"`

	// Multiplayer bookkeeping.
	Players   map[string]PlayerTurn `json:"players,omitempty"`
	ClaimedBy string                `json:"claimed_by,omitempty"`
	ClaimedAt *time.Time            `json:"claimed_at,omitempty"`

	// MinorUsed marks the current actor's spent minor action; it
	// resets when the actor's turn ends.
	MinorUsed bool `json:"minor_used"`

	// TurnNumber counts completed turns monotonically across rounds;
	// effects stamp it at creation to tell their own turn apart from
	// earlier ones.
	TurnNumber int `json:"turn_number"`

	// Enemy bookkeeping, budget and usage per enemy ship. Neither map
	// is omitted when empty: a rehydrated state must keep them
	// writable.
	EnemyBudgets map[string]int `json:"enemy_budgets"`
	EnemyUsed    map[string]int `json:"enemy_used"`
}

func newTurnState(cfg Config) TurnState {
	state := TurnState{
		PlayerSlots:  cfg.PlayerSlots,
		TurnNumber:   1,
		EnemyBudgets: map[string]int{},
		EnemyUsed:    map[string]int{},
	}
	if state.PlayerSlots <= 0 {
		state.PlayerSlots = 1
	}
	if len(cfg.PlayerIDs) > 0 {
		state.Multiplayer = true
		state.Players = make(map[string]PlayerTurn, len(cfg.PlayerIDs))
		for _, id := range cfg.PlayerIDs {
			state.Players[id] = PlayerTurn{}
		}
	}
	for id, budget := range cfg.EnemyBudgets {
		if budget > 0 {
			state.EnemyBudgets[id] = budget
		}
	}
	if len(state.EnemyBudgets) == 0 {
		state.EnemyBudgets["enemy"] = 1
	}
	return state
}

// PlayerTurnsRemaining reports the player side's unused turn slots
// this round.
func (t *TurnState) PlayerTurnsRemaining() int {
	if t.Multiplayer {
		remaining := 0
		for _, player := range t.Players {
			if !player.Acted {
				remaining++
			}
		}
		return remaining
	}
	remaining := t.PlayerSlots - t.PlayerTurnsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EnemyTurnsRemaining reports the enemy side's unused turn slots this
// round.
func (t *TurnState) EnemyTurnsRemaining() int {
	remaining := 0
	for id, budget := range t.EnemyBudgets {
		if used := t.EnemyUsed[id]; used < budget {
			remaining += budget - used
		}
	}
	return remaining
}

func (t *TurnState) resetRound() {
	t.PlayerTurnsUsed = 0
	t.MinorUsed = false
	t.ClaimedBy = ""
	t.ClaimedAt = nil
	for id := range t.Players {
		t.Players[id] = PlayerTurn{}
	}
	t.EnemyUsed = map[string]int{}
}

// ClaimResult reports the outcome of a turn-slot claim.
type ClaimResult struct {
	Success   bool
	Confirmed bool
	ClaimedBy string
	Reason    string
}

// ReleaseResult reports the outcome of releasing a claimed slot.
type ReleaseResult struct {
	Released   bool
	ReleasedBy string
}

// TurnAdvance reports the turn owner after an alternation.
type TurnAdvance struct {
	CurrentTurn   Side
	Round         int
	RoundAdvanced bool
}

// ClaimTurn claims the player side's shared turn slot for actorID.
// The claim is rejected when the actor has already acted this round,
// the slot is held by someone else, or it is not the player side's
// turn. Claiming in single-player mode is a no-op confirmation.
func (e *Encounter) ClaimTurn(actorID string, now time.Time) ClaimResult {
	if e.CurrentTurn != SidePlayer {
		return ClaimResult{Reason: "it is not the player side's turn"}
	}
	if !e.Turns.Multiplayer {
		return ClaimResult{Success: true, Confirmed: true, ClaimedBy: actorID}
	}
	player, known := e.Turns.Players[actorID]
	if !known {
		return ClaimResult{Reason: "unknown player"}
	}
	if player.Acted {
		return ClaimResult{Reason: "player has already acted this round"}
	}
	if e.Turns.ClaimedBy != "" && e.Turns.ClaimedBy != actorID {
		return ClaimResult{ClaimedBy: e.Turns.ClaimedBy, Reason: "turn is already claimed"}
	}
	claimedAt := now.UTC()
	e.Turns.ClaimedBy = actorID
	e.Turns.ClaimedAt = &claimedAt
	return ClaimResult{Success: true, Confirmed: true, ClaimedBy: actorID}
}

// ReleaseTurn releases the claimed slot without acting. Releasing an
// unclaimed slot is a no-op reporting no prior claimant. When force is
// false only the claimant may release.
func (e *Encounter) ReleaseTurn(actorID string, force bool) ReleaseResult {
	claimant := e.Turns.ClaimedBy
	if claimant == "" {
		return ReleaseResult{}
	}
	if !force && claimant != actorID {
		return ReleaseResult{ReleasedBy: claimant}
	}
	e.Turns.ClaimedBy = ""
	e.Turns.ClaimedAt = nil
	e.Turns.MinorUsed = false
	return ReleaseResult{Released: true, ReleasedBy: claimant}
}

// BeginAction validates that the actor may take an action of the
// given class right now. It mutates nothing.
func (e *Encounter) BeginAction(side Side, actorID string, major bool) error {
	if e.CurrentTurn != side {
		return ErrNotYourTurn
	}
	switch side {
	case SidePlayer:
		return e.beginPlayerAction(actorID, major)
	case SideEnemy:
		return e.beginEnemyAction(actorID)
	}
	return ErrNotYourTurn
}

func (e *Encounter) beginPlayerAction(actorID string, major bool) error {
	if e.Turns.Multiplayer {
		player, known := e.Turns.Players[actorID]
		if !known {
			return ErrNotYourTurn
		}
		if player.Acted {
			return ErrAlreadyActed
		}
		if e.Turns.ClaimedBy != actorID {
			return ErrTurnNotClaimed
		}
	} else if e.Turns.PlayerTurnsRemaining() == 0 {
		return ErrAlreadyActed
	}
	if !major && e.Turns.MinorUsed {
		return ErrMinorAlreadyUsed
	}
	return nil
}

func (e *Encounter) beginEnemyAction(actorID string) error {
	budget, known := e.Turns.EnemyBudgets[actorID]
	if !known {
		return ErrNotYourTurn
	}
	if e.Turns.EnemyUsed[actorID] >= budget {
		return ErrAlreadyActed
	}
	return nil
}

// CompleteMinor records a spent minor action. Minors never end the
// turn and never mark a player as acted.
func (e *Encounter) CompleteMinor() {
	e.Turns.MinorUsed = true
}

// CompleteMajor records a spent major action for the actor, ends the
// actor's turn and alternates sides. In multiplayer the claim is
// released implicitly. End-of-turn effects from earlier turns are
// swept; an effect created by this very action survives into the
// opposing side's turn. Round advance additionally sweeps end-of-round
// effects.
func (e *Encounter) CompleteMajor(side Side, actorID string, now time.Time) TurnAdvance {
	switch side {
	case SidePlayer:
		if e.Turns.Multiplayer {
			actedAt := now.UTC()
			e.Turns.Players[actorID] = PlayerTurn{Acted: true, ActedAt: &actedAt}
			e.Turns.ClaimedBy = ""
			e.Turns.ClaimedAt = nil
		} else {
			e.Turns.PlayerTurnsUsed++
		}
	case SideEnemy:
		if e.Turns.EnemyUsed == nil {
			e.Turns.EnemyUsed = map[string]int{}
		}
		e.Turns.EnemyUsed[actorID]++
	}
	e.Turns.MinorUsed = false
	e.Effects.ClearExpiredTurn(e.Turns.TurnNumber)
	return e.alternate()
}

// AdvanceTurn forfeits the current side's remaining slots and runs
// the normal alternation, used when a side passes.
func (e *Encounter) AdvanceTurn() TurnAdvance {
	switch e.CurrentTurn {
	case SidePlayer:
		if e.Turns.Multiplayer {
			for id := range e.Turns.Players {
				e.Turns.Players[id] = PlayerTurn{Acted: true}
			}
			e.Turns.ClaimedBy = ""
			e.Turns.ClaimedAt = nil
		} else {
			e.Turns.PlayerTurnsUsed = e.Turns.PlayerSlots
		}
	case SideEnemy:
		if e.Turns.EnemyUsed == nil {
			e.Turns.EnemyUsed = map[string]int{}
		}
		for id, budget := range e.Turns.EnemyBudgets {
			e.Turns.EnemyUsed[id] = budget
		}
	}
	e.Turns.MinorUsed = false
	e.Effects.ClearExpiredTurn(e.Turns.TurnNumber)
	return e.alternate()
}

// alternate flips the current side after a completed turn. The side
// only flips when the opposing side has remaining slots; when both
// sides are exhausted the round advances, usage resets, and the
// player side acts first.
func (e *Encounter) alternate() TurnAdvance {
	e.Turns.TurnNumber++
	playerRemaining := e.Turns.PlayerTurnsRemaining()
	enemyRemaining := e.Turns.EnemyTurnsRemaining()

	if playerRemaining == 0 && enemyRemaining == 0 {
		e.Round++
		e.Turns.resetRound()
		e.CurrentTurn = SidePlayer
		e.Effects.Clear("", effect.DurationEndOfRound)
		return TurnAdvance{CurrentTurn: e.CurrentTurn, Round: e.Round, RoundAdvanced: true}
	}

	if e.CurrentTurn == SidePlayer {
		if enemyRemaining > 0 {
			e.CurrentTurn = SideEnemy
		}
	} else {
		if playerRemaining > 0 {
			e.CurrentTurn = SidePlayer
		}
	}
	return TurnAdvance{CurrentTurn: e.CurrentTurn, Round: e.Round}
}
