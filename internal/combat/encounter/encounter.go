package encounter

import (
	"time"

	"github.com/stardrift-sim/stardrift/internal/combat/effect"
)

// Side identifies which faction holds the current turn.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
)

// DefaultMomentumMax caps the shared momentum pool.
const DefaultMomentumMax = 6

// Config describes how an encounter's turn economy is set up.
type Config struct {
	// MomentumMax caps the momentum pool; zero means
	// DefaultMomentumMax.
	MomentumMax int

	// PlayerSlots is the player side's turn budget per round in
	// single-player mode; zero means one.
	PlayerSlots int

	// PlayerIDs switches the player side to multiplayer mode: the
	// budget is one turn per listed player, gated by claims.
	PlayerIDs []string

	// EnemyBudgets maps enemy ship IDs to their per-round turn
	// budget (by convention the ship's Scale). Empty means one
	// anonymous enemy slot.
	EnemyBudgets map[string]int
}

// Encounter is the aggregate state for one combat.
type Encounter struct {
	ID          string
	Name        string
	Momentum    int
	MomentumMax int
	Threat      int
	Round       int
	CurrentTurn Side
	Active      bool
	CreatedAt   time.Time

	Effects *effect.Ledger
	Turns   TurnState
}

// New creates an encounter at round one with the player side acting
// first.
func New(id string, cfg Config) *Encounter {
	momentumMax := cfg.MomentumMax
	if momentumMax <= 0 {
		momentumMax = DefaultMomentumMax
	}
	return &Encounter{
		ID:          id,
		MomentumMax: momentumMax,
		Round:       1,
		CurrentTurn: SidePlayer,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
		Effects:     &effect.Ledger{},
		Turns:       newTurnState(cfg),
	}
}

// AddEffect stamps the effect with the current round and turn and
// stores it on the ledger. The turn stamp keeps an end-of-turn effect
// alive through the turn boundary of the action that created it.
func (e *Encounter) AddEffect(ae effect.ActiveEffect) effect.ActiveEffect {
	ae.CreatedRound = e.Round
	ae.CreatedTurn = e.Turns.TurnNumber
	e.Effects.Add(ae, e.Round)
	return ae
}

// AddMomentum adds to the pool, respecting the cap, and returns the
// amount actually added.
func (e *Encounter) AddMomentum(amount int) int {
	if amount <= 0 {
		return 0
	}
	old := e.Momentum
	e.Momentum += amount
	if e.Momentum > e.MomentumMax {
		e.Momentum = e.MomentumMax
	}
	return e.Momentum - old
}

// SpendMomentum deducts from the pool, failing without mutation when
// the balance is insufficient.
func (e *Encounter) SpendMomentum(amount int) bool {
	if amount < 0 || e.Momentum < amount {
		return false
	}
	e.Momentum -= amount
	return true
}

// AddThreat grows the unbounded threat pool.
func (e *Encounter) AddThreat(amount int) {
	if amount > 0 {
		e.Threat += amount
	}
}

// SpendThreat deducts threat, failing without mutation when the pool
// is insufficient.
func (e *Encounter) SpendThreat(amount int) bool {
	if amount < 0 || e.Threat < amount {
		return false
	}
	e.Threat -= amount
	return true
}
