package effect

// Ledger holds the active effects for one encounter.
//
// The zero value is ready to use. Filters follow one rule throughout:
// a provided filter must match, an absent (zero-value) filter matches
// everything. Get additionally treats AppliesAll effects as matching
// every category.
type Ledger struct {
	effects []ActiveEffect
}

// NewLedger builds a ledger pre-populated with effects, used when
// rehydrating an encounter from storage.
func NewLedger(effects []ActiveEffect) *Ledger {
	return &Ledger{effects: append([]ActiveEffect(nil), effects...)}
}

// Add stamps the effect with the given round and appends it.
func (l *Ledger) Add(e ActiveEffect, round int) {
	e.CreatedRound = round
	l.effects = append(l.effects, e)
}

// Get returns effects whose category equals appliesTo or is
// AppliesAll. An empty appliesTo returns every effect.
func (l *Ledger) Get(appliesTo AppliesTo) []ActiveEffect {
	var matched []ActiveEffect
	for _, e := range l.effects {
		if appliesTo == "" || e.AppliesTo == appliesTo || e.AppliesTo == AppliesAll {
			matched = append(matched, e)
		}
	}
	return matched
}

// Clear removes and returns all effects matching both filters. Each
// provided filter must match; absent filters match everything.
func (l *Ledger) Clear(appliesTo AppliesTo, duration Duration) []ActiveEffect {
	var cleared []ActiveEffect
	remaining := l.effects[:0]
	for _, e := range l.effects {
		if (appliesTo == "" || e.AppliesTo == appliesTo) &&
			(duration == "" || e.Duration == duration) {
			cleared = append(cleared, e)
			continue
		}
		remaining = append(remaining, e)
	}
	l.effects = remaining
	return cleared
}

// ClearExpiredTurn removes and returns end-of-turn effects created
// before the given turn number. An effect created during the turn that
// is ending stays on the ledger until a later turn completes.
func (l *Ledger) ClearExpiredTurn(turn int) []ActiveEffect {
	var cleared []ActiveEffect
	remaining := l.effects[:0]
	for _, e := range l.effects {
		if e.Duration == DurationEndOfTurn && e.CreatedTurn < turn {
			cleared = append(cleared, e)
			continue
		}
		remaining = append(remaining, e)
	}
	l.effects = remaining
	return cleared
}

// Remove deletes the effect with the given ID and returns it.
func (l *Ledger) Remove(id string) (ActiveEffect, bool) {
	for i, e := range l.effects {
		if e.ID == id {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			return e, true
		}
	}
	return ActiveEffect{}, false
}

// FindSystemBoost returns the difficulty modifier and effect of a
// system boost (Reroute Power) targeting the named ship system, or
// (0, zero, false) when none applies.
func (l *Ledger) FindSystemBoost(system string) (int, ActiveEffect, bool) {
	for _, e := range l.effects {
		if e.TargetSystem == system && e.DifficultyModifier != 0 {
			return e.DifficultyModifier, e, true
		}
	}
	return 0, ActiveEffect{}, false
}

// ConsumeSystemBoost removes and returns the first system boost
// targeting the named ship system.
func (l *Ledger) ConsumeSystemBoost(system string) (ActiveEffect, bool) {
	for i, e := range l.effects {
		if e.TargetSystem == system && e.DifficultyModifier != 0 {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			return e, true
		}
	}
	return ActiveEffect{}, false
}

// All returns a copy of every stored effect in insertion order.
func (l *Ledger) All() []ActiveEffect {
	return append([]ActiveEffect(nil), l.effects...)
}

// Len reports the number of stored effects.
func (l *Ledger) Len() int {
	return len(l.effects)
}
