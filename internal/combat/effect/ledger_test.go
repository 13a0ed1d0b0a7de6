package effect

import "testing"

func TestAddStampsRound(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "e1", SourceAction: "Calibrate Weapons", AppliesTo: AppliesAttack, Duration: DurationNextAction, DamageBonus: 1}, 3)

	effects := ledger.All()
	if len(effects) != 1 {
		t.Fatalf("expected 1 effect, got %d", len(effects))
	}
	if effects[0].CreatedRound != 3 {
		t.Fatalf("created round = %d, want 3", effects[0].CreatedRound)
	}
}

func TestGetMatchesCategoryAndAll(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "atk", AppliesTo: AppliesAttack, Duration: DurationNextAction}, 1)
	ledger.Add(ActiveEffect{ID: "def", AppliesTo: AppliesDefense, Duration: DurationEndOfTurn}, 1)
	ledger.Add(ActiveEffect{ID: "all", AppliesTo: AppliesAll, Duration: DurationEndOfRound}, 1)

	attack := ledger.Get(AppliesAttack)
	if len(attack) != 2 {
		t.Fatalf("attack query returned %d effects, want attack + all = 2", len(attack))
	}
	everything := ledger.Get("")
	if len(everything) != 3 {
		t.Fatalf("unfiltered query returned %d effects, want 3", len(everything))
	}
}

func TestClearFiltersMustBothMatch(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "a", AppliesTo: AppliesAttack, Duration: DurationNextAction}, 1)
	ledger.Add(ActiveEffect{ID: "b", AppliesTo: AppliesAttack, Duration: DurationEndOfRound}, 1)
	ledger.Add(ActiveEffect{ID: "c", AppliesTo: AppliesDefense, Duration: DurationNextAction}, 1)

	cleared := ledger.Clear(AppliesAttack, DurationNextAction)
	if len(cleared) != 1 || cleared[0].ID != "a" {
		t.Fatalf("cleared = %v, want only effect a", cleared)
	}
	if ledger.Len() != 2 {
		t.Fatalf("remaining = %d, want 2", ledger.Len())
	}
}

func TestClearAbsentFiltersMatchEverything(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "a", AppliesTo: AppliesAttack, Duration: DurationNextAction}, 1)
	ledger.Add(ActiveEffect{ID: "b", AppliesTo: AppliesDefense, Duration: DurationEndOfRound}, 1)

	cleared := ledger.Clear("", "")
	if len(cleared) != 2 {
		t.Fatalf("cleared %d effects, want 2", len(cleared))
	}
	if ledger.Len() != 0 {
		t.Fatal("ledger should be empty after unfiltered clear")
	}
}

func TestClearDurationOnly(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "a", AppliesTo: AppliesAttack, Duration: DurationEndOfRound}, 1)
	ledger.Add(ActiveEffect{ID: "b", AppliesTo: AppliesDefense, Duration: DurationEndOfRound}, 1)
	ledger.Add(ActiveEffect{ID: "c", AppliesTo: AppliesDefense, Duration: DurationEndOfTurn}, 1)

	cleared := ledger.Clear("", DurationEndOfRound)
	if len(cleared) != 2 {
		t.Fatalf("cleared %d effects, want 2", len(cleared))
	}
	remaining := ledger.All()
	if len(remaining) != 1 || remaining[0].ID != "c" {
		t.Fatalf("remaining = %v, want only effect c", remaining)
	}
}

func TestClearExpiredTurnSparesCurrentTurn(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "old", AppliesTo: AppliesDefense, Duration: DurationEndOfTurn, CreatedTurn: 2}, 1)
	ledger.Add(ActiveEffect{ID: "fresh", AppliesTo: AppliesDefense, Duration: DurationEndOfTurn, CreatedTurn: 3}, 1)
	ledger.Add(ActiveEffect{ID: "round", AppliesTo: AppliesAll, Duration: DurationEndOfRound, CreatedTurn: 1}, 1)

	cleared := ledger.ClearExpiredTurn(3)
	if len(cleared) != 1 || cleared[0].ID != "old" {
		t.Fatalf("cleared = %v, want only the earlier-turn effect", cleared)
	}
	remaining := ledger.All()
	if len(remaining) != 2 {
		t.Fatalf("remaining = %v, want fresh + round", remaining)
	}

	cleared = ledger.ClearExpiredTurn(4)
	if len(cleared) != 1 || cleared[0].ID != "fresh" {
		t.Fatalf("cleared = %v, want the turn-3 effect at the next boundary", cleared)
	}
}

func TestSystemBoost(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "boost", SourceAction: "Reroute Power", Duration: DurationNextAction, DifficultyModifier: -1, TargetSystem: "weapons"}, 2)

	modifier, boost, ok := ledger.FindSystemBoost("weapons")
	if !ok || modifier != -1 || boost.ID != "boost" {
		t.Fatalf("find boost = (%d, %v, %v)", modifier, boost, ok)
	}
	if _, _, ok := ledger.FindSystemBoost("engines"); ok {
		t.Fatal("engines should have no boost")
	}

	consumed, ok := ledger.ConsumeSystemBoost("weapons")
	if !ok || consumed.ID != "boost" {
		t.Fatalf("consume boost = (%v, %v)", consumed, ok)
	}
	if ledger.Len() != 0 {
		t.Fatal("consumed boost should be removed")
	}
	if _, ok := ledger.ConsumeSystemBoost("weapons"); ok {
		t.Fatal("second consume should fail")
	}
}

func TestRemoveByID(t *testing.T) {
	var ledger Ledger
	ledger.Add(ActiveEffect{ID: "a"}, 1)
	ledger.Add(ActiveEffect{ID: "b"}, 1)

	removed, ok := ledger.Remove("a")
	if !ok || removed.ID != "a" {
		t.Fatalf("remove = (%v, %v)", removed, ok)
	}
	if _, ok := ledger.Remove("a"); ok {
		t.Fatal("removing twice should fail")
	}
	if ledger.Len() != 1 {
		t.Fatalf("remaining = %d, want 1", ledger.Len())
	}
}

func TestRehydratedLedgerCopiesInput(t *testing.T) {
	seed := []ActiveEffect{{ID: "a", AppliesTo: AppliesAttack, Duration: DurationNextAction}}
	ledger := NewLedger(seed)
	seed[0].ID = "mutated"
	if ledger.All()[0].ID != "a" {
		t.Fatal("ledger should not alias caller slice")
	}
}
