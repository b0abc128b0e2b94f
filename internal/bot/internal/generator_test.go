package internal

import (
	"testing"

	"github.com/ritksm/gdy/internal/domain"
)

func mustCards(t *testing.T, s string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(s)
	if err != nil {
		t.Fatalf("ParseCards(%q): %v", s, err)
	}
	return cards
}

func countKinds(moves []ValidMove) map[domain.ShapeKind]int {
	counts := make(map[domain.ShapeKind]int)
	for _, m := range moves {
		counts[m.Shape.Kind]++
	}
	return counts
}

func TestGetValidMoves_Lead(t *testing.T) {
	hand := mustCards(t, "3S 3H 4S 5S 6S JK")
	table := domain.NewTable(domain.DefaultRules())

	moves := GetValidMoves(hand, table)
	counts := countKinds(moves)

	// 5 plain singles and one Joker single.
	if counts[domain.Single] != 6 {
		t.Errorf("Expected 6 singles, got %d", counts[domain.Single])
	}
	// 3S 3H only; Jokers never pair.
	if counts[domain.Pair] != 1 {
		t.Errorf("Expected 1 pair, got %d", counts[domain.Pair])
	}
	// 3S 3H JK.
	if counts[domain.Triple] != 1 {
		t.Errorf("Expected 1 triple, got %d", counts[domain.Triple])
	}
	// 3-4-5, 3-4-5-6, 4-5-6.
	if counts[domain.Run] != 3 {
		t.Errorf("Expected 3 runs, got %d", counts[domain.Run])
	}

	for _, m := range moves {
		want, err := domain.Classify(m.Cards)
		if err != nil || want != m.Shape {
			t.Errorf("move %v shape %v disagrees with Classify %v (%v)", m.Cards, m.Shape, want, err)
		}
	}
}

func TestGetValidMoves_JokerFillsRunGap(t *testing.T) {
	hand := mustCards(t, "4S 6D JK")
	moves := GetValidMoves(hand, domain.NewTable(domain.DefaultRules()))

	found := false
	for _, m := range moves {
		if m.Shape == (domain.Shape{Kind: domain.Run, Rank: 4, Length: 3}) {
			found = true
			if m.Jokers() != 1 {
				t.Errorf("run should spend one Joker, spent %d", m.Jokers())
			}
		}
	}
	if !found {
		t.Fatalf("generator missed the 4-JK-6 run: %+v", moves)
	}
}

func TestGetValidMoves_FollowSingle(t *testing.T) {
	hand := mustCards(t, "3S 6S 6H 7D 2S")
	table := domain.NewTable(domain.DefaultRules())
	if err := table.SubmitPlay(mustCards(t, "5C")); err != nil {
		t.Fatalf("SubmitPlay() error = %v", err)
	}

	moves := GetValidMoves(hand, table)
	// Only the two 6s follow a 5.
	if len(moves) != 2 {
		t.Fatalf("Expected 2 valid moves, got %d: %+v", len(moves), moves)
	}
	for _, m := range moves {
		if m.Shape != (domain.Shape{Kind: domain.Single, Rank: 6}) {
			t.Errorf("unexpected move %v", m.Cards)
		}
	}
}

func TestGetValidMoves_NoJokerForTwo(t *testing.T) {
	hand := mustCards(t, "2S 2H JK")
	moves := GetValidMoves(hand, domain.NewTable(domain.DefaultRules()))
	for _, m := range moves {
		if len(m.Cards) > 1 && m.Jokers() > 0 {
			t.Fatalf("Joker must not stand in for a 2: %v", m.Cards)
		}
	}
}

func TestGetValidMoves_JokerRunBelowTwo(t *testing.T) {
	hand := mustCards(t, "JS 2H JK")
	moves := GetValidMoves(hand, domain.NewTable(domain.DefaultRules()))
	for _, m := range moves {
		if m.Shape.Kind == domain.Run && m.Shape.Rank == 11 && m.Shape.Length == 3 {
			return
		}
	}
	t.Fatalf("Expected run J-Q-2 with the Joker as Queen, got %v", moves)
}

func TestGetValidMoves_PairRuns(t *testing.T) {
	hand := mustCards(t, "5S 5H 6S 6H 7S 7H")
	moves := GetValidMoves(hand, domain.NewTable(domain.DefaultRules()))
	if got := countKinds(moves)[domain.PairRun]; got != 3 {
		t.Fatalf("Expected 3 pair runs (5-6, 5-7, 6-7), got %d", got)
	}
}

func TestGetValidMoves_DoesNotReorderHand(t *testing.T) {
	hand := mustCards(t, "JK 9S 3D")
	before := append([]domain.Card(nil), hand...)
	GetValidMoves(hand, domain.NewTable(domain.DefaultRules()))
	for i := range hand {
		if hand[i] != before[i] {
			t.Fatalf("hand was reordered: %v", hand)
		}
	}
}
