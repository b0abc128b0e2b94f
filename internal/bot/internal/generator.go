package internal

import (
	"sort"
	"strings"

	"github.com/ritksm/gdy/internal/domain"
)

// ValidMove represents a possible legal play.
type ValidMove struct {
	Cards []domain.Card
	Shape domain.Shape
}

// Jokers returns how many wildcards the move spends.
func (m ValidMove) Jokers() int {
	return domain.CountJokers(m.Cards)
}

// GetValidMoves returns every candidate set from hand that the table would
// accept right now. The hand is not modified.
func GetValidMoves(hand []domain.Card, table *domain.Table) []ValidMove {
	sorted := append([]domain.Card(nil), hand...)
	domain.SortHand(sorted)
	g := newGrouped(sorted)

	var candidates [][]domain.Card
	candidates = append(candidates, g.singles()...)
	candidates = append(candidates, g.sameRank()...)
	candidates = append(candidates, g.runs()...)
	candidates = append(candidates, g.pairRuns()...)

	seen := make(map[string]bool, len(candidates))
	moves := make([]ValidMove, 0, len(candidates))
	for _, cards := range candidates {
		key := cardsKey(cards)
		if seen[key] {
			continue
		}
		seen[key] = true

		shape, err := table.Check(cards)
		if err != nil {
			continue
		}
		moves = append(moves, ValidMove{Cards: cards, Shape: shape})
	}
	return moves
}

// grouped indexes a sorted hand by rank.
type grouped struct {
	byRank map[domain.Rank][]domain.Card
	jokers []domain.Card
	size   int
}

func newGrouped(sorted []domain.Card) grouped {
	g := grouped{byRank: make(map[domain.Rank][]domain.Card), size: len(sorted)}
	for _, c := range sorted {
		if c.IsJoker() {
			g.jokers = append(g.jokers, c)
			continue
		}
		g.byRank[c.Rank] = append(g.byRank[c.Rank], c)
	}
	return g
}

func (g grouped) singles() [][]domain.Card {
	var out [][]domain.Card
	for r := domain.MinRank; r <= domain.MaxRank; r++ {
		for _, c := range g.byRank[r] {
			out = append(out, []domain.Card{c})
		}
	}
	if len(g.jokers) > 0 {
		out = append(out, []domain.Card{g.jokers[0]})
	}
	return out
}

// sameRank proposes 2..4 cards of one rank, topping up with Jokers.
func (g grouped) sameRank() [][]domain.Card {
	var out [][]domain.Card
	for r := domain.MinRank; r <= domain.MaxRank; r++ {
		plain := g.byRank[r]
		if len(plain) == 0 {
			continue
		}
		for size := 2; size <= 4; size++ {
			for p := len(plain); p >= 1; p-- {
				need := size - p
				if need < 0 || need > len(g.jokers) {
					continue
				}
				set := append([]domain.Card(nil), plain[:p]...)
				set = append(set, g.jokers[:need]...)
				out = append(out, set)
			}
		}
	}
	return out
}

// runs proposes consecutive ranks with Jokers filling inner gaps. Both ends
// are real cards since a Joker cannot extend a run.
func (g grouped) runs() [][]domain.Card {
	var out [][]domain.Card
	for lo := domain.MinRank; lo <= domain.MaxRank-2; lo++ {
		if len(g.byRank[lo]) == 0 {
			continue
		}
		for length := 3; int(lo)+length-1 <= int(domain.MaxRank) && length <= g.size; length++ {
			hi := lo + domain.Rank(length-1)
			if len(g.byRank[hi]) == 0 {
				continue
			}
			set, ok := g.fill(lo, hi)
			if ok {
				out = append(out, set)
			}
		}
	}
	return out
}

func (g grouped) fill(lo, hi domain.Rank) ([]domain.Card, bool) {
	set := make([]domain.Card, 0, int(hi-lo)+1)
	jokers := 0
	for r := lo; r <= hi; r++ {
		if cards := g.byRank[r]; len(cards) > 0 {
			set = append(set, cards[0])
			continue
		}
		if jokers == len(g.jokers) {
			return nil, false
		}
		set = append(set, g.jokers[jokers])
		jokers++
	}
	return set, true
}

func (g grouped) pairRuns() [][]domain.Card {
	var out [][]domain.Card
	for lo := domain.MinRank; lo < domain.MaxRank; lo++ {
		var set []domain.Card
		for r := lo; r <= domain.MaxRank && len(g.byRank[r]) >= 2; r++ {
			set = append(set, g.byRank[r][:2]...)
			if r > lo {
				out = append(out, append([]domain.Card(nil), set...))
			}
		}
	}
	return out
}

func cardsKey(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
