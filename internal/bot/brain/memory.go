package brain

import (
	"github.com/ritksm/gdy/internal/domain"
)

const (
	copiesPerRank = 4
	jokersInDeck  = 2
)

// GameMemory stores the bot's private view of the game: which cards have
// left play and how many cards each opponent still holds.
type GameMemory struct {
	// Played counts discarded cards by rank. Jokers are counted separately.
	Played       map[domain.Rank]int
	PlayedJokers int
	// CardsLeft tracks opponents' hand sizes by user ID.
	CardsLeft map[string]int
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	m := &GameMemory{}
	m.Reset()
	return m
}

// Reset clears the memory for a new game.
func (m *GameMemory) Reset() {
	m.Played = make(map[domain.Rank]int)
	m.PlayedJokers = 0
	m.CardsLeft = make(map[string]int)
}

// MarkPlayed records cards that have been played on the table.
func (m *GameMemory) MarkPlayed(cards []domain.Card) {
	for _, c := range cards {
		if c.IsJoker() {
			m.PlayedJokers++
			continue
		}
		m.Played[c.Rank]++
	}
}

// RecordHandSize notes how many cards a player holds after their action.
func (m *GameMemory) RecordHandSize(userID string, n int) {
	m.CardsLeft[userID] = n
}

// ShortestOpponent returns the smallest known opponent hand, or -1 when no
// opponent has acted yet.
func (m *GameMemory) ShortestOpponent(self string) int {
	best := -1
	for id, n := range m.CardsLeft {
		if id == self {
			continue
		}
		if best < 0 || n < best {
			best = n
		}
	}
	return best
}

// Unseen returns how many cards of rank r may still be in an opponent's hand
// or the stock.
func (m *GameMemory) Unseen(r domain.Rank, hand []domain.Card) int {
	n := copiesPerRank - m.Played[r]
	for _, c := range hand {
		if !c.IsJoker() && c.Rank == r {
			n--
		}
	}
	return max(n, 0)
}

// UnseenJokers returns how many Jokers are not in hand and not yet played.
func (m *GameMemory) UnseenJokers(hand []domain.Card) int {
	return max(jokersInDeck-m.PlayedJokers-domain.CountJokers(hand), 0)
}

// Unfollowable reports whether no unseen cards could legally follow shape.
// Shapes with no follow rule are always unfollowable.
func (m *GameMemory) Unfollowable(rules domain.Rules, shape domain.Shape, hand []domain.Card) bool {
	switch shape.Kind {
	case domain.Single:
		return shape.Rank == domain.MaxRank || m.Unseen(shape.Rank+1, hand) == 0
	case domain.Pair:
		return shape.Rank == domain.MaxRank || m.Unseen(shape.Rank+1, hand) < 2
	case domain.Triple:
		if rules.Triple == domain.TripleRuleEqual {
			return !m.canFormTriple(shape.Rank, hand)
		}
		for r := shape.Rank + 1; r <= domain.MaxRank; r++ {
			if m.canFormTriple(r, hand) {
				return false
			}
		}
		return true
	case domain.Bomb, domain.Run, domain.PairRun:
		return true
	default:
		return false
	}
}

func (m *GameMemory) canFormTriple(r domain.Rank, hand []domain.Card) bool {
	plain := m.Unseen(r, hand)
	if plain == 0 {
		return false
	}
	if r == domain.RankTwo {
		return plain >= 3
	}
	return plain+m.UnseenJokers(hand) >= 3
}
