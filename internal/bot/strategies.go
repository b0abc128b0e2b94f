package bot

import (
	"sort"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot/brain"
	"github.com/ritksm/gdy/internal/bot/internal"
	"github.com/ritksm/gdy/internal/domain"
)

// LowestBot plays the weakest legal set and passes only when it has none.
type LowestBot struct{}

func (b *LowestBot) CalculateMove(game *domain.Game, player *domain.Player) (Move, error) {
	if player == nil || len(player.Hand) == 0 {
		return Move{Pass: true}, nil
	}

	moves := internal.GetValidMoves(player.Hand, game.Table)
	if len(moves) == 0 {
		return Move{Pass: true}, nil
	}

	sort.SliceStable(moves, func(i, j int) bool {
		a, b := moves[i], moves[j]
		if a.Shape.Rank != b.Shape.Rank {
			return a.Shape.Rank < b.Shape.Rank
		}
		if len(a.Cards) != len(b.Cards) {
			return len(a.Cards) < len(b.Cards)
		}
		return a.Jokers() < b.Jokers()
	})
	return Move{Cards: moves[0].Cards}, nil
}

func (b *LowestBot) OnEvent(event app.Event) {}

// ShedBot empties its hand as fast as it can. It prefers the largest legal
// set, holds Jokers back until the endgame and favours plays nobody can follow.
type ShedBot struct {
	Memory *brain.GameMemory
}

const (
	shedCardWeight     = 10
	shedJokerPenalty   = 15
	shedUnfollowable   = 8
	shedFinishBonus    = 1000
	shedRankTiebreaker = 0.1
)

func (b *ShedBot) CalculateMove(game *domain.Game, player *domain.Player) (Move, error) {
	if player == nil || len(player.Hand) == 0 {
		return Move{Pass: true}, nil
	}
	if b.Memory == nil {
		b.Memory = brain.NewMemory()
	}

	moves := internal.GetValidMoves(player.Hand, game.Table)
	if len(moves) == 0 {
		return Move{Pass: true}, nil
	}

	phase := internal.DetectPhase(game)
	rules := game.Table.Rules()
	best, bestScore := 0, 0.0
	for i, m := range moves {
		score := float64(len(m.Cards) * shedCardWeight)
		if len(m.Cards) == len(player.Hand) {
			score += shedFinishBonus
		}
		if phase != internal.PhaseEnd {
			score -= float64(m.Jokers() * shedJokerPenalty)
		}
		if b.Memory.Unfollowable(rules, m.Shape, player.Hand) {
			score += shedUnfollowable
		}
		// Spend low ranks first.
		score -= float64(m.Shape.Rank) * shedRankTiebreaker

		if i == 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return Move{Cards: moves[best].Cards}, nil
}

// OnEvent keeps the memory in step with the table.
func (b *ShedBot) OnEvent(event app.Event) {
	if b.Memory == nil {
		b.Memory = brain.NewMemory()
	}
	switch p := event.Payload.(type) {
	case app.GameStartedPayload:
		b.Memory.Reset()
	case app.CardPlayedPayload:
		b.Memory.MarkPlayed(p.Cards)
		b.Memory.RecordHandSize(p.UserID, p.CardsLeft)
	}
}
