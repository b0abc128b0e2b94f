package internal

import "github.com/ritksm/gdy/internal/domain"

// GamePhase describes the current strategic stage of a game.
type GamePhase int

const (
	// PhaseOpening indicates nothing has been played yet.
	PhaseOpening GamePhase = iota
	// PhaseMid indicates no one is close to going out and the stock is deep.
	PhaseMid
	// PhaseEnd indicates a player holds EndgameHandSize cards or fewer, or the
	// stock would run out within one lap of passes.
	PhaseEnd
)

// EndgameHandSize is the hand size at which a player counts as close to going out.
const EndgameHandSize = 2

// DetectPhase infers the phase from hand sizes, the stock and the table.
func DetectPhase(game *domain.Game) GamePhase {
	if game == nil || len(game.Players) == 0 {
		return PhaseMid
	}

	for _, player := range game.Players {
		if player != nil && len(player.Hand) <= EndgameHandSize {
			return PhaseEnd
		}
	}
	if len(game.Stock) <= len(game.Players) {
		return PhaseEnd
	}
	if game.Table == nil || game.Table.AwaitingFirstPlay() {
		return PhaseOpening
	}
	return PhaseMid
}
