package bot

import (
	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent builds an agent for a bot user, picking its strategy from the
// bot's identity. Unknown bots fall back to fallback.
func NewAgent(userID string, fallback BotLevel) (*Agent, error) {
	level := fallback
	name := userID
	if identity, ok := GetBotConfig(userID); ok {
		if identity.Level != "" {
			level = BotLevel(identity.Level)
		}
		name = identity.DisplayName
	}

	strategy, err := NewBrain(level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: userID, Name: name, Strategy: strategy}, nil
}

// Play asks the agent to calculate its move based on the current game state.
func (a *Agent) Play(game *domain.Game) (Move, error) {
	player, ok := game.Player(a.ID)
	if !ok {
		// Agent is not part of this game
		return Move{Pass: true}, nil
	}

	move, err := a.Strategy.CalculateMove(game, player)
	if err != nil {
		return Move{Pass: true}, err
	}
	return move, nil
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event app.Event) {
	a.Strategy.OnEvent(event)
}
