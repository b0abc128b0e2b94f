package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/domain"
)

// Service contains game use-cases operating on domain state.
type Service struct {
	rng      *rand.Rand
	rules    domain.Rules
	shuffler domain.Shuffler
	// minPlayers is the fewest occupied seats StartGame accepts.
	minPlayers int
}

// NewService constructs a Service with provided rng or a time-seeded default.
// It plays by domain.DefaultRules.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rules: domain.DefaultRules(), minPlayers: MinPlayersToStartGame}
}

// NewServiceFromConfig applies the configured rule variant, shuffle source and
// minimum table size.
func NewServiceFromConfig(rng *rand.Rand, cfg *config.GameConfig) (*Service, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	s := NewService(rng)
	s.rules = rules
	s.shuffler = cfg.Shuffler()
	if cfg.MinPlayers > s.minPlayers {
		s.minPlayers = cfg.MinPlayers
	}
	return s, nil
}

// Rules returns the rule variant new games are played with.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrGameNotStarted = errors.New("game not started")
)

// StartGame deals a new game for the given seats.
// It expects a list of userIDs in seat order (empty strings for empty seats).
func (s *Service) StartGame(playerIDs []string) (*domain.Game, []Event, error) {
	var seats []string
	for _, userID := range playerIDs {
		if userID != "" {
			seats = append(seats, userID)
		}
	}
	if len(seats) < s.minPlayers {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrTooFewPlayers, len(seats), s.minPlayers)
	}

	game, err := domain.NewGame(seats, domain.GameOptions{
		Rules:    s.rules,
		Shuffler: s.shuffler,
		Rand:     s.rng,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("start game: %w", err)
	}
	game.ID = uuid.NewString()

	events := make([]Event, 0, len(game.Players)+1)
	for _, pl := range game.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: pl.UserID,
				Hand:   append([]domain.Card(nil), pl.Hand...),
			},
			Recipients: []string{pl.UserID},
		})
	}

	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			GameID:          game.ID,
			Phase:           game.Phase,
			DealerUserID:    game.Dealer().UserID,
			FirstTurnUserID: game.CurrentPlayer().UserID,
			StockSize:       len(game.Stock),
		},
	})

	return game, events, nil
}

// PlayCards processes a play action and emits resulting events.
// A play refused by the table returns the error together with a private
// PlayRejected event for the actor; their hand is unchanged.
func (s *Service) PlayCards(game *domain.Game, actorUserID string, cards []domain.Card) ([]Event, error) {
	if game == nil {
		return nil, ErrGameNotStarted
	}

	shape, err := game.Play(actorUserID, cards)
	if err != nil {
		reason := domain.ReasonOf(err)
		if reason == "" {
			return nil, err
		}
		return []Event{{
			Kind: EventPlayRejected,
			Payload: PlayRejectedPayload{
				UserID:  actorUserID,
				Cards:   cards,
				Reason:  reason,
				Message: err.Error(),
			},
			Recipients: []string{actorUserID},
		}}, err
	}

	pl, _ := game.Player(actorUserID)
	played := CardPlayedPayload{
		UserID:    actorUserID,
		Cards:     cards,
		Shape:     shape,
		CardsLeft: len(pl.Hand),
	}
	if game.Phase == domain.PhasePlaying {
		played.NextTurnUserID = game.CurrentPlayer().UserID
	}

	events := []Event{{Kind: EventCardPlayed, Payload: played}}
	if game.Phase == domain.PhaseEnded {
		events = append(events, gameEnded(game))
	}
	return events, nil
}

// PassTurn draws a card for the actor and hands the turn on.
func (s *Service) PassTurn(game *domain.Game, actorUserID string) ([]Event, error) {
	if game == nil {
		return nil, ErrGameNotStarted
	}

	card, drew, err := game.Pass(actorUserID)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, 3)
	if drew {
		events = append(events, Event{
			Kind:       EventCardDrawn,
			Payload:    CardDrawnPayload{UserID: actorUserID, Card: card},
			Recipients: []string{actorUserID},
		})
	}

	passed := TurnPassedPayload{UserID: actorUserID, StockSize: len(game.Stock)}
	if game.Phase == domain.PhasePlaying {
		passed.NextTurnUserID = game.CurrentPlayer().UserID
	}
	events = append(events, Event{Kind: EventTurnPassed, Payload: passed})

	if game.Phase == domain.PhaseEnded {
		events = append(events, gameEnded(game))
	}
	return events, nil
}

func gameEnded(game *domain.Game) Event {
	return Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			WinnerUserID: game.WinnerID,
			Tie:          game.IsTie(),
		},
	}
}
