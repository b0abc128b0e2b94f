package app

import "github.com/ritksm/gdy/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventCardPlayed   EventKind = "card_played"
	EventPlayRejected EventKind = "play_rejected"
	EventTurnPassed   EventKind = "turn_passed"
	EventCardDrawn    EventKind = "card_drawn"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   int
	Owner  bool
}

type PlayerLeftPayload struct {
	UserID string
}

type GameStartedPayload struct {
	GameID          string
	Phase           domain.Phase
	DealerUserID    string
	FirstTurnUserID string
	StockSize       int
}

type HandDealtPayload struct {
	UserID string
	Hand   []domain.Card
}

type CardPlayedPayload struct {
	UserID         string
	Cards          []domain.Card
	Shape          domain.Shape
	CardsLeft      int
	NextTurnUserID string
}

// PlayRejectedPayload is sent only to the player whose play was refused.
type PlayRejectedPayload struct {
	UserID  string
	Cards   []domain.Card
	Reason  domain.RejectionReason
	Message string
}

type TurnPassedPayload struct {
	UserID         string
	NextTurnUserID string
	StockSize      int
}

// CardDrawnPayload is sent only to the player who drew.
type CardDrawnPayload struct {
	UserID string
	Card   domain.Card
}

type GameEndedPayload struct {
	WinnerUserID string // empty on a tie
	Tie          bool
}
