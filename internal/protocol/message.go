package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/domain"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "join_table", "play_cards")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, decoded per type
}

// Client -> server message types.
const (
	TypeCreateTable = "create_table"
	TypeJoinTable   = "join_table"
	TypeAddBot      = "add_bot"
	TypeStartGame   = "start_game"
	TypePlayCards   = "play_cards"
	TypePass        = "pass"
	TypePing        = "ping"
)

// Server -> client message types. Game events use their app.EventKind.
const (
	TypeTableCreated = "table_created"
	TypeTableUpdate  = "table_update"
	TypeError        = "error"
	TypePong         = "pong"
)

// --- Client -> Server Payload Structs ---

type CreateTablePayload struct {
	Name string `json:"name"`
}

type JoinTablePayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type PlayCardsPayload struct {
	Cards []string `json:"cards"` // compact notation, e.g. "10H" or "JK"
}

// --- Server -> Client Payload Structs ---

type TableCreatedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"player_id"`
}

type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Bot       bool   `json:"bot"`
	CardsLeft int    `json:"cards_left"`
}

type ActivePlay struct {
	Cards []string     `json:"cards"`
	Shape domain.Shape `json:"shape"`
}

type TableUpdatePayload struct {
	Code          string       `json:"code"`
	Phase         domain.Phase `json:"phase"`
	OwnerID       string       `json:"owner_id"`
	Players       []PlayerInfo `json:"players"`
	CurrentTurnID string       `json:"current_turn_id,omitempty"`
	StockSize     int          `json:"stock_size"`
	Active        *ActivePlay  `json:"active,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

type GameStartedPayload struct {
	GameID      string `json:"game_id"`
	DealerID    string `json:"dealer_id"`
	FirstTurnID string `json:"first_turn_id"`
	StockSize   int    `json:"stock_size"`
}

type HandDealtPayload struct {
	Hand []string `json:"hand"`
}

type CardPlayedPayload struct {
	PlayerID   string       `json:"player_id"`
	Cards      []string     `json:"cards"`
	Shape      domain.Shape `json:"shape"`
	CardsLeft  int          `json:"cards_left"`
	NextTurnID string       `json:"next_turn_id,omitempty"`
}

type PlayRejectedPayload struct {
	Cards   []string `json:"cards"`
	Reason  string   `json:"reason"`
	Message string   `json:"message"`
}

type TurnPassedPayload struct {
	PlayerID   string `json:"player_id"`
	NextTurnID string `json:"next_turn_id,omitempty"`
	StockSize  int    `json:"stock_size"`
}

type CardDrawnPayload struct {
	Card string `json:"card"`
}

type GameEndedPayload struct {
	WinnerID string `json:"winner_id,omitempty"`
	Tie      bool   `json:"tie"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

// NewMessage wraps payload in a typed envelope.
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %s payload", msgType)
	}
	return json.Marshal(Message{Type: msgType, Payload: payloadBytes})
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return errors.Errorf("%s: missing payload", m.Type)
	}
	return errors.Wrapf(json.Unmarshal(m.Payload, v), "%s: invalid payload", m.Type)
}

// CardCodes renders cards in compact notation.
func CardCodes(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Code()
	}
	return out
}

// ParseCardCodes reads cards sent by a client.
func ParseCardCodes(codes []string) ([]domain.Card, error) {
	cards := make([]domain.Card, 0, len(codes))
	for _, code := range codes {
		c, err := domain.ParseCard(code)
		if err != nil {
			return nil, errors.Wrap(err, "play_cards")
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// FromEvent converts an app event to its message.
func FromEvent(ev app.Event) ([]byte, error) {
	var payload interface{}
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		payload = GameStartedPayload{
			GameID:      p.GameID,
			DealerID:    p.DealerUserID,
			FirstTurnID: p.FirstTurnUserID,
			StockSize:   p.StockSize,
		}
	case app.HandDealtPayload:
		payload = HandDealtPayload{Hand: CardCodes(p.Hand)}
	case app.CardPlayedPayload:
		payload = CardPlayedPayload{
			PlayerID:   p.UserID,
			Cards:      CardCodes(p.Cards),
			Shape:      p.Shape,
			CardsLeft:  p.CardsLeft,
			NextTurnID: p.NextTurnUserID,
		}
	case app.PlayRejectedPayload:
		payload = PlayRejectedPayload{
			Cards:   CardCodes(p.Cards),
			Reason:  string(p.Reason),
			Message: p.Message,
		}
	case app.TurnPassedPayload:
		payload = TurnPassedPayload{
			PlayerID:   p.UserID,
			NextTurnID: p.NextTurnUserID,
			StockSize:  p.StockSize,
		}
	case app.CardDrawnPayload:
		payload = CardDrawnPayload{Card: p.Card.Code()}
	case app.GameEndedPayload:
		payload = GameEndedPayload{WinnerID: p.WinnerUserID, Tie: p.Tie}
	case app.PlayerLeftPayload:
		payload = PlayerLeftPayload{PlayerID: p.UserID}
	default:
		return nil, errors.Errorf("no message for event %s (%T)", ev.Kind, ev.Payload)
	}
	return NewMessage(string(ev.Kind), payload)
}
