package nakama

import (
	"fmt"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/domain"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Match messages are protobuf Structs in their JSON form, so clients can read
// them with any JSON parser and the server never hand-builds JSON.

func encodeStruct(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
}

func decodeStruct(data []byte) (map[string]interface{}, error) {
	if len(data) == 0 {
		return map[string]interface{}{}, nil
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}

func cardsToValue(cards []domain.Card) []interface{} {
	out := make([]interface{}, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Code())
	}
	return out
}

// cardsFromRequest reads {"cards":["5S","JK",...]}.
func cardsFromRequest(data []byte) ([]domain.Card, error) {
	fields, err := decodeStruct(data)
	if err != nil {
		return nil, err
	}
	raw, ok := fields["cards"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("cards missing from request")
	}
	cards := make([]domain.Card, 0, len(raw))
	for _, v := range raw {
		code, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("card must be a string, got %T", v)
		}
		c, err := domain.ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

func shapeToValue(shape domain.Shape) map[string]interface{} {
	return map[string]interface{}{
		"kind":   shape.Kind.String(),
		"rank":   int(shape.Rank),
		"length": shape.Length,
	}
}

// encodeEvent maps an app event to its op code and wire payload.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	var opCode int64
	var fields map[string]interface{}

	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		opCode = OpGameStarted
		fields = map[string]interface{}{
			"game_id":            p.GameID,
			"phase":              string(p.Phase),
			"dealer_user_id":     p.DealerUserID,
			"first_turn_user_id": p.FirstTurnUserID,
			"stock_size":         p.StockSize,
		}
	case app.HandDealtPayload:
		opCode = OpHandDealt
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"hand":    cardsToValue(p.Hand),
		}
	case app.CardPlayedPayload:
		opCode = OpCardPlayed
		fields = map[string]interface{}{
			"user_id":           p.UserID,
			"cards":             cardsToValue(p.Cards),
			"shape":             shapeToValue(p.Shape),
			"cards_left":        p.CardsLeft,
			"next_turn_user_id": p.NextTurnUserID,
		}
	case app.PlayRejectedPayload:
		opCode = OpPlayRejected
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"cards":   cardsToValue(p.Cards),
			"reason":  string(p.Reason),
			"message": p.Message,
		}
	case app.TurnPassedPayload:
		opCode = OpTurnPassed
		fields = map[string]interface{}{
			"user_id":           p.UserID,
			"next_turn_user_id": p.NextTurnUserID,
			"stock_size":        p.StockSize,
		}
	case app.CardDrawnPayload:
		opCode = OpCardDrawn
		fields = map[string]interface{}{
			"user_id": p.UserID,
			"card":    p.Card.Code(),
		}
	case app.GameEndedPayload:
		opCode = OpGameEnded
		fields = map[string]interface{}{
			"winner_user_id": p.WinnerUserID,
			"tie":            p.Tie,
		}
	case app.PlayerLeftPayload:
		opCode = OpPlayerLeft
		fields = map[string]interface{}{
			"user_id": p.UserID,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event %s with payload %T", ev.Kind, ev.Payload)
	}

	data, err := encodeStruct(fields)
	if err != nil {
		return 0, nil, fmt.Errorf("encode %s: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// encodeLabel renders the match label used by the quick match query.
func encodeLabel(open int, state string) (string, error) {
	data, err := encodeStruct(map[string]interface{}{
		"open":  open,
		"game":  LabelGame,
		"state": state,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func encodeError(code int, message string) ([]byte, error) {
	return encodeStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
}
