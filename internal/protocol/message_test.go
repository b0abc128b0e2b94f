package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/domain"
)

func TestNewMessage(t *testing.T) {
	data, err := NewMessage(TypePong, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))

	data, err = NewMessage(TypeError, ErrorPayload{Message: "nope"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","payload":{"message":"nope"}}`, string(data))
}

func TestMessageDecode(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"play_cards","payload":{"cards":["5S","JK"]}}`), &msg))

	var payload PlayCardsPayload
	require.NoError(t, msg.Decode(&payload))
	assert.Equal(t, []string{"5S", "JK"}, payload.Cards)

	assert.Error(t, Message{Type: TypeJoinTable}.Decode(&payload), "missing payload")
	assert.Error(t, Message{Type: TypeJoinTable, Payload: json.RawMessage(`[1]`)}.Decode(&payload))
}

func TestParseCardCodes(t *testing.T) {
	cards, err := ParseCardCodes([]string{"10h", "JK", "2S"})
	require.NoError(t, err)
	assert.Equal(t, []string{"10H", "JK", "2S"}, CardCodes(cards))

	_, err = ParseCardCodes([]string{"5S", "1S"})
	assert.ErrorIs(t, err, domain.ErrInvalidCard)
}

func TestFromEvent(t *testing.T) {
	cards, err := domain.ParseCards("9H JK JS")
	require.NoError(t, err)

	data, err := FromEvent(app.Event{
		Kind: app.EventCardPlayed,
		Payload: app.CardPlayedPayload{
			UserID:    "u1",
			Cards:     cards,
			Shape:     domain.Shape{Kind: domain.Run, Rank: 9, Length: 3},
			CardsLeft: 2,
		},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"card_played","payload":{"player_id":"u1","cards":["9H","JK","JS"],"shape":{"kind":"run","rank":9,"length":3},"cards_left":2}}`, string(data))

	data, err = FromEvent(app.Event{Kind: app.EventGameEnded, Payload: app.GameEndedPayload{Tie: true}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"game_ended","payload":{"tie":true}}`, string(data))

	_, err = FromEvent(app.Event{Kind: "mystery", Payload: 1})
	assert.Error(t, err)
}
