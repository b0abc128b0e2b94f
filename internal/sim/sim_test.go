package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
)

func TestRun(t *testing.T) {
	service := app.NewService(rand.New(rand.NewSource(42)))
	res, err := Run(service, Options{
		Games:  20,
		Levels: []bot.BotLevel{bot.BotLevelLowest, bot.BotLevelShed, bot.BotLevelShed},
	})
	require.NoError(t, err)

	assert.Equal(t, 20, res.Games)
	wins := res.Ties
	for _, s := range res.Seats {
		wins += s.Wins
	}
	assert.Equal(t, res.Games, wins, "every game has a winner or is a tie")
	assert.Zero(t, res.Rejected, "bots only propose legal plays")
	assert.Greater(t, res.Turns, res.Games)
}

func TestRun_InvalidSeats(t *testing.T) {
	service := app.NewService(rand.New(rand.NewSource(1)))

	_, err := Run(service, Options{Games: 1, Levels: []bot.BotLevel{bot.BotLevelShed}})
	assert.Error(t, err)

	_, err = Run(service, Options{Games: 1, Levels: []bot.BotLevel{"genius", bot.BotLevelShed}})
	assert.Error(t, err)
}

func TestPlayGame_TurnLimit(t *testing.T) {
	service := app.NewService(rand.New(rand.NewSource(3)))
	agents, err := newAgents([]bot.BotLevel{bot.BotLevelShed, bot.BotLevelShed})
	require.NoError(t, err)

	_, err = PlayGame(service, agents, 1)
	assert.Error(t, err)
}

func TestSeatStats_WinRate(t *testing.T) {
	assert.Equal(t, 0.25, SeatStats{Wins: 5}.WinRate(20))
	assert.Zero(t, SeatStats{Wins: 5}.WinRate(0))
}
