// Package sim plays bot-only games to compare strategies.
package sim

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/domain"
)

// DefaultMaxTurns caps a single game. Passing always draws until the stock
// runs out, so real games finish well below this.
const DefaultMaxTurns = 2000

// Options configures a batch of games.
type Options struct {
	Games int
	// Levels holds one strategy per seat.
	Levels   []bot.BotLevel
	MaxTurns int
}

// SeatStats aggregates the results of one seat over the batch.
type SeatStats struct {
	Seat  int
	Level bot.BotLevel
	Wins  int
}

// WinRate is the fraction of all games this seat won.
func (s SeatStats) WinRate(games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(games)
}

// Result summarizes a batch of games.
type Result struct {
	Games    int
	Ties     int
	Turns    int
	Rejected int
	Seats    []SeatStats
}

// GameResult is the outcome of a single game.
type GameResult struct {
	WinnerSeat int // -1 on a tie
	Turns      int
	Rejected   int
}

// Run plays opts.Games games between fresh agents of the given levels.
func Run(service *app.Service, opts Options) (Result, error) {
	if len(opts.Levels) < domain.MinPlayers || len(opts.Levels) > domain.MaxPlayers {
		return Result{}, errors.Errorf("need %d..%d seats, got %d", domain.MinPlayers, domain.MaxPlayers, len(opts.Levels))
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	res := Result{Seats: make([]SeatStats, len(opts.Levels))}
	for i, level := range opts.Levels {
		res.Seats[i] = SeatStats{Seat: i, Level: level}
	}

	for i := 0; i < opts.Games; i++ {
		agents, err := newAgents(opts.Levels)
		if err != nil {
			return res, err
		}

		game, err := PlayGame(service, agents, opts.MaxTurns)
		if err != nil {
			return res, errors.Wrapf(err, "game %d", i)
		}

		res.Games++
		res.Turns += game.Turns
		res.Rejected += game.Rejected
		if game.WinnerSeat < 0 {
			res.Ties++
		} else {
			res.Seats[game.WinnerSeat].Wins++
		}
		glog.V(2).Infof("Game %d: winner seat %d after %d turns", i, game.WinnerSeat, game.Turns)
	}
	return res, nil
}

func newAgents(levels []bot.BotLevel) ([]*bot.Agent, error) {
	agents := make([]*bot.Agent, len(levels))
	for i, level := range levels {
		strategy, err := bot.NewBrain(level)
		if err != nil {
			return nil, errors.Wrapf(err, "seat %d", i)
		}
		id := fmt.Sprintf("seat-%d", i)
		agents[i] = &bot.Agent{ID: id, Name: fmt.Sprintf("%s (%s)", id, level), Strategy: strategy}
	}
	return agents, nil
}

// PlayGame deals one game between agents and lets them play it out.
// A refused play falls back to a pass so the game always progresses.
func PlayGame(service *app.Service, agents []*bot.Agent, maxTurns int) (GameResult, error) {
	ids := make([]string, len(agents))
	bySeat := make(map[string]int, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
		bySeat[a.ID] = i
	}

	game, events, err := service.StartGame(ids)
	if err != nil {
		return GameResult{}, errors.Wrap(err, "start game")
	}
	notify(agents, events)

	res := GameResult{WinnerSeat: -1}
	for game.Phase == domain.PhasePlaying {
		if res.Turns >= maxTurns {
			return res, errors.Errorf("no result after %d turns", maxTurns)
		}
		res.Turns++

		current := agents[bySeat[game.CurrentPlayer().UserID]]
		move, err := current.Play(game)
		if err != nil {
			glog.Warningf("Bot %s failed to choose, passing: %v", current.Name, err)
		}

		if !move.Pass {
			events, err := service.PlayCards(game, current.ID, move.Cards)
			notify(agents, events)
			if err == nil {
				continue
			}
			res.Rejected++
			glog.V(1).Infof("Bot %s play %v refused: %v", current.Name, move.Cards, err)
		}

		events, err := service.PassTurn(game, current.ID)
		if err != nil {
			return res, errors.Wrapf(err, "pass for %s", current.ID)
		}
		notify(agents, events)
	}

	if game.WinnerID != "" {
		res.WinnerSeat = bySeat[game.WinnerID]
	}
	return res, nil
}

// notify feeds events to the agents allowed to see them.
func notify(agents []*bot.Agent, events []app.Event) {
	for _, ev := range events {
		for _, a := range agents {
			if len(ev.Recipients) > 0 && !contains(ev.Recipients, a.ID) {
				continue
			}
			a.OnGameEvent(ev)
		}
	}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
