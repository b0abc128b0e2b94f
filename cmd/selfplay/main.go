// Play bot-only games and report how each seat's strategy fared.
package main

import (
	"flag"
	"math/rand"
	"strings"

	"github.com/golang/glog"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/sim"
)

func main() {
	levels := flag.String("levels", "shed,lowest", "Comma-separated bot level per seat")
	numGames := flag.Int("num_games", 1000, "Number of games to play")
	maxTurns := flag.Int("max_turns", sim.DefaultMaxTurns, "Turn limit per game")
	seed := flag.Int64("seed", 1234, "Random seed")
	configPath := flag.String("config", "", "Optional game config file with the rule variant")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.ReadGameConfig(*configPath)
		if err != nil {
			glog.Fatal(err)
		}
		cfg = c
	}

	service, err := app.NewServiceFromConfig(rand.New(rand.NewSource(*seed)), cfg)
	if err != nil {
		glog.Fatal(err)
	}

	var seats []bot.BotLevel
	for _, l := range strings.Split(*levels, ",") {
		seats = append(seats, bot.BotLevel(strings.TrimSpace(l)))
	}

	glog.Infof("Playing %d games with seats %v", *numGames, seats)
	res, err := sim.Run(service, sim.Options{Games: *numGames, Levels: seats, MaxTurns: *maxTurns})
	if err != nil {
		glog.Fatal(err)
	}

	for _, s := range res.Seats {
		glog.Infof("Seat %d (%s) won %d (%.3f %%) of games", s.Seat, s.Level, s.Wins, 100*s.WinRate(res.Games))
	}
	glog.Infof("Ties: %d, average turns: %.1f", res.Ties, float64(res.Turns)/float64(res.Games))
	glog.Flush()
}
