// Play a game against bots in the terminal.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/config"
	"github.com/ritksm/gdy/internal/domain"
)

const humanID = "you"

var logger *slog.Logger

func main() {
	botsFlag := flag.Int("bots", 2, "number of bot opponents")
	levelFlag := flag.String("level", string(bot.BotLevelShed), "bot level")
	configFlag := flag.String("config", "", "optional game config file")
	secureFlag := flag.Bool("secure", false, "shuffle with a cryptographic permutation")
	flag.Parse()

	logger = slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	cfg := config.Default()
	if *configFlag != "" {
		c, err := config.ReadGameConfig(*configFlag)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		cfg = c
	}
	cfg.SecureShuffle = cfg.SecureShuffle || *secureFlag

	if *botsFlag < domain.MinPlayers-1 || *botsFlag > domain.MaxPlayers-1 {
		fmt.Fprintf(os.Stderr, "bots must be between %d and %d\n", domain.MinPlayers-1, domain.MaxPlayers-1)
		os.Exit(1)
	}

	service, err := app.NewServiceFromConfig(rand.New(rand.NewSource(time.Now().UnixNano())), cfg)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("G", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("dy", pterm.FgDarkGray.ToStyle()),
	).Srender()
	if err != nil {
		logger.Error(err.Error())
	}
	pterm.Print(title)
	pterm.Info.Printfln("Rules: triples %s, pair runs %s", cfg.TripleRule, cfg.PairRun)

	for {
		agents, err := newBots(*botsFlag, bot.BotLevel(*levelFlag))
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		if err := playGame(service, agents); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}

		again, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Play another game?").WithDefaultValue(true).Show()
		if !again {
			break
		}
	}
	pterm.Println("Thank you for playing...")
}

func newBots(n int, level bot.BotLevel) ([]*bot.Agent, error) {
	agents := make([]*bot.Agent, n)
	for i := range agents {
		strategy, err := bot.NewBrain(level)
		if err != nil {
			return nil, err
		}
		id := fmt.Sprintf("bot-%d", i+1)
		agents[i] = &bot.Agent{ID: id, Name: fmt.Sprintf("Bot %d", i+1), Strategy: strategy}
	}
	return agents, nil
}

// playGame runs one game until someone sheds their hand or the stock runs out.
func playGame(service *app.Service, agents []*bot.Agent) error {
	byID := make(map[string]*bot.Agent, len(agents))
	ids := []string{humanID}
	for _, a := range agents {
		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	game, events, err := service.StartGame(ids)
	if err != nil {
		return err
	}
	report(byID, events)

	for game.Phase == domain.PhasePlaying {
		current := game.CurrentPlayer()
		var events []app.Event
		if agent, ok := byID[current.UserID]; ok {
			events, err = botTurn(service, game, agent)
		} else {
			printState(game, byID)
			events, err = humanTurn(service, game)
		}
		if err != nil {
			return err
		}
		report(byID, events)
	}
	return nil
}

func botTurn(service *app.Service, game *domain.Game, agent *bot.Agent) ([]app.Event, error) {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("%s is thinking...", agent.Name))
	time.Sleep(400 * time.Millisecond)
	spinner.Stop()

	move, err := agent.Play(game)
	if err != nil {
		logger.Warn(fmt.Sprintf("%s failed to choose, passing: %v", agent.Name, err))
	}
	if !move.Pass {
		events, err := service.PlayCards(game, agent.ID, move.Cards)
		if err == nil {
			return events, nil
		}
		logger.Warn(fmt.Sprintf("%s play refused, passing: %v", agent.Name, err))
	}
	return service.PassTurn(game, agent.ID)
}

// humanTurn prompts until the player passes or makes a play the table accepts.
func humanTurn(service *app.Service, game *domain.Game) ([]app.Event, error) {
	for {
		action, _ := pterm.DefaultInteractiveSelect.
			WithDefaultText("Select your next action").
			WithOptions([]string{"Play", "Pass"}).
			Show()
		if action == "Pass" {
			return service.PassTurn(game, humanID)
		}

		me, _ := game.Player(humanID)
		options := handOptions(me.Hand)
		selected, _ := pterm.DefaultInteractiveMultiselect.
			WithDefaultText("Select the cards to play").
			WithOptions(options).
			Show()
		cards, err := selectedCards(me.Hand, options, selected)
		if err != nil || len(cards) == 0 {
			pterm.Warning.Println("No cards selected.")
			continue
		}

		events, err := service.PlayCards(game, humanID, cards)
		if err == nil {
			return events, nil
		}
		if domain.ReasonOf(err) == "" {
			return nil, err
		}
		pterm.Error.Printfln("Rejected: %v", err)
	}
}

// handOptions labels every card with its position so duplicate Jokers stay distinct.
func handOptions(hand []domain.Card) []string {
	options := make([]string, len(hand))
	for i, c := range hand {
		options[i] = fmt.Sprintf("%2d: %s", i+1, c)
	}
	return options
}

func selectedCards(hand []domain.Card, options, selected []string) ([]domain.Card, error) {
	index := make(map[string]int, len(options))
	for i, o := range options {
		index[o] = i
	}
	cards := make([]domain.Card, 0, len(selected))
	for _, s := range selected {
		i, ok := index[s]
		if !ok {
			return nil, fmt.Errorf("unknown option %q", strings.TrimSpace(s))
		}
		cards = append(cards, hand[i])
	}
	return cards, nil
}
