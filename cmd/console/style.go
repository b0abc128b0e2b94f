package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ritksm/gdy/internal/app"
	"github.com/ritksm/gdy/internal/bot"
	"github.com/ritksm/gdy/internal/domain"
)

func displayName(userID string, bots map[string]*bot.Agent) string {
	if a, ok := bots[userID]; ok {
		return a.Name
	}
	return "You"
}

func cardsString(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// printState renders the opponents, the active play and the player's hand.
func printState(game *domain.Game, bots map[string]*bot.Agent) {
	var opponents []pterm.Panel
	var mine pterm.Panel
	for _, p := range game.Players {
		box := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
		title := displayName(p.UserID, bots)
		if p.IsDealer {
			title += " (dealer)"
		}
		if p.UserID == humanID {
			hand := append([]domain.Card(nil), p.Hand...)
			domain.SortHand(hand)
			mine = pterm.Panel{Data: box.WithTitle(title).WithTitleTopLeft().Sprint(pterm.BgGreen.Sprint(cardsString(hand)))}
			continue
		}
		opponents = append(opponents, pterm.Panel{Data: box.WithTitle(title).WithTitleTopLeft().Sprintf("%d cards", len(p.Hand))})
	}

	board := "Lead any combination"
	if play, ok := game.Table.Active(); ok {
		board = fmt.Sprintf("%s: %s", play.Shape, cardsString(play.Cards))
	}
	boardBox := pterm.DefaultBox.WithHorizontalPadding(4).WithTitle(pterm.LightYellow("|TABLE|")).WithTitleTopCenter()
	boardPanel := pterm.Panel{Data: boardBox.Sprintf("%s\nStock: %d", board, len(game.Stock))}

	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		opponents,
		{boardPanel},
		{mine},
	}).Render()
}

// report feeds events to the bots and prints what the player may see.
func report(bots map[string]*bot.Agent, events []app.Event) {
	for _, ev := range events {
		for _, a := range bots {
			if len(ev.Recipients) == 0 || ev.Recipients[0] == a.ID {
				a.OnGameEvent(ev)
			}
		}
		if len(ev.Recipients) > 0 && ev.Recipients[0] != humanID {
			continue
		}
		switch p := ev.Payload.(type) {
		case app.GameStartedPayload:
			pterm.Info.Printfln("New game, %s deals.", displayName(p.DealerUserID, bots))
		case app.CardPlayedPayload:
			pterm.Info.Printfln("%s played %s: %s (%d left)", displayName(p.UserID, bots), p.Shape.Kind, cardsString(p.Cards), p.CardsLeft)
		case app.TurnPassedPayload:
			pterm.Info.Printfln("%s passed, stock %d", displayName(p.UserID, bots), p.StockSize)
		case app.CardDrawnPayload:
			pterm.Info.Printfln("You drew %s", p.Card)
		case app.GameEndedPayload:
			if p.Tie {
				pterm.Warning.Println("The stock ran out. Nobody wins.")
			} else if p.WinnerUserID == humanID {
				pterm.Success.Println("You shed your hand, congratulations!")
			} else {
				pterm.Error.Printfln("%s wins, better luck next time!", displayName(p.WinnerUserID, bots))
			}
		}
	}
}
