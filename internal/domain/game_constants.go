package domain

const (
	// DealerHandSize is the number of cards dealt to the dealer.
	DealerHandSize = 6
	// HandSize is the number of cards dealt to every other player.
	HandSize = 5

	// MinPlayers is the smallest table that can start a game.
	MinPlayers = 2
	// MaxPlayers keeps at least one card in the stock after dealing a 46-card deck.
	MaxPlayers = 8
)
