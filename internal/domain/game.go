package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

var (
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers  = errors.New("too many players for one deck")
	ErrDuplicatePlayer = errors.New("empty or duplicate player id")
	ErrNotPlaying      = errors.New("game not in playing phase")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrCardsNotInHand  = errors.New("cards not in hand")
	ErrEmptyPlay       = errors.New("no cards played")
)

// GameOptions customizes a new game. Zero values pick the defaults.
type GameOptions struct {
	Rules    Rules
	Shuffler Shuffler
	// Rand picks the dealer; nil uses a time-seeded source.
	Rand *rand.Rand
}

// Game is the authoritative state of one round of play.
type Game struct {
	// ID is assigned by the caller; the domain never reads it.
	ID          string
	Phase       Phase
	Players     []*Player // seat order
	Stock       []Card
	Table       *Table
	DealerSeat  int
	CurrentSeat int
	// WinnerID is empty while playing and after a tie.
	WinnerID string
}

// NewGame deals a new game for the given players in seat order. The dealer
// is picked at random, receives DealerHandSize cards and leads.
func NewGame(playerIDs []string, opts GameOptions) (*Game, error) {
	if len(playerIDs) < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	if len(playerIDs) > MaxPlayers {
		return nil, ErrTooManyPlayers
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	shuffler := opts.Shuffler
	if shuffler == nil {
		shuffler = NewRandShuffler(rng)
	}

	deck := NewDeck()
	shuffler.Shuffle(deck)

	g := &Game{
		Phase:      PhasePlaying,
		Players:    make([]*Player, len(playerIDs)),
		Table:      NewTable(opts.Rules),
		DealerSeat: rng.Intn(len(playerIDs)),
	}
	for seat, id := range playerIDs {
		g.Players[seat] = &Player{UserID: id, Seat: seat}
	}

	// Deal starting with the dealer and continuing in seat order.
	next := 0
	for i := range g.Players {
		pl := g.Players[(g.DealerSeat+i)%len(g.Players)]
		n := HandSize
		if pl.Seat == g.DealerSeat {
			pl.IsDealer = true
			n = DealerHandSize
		}
		pl.Hand = append([]Card{}, deck[next:next+n]...)
		next += n
	}
	g.Stock = append([]Card{}, deck[next:]...)
	g.CurrentSeat = g.DealerSeat

	return g, nil
}

// Player returns the player with the given user ID.
func (g *Game) Player(userID string) (*Player, bool) {
	for _, pl := range g.Players {
		if pl.UserID == userID {
			return pl, true
		}
	}
	return nil, false
}

// CurrentPlayer returns the player whose turn it is.
func (g *Game) CurrentPlayer() *Player {
	return g.Players[g.CurrentSeat]
}

// Dealer returns the dealer.
func (g *Game) Dealer() *Player {
	return g.Players[g.DealerSeat]
}

// IsTie reports whether the game ended without a winner.
func (g *Game) IsTie() bool {
	return g.Phase == PhaseEnded && g.WinnerID == ""
}

// Play submits cards from a player's hand to the table. On rejection the
// hand and table are unchanged and the player keeps the turn. Emptying the
// hand wins the game.
func (g *Game) Play(userID string, cards []Card) (Shape, error) {
	pl, err := g.actor(userID)
	if err != nil {
		return Shape{}, err
	}
	if len(cards) == 0 {
		return Shape{}, ErrEmptyPlay
	}
	if !ContainsCards(pl.Hand, cards) {
		return Shape{}, ErrCardsNotInHand
	}

	if err := g.Table.SubmitPlay(cards); err != nil {
		return Shape{}, err
	}
	active, _ := g.Table.Active()

	pl.Hand = RemoveCards(pl.Hand, cards)
	if len(pl.Hand) == 0 {
		g.Phase = PhaseEnded
		g.WinnerID = pl.UserID
		return active.Shape, nil
	}

	g.advance()
	return active.Shape, nil
}

// Pass ends the player's turn and draws a card from the stock. The game ends
// in a tie once the stock runs out. drew is false when no card was left.
func (g *Game) Pass(userID string) (drawn Card, drew bool, err error) {
	pl, err := g.actor(userID)
	if err != nil {
		return Card{}, false, err
	}

	if len(g.Stock) > 0 {
		drawn, g.Stock = g.Stock[0], g.Stock[1:]
		pl.Hand = append(pl.Hand, drawn)
		drew = true
	}
	if len(g.Stock) == 0 {
		g.Phase = PhaseEnded
		return drawn, drew, nil
	}

	g.advance()
	return drawn, drew, nil
}

func (g *Game) actor(userID string) (*Player, error) {
	if g.Phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl, ok := g.Player(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if pl.Seat != g.CurrentSeat {
		return nil, ErrNotYourTurn
	}
	return pl, nil
}

func (g *Game) advance() {
	g.CurrentSeat = (g.CurrentSeat + 1) % len(g.Players)
}
