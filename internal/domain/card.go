package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Suit identifies a card suit. Joker is the wildcard suit.
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	Joker
)

// Rank orders cards by strength: 3 is the weakest, 12 is the Ace and 13 is the "2".
type Rank int

const (
	MinRank Rank = 3
	RankAce Rank = 12
	RankTwo Rank = 13
	MaxRank Rank = RankTwo

	// JokerRank is the nominal rank a Joker carries. It is never used to compare strength.
	JokerRank Rank = MinRank
)

// ErrInvalidCard is returned for a suit or rank outside the deck.
var ErrInvalidCard = errors.New("invalid card")

// Card is a single playing card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard validates and builds a card.
func NewCard(suit Suit, rank Rank) (Card, error) {
	c := Card{Suit: suit, Rank: rank}
	if !c.Valid() {
		return Card{}, fmt.Errorf("%w: suit=%d rank=%d", ErrInvalidCard, suit, rank)
	}
	return c, nil
}

// NewJoker returns a wildcard card.
func NewJoker() Card {
	return Card{Suit: Joker, Rank: JokerRank}
}

// IsJoker reports whether the card is a wildcard.
func (c Card) IsJoker() bool {
	return c.Suit == Joker
}

// Valid reports whether the card can exist in the deck.
func (c Card) Valid() bool {
	if c.Suit < Spades || c.Suit > Joker {
		return false
	}
	return c.Rank >= MinRank && c.Rank <= MaxRank
}

func (c Card) String() string {
	if c.IsJoker() {
		return "JK"
	}
	return c.Rank.String() + c.Suit.String()
}

// Code returns the compact notation read by ParseCard, e.g. "10H" or "JK".
func (c Card) Code() string {
	if c.IsJoker() {
		return "JK"
	}
	return c.Rank.String() + string("SHDC"[c.Suit])
}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Joker:
		return "🃏"
	default:
		return "?"
	}
}

func (r Rank) String() string {
	switch r {
	case 11:
		return "J"
	case RankAce:
		return "A"
	case RankTwo:
		return "2"
	default:
		return strconv.Itoa(int(r))
	}
}

// ParseCard reads the compact notation used by tools and tests: a rank token
// ("3".."10", "J", "A", "2") followed by a suit letter (S, H, D, C), or "JK".
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "JK" {
		return NewJoker(), nil
	}
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	var suit Suit
	switch s[len(s)-1] {
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("%w: unknown suit in %q", ErrInvalidCard, s)
	}

	var rank Rank
	switch token := s[:len(s)-1]; token {
	case "J":
		rank = 11
	case "A":
		rank = RankAce
	case "2":
		rank = RankTwo
	default:
		n, err := strconv.Atoi(token)
		if err != nil || n < int(MinRank) || n > 10 {
			return Card{}, fmt.Errorf("%w: unknown rank in %q", ErrInvalidCard, s)
		}
		rank = Rank(n)
	}
	return NewCard(suit, rank)
}

// ParseCards parses a space separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}
