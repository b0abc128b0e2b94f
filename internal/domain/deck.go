package domain

import (
	"crypto/cipher"
	"encoding/binary"
	"math"
	"math/rand"
	"sort"

	"go.dedis.ch/kyber/v4/suites"
)

// NewDeck returns the ordered 46-card deck: ranks 3..13 in four suits plus two Jokers.
func NewDeck() []Card {
	deck := make([]Card, 0, 4*int(MaxRank-MinRank+1)+2)
	for _, s := range []Suit{Spades, Hearts, Diamonds, Clubs} {
		for r := MinRank; r <= MaxRank; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return append(deck, NewJoker(), NewJoker())
}

// Shuffler permutes a deck in place.
type Shuffler interface {
	Shuffle(cards []Card)
}

// RandShuffler shuffles with a math/rand source. Seeded sources give
// reproducible deals.
type RandShuffler struct {
	rng *rand.Rand
}

// NewRandShuffler wraps rng; a nil rng uses the global source.
func NewRandShuffler(rng *rand.Rand) *RandShuffler {
	return &RandShuffler{rng: rng}
}

func (s *RandShuffler) Shuffle(cards []Card) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if s.rng == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	s.rng.Shuffle(len(cards), swap)
}

var shuffleSuite = suites.MustFind("Ed25519")

// SecureShuffler draws from the suite's cryptographic random stream, for
// tables where players must not be able to predict the deal.
type SecureShuffler struct{}

func (SecureShuffler) Shuffle(cards []Card) {
	stream := shuffleSuite.RandomStream()
	for i := len(cards) - 1; i > 0; i-- {
		j := uniformIndex(stream, i+1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// uniformIndex returns a value in [0, n) without modulo bias.
func uniformIndex(stream cipher.Stream, n int) int {
	var zero, buf [8]byte
	limit := math.MaxUint64 - math.MaxUint64%uint64(n)
	for {
		stream.XORKeyStream(buf[:], zero[:])
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % uint64(n))
		}
	}
}

// SortHand orders a hand by ascending rank, then suit, with Jokers last.
func SortHand(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cardPower(cards[i]) < cardPower(cards[j])
	})
}

func cardPower(c Card) int {
	if c.IsJoker() {
		return int(MaxRank+1) * 5
	}
	return int(c.Rank)*5 + int(c.Suit)
}
