package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ShapeKind represents the type of card combination.
type ShapeKind int

const (
	Invalid ShapeKind = iota
	Single
	Pair
	Triple
	Bomb    // Four of a kind
	Run     // Three or more consecutive ranks
	PairRun // Two or more consecutive pairs
)

func (k ShapeKind) String() string {
	switch k {
	case Single:
		return "single"
	case Pair:
		return "pair"
	case Triple:
		return "triple"
	case Bomb:
		return "bomb"
	case Run:
		return "run"
	case PairRun:
		return "pair_run"
	default:
		return "invalid"
	}
}

// MarshalText encodes the kind by name.
func (k ShapeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Shape is a classified combination.
// Rank is the shared rank of same-rank shapes and the lowest rank of runs.
// Length is the number of ranks in a run or the number of pairs in a pair run.
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	Rank   Rank      `json:"rank"`
	Length int       `json:"length,omitempty"`
}

func (s Shape) String() string {
	switch s.Kind {
	case Invalid:
		return "invalid"
	case Run, PairRun:
		return fmt.Sprintf("%s(%s,%d)", s.Kind, s.Rank, s.Length)
	default:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Rank)
	}
}

// ErrJokerCannotSubstituteForTwo is returned when a Joker would stand in for a "2".
var ErrJokerCannotSubstituteForTwo = errors.New("joker cannot substitute for rank 2")

// Classify identifies the combination formed by cards under the default rules.
func Classify(cards []Card) (Shape, error) {
	return DefaultRules().Classify(cards)
}

// Classify identifies the combination formed by cards. Shapes are tried in a
// fixed order and the first match wins, so four equal ranks are a bomb even
// though a pair-run policy might also accept them.
// An Invalid shape with a nil error means the cards form no shape; an error
// means a Joker was used illegally.
func (r Rules) Classify(cards []Card) (Shape, error) {
	for _, match := range shapeMatchers {
		shape, ok, err := match(r, cards)
		if err != nil {
			return Shape{Kind: Invalid}, err
		}
		if ok {
			return shape, nil
		}
	}
	return Shape{Kind: Invalid}, nil
}

type shapeMatcher func(r Rules, cards []Card) (Shape, bool, error)

var shapeMatchers = []shapeMatcher{
	matchSingle,
	matchPair,
	matchTriple,
	matchBomb,
	matchRun,
	matchPairRun,
}

func matchSingle(_ Rules, cards []Card) (Shape, bool, error) {
	if len(cards) != 1 {
		return Shape{}, false, nil
	}
	return Shape{Kind: Single, Rank: cards[0].Rank}, true, nil
}

// Jokers never form pairs.
func matchPair(_ Rules, cards []Card) (Shape, bool, error) {
	if len(cards) != 2 || cards[0].IsJoker() || cards[1].IsJoker() {
		return Shape{}, false, nil
	}
	if cards[0].Rank != cards[1].Rank {
		return Shape{}, false, nil
	}
	return Shape{Kind: Pair, Rank: cards[0].Rank}, true, nil
}

func matchTriple(_ Rules, cards []Card) (Shape, bool, error) {
	return matchSameRank(cards, 3, Triple)
}

func matchBomb(_ Rules, cards []Card) (Shape, bool, error) {
	return matchSameRank(cards, 4, Bomb)
}

func matchSameRank(cards []Card, size int, kind ShapeKind) (Shape, bool, error) {
	if len(cards) != size {
		return Shape{}, false, nil
	}
	rank, ok, err := sameRank(cards)
	if err != nil || !ok {
		return Shape{}, false, err
	}
	return Shape{Kind: kind, Rank: rank}, true, nil
}

func matchRun(_ Rules, cards []Card) (Shape, bool, error) {
	if len(cards) < 3 {
		return Shape{}, false, nil
	}
	low, ok := consecutiveRanks(cards)
	if !ok {
		return Shape{}, false, nil
	}
	return Shape{Kind: Run, Rank: low, Length: len(cards)}, true, nil
}

func matchPairRun(r Rules, cards []Card) (Shape, bool, error) {
	if len(cards) < 4 || len(cards)%2 != 0 {
		return Shape{}, false, nil
	}
	if r.PairRun == PairRunPermissive {
		return Shape{Kind: PairRun, Rank: lowestRank(cards), Length: len(cards) / 2}, true, nil
	}
	low, ok := consecutivePairs(cards)
	if !ok {
		return Shape{}, false, nil
	}
	return Shape{Kind: PairRun, Rank: low, Length: len(cards) / 2}, true, nil
}

// partitionJokers splits wildcards from ranked cards.
func partitionJokers(cards []Card) ([]Card, int) {
	plain := make([]Card, 0, len(cards))
	jokers := 0
	for _, c := range cards {
		if c.IsJoker() {
			jokers++
			continue
		}
		plain = append(plain, c)
	}
	return plain, jokers
}

// sameRank reports whether every ranked card shares one rank, with Jokers
// standing in for the missing copies. A Joker may not stand in for a "2".
func sameRank(cards []Card) (Rank, bool, error) {
	plain, jokers := partitionJokers(cards)
	if len(plain) == 0 {
		return 0, false, nil
	}
	rank := plain[0].Rank
	for _, c := range plain[1:] {
		if c.Rank != rank {
			return 0, false, nil
		}
	}
	if jokers > 0 && rank == RankTwo {
		return 0, false, ErrJokerCannotSubstituteForTwo
	}
	return rank, true, nil
}

// consecutiveRanks reports whether the cards form a gapless run once Jokers
// fill the holes. Jokers must fill the gaps exactly: they never extend a run,
// so none can take the place of a "2".
func consecutiveRanks(cards []Card) (Rank, bool) {
	plain, jokers := partitionJokers(cards)
	if len(plain) == 0 {
		return 0, false
	}

	ranks := sortedRanks(plain)
	for i := 1; i < len(ranks); i++ {
		if ranks[i] == ranks[i-1] {
			return 0, false // duplicate rank not allowed
		}
	}

	span := int(ranks[len(ranks)-1]-ranks[0]) + 1
	if span != len(plain)+jokers {
		return 0, false
	}
	return ranks[0], true
}

// consecutivePairs reports whether the cards are pairs of strictly
// consecutive ranks. Jokers are not accepted.
func consecutivePairs(cards []Card) (Rank, bool) {
	for _, c := range cards {
		if c.IsJoker() {
			return 0, false
		}
	}

	ranks := sortedRanks(cards)
	for i := 0; i < len(ranks); i += 2 {
		if ranks[i] != ranks[i+1] {
			return 0, false
		}
		if i > 0 && ranks[i] != ranks[i-2]+1 {
			return 0, false
		}
	}
	return ranks[0], true
}

func sortedRanks(cards []Card) []Rank {
	ranks := make([]Rank, len(cards))
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
	return ranks
}

func lowestRank(cards []Card) Rank {
	low := Rank(0)
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if low == 0 || c.Rank < low {
			low = c.Rank
		}
	}
	if low == 0 {
		return JokerRank
	}
	return low
}
