package domain

import (
	"errors"
	"testing"
)

func mustCards(t *testing.T, s string) []Card {
	t.Helper()
	cards, err := ParseCards(s)
	if err != nil {
		t.Fatalf("ParseCards(%q): %v", s, err)
	}
	return cards
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		cards string
		want  Shape
	}{
		{name: "Single", cards: "5S", want: Shape{Kind: Single, Rank: 5}},
		{name: "Single 2", cards: "2H", want: Shape{Kind: Single, Rank: RankTwo}},
		{name: "Single Joker carries nominal rank", cards: "JK", want: Shape{Kind: Single, Rank: JokerRank}},
		{name: "Pair", cards: "5S 5H", want: Shape{Kind: Pair, Rank: 5}},
		{name: "Invalid: unequal pair", cards: "5S 6H", want: Shape{Kind: Invalid}},
		{name: "Invalid: Joker pair", cards: "JK 5H", want: Shape{Kind: Invalid}},
		{name: "Invalid: two Jokers", cards: "JK JK", want: Shape{Kind: Invalid}},
		{name: "Triple", cards: "7S 7H 7D", want: Shape{Kind: Triple, Rank: 7}},
		{name: "Triple with Joker", cards: "7S JK 7D", want: Shape{Kind: Triple, Rank: 7}},
		{name: "Triple with two Jokers", cards: "JK 7D JK", want: Shape{Kind: Triple, Rank: 7}},
		{name: "Triple of 2s", cards: "2S 2H 2D", want: Shape{Kind: Triple, Rank: RankTwo}},
		{name: "Bomb", cards: "9S 9H 9D 9C", want: Shape{Kind: Bomb, Rank: 9}},
		{name: "Bomb with Joker", cards: "9S JK 9D 9C", want: Shape{Kind: Bomb, Rank: 9}},
		{name: "Run 3", cards: "4S 5H 6D", want: Shape{Kind: Run, Rank: 4, Length: 3}},
		{name: "Run unordered", cards: "6D 4S 5H", want: Shape{Kind: Run, Rank: 4, Length: 3}},
		{name: "Run with Joker in the gap", cards: "4S JK 6D", want: Shape{Kind: Run, Rank: 4, Length: 3}},
		{name: "Run with two Jokers", cards: "4S JK JK 7D", want: Shape{Kind: Run, Rank: 4, Length: 4}},
		{name: "Run 5", cards: "4S 5S 6S 7S 8S", want: Shape{Kind: Run, Rank: 4, Length: 5}},
		{name: "Run up to the 2", cards: "JS AH 2D", want: Shape{Kind: Run, Rank: 11, Length: 3}},
		{name: "Run with Joker below the 2", cards: "JS JK 2H", want: Shape{Kind: Run, Rank: 11, Length: 3}},
		{name: "Long run with Joker below the 2", cards: "9S 10S JK AS 2S", want: Shape{Kind: Run, Rank: 9, Length: 5}},
		{name: "Invalid: 2 and Joker with an unrelated card", cards: "5S 2H JK", want: Shape{Kind: Invalid}},
		{name: "Invalid: Ace, Joker and 2", cards: "AS JK 2D", want: Shape{Kind: Invalid}},
		{name: "Invalid: duplicate rank fills the span", cards: "5S 5H 7D", want: Shape{Kind: Invalid}},
		{name: "Invalid: gap", cards: "4S 6D 7H", want: Shape{Kind: Invalid}},
		{name: "Run with Jokers filling two gaps", cards: "4S 5D JK JK 8H", want: Shape{Kind: Run, Rank: 4, Length: 5}},
		{name: "Invalid: Joker cannot extend a run", cards: "4S 5D 6H JK", want: Shape{Kind: Invalid}},
		{name: "Invalid: gap wider than Jokers", cards: "4S JK 7D", want: Shape{Kind: Invalid}},
		{name: "Pair run of two", cards: "5S 5H 6S 6H", want: Shape{Kind: PairRun, Rank: 5, Length: 2}},
		{name: "Pair run of three", cards: "7S 6H 5S 6S 7H 5H", want: Shape{Kind: PairRun, Rank: 5, Length: 3}},
		{name: "Invalid: pairs not consecutive", cards: "5S 5H 7S 7H", want: Shape{Kind: Invalid}},
		{name: "Invalid: three and one", cards: "5S 5H 5D 6S", want: Shape{Kind: Invalid}},
		{name: "Invalid: Joker in pair run", cards: "5S JK 6S 6H", want: Shape{Kind: Invalid}},
		{name: "Invalid: broken run of five", cards: "4S 5S 6S 7S 9S", want: Shape{Kind: Invalid}},
		{name: "Invalid: empty", cards: "", want: Shape{Kind: Invalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(mustCards(t, tt.cards))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyReferencePairRun(t *testing.T) {
	rules := ReferenceRules()
	tests := []struct {
		name  string
		cards string
		want  Shape
	}{
		{name: "Unrelated even set", cards: "3S 8H JS AD", want: Shape{Kind: PairRun, Rank: 3, Length: 2}},
		{name: "Gapped pairs", cards: "5S 5H 7S 7H", want: Shape{Kind: PairRun, Rank: 5, Length: 2}},
		{name: "Run still wins", cards: "4S 5S 6S 7S", want: Shape{Kind: Run, Rank: 4, Length: 4}},
		{name: "Bomb still wins", cards: "9S 9H 9D 9C", want: Shape{Kind: Bomb, Rank: 9}},
		{name: "Odd set stays invalid", cards: "3S 8H JS AD 5C", want: Shape{Kind: Invalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Classify(mustCards(t, tt.cards))
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyJokerForTwo(t *testing.T) {
	tests := []struct {
		name    string
		cards   string
		wantErr bool
	}{
		{name: "Triple of 2s with Joker", cards: "2S 2H JK", wantErr: true},
		{name: "Triple of 2s with two Jokers", cards: "2S JK JK", wantErr: true},
		{name: "Bomb of 2s with Joker", cards: "2S 2H 2D JK", wantErr: true},
		{name: "Ace and 2 leave no gap for the Joker", cards: "AS JK 2D", wantErr: false},
		{name: "Joker fills a gap below the 2", cards: "9S 10S JK AS 2S", wantErr: false},
		{name: "Mixed set with a 2 and a Joker", cards: "5S 2H JK", wantErr: false},
		{name: "Pair attempt is just invalid", cards: "2S JK", wantErr: false},
		{name: "Triple of 2s without Joker", cards: "2S 2H 2D", wantErr: false},
		{name: "Joker triple below the 2", cards: "AS AH JK", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(mustCards(t, tt.cards))
			if got := errors.Is(err, ErrJokerCannotSubstituteForTwo); got != tt.wantErr {
				t.Errorf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBeats(t *testing.T) {
	single := func(r Rank) Shape { return Shape{Kind: Single, Rank: r} }
	pair := func(r Rank) Shape { return Shape{Kind: Pair, Rank: r} }
	triple := func(r Rank) Shape { return Shape{Kind: Triple, Rank: r} }

	tests := []struct {
		name      string
		rules     Rules
		active    Shape
		candidate Shape
		want      bool
	}{
		{name: "Single one higher", active: single(5), candidate: single(6), want: true},
		{name: "Single equal", active: single(5), candidate: single(5), want: false},
		{name: "Single two higher", active: single(5), candidate: single(7), want: false},
		{name: "Single lower", active: single(5), candidate: single(4), want: false},
		{name: "Single Ace then 2", active: single(RankAce), candidate: single(RankTwo), want: true},
		{name: "Pair one higher", active: pair(5), candidate: pair(6), want: true},
		{name: "Pair two higher", active: pair(5), candidate: pair(7), want: false},
		{name: "Triple equal under reference rule", active: triple(7), candidate: triple(7), want: true},
		{name: "Triple higher under reference rule", active: triple(7), candidate: triple(8), want: false},
		{name: "Triple higher under strict rule", rules: StrictRules(), active: triple(7), candidate: triple(8), want: true},
		{name: "Triple equal under strict rule", rules: StrictRules(), active: triple(7), candidate: triple(7), want: false},
		{name: "Triple lower under strict rule", rules: StrictRules(), active: triple(7), candidate: triple(6), want: false},
		{name: "Bomb cannot follow single", active: single(5), candidate: Shape{Kind: Bomb, Rank: 9}, want: false},
		{name: "Single cannot follow bomb", active: Shape{Kind: Bomb, Rank: 5}, candidate: single(6), want: false},
		{name: "Runs never follow", active: Shape{Kind: Run, Rank: 4, Length: 3}, candidate: Shape{Kind: Run, Rank: 5, Length: 3}, want: false},
		{name: "Pair cannot follow single", active: single(5), candidate: pair(6), want: false},
		{name: "Pair runs never follow", active: Shape{Kind: PairRun, Rank: 4, Length: 2}, candidate: Shape{Kind: PairRun, Rank: 5, Length: 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.Beats(tt.active, tt.candidate); got != tt.want {
				t.Errorf("Beats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRuleNames(t *testing.T) {
	if r, err := ParseTripleRule("higher"); err != nil || r != TripleRuleHigher {
		t.Fatalf("ParseTripleRule(higher) = %v, %v", r, err)
	}
	if r, err := ParseTripleRule(""); err != nil || r != TripleRuleEqual {
		t.Fatalf("ParseTripleRule(\"\") = %v, %v", r, err)
	}
	if _, err := ParseTripleRule("lower"); err == nil {
		t.Fatalf("expected error for unknown triple rule")
	}
	if p, err := ParsePairRunPolicy("permissive"); err != nil || p != PairRunPermissive {
		t.Fatalf("ParsePairRunPolicy(permissive) = %v, %v", p, err)
	}
	if _, err := ParsePairRunPolicy("loose"); err == nil {
		t.Fatalf("expected error for unknown pair run policy")
	}
}
