package domain

import "fmt"

// TripleRule decides how a triple follows another triple.
type TripleRule int

const (
	// TripleRuleEqual accepts a triple of the same rank as the active one.
	TripleRuleEqual TripleRule = iota
	// TripleRuleHigher requires a strictly higher rank.
	TripleRuleHigher
)

func (t TripleRule) String() string {
	switch t {
	case TripleRuleHigher:
		return "higher"
	default:
		return "equal"
	}
}

// ParseTripleRule reads a rule name as used in configuration files.
func ParseTripleRule(s string) (TripleRule, error) {
	switch s {
	case "", "equal":
		return TripleRuleEqual, nil
	case "higher":
		return TripleRuleHigher, nil
	default:
		return 0, fmt.Errorf("unknown triple rule: %q", s)
	}
}

// PairRunPolicy decides which even-sized sets classify as pair runs.
type PairRunPolicy int

const (
	// PairRunStrict requires two or more pairs of strictly consecutive ranks.
	PairRunStrict PairRunPolicy = iota
	// PairRunPermissive accepts any even set of four or more cards.
	PairRunPermissive
)

func (p PairRunPolicy) String() string {
	switch p {
	case PairRunPermissive:
		return "permissive"
	default:
		return "strict"
	}
}

// ParsePairRunPolicy reads a policy name as used in configuration files.
func ParsePairRunPolicy(s string) (PairRunPolicy, error) {
	switch s {
	case "", "strict":
		return PairRunStrict, nil
	case "permissive":
		return PairRunPermissive, nil
	default:
		return 0, fmt.Errorf("unknown pair run policy: %q", s)
	}
}

// Rules selects the variant of the classification and beat rules.
// The zero value is DefaultRules.
type Rules struct {
	Triple  TripleRule
	PairRun PairRunPolicy
}

// DefaultRules keeps the equal-rank triple rule and checks pair runs properly.
func DefaultRules() Rules {
	return Rules{Triple: TripleRuleEqual, PairRun: PairRunStrict}
}

// ReferenceRules reproduces the historical behaviour: equal-rank triples and
// any even set of four or more cards accepted as a pair run.
func ReferenceRules() Rules {
	return Rules{Triple: TripleRuleEqual, PairRun: PairRunPermissive}
}

// StrictRules requires a higher triple and a real pair run.
func StrictRules() Rules {
	return Rules{Triple: TripleRuleHigher, PairRun: PairRunStrict}
}

// Beats determines if candidate can follow active.
// Singles and pairs must be exactly one rank higher; triples follow the
// configured TripleRule. No other pairing of shapes can follow.
func (r Rules) Beats(active, candidate Shape) bool {
	switch {
	case active.Kind == Single && candidate.Kind == Single:
		return candidate.Rank == active.Rank+1
	case active.Kind == Pair && candidate.Kind == Pair:
		return candidate.Rank == active.Rank+1
	case active.Kind == Triple && candidate.Kind == Triple:
		if r.Triple == TripleRuleHigher {
			return candidate.Rank > active.Rank
		}
		return candidate.Rank == active.Rank
	default:
		return false
	}
}
