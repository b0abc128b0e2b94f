package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotARecognizedShape           = errors.New("cards do not form a recognized shape")
	ErrCannotFollowActiveCombination = errors.New("cards cannot follow the active combination")
	ErrIllegalWildcardUse            = errors.New("illegal wildcard use")
)

// RejectionReason is a stable code for why a play was refused.
type RejectionReason string

const (
	ReasonNotARecognizedShape           RejectionReason = "not_a_recognized_shape"
	ReasonCannotFollowActiveCombination RejectionReason = "cannot_follow_active_combination"
	ReasonIllegalWildcardUse            RejectionReason = "illegal_wildcard_use"
)

// ReasonOf maps a rejection error to its reason code. It returns an empty
// reason for errors that are not play rejections.
func ReasonOf(err error) RejectionReason {
	switch {
	case errors.Is(err, ErrIllegalWildcardUse):
		return ReasonIllegalWildcardUse
	case errors.Is(err, ErrNotARecognizedShape):
		return ReasonNotARecognizedShape
	case errors.Is(err, ErrCannotFollowActiveCombination):
		return ReasonCannotFollowActiveCombination
	default:
		return ""
	}
}

// Play is an accepted combination: its shape and the cards that formed it.
type Play struct {
	Shape Shape
	Cards []Card
}

// Table holds the active combination for one game. It is not safe for
// concurrent use; the owning game loop serializes plays.
type Table struct {
	rules  Rules
	active *Play
}

// NewTable returns a table awaiting its first play.
func NewTable(rules Rules) *Table {
	return &Table{rules: rules}
}

// Rules returns the rule variant the table enforces.
func (t *Table) Rules() Rules {
	return t.rules
}

// AwaitingFirstPlay reports whether no combination has been accepted yet.
func (t *Table) AwaitingFirstPlay() bool {
	return t.active == nil
}

// Active returns a copy of the active combination, if any.
func (t *Table) Active() (Play, bool) {
	if t.active == nil {
		return Play{}, false
	}
	return Play{
		Shape: t.active.Shape,
		Cards: append([]Card(nil), t.active.Cards...),
	}, true
}

// Check returns the shape cards would be accepted as, without changing the table.
func (t *Table) Check(cards []Card) (Shape, error) {
	shape, err := t.rules.Classify(cards)
	if err != nil {
		return Shape{Kind: Invalid}, fmt.Errorf("%w: %w", ErrIllegalWildcardUse, err)
	}
	if shape.Kind == Invalid {
		return shape, ErrNotARecognizedShape
	}
	if t.active == nil {
		return shape, nil
	}
	if !t.rules.Beats(t.active.Shape, shape) {
		return shape, fmt.Errorf("%w: %s after %s", ErrCannotFollowActiveCombination, shape, t.active.Shape)
	}
	return shape, nil
}

// SubmitPlay accepts cards as the new active combination when they form a
// shape that legally follows the current one. A rejected play leaves the
// table unchanged.
func (t *Table) SubmitPlay(cards []Card) error {
	shape, err := t.Check(cards)
	if err != nil {
		return err
	}
	t.active = &Play{Shape: shape, Cards: append([]Card(nil), cards...)}
	return nil
}
