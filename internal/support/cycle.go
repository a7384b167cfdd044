package support

import (
	"errors"
	"fmt"

	"inquiry-system/internal/domain/vote"
)

var ErrInvalidValue = errors.New("vote value outside the support cycle")

// Transition is one step of the support cycle.
type Transition struct {
	Mode     vote.Mode
	Previous VoteState
	Next     VoteState
	Remove   bool
}

func (t Transition) String() string {
	if t.Remove {
		return t.Previous.String() + "->remove"
	}
	return t.Previous.String() + "->" + t.Next.String()
}

// NextTernary walks none -> positive -> neutral -> negative -> remove.
func NextTernary(current VoteState) (Transition, error) {
	t := Transition{Mode: vote.ModeTernary, Previous: current}
	value, cast := current.Value()
	if !cast {
		t.Next = Cast(vote.Positive)
		return t, nil
	}
	switch value {
	case vote.Positive:
		t.Next = Cast(vote.Neutral)
	case vote.Neutral:
		t.Next = Cast(vote.Negative)
	case vote.Negative:
		t.Next = NoVote()
		t.Remove = true
	default:
		return Transition{}, fmt.Errorf("%w: %d", ErrInvalidValue, int8(value))
	}
	return t, nil
}

// NextSimple flips the support flag.
func NextSimple(current VoteState) Transition {
	t := Transition{Mode: vote.ModeSimple, Previous: current}
	if current.IsCast() {
		t.Next = NoVote()
		t.Remove = true
		return t
	}
	t.Next = Cast(vote.Positive)
	return t
}

// Next dispatches on mode.
func Next(mode vote.Mode, current VoteState) (Transition, error) {
	switch mode {
	case vote.ModeTernary:
		return NextTernary(current)
	case vote.ModeSimple:
		return NextSimple(current), nil
	default:
		return Transition{}, fmt.Errorf("unknown vote mode %q", mode)
	}
}
