package support

import (
	"inquiry-system/internal/domain/vote"
)

// VoteState is either no vote or a cast vote carrying a value. The zero value is
// no vote, which keeps "not voted" distinct from a neutral vote.
type VoteState struct {
	cast  bool
	value vote.Value
}

func NoVote() VoteState {
	return VoteState{}
}

func Cast(v vote.Value) VoteState {
	return VoteState{cast: true, value: v}
}

func (s VoteState) IsCast() bool {
	return s.cast
}

// Value returns the cast value and whether a vote is cast at all.
func (s VoteState) Value() (vote.Value, bool) {
	return s.value, s.cast
}

func (s VoteState) String() string {
	if !s.cast {
		return "none"
	}
	return s.value.String()
}

// UserVote is the current user's part of an aggregate.
type UserVote struct {
	State  VoteState
	VoteID int64
}

func (u UserVote) HasVoted() bool {
	return u.State.IsCast()
}

// Aggregate is the denormalized vote data a view shows for one inquiry.
type Aggregate struct {
	CountVotes    int
	CountPositive int
	CountNeutral  int
	CountNegative int
	CurrentUser   UserVote
}

// Consistent reports whether the ternary counters add up and none is negative.
func (a Aggregate) Consistent(mode vote.Mode) bool {
	if a.CountVotes < 0 || a.CountPositive < 0 || a.CountNeutral < 0 || a.CountNegative < 0 {
		return false
	}
	if mode == vote.ModeSimple {
		return true
	}
	return a.CountPositive+a.CountNeutral+a.CountNegative == a.CountVotes
}

// SameVotes compares the fields every view of an inquiry must agree on.
func (a Aggregate) SameVotes(b Aggregate) bool {
	return a.CountVotes == b.CountVotes &&
		a.CountPositive == b.CountPositive &&
		a.CountNeutral == b.CountNeutral &&
		a.CountNegative == b.CountNegative &&
		a.CurrentUser.State == b.CurrentUser.State
}

// AggregateFromVotes rebuilds an aggregate from the server's live vote list.
func AggregateFromVotes(list []vote.Vote, userID int64, mode vote.Mode) Aggregate {
	c := vote.Tally(list)
	agg := Aggregate{CountVotes: int(c.Votes)}
	if mode == vote.ModeTernary {
		agg.CountPositive = int(c.Positive)
		agg.CountNeutral = int(c.Neutral)
		agg.CountNegative = int(c.Negative)
	}
	for _, v := range list {
		if v.UserID != userID || v.Removed() {
			continue
		}
		agg.CurrentUser = UserVote{State: stateFromRecord(v, mode), VoteID: v.ID}
		break
	}
	return agg
}

func stateFromRecord(v vote.Vote, mode vote.Mode) VoteState {
	if mode == vote.ModeSimple {
		return Cast(vote.Positive)
	}
	return Cast(v.Value)
}

// AggregateView is one rendered copy of an inquiry's aggregate. Implementations
// must be pointer types; views are told apart by identity.
type AggregateView interface {
	InquiryID() int64
	Aggregate() Aggregate
	SetAggregate(Aggregate)
}
